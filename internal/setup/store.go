package setup

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode=wal",
	"PRAGMA foreign_keys=on",
	"PRAGMA busy_timeout=30000",
}

var getStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*store.Store, error) {
	dsn := conf.Storage.Database.DSN

	if err := ensureDirectory(filepath.Dir(dsn)); err != nil {
		return nil, errors.WithStack(err)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(conf.Logger.Level)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database '%s'", dsn)
	}

	if conf.Logger.Level <= slog.LevelDebug {
		db = db.Debug()
	}

	internalDB, err := db.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// The status writes of a run and the scheduler backlog queries share a
	// single connection.
	internalDB.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, errors.Wrapf(err, "could not apply '%s'", pragma)
		}
	}

	st := store.New(db)

	if err := st.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "could not reach database")
	}

	slog.DebugContext(ctx, "store ready", slog.String("dsn", dsn))

	return st, nil
})

// gormLogLevel keeps gorm quiet unless the application logs at info
// level or below.
func gormLogLevel(level slog.Level) logger.LogLevel {
	switch {
	case level <= slog.LevelInfo:
		return logger.Info
	case level <= slog.LevelWarn:
		return logger.Warn
	default:
		return logger.Error
	}
}
