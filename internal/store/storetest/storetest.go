// Package storetest provides sqlite-backed stores for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/bornholm/autosend/internal/store"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a store backed by a fresh sqlite database in a temporary
// directory removed at the end of the test.
func New(t testing.TB) *store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "store.sqlite")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %+v", err)
	}

	internalDB, err := db.DB()
	if err != nil {
		t.Fatalf("could not retrieve sql database: %+v", err)
	}

	internalDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		internalDB.Close()
	})

	return store.New(db)
}

func Bool(v bool) *bool {
	return &v
}
