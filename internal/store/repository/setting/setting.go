package setting

import (
	"context"

	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Get returns the value stored under key. The boolean is false when the
// key has never been set.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var settings []store.Setting
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Where("name = ?", key).Limit(1).Find(&settings).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if len(settings) == 0 {
		return "", false, nil
	}
	return settings[0].Value, true, nil
}

func (r *Repository) Set(ctx context.Context, key, value string) error {
	return r.store.WithRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		return upsert(db, key, value)
	}, store.CodeBusy, store.CodeLocked)
}

// SetDefault stores value under key unless the key already has a value,
// and returns the value in effect.
func (r *Repository) SetDefault(ctx context.Context, key, value string) (string, error) {
	effective := value
	err := r.store.WithRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		var settings []store.Setting
		if err := db.Where("name = ?", key).Limit(1).Find(&settings).Error; err != nil {
			return errors.WithStack(err)
		}
		if len(settings) > 0 {
			effective = settings[0].Value
			return nil
		}
		return upsert(db, key, value)
	}, store.CodeBusy, store.CodeLocked)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return effective, nil
}

func upsert(db *gorm.DB, key, value string) error {
	setting := &store.Setting{Name: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(setting).Error
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
