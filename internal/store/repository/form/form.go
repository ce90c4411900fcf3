package form

import (
	"context"

	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func (r *Repository) Create(ctx context.Context, form *store.Form) error {
	return r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Create(form).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
}

// ByFormID returns the most recently added form with the given form id,
// or nil if none is known.
func (r *Repository) ByFormID(ctx context.Context, formID string) (*store.Form, error) {
	var forms []*store.Form
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Where("form_id = ?", formID).Order("id DESC").Limit(1).Find(&forms).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, nil
	}
	return forms[0], nil
}

// ByFormIDAndVersion returns every form matching the id and version. An
// empty version matches forms without a version.
func (r *Repository) ByFormIDAndVersion(ctx context.Context, formID, version string) ([]*store.Form, error) {
	var forms []*store.Form
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Where("form_id = ? AND version = ?", formID, version).Order("id ASC").Find(&forms).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *Repository) All(ctx context.Context) ([]*store.Form, error) {
	var forms []*store.Form
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Order("id ASC").Find(&forms).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}
