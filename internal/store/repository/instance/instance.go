package instance

import (
	"context"
	"time"

	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrStatusConflict is returned when a status write targets an instance
// that is no longer owned by the uploader.
var ErrStatusConflict = errors.New("instance status conflict")

// Statuses the uploader is allowed to overwrite.
var writableStatuses = []store.InstanceStatus{
	store.StatusFinalized,
	store.StatusSubmitting,
}

func preloadAttachments(db *gorm.DB) *gorm.DB {
	return db.Preload("Attachments", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *Repository) Create(ctx context.Context, instance *store.Instance) error {
	return r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Create(instance).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*store.Instance, error) {
	var instance store.Instance
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := preloadAttachments(db).First(&instance, id).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// Finalized returns every finalized instance ordered by id.
func (r *Repository) Finalized(ctx context.Context) ([]*store.Instance, error) {
	return r.ByFilter(ctx, "status = ?", store.StatusFinalized)
}

// ByFilter returns the instances matching the given where clause, ordered by id.
func (r *Repository) ByFilter(ctx context.Context, expr string, args ...any) ([]*store.Instance, error) {
	var instances []*store.Instance
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := preloadAttachments(db).Where(expr, args...).Order("id ASC").Find(&instances).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *Repository) ByIDs(ctx context.Context, ids ...uint) ([]*store.Instance, error) {
	if len(ids) == 0 {
		return []*store.Instance{}, nil
	}

	return r.ByFilter(ctx, "id IN ?", ids)
}

// UpdateStatus moves an instance to the given status. The write only
// applies to instances currently finalized or submitting; writing the
// status an instance already has is a no-op.
func (r *Repository) UpdateStatus(ctx context.Context, id uint, status store.InstanceStatus) error {
	return r.store.WithRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		now := time.Now()

		result := db.Model(&store.Instance{}).
			Where("id = ? AND status IN ?", id, writableStatuses).
			Updates(map[string]any{
				"status":                status,
				"last_status_change_at": now,
			})
		if result.Error != nil {
			return errors.WithStack(result.Error)
		}

		if result.RowsAffected > 0 {
			return nil
		}

		var current store.Instance
		if err := db.Select("id", "status").First(&current, id).Error; err != nil {
			return errors.WithStack(err)
		}

		if current.Status == status {
			return nil
		}

		return errors.Wrapf(ErrStatusConflict, "instance %d is '%s'", id, current.Status)
	}, store.CodeBusy, store.CodeLocked)
}

// Delete removes the instance record and its attachment rows.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.store.WithTx(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Unscoped().Where("instance_id = ?", id).Delete(&store.InstanceAttachment{}).Error; err != nil {
			return errors.WithStack(err)
		}
		if err := db.Unscoped().Delete(&store.Instance{}, id).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
}

func (r *Repository) CountByStatus(ctx context.Context, statuses ...store.InstanceStatus) (int64, error) {
	var count int64
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		query := db.Model(&store.Instance{})
		if len(statuses) > 0 {
			query = query.Where("status IN ?", statuses)
		}
		if err := query.Count(&count).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
