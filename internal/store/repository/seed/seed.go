package seed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExecFunc func(ctx context.Context, db *gorm.DB) error

// Seeder applies content to the store. It runs again whenever its content
// checksum changes, so exec must tolerate existing rows.
type Seeder struct {
	id       string
	checksum string
	exec     ExecFunc
}

func New(id string, content []byte, exec ExecFunc) *Seeder {
	sum := sha256.Sum256(content)

	return &Seeder{
		id:       id,
		checksum: hex.EncodeToString(sum[:]),
		exec:     exec,
	}
}

// Seed executes the seeders whose content was not applied yet. Force
// executes every seeder.
func (r *Repository) Seed(ctx context.Context, force bool, seeders ...*Seeder) (int, error) {
	executed := 0

	for _, s := range seeders {
		applied := false

		err := r.store.WithRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
			var previous []store.Seed
			if err := db.Where("id = ?", s.id).Limit(1).Find(&previous).Error; err != nil {
				return errors.WithStack(err)
			}

			if !force && len(previous) > 0 && previous[0].Checksum == s.checksum {
				return nil
			}

			if err := s.exec(ctx, db); err != nil {
				return errors.Wrapf(err, "seeder '%s' failed", s.id)
			}

			record := &store.Seed{
				ID:         s.id,
				Checksum:   s.checksum,
				ExecutedAt: time.Now(),
			}

			err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"checksum", "executed_at"}),
			}).Create(record).Error
			if err != nil {
				return errors.WithStack(err)
			}

			applied = true

			return nil
		}, store.CodeBusy, store.CodeLocked)
		if err != nil {
			return executed, errors.WithStack(err)
		}

		if applied {
			executed++
		}
	}

	return executed, nil
}
