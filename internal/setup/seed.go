package setup

import (
	"context"
	"log/slog"
	"os"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/repository/seed"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Catalog describes the forms and finalized instances to load into a
// fresh store.
type Catalog struct {
	Forms     []CatalogForm     `yaml:"forms"`
	Instances []CatalogInstance `yaml:"instances"`
}

type CatalogForm struct {
	FormID        string `yaml:"form_id"`
	Version       string `yaml:"version"`
	DisplayName   string `yaml:"display_name"`
	BlankForm     string `yaml:"blank_form"`
	SubmissionURL string `yaml:"submission_url"`
	AutoSend      *bool  `yaml:"auto_send"`
	AutoDelete    *bool  `yaml:"auto_delete"`
}

type CatalogInstance struct {
	FormID        string   `yaml:"form_id"`
	Version       string   `yaml:"version"`
	DisplayName   string   `yaml:"display_name"`
	Data          string   `yaml:"data"`
	Attachments   []string `yaml:"attachments"`
	SubmissionURI string   `yaml:"submission_uri"`
	Status        string   `yaml:"status"`
}

func SeedFromConfig(ctx context.Context, conf *config.Config) error {
	if !conf.Seed.Enabled {
		return nil
	}

	settings, err := getSettingRepositoryFromConfig(ctx, conf)
	if err != nil {
		return errors.WithStack(err)
	}

	for key, value := range conf.Seed.Preferences {
		effective, err := settings.SetDefault(ctx, key, value)
		if err != nil {
			return errors.Wrapf(err, "could not seed preference '%s'", key)
		}

		slog.DebugContext(ctx, "preference", slog.String("key", key), slog.String("value", effective))
	}

	if conf.Seed.Catalog == "" {
		return nil
	}

	data, err := os.ReadFile(conf.Seed.Catalog)
	if err != nil {
		return errors.Wrapf(err, "could not read catalog '%s'", conf.Seed.Catalog)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return errors.Wrapf(err, "could not parse catalog '%s'", conf.Seed.Catalog)
	}

	st, err := getStoreFromConfig(ctx, conf)
	if err != nil {
		return errors.WithStack(err)
	}

	repo := seed.NewRepository(st)

	seeder := seed.New("catalog", data, func(ctx context.Context, db *gorm.DB) error {
		return loadCatalog(ctx, db, catalog)
	})

	executed, err := repo.Seed(ctx, false, seeder)
	if err != nil {
		slog.ErrorContext(ctx, "could not load catalog", slog.String("catalog", conf.Seed.Catalog), slogx.Error(err))
		return errors.Wrap(err, "could not execute store seeding")
	}

	if executed > 0 {
		slog.InfoContext(ctx, "catalog loaded", slog.String("catalog", conf.Seed.Catalog), slog.Int("forms", len(catalog.Forms)), slog.Int("instances", len(catalog.Instances)))
	}

	return nil
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, errors.WithStack(err)
	}

	for idx, f := range catalog.Forms {
		if f.FormID == "" {
			return nil, errors.Errorf("form #%d has no form_id", idx)
		}
	}

	for idx, i := range catalog.Instances {
		if i.FormID == "" {
			return nil, errors.Errorf("instance #%d has no form_id", idx)
		}

		if i.Data == "" {
			return nil, errors.Errorf("instance #%d has no data path", idx)
		}

		switch store.InstanceStatus(i.Status) {
		case "", store.StatusIncomplete, store.StatusFinalized, store.StatusSubmitted, store.StatusSubmissionFailed:
		default:
			return nil, errors.Errorf("instance #%d has invalid status '%s'", idx, i.Status)
		}
	}

	return &catalog, nil
}

// loadCatalog upserts forms by form id and version, and creates the
// instances whose data path is not known yet.
func loadCatalog(ctx context.Context, db *gorm.DB, catalog *Catalog) error {
	for _, f := range catalog.Forms {
		var existing []*store.Form
		if err := db.Where("form_id = ? AND version = ?", f.FormID, f.Version).Limit(1).Find(&existing).Error; err != nil {
			return errors.WithStack(err)
		}

		form := &store.Form{}
		if len(existing) > 0 {
			form = existing[0]
		}

		form.FormID = f.FormID
		form.Version = f.Version
		form.DisplayName = f.DisplayName
		form.BlankFormPath = f.BlankForm
		form.SubmissionURL = f.SubmissionURL
		form.AutoSend = f.AutoSend
		form.AutoDelete = f.AutoDelete

		if err := db.Save(form).Error; err != nil {
			return errors.Wrapf(err, "could not save form '%s'", f.FormID)
		}
	}

	for _, i := range catalog.Instances {
		var count int64
		if err := db.Model(&store.Instance{}).Where("data_path = ?", i.Data).Count(&count).Error; err != nil {
			return errors.WithStack(err)
		}

		if count > 0 {
			continue
		}

		instance := store.NewInstance(i.FormID, i.Version, i.DisplayName, i.Data, i.Attachments...)
		instance.SubmissionURI = i.SubmissionURI

		if i.Status != "" {
			instance.Status = store.InstanceStatus(i.Status)
		}

		if err := db.Create(instance).Error; err != nil {
			return errors.Wrapf(err, "could not create instance '%s'", i.DisplayName)
		}
	}

	return nil
}
