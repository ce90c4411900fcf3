package setup

import (
	"context"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/store/repository/form"
	"github.com/bornholm/autosend/internal/store/repository/instance"
	"github.com/bornholm/autosend/internal/store/repository/setting"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/pkg/errors"
)

var getInstanceRepositoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*instance.Repository, error) {
	st, err := getStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return instance.NewRepository(st), nil
})

var getFormRepositoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*form.Repository, error) {
	st, err := getStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return form.NewRepository(st), nil
})

var getSettingRepositoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*setting.Repository, error) {
	st, err := getStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return setting.NewRepository(st), nil
})

var getStatusWriterFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*upload.StatusWriter, error) {
	instances, err := getInstanceRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return upload.NewStatusWriter(instances), nil
})
