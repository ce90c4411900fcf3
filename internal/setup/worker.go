package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/autosend/internal/autosend"
	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/preference"
	"github.com/bornholm/autosend/internal/report"
	"github.com/pkg/errors"
)

var getWorkerFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*autosend.Worker, error) {
	settings, err := getSettingRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	instances, err := getInstanceRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	forms, err := getFormRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	files, err := getFileStorageFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	detector, err := getDetectorFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure network detector")
	}

	notifier, err := getNotifierFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	recorder, err := getTelemetryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure telemetry")
	}

	deviceID, err := getDeviceIDFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	serverFactory, err := getServerUploaderFactoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure server uploader")
	}

	sheetsFactory, err := getSheetsUploaderFactoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure sheets uploader")
	}

	reporter := report.NewReporter(instances, forms)

	worker := autosend.NewWorker(
		settings, instances, forms, files, reporter,
		autosend.WithLogger(slog.Default()),
		autosend.WithDetector(detector),
		autosend.WithNotifier(notifier),
		autosend.WithTelemetry(recorder),
		autosend.WithUploader(preference.ProtocolServer, serverFactory),
		autosend.WithUploader(preference.ProtocolSheets, sheetsFactory),
		autosend.WithDeviceID(deviceID),
		autosend.WithLanguage(conf.I18n.DefaultLanguage),
		autosend.WithMinFreeBytes(conf.Storage.MinFreeBytes),
	)

	return worker, nil
})

func NewWorkerFromConfig(ctx context.Context, conf *config.Config) (*autosend.Worker, error) {
	worker, err := getWorkerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure worker from config")
	}

	return worker, nil
}

func NewSchedulerFromConfig(ctx context.Context, conf *config.Config) (*autosend.Scheduler, error) {
	worker, err := getWorkerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure worker from config")
	}

	detector, err := getDetectorFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	instances, err := getInstanceRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	scheduler := autosend.NewScheduler(
		worker, detector, instances,
		autosend.WithSchedulerLogger(slog.Default()),
		autosend.WithInterval(conf.Watch.Interval),
	)

	return scheduler, nil
}
