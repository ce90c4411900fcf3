package autosend

import (
	"log/slog"
	"time"

	"github.com/bornholm/autosend/internal/network"
	"github.com/bornholm/autosend/internal/notify"
	"github.com/bornholm/autosend/internal/preference"
	"github.com/bornholm/autosend/internal/telemetry"
	"github.com/bornholm/autosend/internal/upload"
)

type Options struct {
	Logger       *slog.Logger
	Detector     network.Detector
	Notifier     notify.Notifier
	Telemetry    telemetry.Recorder
	Uploaders    map[preference.Protocol]upload.Factory
	DeviceID     string
	Language     string
	MinFreeBytes uint64
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Logger:       slog.Default(),
		Detector:     network.StaticDetector(network.LinkNone),
		Notifier:     notify.NewLogNotifier(slog.Default()),
		Telemetry:    telemetry.Noop{},
		Uploaders:    map[preference.Protocol]upload.Factory{},
		Language:     "en",
		MinFreeBytes: 1024 * 1024,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithDetector(detector network.Detector) OptionFunc {
	return func(opts *Options) {
		opts.Detector = detector
	}
}

func WithNotifier(notifier notify.Notifier) OptionFunc {
	return func(opts *Options) {
		opts.Notifier = notifier
	}
}

func WithTelemetry(recorder telemetry.Recorder) OptionFunc {
	return func(opts *Options) {
		opts.Telemetry = recorder
	}
}

func WithUploader(protocol preference.Protocol, factory upload.Factory) OptionFunc {
	return func(opts *Options) {
		opts.Uploaders[protocol] = factory
	}
}

func WithDeviceID(deviceID string) OptionFunc {
	return func(opts *Options) {
		opts.DeviceID = deviceID
	}
}

func WithLanguage(lang string) OptionFunc {
	return func(opts *Options) {
		opts.Language = lang
	}
}

func WithMinFreeBytes(minFree uint64) OptionFunc {
	return func(opts *Options) {
		opts.MinFreeBytes = minFree
	}
}

type SchedulerOptions struct {
	Logger   *slog.Logger
	Interval time.Duration
}

type SchedulerOptionFunc func(opts *SchedulerOptions)

func NewSchedulerOptions(funcs ...SchedulerOptionFunc) *SchedulerOptions {
	opts := &SchedulerOptions{
		Logger:   slog.Default(),
		Interval: 10 * time.Second,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithSchedulerLogger(logger *slog.Logger) SchedulerOptionFunc {
	return func(opts *SchedulerOptions) {
		opts.Logger = logger
	}
}

func WithInterval(interval time.Duration) SchedulerOptionFunc {
	return func(opts *SchedulerOptions) {
		opts.Interval = interval
	}
}
