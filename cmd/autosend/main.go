package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bornholm/autosend/internal/autosend"
	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/setup"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var (
	rawLogLevel string = ""
	watch       bool   = false
)

func init() {
	pflag.StringVar(&rawLogLevel, "log-level", rawLogLevel, "logging level, overrides AUTOSEND_LOGGER_LEVEL")
	pflag.BoolVar(&watch, "watch", watch, "keep running and trigger a run on each connectivity change")
}

func main() {
	pflag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.Parse()
	if err != nil {
		slog.ErrorContext(ctx, "could not parse config", slogx.Error(errors.WithStack(err)))
		os.Exit(1)
	}

	if rawLogLevel != "" {
		if err := conf.Logger.Level.UnmarshalText([]byte(rawLogLevel)); err != nil {
			slog.ErrorContext(ctx, "could not parse log level", slogx.Error(errors.WithStack(err)))
			os.Exit(1)
		}
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     conf.Logger.Level,
		AddSource: true,
	}

	var handler slog.Handler
	if conf.Logger.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	logger := slog.New(slogx.ContextHandler{Handler: handler})

	slog.SetDefault(logger)

	slog.DebugContext(ctx, "using configuration", slog.Any("config", conf))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	if err := setup.SeedFromConfig(ctx, conf); err != nil {
		slog.ErrorContext(ctx, "could not seed store", slogx.Error(errors.WithStack(err)))
		os.Exit(1)
	}

	if !watch {
		worker, err := setup.NewWorkerFromConfig(ctx, conf)
		if err != nil {
			slog.ErrorContext(ctx, "could not setup worker", slogx.Error(errors.WithStack(err)))
			os.Exit(1)
		}

		result := worker.Run(ctx)

		os.Exit(result.ExitCode())
	}

	if err := runWatch(ctx, conf); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "could not watch connectivity", slogx.Error(errors.WithStack(err)))
		os.Exit(autosend.ResultFailure.ExitCode())
	}
}

func runWatch(ctx context.Context, conf *config.Config) error {
	scheduler, err := setup.NewSchedulerFromConfig(ctx, conf)
	if err != nil {
		return errors.WithStack(err)
	}

	server, err := setup.NewMetricsServerFromConfig(ctx, conf)
	if err != nil {
		return errors.WithStack(err)
	}

	if server != nil {
		go func() {
			slog.InfoContext(ctx, "starting metrics server", slog.String("address", conf.Metrics.Address))

			if err := server.Run(ctx); err != nil {
				slog.ErrorContext(ctx, "could not run metrics server", slogx.Error(errors.WithStack(err)))
			}
		}()
	}

	slog.InfoContext(ctx, "watching connectivity, use ctrl+c to interrupt", slog.Duration("interval", conf.Watch.Interval))

	if err := scheduler.Run(ctx); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
