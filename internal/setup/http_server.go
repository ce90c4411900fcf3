package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/http"
	"github.com/bornholm/autosend/internal/http/handler/health"
	"github.com/bornholm/autosend/internal/http/handler/metrics"
	"github.com/pkg/errors"
)

// NewMetricsServerFromConfig returns the watch mode monitoring server, or
// nil when no metrics address is configured.
func NewMetricsServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	if conf.Metrics.Address == "" {
		return nil, nil
	}

	registry, err := getMetricsRegistryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure metrics registry from config")
	}

	st, err := getStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure store from config")
	}

	server := http.NewServer(
		http.WithAddress(conf.Metrics.Address),
		http.WithLogger(slog.Default()),
		http.WithMount("/metrics/", metrics.NewHandler(registry)),
		http.WithMount("/healthz", health.NewHandler(st, slog.Default())),
	)

	return server, nil
}
