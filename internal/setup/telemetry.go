package setup

import (
	"context"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/telemetry"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var getMetricsRegistryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, errors.WithStack(err)
	}

	return registry, nil
})

var getTelemetryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (telemetry.Recorder, error) {
	registry, err := getMetricsRegistryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	recorder, err := telemetry.NewPrometheus(registry)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return recorder, nil
})
