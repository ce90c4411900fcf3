package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	Logger  Logger  `envPrefix:"LOGGER_"`
	Storage Storage `envPrefix:"STORAGE_"`
	Seed    Seed    `envPrefix:"SEED_"`
	Device  Device  `envPrefix:"DEVICE_"`
	Network Network `envPrefix:"NETWORK_"`
	Server  Server  `envPrefix:"SERVER_"`
	Sheets  Sheets  `envPrefix:"SHEETS_"`
	Notify  Notify  `envPrefix:"NOTIFY_"`
	I18n    I18n    `envPrefix:"I18N_"`
	Watch   Watch   `envPrefix:"WATCH_"`
	Metrics Metrics `envPrefix:"METRICS_"`
}

func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "AUTOSEND_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}
