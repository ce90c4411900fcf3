package config

import "time"

type Watch struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"10s"`
}

type Metrics struct {
	Address string `env:"ADDRESS"`
}
