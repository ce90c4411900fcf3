package config

import "log/slog"

type Logger struct {
	Level  slog.Level `env:"LEVEL,expand" envDefault:"info"`
	// Format is either "text" or "json"
	Format string     `env:"FORMAT" envDefault:"text"`
}
