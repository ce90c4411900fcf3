package config

type Device struct {
	ID string `env:"ID,expand"`
}
