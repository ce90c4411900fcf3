package config

type Storage struct {
	Database     Database `envPrefix:"DATABASE_"`
	File         File     `envPrefix:"FILE_"`
	MinFreeBytes uint64   `env:"MIN_FREE_BYTES" envDefault:"1048576"`
}

type Database struct {
	DSN string `env:"DSN,expand" envDefault:"data/store.sqlite"`
}

type File struct {
	Dir string `env:"DIR,expand" envDefault:"data/instances"`
}
