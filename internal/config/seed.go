package config

type Seed struct {
	Enabled     bool              `env:"ENABLED,expand" envDefault:"true"`
	Preferences map[string]string `env:"PREFERENCES" envKeyValSeparator:":" envDefault:"autosend:off,delete_after_send:false,protocol:odk_default"`
	Catalog     string            `env:"CATALOG,expand"`
}
