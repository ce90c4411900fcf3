package config

import "time"

type Server struct {
	URL                 string        `env:"URL,expand" envDefault:"https://opendatakit.appspot.com"`
	SubmissionPath      string        `env:"SUBMISSION_PATH" envDefault:"/submission"`
	Timeout             time.Duration `env:"TIMEOUT" envDefault:"1m"`
	MaxRedirects        int           `env:"MAX_REDIRECTS" envDefault:"1"`
	CredentialsFile     string        `env:"CREDENTIALS_FILE,expand"`
	CredentialsIdentity string        `env:"CREDENTIALS_IDENTITY,expand"`
}
