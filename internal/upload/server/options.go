package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bornholm/autosend/internal/credential"
)

type Options struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	ServerURL      string
	SubmissionPath string
	Credentials    credential.Store
	// MaxRedirects bounds the redirections followed per request
	MaxRedirects int
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		HTTPClient: &http.Client{
			Timeout: time.Minute,
		},
		Logger:         slog.Default(),
		ServerURL:      "https://opendatakit.appspot.com",
		SubmissionPath: "/submission",
		Credentials:    credential.Static{},
		MaxRedirects:   1,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithHTTPClient(client *http.Client) OptionFunc {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithServerURL(serverURL string, submissionPath string) OptionFunc {
	return func(opts *Options) {
		opts.ServerURL = serverURL
		opts.SubmissionPath = submissionPath
	}
}

func WithCredentials(store credential.Store) OptionFunc {
	return func(opts *Options) {
		opts.Credentials = store
	}
}

// WithMaxRedirects bounds the redirections followed per request. Negative
// values are ignored.
func WithMaxRedirects(max int) OptionFunc {
	return func(opts *Options) {
		if max >= 0 {
			opts.MaxRedirects = max
		}
	}
}
