package sheets

import (
	"log/slog"
)

type Options struct {
	Logger         *slog.Logger
	FolderName     string
	SpreadsheetURL string
	DriveURL       string
	DriveUploadURL string
	SheetsURL      string
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Logger:         slog.Default(),
		FolderName:     "Open Data Kit Submissions",
		DriveURL:       "https://www.googleapis.com/drive/v3",
		DriveUploadURL: "https://www.googleapis.com/upload/drive/v3",
		SheetsURL:      "https://sheets.googleapis.com/v4",
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithFolderName(name string) OptionFunc {
	return func(opts *Options) {
		opts.FolderName = name
	}
}

// WithSpreadsheetURL sets the spreadsheet used when neither the instance
// nor its form define one.
func WithSpreadsheetURL(url string) OptionFunc {
	return func(opts *Options) {
		opts.SpreadsheetURL = url
	}
}

// WithAPIURLs overrides the Google API endpoints
func WithAPIURLs(driveURL, driveUploadURL, sheetsURL string) OptionFunc {
	return func(opts *Options) {
		if driveURL != "" {
			opts.DriveURL = driveURL
		}
		if driveUploadURL != "" {
			opts.DriveUploadURL = driveUploadURL
		}
		if sheetsURL != "" {
			opts.SheetsURL = sheetsURL
		}
	}
}
