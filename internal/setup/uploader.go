package setup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/bornholm/autosend/internal/upload/server"
	"github.com/bornholm/autosend/internal/upload/sheets"
	"github.com/pkg/errors"
)

var getServerUploaderFactoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (upload.Factory, error) {
	statusWriter, err := getStatusWriterFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	forms, err := getFormRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	files, err := getFileStorageFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	credentials, err := getCredentialStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	uploader := server.New(
		statusWriter, forms, files,
		server.WithLogger(slog.Default()),
		server.WithHTTPClient(&http.Client{Timeout: conf.Server.Timeout}),
		server.WithServerURL(conf.Server.URL, conf.Server.SubmissionPath),
		server.WithCredentials(credentials),
		server.WithMaxRedirects(conf.Server.MaxRedirects),
	)

	return func(ctx context.Context) (upload.Uploader, error) {
		return uploader, nil
	}, nil
})

var getSheetsUploaderFactoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (upload.Factory, error) {
	statusWriter, err := getStatusWriterFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	forms, err := getFormRepositoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	files, err := getFileStorageFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var account sheets.Account
	if conf.Sheets.Account != "" {
		account = sheets.NewGoogleAccount(
			conf.Sheets.Account,
			conf.Sheets.RefreshToken,
			conf.Sheets.ClientKey,
			conf.Sheets.ClientSecret,
			conf.Sheets.CallbackURL,
			conf.Sheets.Scopes...,
		)
	}

	factory := sheets.NewFactory(
		account, statusWriter, forms, files,
		sheets.WithLogger(slog.Default()),
		sheets.WithFolderName(conf.Sheets.FolderName),
		sheets.WithSpreadsheetURL(conf.Sheets.URL),
		sheets.WithAPIURLs(conf.Sheets.DriveURL, conf.Sheets.DriveUploadURL, conf.Sheets.SheetsURL),
	)

	return factory, nil
})
