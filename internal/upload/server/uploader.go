// Package server sends submissions to an OpenRosa compliant server using
// multipart HTTP requests.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bornholm/autosend/internal/credential"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/invopop/ctxi18n/i18n"
	"github.com/pkg/errors"
)

const Name = "HTTP auto"

type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid submission url '%s'", e.URL)
}

type Forms interface {
	ByFormID(ctx context.Context, formID string) (*store.Form, error)
}

type Artifacts interface {
	Exists(path string) bool
	GetFile(path string) (io.ReadCloser, error)
	ContentType(path string) string
}

type Uploader struct {
	*upload.StatusWriter

	http         *http.Client
	forms        Forms
	files        Artifacts
	credentials  credential.Store
	logger       *slog.Logger
	defaultURL   string
	maxRedirects int
}

func (u *Uploader) Name() string {
	return Name
}

// TargetURL resolves the submission endpoint of the instance: its own
// submission URI, then the submission URL of its form, then the configured
// server.
func (u *Uploader) TargetURL(ctx context.Context, run *upload.Run, instance *store.Instance) (string, error) {
	raw := instance.SubmissionURI

	if raw == "" {
		form, err := u.forms.ByFormID(ctx, instance.FormID)
		if err != nil {
			return "", errors.WithStack(err)
		}

		if form != nil {
			raw = form.SubmissionURL
		}
	}

	if raw == "" {
		raw = u.defaultURL
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return "", errors.WithStack(&InvalidURLError{URL: raw})
	}

	return withDeviceID(target, run.DeviceID), nil
}

func (u *Uploader) UploadOne(ctx context.Context, run *upload.Run, instance *store.Instance) upload.Outcome {
	logger := u.logger.With(slog.Uint64("instance_id", uint64(instance.ID)))

	target, err := u.TargetURL(ctx, run, instance)
	if err != nil {
		logger.DebugContext(ctx, "could not resolve submission url", slogx.Error(err))

		var invalidURL *InvalidURLError
		if errors.As(err, &invalidURL) {
			return upload.Failed(i18n.T(ctx, "server.invalid_url", i18n.M{"url": invalidURL.URL}))
		}

		return upload.Failed(i18n.T(ctx, "submission.unexpected_error", i18n.M{"error": err.Error()}))
	}

	ex := &exchange{
		uploader: u,
		run:      run,
		logger:   logger,
	}

	effective, known := run.Remap.Lookup(target)
	if !known {
		var outcome *upload.Outcome
		effective, outcome = ex.preflight(ctx, target)
		if outcome != nil {
			return *outcome
		}
	}

	payload, err := u.buildPayload(ctx, instance)
	if err != nil {
		logger.DebugContext(ctx, "could not build submission payload", slogx.Error(err))

		if errors.Is(err, errMissingPayload) {
			return upload.Failed(i18n.T(ctx, "submission.missing_instance", i18n.M{"path": instance.DataPath}))
		}

		return upload.Failed(i18n.T(ctx, "submission.unexpected_error", i18n.M{"error": err.Error()}))
	}

	return ex.submit(ctx, target, effective, payload)
}

func withDeviceID(target *url.URL, deviceID string) string {
	if deviceID == "" {
		return target.String()
	}

	withID := *target
	query := withID.Query()
	query.Set("deviceID", deviceID)
	withID.RawQuery = query.Encode()

	return withID.String()
}

func New(statusWriter *upload.StatusWriter, forms Forms, files Artifacts, funcs ...OptionFunc) *Uploader {
	opts := NewOptions(funcs...)

	client := *opts.HTTPClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Uploader{
		StatusWriter: statusWriter,
		http:         &client,
		forms:        forms,
		files:        files,
		credentials:  opts.Credentials,
		logger:       opts.Logger.With("component", "server-uploader"),
		defaultURL:   strings.TrimSuffix(opts.ServerURL, "/") + opts.SubmissionPath,
		maxRedirects: opts.MaxRedirects,
	}
}

var _ upload.Uploader = &Uploader{}
