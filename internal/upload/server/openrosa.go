package server

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/invopop/ctxi18n/i18n"
	"github.com/pkg/errors"
)

const maxResponseSize = 64 * 1024

type openRosaResponse struct {
	XMLName xml.Name `xml:"OpenRosaResponse"`
	Message string   `xml:"message"`
}

// exchange holds the state of the requests made for a single submission
type exchange struct {
	uploader *Uploader
	run      *upload.Run
	logger   *slog.Logger
}

// preflight checks the target with a HEAD request, learning redirections
// and answering authentication challenges before the payload is sent.
func (e *exchange) preflight(ctx context.Context, target string) (string, *upload.Outcome) {
	current := target

	for redirects := 0; ; redirects++ {
		res, err := e.send(ctx, http.MethodHead, current, nil, "")
		if err != nil {
			return "", e.networkFailure(ctx, current, err)
		}

		discard(res)

		switch {
		case res.StatusCode == http.StatusNoContent:
			effective := current
			if location, err := res.Location(); err == nil {
				effective = location.String()
			}

			e.run.Remap.Learn(target, effective)

			return effective, nil

		case isRedirect(res.StatusCode):
			location, err := res.Location()
			if err != nil || redirects >= e.uploader.maxRedirects {
				return "", outcome(upload.Failed(i18n.T(ctx, "server.too_many_redirects", i18n.M{"host": hostOf(current)})))
			}

			e.logger.DebugContext(ctx, "learned submission url from redirect", slog.String("from", target), slog.String("to", location.String()))

			e.run.Remap.Learn(target, location.String())
			current = location.String()

		case res.StatusCode == http.StatusUnauthorized:
			return "", outcome(upload.Unauthorized(i18n.T(ctx, "server.auth_required", i18n.M{"host": hostOf(current)})))

		case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusMethodNotAllowed:
			// HEAD is not supported, the payload goes straight to the target
			return current, nil

		case res.StatusCode >= 200 && res.StatusCode < 300:
			return "", outcome(upload.Failed(i18n.T(ctx, "server.invalid_head_status", i18n.M{"url": current, "status": res.StatusCode})))

		case res.StatusCode >= 500:
			return "", outcome(upload.Failed(i18n.T(ctx, "server.server_error", i18n.M{"status": res.StatusCode})))

		default:
			return "", outcome(upload.Failed(i18n.T(ctx, "server.unexpected_status", i18n.M{"status": res.StatusCode, "reason": http.StatusText(res.StatusCode)})))
		}
	}
}

func (e *exchange) submit(ctx context.Context, target string, effective string, payload *payload) upload.Outcome {
	current := effective

	for redirects := 0; ; redirects++ {
		res, err := e.send(ctx, http.MethodPost, current, payload.body, payload.contentType)
		if err != nil {
			return *e.networkFailure(ctx, current, err)
		}

		message := readMessage(res)

		switch {
		case res.StatusCode == http.StatusCreated || res.StatusCode == http.StatusAccepted:
			if message == "" {
				message = i18n.T(ctx, "submission.success")
			}

			return upload.Succeeded(message)

		case isRedirect(res.StatusCode):
			location, err := res.Location()
			if err != nil || redirects >= e.uploader.maxRedirects {
				return upload.Failed(i18n.T(ctx, "server.too_many_redirects", i18n.M{"host": hostOf(current)}))
			}

			e.run.Remap.Learn(target, location.String())
			current = location.String()

		case res.StatusCode == http.StatusUnauthorized:
			return upload.Unauthorized(i18n.T(ctx, "server.auth_required", i18n.M{"host": hostOf(current)}))

		case res.StatusCode >= 500:
			return upload.Failed(i18n.T(ctx, "server.server_error", i18n.M{"status": res.StatusCode}))

		default:
			reason := message
			if reason == "" {
				reason = http.StatusText(res.StatusCode)
			}

			return upload.Failed(i18n.T(ctx, "server.unexpected_status", i18n.M{"status": res.StatusCode, "reason": reason}))
		}
	}
}

// send performs the request with the authorization negotiated earlier in
// the run for the target host. A 401 is answered once, when credentials
// are known for the host and the challenge is not a refusal of the ones
// already sent.
func (e *exchange) send(ctx context.Context, method string, target string, body []byte, contentType string) (*http.Response, error) {
	host := hostOf(target)

	previous, _ := e.run.Auth.Lookup(host)

	res, err := e.attempt(ctx, method, target, body, contentType, previous)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if res.StatusCode != http.StatusUnauthorized {
		return res, nil
	}

	auth, err := e.uploader.newAuthorizer(ctx, res)
	if err != nil {
		e.logger.DebugContext(ctx, "could not answer authentication challenge", slogx.Error(err))
		return res, nil
	}

	if previous != nil && !renews(previous, auth) {
		e.logger.DebugContext(ctx, "credentials refused", slog.String("host", host))
		e.run.Auth.Forget(host)
		return res, nil
	}

	discard(res)

	e.run.Auth.Remember(host, auth)

	res, err = e.attempt(ctx, method, target, body, contentType, auth)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		e.run.Auth.Forget(host)
	}

	return res, nil
}

func (e *exchange) attempt(ctx context.Context, method string, target string, body []byte, contentType string, auth upload.Authorization) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, withDeviceID(parsed, e.run.DeviceID), reader)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req.Header.Set("X-OpenRosa-Version", "1.0")
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if auth != nil {
		if err := auth.Apply(req); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	res, err := e.uploader.http.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return res, nil
}

func (e *exchange) networkFailure(ctx context.Context, target string, err error) *upload.Outcome {
	e.logger.DebugContext(ctx, "request failed", slog.String("url", target), slogx.Error(err))
	return outcome(upload.Failed(i18n.T(ctx, "server.network_error", i18n.M{"host": hostOf(target), "error": errors.Cause(err).Error()})))
}

func readMessage(res *http.Response) string {
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil || len(data) == 0 {
		return ""
	}

	if !strings.Contains(res.Header.Get("Content-Type"), "xml") {
		return ""
	}

	var response openRosaResponse
	if err := xml.Unmarshal(data, &response); err != nil {
		return ""
	}

	return strings.TrimSpace(response.Message)
}

func discard(res *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseSize))
	_ = res.Body.Close()
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return parsed.Host
}

func outcome(o upload.Outcome) *upload.Outcome {
	return &o
}
