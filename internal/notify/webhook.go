package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bornholm/autosend/internal/slogx"
	"github.com/pkg/errors"
)

type webhookPayload struct {
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	AnyFailure bool      `json:"any_failure"`
	SentAt     time.Time `json:"sent_at"`
}

// WebhookNotifier posts the notification as JSON to an HTTP endpoint
type WebhookNotifier struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

func (n *WebhookNotifier) Show(ctx context.Context, title string, message string, anyFailure bool) {
	if err := n.post(ctx, webhookPayload{
		Title:      title,
		Message:    message,
		AnyFailure: anyFailure,
		SentAt:     time.Now().UTC(),
	}); err != nil {
		n.logger.ErrorContext(ctx, "could not deliver notification", slog.String("url", n.url), slogx.Error(err))
	}
}

func (n *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := n.http.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errors.Errorf("webhook answered with status %d", res.StatusCode)
	}

	return nil
}

func NewWebhookNotifier(url string, httpClient *http.Client, logger *slog.Logger) *WebhookNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &WebhookNotifier{
		url:    url,
		http:   httpClient,
		logger: logger.With("component", "webhook-notifier"),
	}
}

var _ Notifier = &WebhookNotifier{}
