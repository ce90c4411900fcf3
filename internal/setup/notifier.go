package setup

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/notify"
	"github.com/pkg/errors"
)

var notifiers = NewRegistry[notify.Notifier]()

func init() {
	webhook := func(ctx context.Context, u *url.URL) (notify.Notifier, error) {
		client := &http.Client{Timeout: 30 * time.Second}
		return notify.NewWebhookNotifier(u.String(), client, slog.Default()), nil
	}

	notifiers.Register("http", webhook)
	notifiers.Register("https", webhook)
}

var getNotifierFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (notify.Notifier, error) {
	if conf.Notify.WebhookURL == "" {
		return notify.NewLogNotifier(slog.Default()), nil
	}

	notifier, err := notifiers.From(ctx, conf.Notify.WebhookURL)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure notifier")
	}

	return notifier, nil
})
