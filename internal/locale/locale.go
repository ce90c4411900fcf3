// Package locale loads the translations of user facing messages
package locale

import (
	"context"
	"embed"
	"log/slog"

	"github.com/bornholm/autosend/internal/slogx"
	"github.com/invopop/ctxi18n"
	"github.com/pkg/errors"
)

//go:embed i18n/*.yml
var i18n embed.FS

func init() {
	if err := ctxi18n.Load(i18n); err != nil {
		panic(errors.Wrap(err, "could not load translations"))
	}
}

// WithLanguage attaches the locale matching lang to the context, falling
// back on the default locale.
func WithLanguage(ctx context.Context, lang string) context.Context {
	localized, err := ctxi18n.WithLocale(ctx, lang)
	if err != nil {
		slog.WarnContext(ctx, "could not set locale", slog.String("lang", lang), slogx.Error(err))

		localized, err = ctxi18n.WithLocale(ctx, string(ctxi18n.DefaultLocale))
		if err != nil {
			return ctx
		}
	}

	return localized
}
