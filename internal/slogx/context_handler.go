package slogx

import (
	"context"
	"log/slog"
	"slices"
)

type contextKey string

const (
	slogFields contextKey = "slogFields"
)

// ContextHandler adds the attributes attached to the record context with
// WithAttrs. Derived handlers keep the wrapping.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(AttrsFrom(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// WithAttrs returns a context carrying attrs in addition to the ones of
// parent. An attribute replaces a previous one with the same key.
func WithAttrs(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	existing := AttrsFrom(parent)

	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	for _, a := range existing {
		overridden := slices.ContainsFunc(attrs, func(b slog.Attr) bool { return b.Key == a.Key })
		if !overridden {
			merged = append(merged, a)
		}
	}

	merged = append(merged, attrs...)

	return context.WithValue(parent, slogFields, merged)
}

func AttrsFrom(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	attrs, _ := ctx.Value(slogFields).([]slog.Attr)

	return attrs
}

var _ slog.Handler = ContextHandler{}
