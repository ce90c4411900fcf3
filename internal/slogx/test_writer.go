package slogx

import (
	"bytes"
	"log/slog"
	"testing"
)

// TestWriter forwards each log line to the test log
type TestWriter struct {
	t testing.TB
}

func (w *TestWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", bytes.TrimRight(p, "\n"))
	return len(p), nil
}

// NewTestLogger returns a debug logger writing to t, without timestamps and
// including the context attributes.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()

	handler := slog.NewTextHandler(&TestWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	return slog.New(ContextHandler{Handler: handler})
}
