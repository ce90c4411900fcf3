// Package notify delivers the run results to the user. Delivery is fire
// and forget: failures are logged and never returned.
package notify

import (
	"context"
	"log/slog"
)

type Notifier interface {
	Show(ctx context.Context, title string, message string, anyFailure bool)
}

type LogNotifier struct {
	logger *slog.Logger
}

func (n *LogNotifier) Show(ctx context.Context, title string, message string, anyFailure bool) {
	level := slog.LevelInfo
	if anyFailure {
		level = slog.LevelWarn
	}

	n.logger.Log(ctx, level, title, slog.String("message", message), slog.Bool("any_failure", anyFailure))
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With("component", "notifier"),
	}
}

var _ Notifier = &LogNotifier{}
