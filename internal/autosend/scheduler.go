package autosend

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/autosend/internal/network"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"
)

type Runner interface {
	Run(ctx context.Context) Result
}

type Backlog interface {
	CountByStatus(ctx context.Context, statuses ...store.InstanceStatus) (int64, error)
}

// Scheduler triggers runs on connectivity changes: once at start, then
// each time the link switches to a connected medium.
type Scheduler struct {
	runner   Runner
	detector network.Detector
	backlog  Backlog
	interval time.Duration
	logger   *slog.Logger
}

func (s *Scheduler) Run(ctx context.Context) error {
	link, err := s.detector.CurrentLink(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "could not detect network link", slogx.Error(err))
		link = network.LinkNone
	}

	s.trigger(ctx, link)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())

		case <-ticker.C:
			current, err := s.detector.CurrentLink(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "could not detect network link", slogx.Error(err))
				continue
			}

			if current == link {
				continue
			}

			s.logger.InfoContext(ctx, "network link changed", slog.String("from", link.String()), slog.String("to", current.String()))

			link = current

			if link == network.LinkNone {
				continue
			}

			s.trigger(ctx, link)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context, link network.Link) {
	pending, err := s.backlog.CountByStatus(ctx, store.StatusFinalized)
	if err != nil {
		s.logger.WarnContext(ctx, "could not count pending instances", slogx.Error(err))
	}

	s.logger.InfoContext(ctx, "triggering run", slog.String("link", link.String()), slog.Int64("pending", pending))

	result := s.runner.Run(ctx)

	if result == ResultRetry {
		s.logger.InfoContext(ctx, "run deferred until next link change")
	}
}

func NewScheduler(runner Runner, detector network.Detector, backlog Backlog, funcs ...SchedulerOptionFunc) *Scheduler {
	opts := NewSchedulerOptions(funcs...)

	return &Scheduler{
		runner:   runner,
		detector: detector,
		backlog:  backlog,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "autosend-scheduler"),
	}
}
