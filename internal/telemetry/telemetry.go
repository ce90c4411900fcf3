// Package telemetry counts submission events and run results
package telemetry

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const CategorySubmission = "Submission"

type Recorder interface {
	Record(ctx context.Context, category string, action string)
	RecordRun(ctx context.Context, result string)
}

type Prometheus struct {
	events *prometheus.CounterVec
	runs   *prometheus.CounterVec
}

func (p *Prometheus) Record(ctx context.Context, category string, action string) {
	p.events.WithLabelValues(category, action).Inc()
}

func (p *Prometheus) RecordRun(ctx context.Context, result string) {
	p.runs.WithLabelValues(result).Inc()
}

func NewPrometheus(registerer prometheus.Registerer) (*Prometheus, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autosend",
		Name:      "events_total",
		Help:      "Number of telemetry events by category and action",
	}, []string{"category", "action"})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autosend",
		Name:      "runs_total",
		Help:      "Number of auto-send runs by result",
	}, []string{"result"})

	for _, c := range []prometheus.Collector{events, runs} {
		if err := registerer.Register(c); err != nil {
			return nil, errors.Wrap(err, "could not register collector")
		}
	}

	return &Prometheus{
		events: events,
		runs:   runs,
	}, nil
}

// Noop discards every event
type Noop struct{}

func (Noop) Record(ctx context.Context, category string, action string) {}

func (Noop) RecordRun(ctx context.Context, result string) {}

var (
	_ Recorder = &Prometheus{}
	_ Recorder = Noop{}
)
