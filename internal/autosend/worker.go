// Package autosend decides whether finalized submissions can be sent now
// and drives their upload through the selected back-end.
package autosend

import (
	"context"
	"log/slog"

	"github.com/bornholm/autosend/internal/locale"
	"github.com/bornholm/autosend/internal/network"
	"github.com/bornholm/autosend/internal/notify"
	"github.com/bornholm/autosend/internal/policy"
	"github.com/bornholm/autosend/internal/preference"
	"github.com/bornholm/autosend/internal/report"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/repository/instance"
	"github.com/bornholm/autosend/internal/telemetry"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/invopop/ctxi18n/i18n"
	"github.com/pkg/errors"
	"github.com/rs/xid"
)

type Instances interface {
	Finalized(ctx context.Context) ([]*store.Instance, error)
	ByFilter(ctx context.Context, expr string, args ...any) ([]*store.Instance, error)
	UpdateStatus(ctx context.Context, id uint, status store.InstanceStatus) error
	Delete(ctx context.Context, id uint) error
}

type Forms interface {
	All(ctx context.Context) ([]*store.Form, error)
}

type Storage interface {
	Ready(ctx context.Context, minFree uint64) (bool, error)
	DeleteInstanceArtifacts(instance *store.Instance) error
}

// Worker executes auto-send runs. A worker must not run concurrently with
// itself.
type Worker struct {
	preferences  preference.Source
	instances    Instances
	forms        Forms
	storage      Storage
	reporter     *report.Reporter
	detector     network.Detector
	notifier     notify.Notifier
	telemetry    telemetry.Recorder
	uploaders    map[preference.Protocol]upload.Factory
	logger       *slog.Logger
	deviceID     string
	language     string
	minFreeBytes uint64
}

func (w *Worker) Run(ctx context.Context) Result {
	runID := xid.New().String()

	ctx = slogx.WithAttrs(ctx, slog.String("run_id", runID))
	ctx = locale.WithLanguage(ctx, w.language)

	result := w.run(ctx, runID)

	w.telemetry.RecordRun(ctx, result.String())
	w.logger.InfoContext(ctx, "run finished", slog.String("result", result.String()))

	return result
}

func (w *Worker) run(ctx context.Context, runID string) Result {
	prefs, err := preference.Load(ctx, w.preferences)
	if err != nil {
		w.logger.ErrorContext(ctx, "could not load preferences", slogx.Error(err))
		return ResultFailure
	}

	forms, err := w.forms.All(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "could not load form catalog", slogx.Error(err))
		return ResultFailure
	}

	resolver := policy.NewResolver(forms)

	switch w.gate(ctx, prefs, resolver) {
	case DecisionFail:
		return ResultFailure
	case DecisionDefer:
		return ResultRetry
	}

	if err := w.recoverInterrupted(ctx); err != nil {
		w.logger.ErrorContext(ctx, "could not recover interrupted submissions", slogx.Error(err))
		return ResultFailure
	}

	finalized, err := w.instances.Finalized(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "could not list finalized instances", slogx.Error(err))
		return ResultFailure
	}

	candidates := resolver.InstancesToAutoSend(finalized, prefs.AutoSendEnabled())
	if len(candidates) == 0 {
		w.logger.DebugContext(ctx, "no instance to send", slog.Int("finalized", len(finalized)))
		return ResultSuccess
	}

	factory, exists := w.uploaders[prefs.Protocol]
	if !exists {
		w.logger.ErrorContext(ctx, "no uploader for protocol", slog.String("protocol", string(prefs.Protocol)))
		return ResultFailure
	}

	runReport := report.New()

	uploader, err := factory(ctx)
	if err != nil {
		if precondition, ok := upload.AsPrecondition(err); ok {
			w.logger.WarnContext(ctx, "run precondition not met", slogx.Error(err))
			runReport.SetRunError(precondition.Message)
			runReport.MarkFailure()
			w.notify(ctx, runReport)
			return ResultFailure
		}

		w.logger.ErrorContext(ctx, "could not create uploader", slogx.Error(err))
		return ResultFailure
	}

	usable, err := upload.ContainerUsable(ctx, uploader)
	if err != nil {
		w.logger.WarnContext(ctx, "could not check submissions container", slogx.Error(err))

		message := i18n.T(ctx, "submission.container_check_failed", i18n.M{"uploader": uploader.Name(), "error": errors.Cause(err).Error()})
		if precondition, ok := upload.AsPrecondition(err); ok {
			message = precondition.Message
		}

		runReport.SetRunError(message)
		runReport.MarkFailure()
		w.notify(ctx, runReport)
		return ResultFailure
	}

	if !usable {
		runReport.SetRunError(i18n.T(ctx, "submission.container_unusable", i18n.M{"uploader": uploader.Name()}))
		runReport.MarkFailure()
		w.notify(ctx, runReport)
		return ResultFailure
	}

	w.logger.InfoContext(ctx, "sending instances", slog.Int("candidates", len(candidates)), slog.String("uploader", uploader.Name()))

	run := upload.NewRun(runID, w.deviceID, prefs)

	return w.submit(ctx, run, uploader, resolver, candidates, runReport)
}

func (w *Worker) gate(ctx context.Context, prefs preference.View, resolver *policy.Resolver) Decision {
	storageReady, err := w.storage.Ready(ctx, w.minFreeBytes)
	if err != nil {
		w.logger.WarnContext(ctx, "could not check storage", slogx.Error(err))
		storageReady = false
	}

	link, err := w.detector.CurrentLink(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "could not detect network link", slogx.Error(err))
		link = network.LinkNone
	}

	mediumAllows := network.MediumAllows(link, prefs.AutoSend)
	anyFormForces := resolver.AnyFormForcesAutoSend()

	decision := Decide(storageReady, mediumAllows, anyFormForces)

	w.logger.DebugContext(ctx, "run gate",
		slog.Bool("storage_ready", storageReady),
		slog.String("link", link.String()),
		slog.String("mode", prefs.AutoSend.String()),
		slog.Bool("medium_allows", mediumAllows),
		slog.Bool("any_form_forces", anyFormForces),
		slog.String("decision", decision.String()),
	)

	return decision
}

// recoverInterrupted puts back in the finalized state the instances left
// in the submitting state by an interrupted process.
func (w *Worker) recoverInterrupted(ctx context.Context) error {
	interrupted, err := w.instances.ByFilter(ctx, "status = ?", store.StatusSubmitting)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, i := range interrupted {
		w.logger.WarnContext(ctx, "recovering interrupted submission", slog.Uint64("instance_id", uint64(i.ID)))

		if err := w.instances.UpdateStatus(ctx, i.ID, store.StatusFinalized); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func NewWorker(preferences preference.Source, instances Instances, forms Forms, storage Storage, reporter *report.Reporter, funcs ...OptionFunc) *Worker {
	opts := NewOptions(funcs...)

	return &Worker{
		preferences:  preferences,
		instances:    instances,
		forms:        forms,
		storage:      storage,
		reporter:     reporter,
		detector:     opts.Detector,
		notifier:     opts.Notifier,
		telemetry:    opts.Telemetry,
		uploaders:    opts.Uploaders,
		logger:       opts.Logger.With("component", "autosend-worker"),
		deviceID:     opts.DeviceID,
		language:     opts.Language,
		minFreeBytes: opts.MinFreeBytes,
	}
}

var _ Instances = &instance.Repository{}
