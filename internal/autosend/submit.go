package autosend

import (
	"context"
	"log/slog"

	"github.com/bornholm/autosend/internal/policy"
	"github.com/bornholm/autosend/internal/report"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/repository/instance"
	"github.com/bornholm/autosend/internal/telemetry"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/pkg/errors"
)

// submit sends the candidates one after the other. The candidate list is
// a snapshot: instances finalized meanwhile wait for the next run.
func (w *Worker) submit(ctx context.Context, run *upload.Run, uploader upload.Uploader, resolver *policy.Resolver, candidates []*store.Instance, runReport *report.RunReport) Result {
	for _, inst := range candidates {
		logger := w.logger.With(slog.Uint64("instance_id", uint64(inst.ID)), slog.String("form_id", inst.FormID))

		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "run cancelled, remaining instances are deferred")
			w.notify(ctx, runReport)
			return ResultFailure
		}

		if reason, skip := upload.SkipReason(ctx, uploader, run, inst); skip {
			logger.InfoContext(ctx, "instance skipped", slog.String("reason", reason))
			runReport.Record(inst, reason)
			continue
		}

		if err := w.instances.UpdateStatus(ctx, inst.ID, store.StatusSubmitting); err != nil {
			if errors.Is(err, instance.ErrStatusConflict) {
				logger.WarnContext(ctx, "instance changed since enumeration, skipping", slogx.Error(err))
				continue
			}

			logger.ErrorContext(ctx, "could not mark instance as submitting", slogx.Error(err))
			w.notify(ctx, runReport)
			return ResultFailure
		}

		outcome := uploader.UploadOne(ctx, run, inst)

		if !outcome.Success && ctx.Err() != nil {
			logger.WarnContext(ctx, "run cancelled during submission")
			w.restore(ctx, logger, inst)
			w.notify(ctx, runReport)
			return ResultFailure
		}

		runReport.Record(inst, outcome.Message)

		// The in-flight submission is completed even if the run is cancelled
		writeCtx := context.WithoutCancel(ctx)

		switch {
		case outcome.Success:
			w.markSuccess(writeCtx, logger, uploader, resolver, run, inst, runReport)

		case outcome.Skipped:
			logger.InfoContext(ctx, "instance skipped", slog.String("reason", outcome.Message))
			w.restore(ctx, logger, inst)

		default:
			logger.InfoContext(ctx, "instance submission failed", slog.String("reason", outcome.Message), slog.Bool("fatal", outcome.Fatal))

			if err := uploader.MarkFailure(writeCtx, inst); err != nil {
				logger.ErrorContext(ctx, "could not mark instance as failed", slogx.Error(err))
			}

			runReport.MarkFailure()
		}

		if outcome.Fatal {
			logger.WarnContext(ctx, "fatal submission error, aborting run", slog.Bool("auth_required", outcome.AuthRequired))
			w.notify(ctx, runReport)
			return ResultFailure
		}
	}

	w.notify(ctx, runReport)

	return ResultSuccess
}

func (w *Worker) markSuccess(ctx context.Context, logger *slog.Logger, uploader upload.Uploader, resolver *policy.Resolver, run *upload.Run, inst *store.Instance, runReport *report.RunReport) {
	if err := uploader.MarkSuccess(ctx, inst); err != nil {
		logger.ErrorContext(ctx, "could not mark instance as submitted", slogx.Error(err))
		runReport.MarkFailure()
		return
	}

	w.telemetry.Record(ctx, telemetry.CategorySubmission, uploader.Name())

	if !resolver.FormShouldAutoDelete(inst.FormID, run.Preferences.DeleteAfterSend) {
		return
	}

	// Deletion is best effort: the instance is already submitted
	if err := w.storage.DeleteInstanceArtifacts(inst); err != nil {
		logger.WarnContext(ctx, "could not delete instance files", slogx.Error(err))
	}

	if err := w.instances.Delete(ctx, inst.ID); err != nil {
		logger.WarnContext(ctx, "could not delete instance", slogx.Error(err))
		return
	}

	logger.DebugContext(ctx, "instance deleted after submission")
}

// restore gives the instance back to the finalized state so that a future
// run attempts it again.
func (w *Worker) restore(ctx context.Context, logger *slog.Logger, inst *store.Instance) {
	if err := w.instances.UpdateStatus(context.WithoutCancel(ctx), inst.ID, store.StatusFinalized); err != nil {
		logger.ErrorContext(ctx, "could not restore instance status", slogx.Error(err))
		return
	}

	inst.Status = store.StatusFinalized
}

func (w *Worker) notify(ctx context.Context, runReport *report.RunReport) {
	if runReport.Len() == 0 && runReport.RunError() == "" {
		return
	}

	message, err := w.reporter.Format(context.WithoutCancel(ctx), runReport)
	if err != nil {
		w.logger.ErrorContext(ctx, "could not format run report", slogx.Error(err))
		return
	}

	w.notifier.Show(ctx, w.reporter.Summary(ctx, runReport), message, runReport.AnyFailure())
}
