package upload

import (
	"context"

	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/repository/instance"
	"github.com/pkg/errors"
)

// StatusWriter implements the durable status writes shared by the
// back-ends.
type StatusWriter struct {
	instances *instance.Repository
}

func (w *StatusWriter) MarkSuccess(ctx context.Context, inst *store.Instance) error {
	return w.write(ctx, inst, store.StatusSubmitted)
}

func (w *StatusWriter) MarkFailure(ctx context.Context, inst *store.Instance) error {
	return w.write(ctx, inst, store.StatusSubmissionFailed)
}

func (w *StatusWriter) write(ctx context.Context, inst *store.Instance, status store.InstanceStatus) error {
	if err := w.instances.UpdateStatus(ctx, inst.ID, status); err != nil {
		return errors.Wrapf(err, "could not mark instance %d as %s", inst.ID, status)
	}

	inst.Status = status

	return nil
}

func NewStatusWriter(instances *instance.Repository) *StatusWriter {
	return &StatusWriter{
		instances: instances,
	}
}
