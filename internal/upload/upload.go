// Package upload defines the contract shared by the submission back-ends
// and the values exchanged with the submission loop.
package upload

import (
	"context"

	"github.com/bornholm/autosend/internal/store"
)

// Uploader transmits one instance at a time. Implementations never write
// the instance status themselves during UploadOne; the loop does it
// through MarkSuccess and MarkFailure.
type Uploader interface {
	// Name identifies the back-end in telemetry
	Name() string
	TargetURL(ctx context.Context, run *Run, instance *store.Instance) (string, error)
	UploadOne(ctx context.Context, run *Run, instance *store.Instance) Outcome
	MarkSuccess(ctx context.Context, instance *store.Instance) error
	MarkFailure(ctx context.Context, instance *store.Instance) error
}

// ContainerChecker is implemented by back-ends that need a destination
// container to exist before any instance is sent. Back-ends without it are
// always usable.
type ContainerChecker interface {
	SubmissionsContainerUsable(ctx context.Context) (bool, error)
}

// Skipper is implemented by back-ends that can tell, before any exchange,
// that an instance cannot be sent. Skipped instances keep their status.
type Skipper interface {
	SkipReason(ctx context.Context, run *Run, instance *store.Instance) (string, bool)
}

// Factory builds the uploader for a run. It returns a *PreconditionError
// when the back-end cannot be used at all.
type Factory func(ctx context.Context) (Uploader, error)

// ContainerUsable calls the optional container check of the uploader
func ContainerUsable(ctx context.Context, uploader Uploader) (bool, error) {
	checker, ok := uploader.(ContainerChecker)
	if !ok {
		return true, nil
	}

	return checker.SubmissionsContainerUsable(ctx)
}

// SkipReason calls the optional skip check of the uploader
func SkipReason(ctx context.Context, uploader Uploader, run *Run, instance *store.Instance) (string, bool) {
	skipper, ok := uploader.(Skipper)
	if !ok {
		return "", false
	}

	return skipper.SkipReason(ctx, run, instance)
}
