package upload

import "github.com/pkg/errors"

// ErrContainerUnusable is returned when the destination container of a
// back-end is missing or ambiguous.
var ErrContainerUnusable = errors.New("submissions container unusable")

// PreconditionError prevents a run from starting. Its message is meant to
// be displayed to the user.
type PreconditionError struct {
	Message string
	Cause   error
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func (e *PreconditionError) Unwrap() error {
	return e.Cause
}

func NewPreconditionError(message string) *PreconditionError {
	return &PreconditionError{Message: message}
}

// AsPrecondition extracts the precondition error wrapped in err, if any
func AsPrecondition(err error) (*PreconditionError, bool) {
	var precondition *PreconditionError
	if errors.As(err, &precondition) {
		return precondition, true
	}
	return nil, false
}
