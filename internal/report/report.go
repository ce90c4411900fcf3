// Package report collects the per instance outcomes of a run and formats
// them for the user.
package report

import (
	"maps"
	"slices"

	"github.com/bornholm/autosend/internal/store"
)

type entry struct {
	message     string
	formID      string
	displayName string
}

// RunReport maps each attempted instance to its display message. It lives
// for a single run.
type RunReport struct {
	entries    map[uint]entry
	anyFailure bool
	runError   string
}

// Record stores the message of the instance. The display name and form of
// the instance are kept in case the instance is deleted before the report
// is formatted.
func (r *RunReport) Record(instance *store.Instance, message string) {
	r.entries[instance.ID] = entry{
		message:     message,
		formID:      instance.FormID,
		displayName: instance.DisplayName,
	}
}

func (r *RunReport) MarkFailure() {
	r.anyFailure = true
}

func (r *RunReport) AnyFailure() bool {
	return r.anyFailure
}

// SetRunError records a run wide message, displayed when no instance was
// attempted.
func (r *RunReport) SetRunError(message string) {
	r.runError = message
}

func (r *RunReport) RunError() string {
	return r.runError
}

func (r *RunReport) Len() int {
	return len(r.entries)
}

func (r *RunReport) Message(instanceID uint) (string, bool) {
	e, exists := r.entries[instanceID]
	return e.message, exists
}

// IDs returns the recorded instance ids in ascending order
func (r *RunReport) IDs() []uint {
	return slices.Sorted(maps.Keys(r.entries))
}

func New() *RunReport {
	return &RunReport{
		entries: make(map[uint]entry),
	}
}
