// Package policy decides which finalized instances are eligible for
// auto-send, combining the device-wide preference with per-form
// overrides.
package policy

import (
	"github.com/bornholm/autosend/internal/store"
)

// Resolver is built from a snapshot of the form catalog and does no I/O.
type Resolver struct {
	forms []*store.Form
	byID  map[string]*store.Form
}

// FormShouldAutoSend returns the form-level override when set, the
// device-wide setting otherwise. Unknown forms are never auto-sent.
func (r *Resolver) FormShouldAutoSend(formID string, globalEnabled bool) bool {
	form, exists := r.byID[formID]
	if !exists {
		return false
	}

	if form.AutoSend == nil {
		return globalEnabled
	}

	return *form.AutoSend
}

// AnyFormForcesAutoSend reports whether at least one form requires its
// submissions to be sent whatever the device settings.
func (r *Resolver) AnyFormForcesAutoSend() bool {
	for _, f := range r.forms {
		if f.AutoSend != nil && *f.AutoSend {
			return true
		}
	}
	return false
}

// InstancesToAutoSend filters the finalized instances down to those whose
// form should be auto-sent. Input order is preserved.
func (r *Resolver) InstancesToAutoSend(finalized []*store.Instance, globalEnabled bool) []*store.Instance {
	eligible := make([]*store.Instance, 0, len(finalized))
	for _, i := range finalized {
		if i.Status != store.StatusFinalized {
			continue
		}
		if r.FormShouldAutoSend(i.FormID, globalEnabled) {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// FormShouldAutoDelete reports whether a successfully sent instance of the
// form must be deleted: either the device-wide setting or the form asks
// for it.
func (r *Resolver) FormShouldAutoDelete(formID string, deleteAfterSend bool) bool {
	if deleteAfterSend {
		return true
	}

	form, exists := r.byID[formID]
	if !exists {
		return false
	}

	return form.AutoDelete != nil && *form.AutoDelete
}

// NewResolver indexes the given forms. When several forms share a form id,
// the last one in the slice wins.
func NewResolver(forms []*store.Form) *Resolver {
	byID := make(map[string]*store.Form, len(forms))
	for _, f := range forms {
		byID[f.FormID] = f
	}

	return &Resolver{
		forms: forms,
		byID:  byID,
	}
}
