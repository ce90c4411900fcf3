package report

import (
	"context"
	"strings"

	"github.com/bornholm/autosend/internal/store"
	"github.com/invopop/ctxi18n/i18n"
	"github.com/pkg/errors"
)

const entrySeparator = "\n\n"

type Instances interface {
	ByIDs(ctx context.Context, ids ...uint) ([]*store.Instance, error)
}

type Forms interface {
	ByFormID(ctx context.Context, formID string) (*store.Form, error)
}

// Reporter joins a run report with the instance store and the form catalog
// to produce the text shown to the user.
type Reporter struct {
	instances Instances
	forms     Forms
}

// Format returns one "<name> - <message>" paragraph per instance, ordered
// by instance id. The run error is returned when no instance was recorded.
func (r *Reporter) Format(ctx context.Context, report *RunReport) (string, error) {
	if report.Len() == 0 {
		return report.RunError(), nil
	}

	ids := report.IDs()

	instances, err := r.instances.ByIDs(ctx, ids...)
	if err != nil {
		return "", errors.WithStack(err)
	}

	current := make(map[uint]*store.Instance, len(instances))
	for _, i := range instances {
		current[i.ID] = i
	}

	formNames := map[string]string{}

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		e := report.entries[id]

		name := e.displayName
		if instance, exists := current[id]; exists && instance.DisplayName != "" {
			name = instance.DisplayName
		}

		if name == "" {
			name, err = r.formName(ctx, formNames, e.formID)
			if err != nil {
				return "", errors.WithStack(err)
			}
		}

		lines = append(lines, name+" - "+e.message)
	}

	return strings.Join(lines, entrySeparator), nil
}

// Summary returns the localized one word outcome of the run
func (r *Reporter) Summary(ctx context.Context, report *RunReport) string {
	if report.AnyFailure() {
		return i18n.T(ctx, "submission.failure")
	}
	return i18n.T(ctx, "submission.success")
}

func (r *Reporter) formName(ctx context.Context, cache map[string]string, formID string) (string, error) {
	if name, exists := cache[formID]; exists {
		return name, nil
	}

	name := formID

	form, err := r.forms.ByFormID(ctx, formID)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if form != nil && form.DisplayName != "" {
		name = form.DisplayName
	}

	cache[formID] = name

	return name, nil
}

func NewReporter(instances Instances, forms Forms) *Reporter {
	return &Reporter{
		instances: instances,
		forms:     forms,
	}
}
