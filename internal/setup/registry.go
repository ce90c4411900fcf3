package setup

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotRegistered = errors.New("not registered")

// Factory builds a service from a URL whose scheme selects the
// implementation.
type Factory[T any] func(ctx context.Context, u *url.URL) (T, error)

type Registry[T any] struct {
	mappings map[string]Factory[T]
}

func (r *Registry[T]) Register(scheme string, factory Factory[T]) {
	r.mappings[strings.ToLower(scheme)] = factory
}

func (r *Registry[T]) Schemes() []string {
	return slices.Sorted(maps.Keys(r.mappings))
}

func (r *Registry[T]) From(ctx context.Context, rawURL string) (T, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return *new(T), errors.Wrapf(err, "could not parse url '%s'", rawURL)
	}

	factory, exists := r.mappings[strings.ToLower(u.Scheme)]
	if !exists {
		return *new(T), errors.Wrapf(ErrNotRegistered, "scheme '%s' not found (available: %s)", u.Scheme, strings.Join(r.Schemes(), ", "))
	}

	value, err := factory(ctx, u)
	if err != nil {
		return *new(T), errors.WithStack(err)
	}

	return value, nil
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		mappings: make(map[string]Factory[T]),
	}
}
