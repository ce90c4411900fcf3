// Package setup builds the application services from the configuration.
// Each service is created once per configuration and shared by the
// services depending on it.
package setup

import (
	"context"
	"sync"

	"github.com/bornholm/autosend/internal/config"
	"github.com/pkg/errors"
)

type cached[T any] struct {
	once    sync.Once
	service T
	err     error
}

func createFromConfigOnce[T any](factory func(ctx context.Context, conf *config.Config) (T, error)) func(ctx context.Context, conf *config.Config) (T, error) {
	var (
		mutex    sync.Mutex
		services = map[*config.Config]*cached[T]{}
	)

	return func(ctx context.Context, conf *config.Config) (T, error) {
		mutex.Lock()
		entry, exists := services[conf]
		if !exists {
			entry = &cached[T]{}
			services[conf] = entry
		}
		mutex.Unlock()

		// Factories may depend on other cached factories, so the lock
		// is not held while building.
		entry.once.Do(func() {
			entry.service, entry.err = factory(ctx, conf)
			if entry.err != nil {
				entry.err = errors.WithStack(entry.err)
			}
		})

		return entry.service, entry.err
	}
}
