// Package seed applies one-shot content, such as a form catalog, to the
// store.
package seed

import "github.com/bornholm/autosend/internal/store"

type Repository struct {
	store *store.Store
}

func NewRepository(store *store.Store) *Repository {
	return &Repository{
		store: store,
	}
}
