package instance

import (
	"context"
	"testing"

	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/storetest"
	"github.com/pkg/errors"
)

func TestFinalizedOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New(t))

	incomplete := store.NewInstance("survey", "1", "Survey", "/tmp/a.xml")
	incomplete.Status = store.StatusIncomplete

	instances := []*store.Instance{
		store.NewInstance("survey", "1", "Survey", "/tmp/b.xml", "/tmp/b1.jpg", "/tmp/b2.jpg"),
		incomplete,
		store.NewInstance("census", "2", "Census", "/tmp/c.xml"),
	}

	for _, i := range instances {
		if err := repo.Create(ctx, i); err != nil {
			t.Fatalf("%+v", err)
		}
	}

	finalized, err := repo.Finalized(ctx)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if e, g := 2, len(finalized); e != g {
		t.Fatalf("expected %d finalized instances, got %d", e, g)
	}

	if finalized[0].ID >= finalized[1].ID {
		t.Errorf("expected instances ordered by id, got %d then %d", finalized[0].ID, finalized[1].ID)
	}

	paths := finalized[0].AttachmentPaths()
	if len(paths) != 2 || paths[0] != "/tmp/b1.jpg" || paths[1] != "/tmp/b2.jpg" {
		t.Errorf("unexpected attachment paths %v", paths)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New(t))

	i := store.NewInstance("survey", "1", "Survey", "/tmp/a.xml")
	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("%+v", err)
	}

	if err := repo.UpdateStatus(ctx, i.ID, store.StatusSubmitting); err != nil {
		t.Fatalf("%+v", err)
	}

	if err := repo.UpdateStatus(ctx, i.ID, store.StatusSubmitted); err != nil {
		t.Fatalf("%+v", err)
	}

	// Writing the same terminal status again is a no-op
	if err := repo.UpdateStatus(ctx, i.ID, store.StatusSubmitted); err != nil {
		t.Errorf("expected idempotent write, got %+v", err)
	}

	// Submitted instances are no longer owned by the uploader
	err := repo.UpdateStatus(ctx, i.ID, store.StatusSubmissionFailed)
	if !errors.Is(err, ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}

	reloaded, err := repo.GetByID(ctx, i.ID)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if e, g := store.StatusSubmitted, reloaded.Status; e != g {
		t.Errorf("expected status %s, got %s", e, g)
	}

	if reloaded.LastStatusChangeAt == nil {
		t.Error("expected last status change to be recorded")
	}
}

func TestUpdateStatusIncomplete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New(t))

	i := store.NewInstance("survey", "1", "Survey", "/tmp/a.xml")
	i.Status = store.StatusIncomplete
	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("%+v", err)
	}

	if err := repo.UpdateStatus(ctx, i.ID, store.StatusSubmitted); !errors.Is(err, ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storetest.New(t))

	i := store.NewInstance("survey", "1", "Survey", "/tmp/a.xml", "/tmp/a.jpg")
	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("%+v", err)
	}

	if err := repo.Delete(ctx, i.ID); err != nil {
		t.Fatalf("%+v", err)
	}

	remaining, err := repo.ByIDs(ctx, i.ID)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if len(remaining) != 0 {
		t.Errorf("expected instance to be deleted, got %d rows", len(remaining))
	}
}
