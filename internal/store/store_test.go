package store_test

import (
	"context"
	"testing"

	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/storetest"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	st := storetest.New(t)

	errBoom := errors.New("boom")

	calls := 0
	err := st.WithRetry(context.Background(), func(ctx context.Context, db *gorm.DB) error {
		calls++
		return errBoom
	}, store.CodeBusy, store.CodeLocked)

	if !errors.Is(err, errBoom) {
		t.Errorf("expected errBoom, got %v", err)
	}

	if e, g := 1, calls; e != g {
		t.Errorf("expected %d call, got %d", e, g)
	}
}

func TestWithRetryRollsBack(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)

	err := st.WithRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Create(&store.Setting{Name: "autosend", Value: "wifi_only"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected an error")
	}

	var count int64
	err = st.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		return db.Model(&store.Setting{}).Count(&count).Error
	})
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if count != 0 {
		t.Errorf("expected rolled back transaction, got %d settings", count)
	}
}

func TestPing(t *testing.T) {
	if err := storetest.New(t).Ping(context.Background()); err != nil {
		t.Errorf("%+v", err)
	}
}
