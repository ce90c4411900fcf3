package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
)

func TestContentType(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorage(dir, slogx.NewTestLogger(t))

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	if err := os.WriteFile(filepath.Join(dir, "signature.bin"), png, 0640); err != nil {
		t.Fatalf("%+v", err)
	}

	type testCase struct {
		Path     string
		Expected string
	}

	testCases := []testCase{
		{Path: "submission.xml", Expected: "text/xml"},
		{Path: "photo.JPG", Expected: "image/jpeg"},
		{Path: "voice.m4a", Expected: "audio/mp4"},
		{Path: "signature.bin", Expected: "image/png"},
		{Path: "missing.unknown", Expected: defaultContentType},
	}

	for _, tc := range testCases {
		if e, g := tc.Expected, storage.ContentType(tc.Path); e != g {
			t.Errorf("%s: expected content type '%s', got '%s'", tc.Path, e, g)
		}
	}
}

func TestDeleteInstanceArtifacts(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorage(dir, slogx.NewTestLogger(t))

	instanceDir := filepath.Join(dir, "survey_2024")
	if err := os.MkdirAll(instanceDir, 0750); err != nil {
		t.Fatalf("%+v", err)
	}

	for _, name := range []string{"submission.xml", "photo.jpg"} {
		if err := os.WriteFile(filepath.Join(instanceDir, name), []byte(name), 0640); err != nil {
			t.Fatalf("%+v", err)
		}
	}

	instance := store.NewInstance("survey", "1", "Survey", "survey_2024/submission.xml", "survey_2024/photo.jpg", "survey_2024/missing.wav")

	if err := storage.DeleteInstanceArtifacts(instance); err != nil {
		t.Fatalf("%+v", err)
	}

	if _, err := os.Stat(instanceDir); !os.IsNotExist(err) {
		t.Errorf("expected instance directory to be removed, got %v", err)
	}
}

func TestReady(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorage(dir, slogx.NewTestLogger(t))

	ready, err := storage.Ready(context.Background(), 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if !ready {
		t.Error("expected storage to be ready")
	}

	missing := NewStorage(filepath.Join(dir, "missing"), slogx.NewTestLogger(t))

	ready, err = missing.Ready(context.Background(), 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if ready {
		t.Error("expected missing storage not to be ready")
	}
}
