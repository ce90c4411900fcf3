package upload

import (
	"net/http"
	"testing"

	"github.com/bornholm/autosend/internal/preference"
)

func TestRemap(t *testing.T) {
	remap := NewRemap()

	if e, g := "https://example.org/submission", remap.Resolve("https://example.org/submission"); e != g {
		t.Errorf("expected unknown url to resolve to itself, got '%s'", g)
	}

	remap.Learn("https://example.org/submission", "https://example.org/submission")
	if _, exists := remap.Lookup("https://example.org/submission"); !exists {
		t.Error("expected identity mapping to be recorded")
	}

	remap.Learn("https://example.org/submission", "https://collect.example.org/submission")
	if e, g := "https://collect.example.org/submission", remap.Resolve("https://example.org/submission"); e != g {
		t.Errorf("expected '%s', got '%s'", e, g)
	}

	if e, g := 0, NewRun("run", "device", preference.View{}).Remap.Len(); e != g {
		t.Errorf("expected fresh run to start with an empty remap, got %d entries", g)
	}
}

type headerAuthorization string

func (a headerAuthorization) Apply(req *http.Request) error {
	req.Header.Set("Authorization", string(a))
	return nil
}

func TestAuthorizations(t *testing.T) {
	run := NewRun("run", "device", preference.View{})

	if _, exists := run.Auth.Lookup("collect.example.org"); exists {
		t.Fatal("expected fresh run to start without authorization")
	}

	run.Auth.Remember("collect.example.org", headerAuthorization("Basic abc"))

	auth, exists := run.Auth.Lookup("collect.example.org")
	if !exists {
		t.Fatal("expected authorization to be remembered")
	}

	req, err := http.NewRequest(http.MethodPost, "https://collect.example.org/submission", nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if err := auth.Apply(req); err != nil {
		t.Fatalf("%+v", err)
	}

	if e, g := "Basic abc", req.Header.Get("Authorization"); e != g {
		t.Errorf("expected authorization header '%s', got '%s'", e, g)
	}

	if _, exists := run.Auth.Lookup("other.example.org"); exists {
		t.Error("expected authorization to be scoped to its host")
	}

	run.Auth.Forget("collect.example.org")

	if _, exists := run.Auth.Lookup("collect.example.org"); exists {
		t.Error("expected authorization to be forgotten")
	}
}
