package locale

import (
	"context"
	"testing"

	ctxi18n "github.com/invopop/ctxi18n/i18n"
)

func TestWithLanguage(t *testing.T) {
	type testCase struct {
		Lang     string
		Expected string
	}

	testCases := []testCase{
		{Lang: "en", Expected: "Success"},
		{Lang: "fr", Expected: "Succès"},
		{Lang: "de", Expected: "Success"},
	}

	for _, tc := range testCases {
		ctx := WithLanguage(context.Background(), tc.Lang)
		if e, g := tc.Expected, ctxi18n.T(ctx, "submission.success"); e != g {
			t.Errorf("%s: expected '%s', got '%s'", tc.Lang, e, g)
		}
	}

	ctx := WithLanguage(context.Background(), "en")
	if e, g := "Server error 503, the submission will be retried", ctxi18n.T(ctx, "server.server_error", ctxi18n.M{"status": 503}); e != g {
		t.Errorf("expected '%s', got '%s'", e, g)
	}
}
