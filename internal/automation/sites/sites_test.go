package sites

import (
	"testing"

	"jobtrack-engine/internal/automation/formfill"
	"jobtrack-engine/internal/browser/browsertest"
	"jobtrack-engine/internal/secrets"
)

func testDeps(page *browsertest.FakePage) Deps {
	filler := formfill.New(page, map[string]string{"email": "jo@example.com", "name": "Jo"})
	filler.Settle = 0
	return Deps{
		Page:   page,
		Filler: filler,
		Creds:  secrets.Credentials{Email: "jo@example.com", Password: "hunter2"},
	}
}

func TestFor(t *testing.T) {
	for _, board := range []string{"pnet", "careers24", "linkedin", "indeed"} {
		a, ok := For(board, testDeps(browsertest.New()))
		if !ok {
			t.Fatalf("no adapter for %s", board)
		}
		if a.Board() != board {
			t.Errorf("Board() = %q, want %q", a.Board(), board)
		}
	}
	if _, ok := For("monster", testDeps(browsertest.New())); ok {
		t.Error("unknown board should not resolve")
	}
}

func TestSupported(t *testing.T) {
	want := []string{"careers24", "indeed", "linkedin", "pnet"}
	got := Supported()
	if len(got) != len(want) {
		t.Fatalf("Supported() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Supported()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
