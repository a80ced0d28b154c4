package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobtrack-engine/internal/automation"
	"jobtrack-engine/internal/browser/browsertest"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/guard"
	"jobtrack-engine/internal/secrets"
	"jobtrack-engine/internal/store"
	"jobtrack-engine/internal/store/storetest"
)

type fakeSession struct {
	*browsertest.FakePage
}

func (s *fakeSession) SaveScreenshot(ctx context.Context, name string) (string, error) {
	return "/tmp/" + name + ".png", nil
}

func (s *fakeSession) Close() {}

func searchConfig() func() config.Config {
	var cfg config.Config
	cfg.Automation.Workers = 2
	cfg.Automation.MaxDailyApplications = 10
	cfg.Boards.PNet.Enabled = true
	cfg.Boards.Indeed.Enabled = true
	return func() config.Config { return cfg }
}

// pnetResultsPage fakes a PNet search flow with three result cards.
func pnetResultsPage() *browsertest.FakePage {
	page := browsertest.New()
	page.AddVisible("#keywords-input")
	page.AddVisible("button.search-btn")
	page.Body = `<html><body>
		<div class="job-card"><a class="job-title" href="/jobs/1">Go Developer</a></div>
		<div class="job-card"><a class="job-title" href="/jobs/2">Backend Engineer</a></div>
		<div class="job-card"><a class="job-title" href="/jobs/3">Platform Engineer</a></div>
	</body></html>`
	return page
}

func newSearchSweep(t *testing.T, page *browsertest.FakePage) (*SearchSweep, *[]domain.SiteTarget) {
	t.Helper()
	db := storetest.NewDB(t)
	var queued []domain.SiteTarget

	sweep := &SearchSweep{
		DB:    db,
		Guard: &guard.Guard{DB: db},
		Sessions: func(ctx context.Context) (automation.Session, error) {
			return &fakeSession{FakePage: page}, nil
		},
		Creds: func(userID int64, board string) (secrets.Credentials, error) {
			return secrets.Credentials{Email: "jo@example.com", Password: "pw"}, nil
		},
		Cfg:     searchConfig(),
		Enqueue: func(tg domain.SiteTarget) (string, error) { queued = append(queued, tg); return "task-1", nil },
		now:     func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
	return sweep, &queued
}

func TestSearchSweep_QueuesNewListings(t *testing.T) {
	sweep, queued := newSearchSweep(t, pnetResultsPage())
	ctx := context.Background()

	// The user already applied to the first listing.
	storetest.SeedApplication(t, sweep.DB, 1, "https://www.pnet.co.za/jobs/1")

	if _, err := store.InsertRule(ctx, sweep.DB, domain.AutomationRule{
		UserID: 1, Board: "pnet", SearchKeywords: "golang",
		ApplyAutomatically: true, MaxPerDay: 10, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	st, err := sweep.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Rules != 1 || st.Found != 3 {
		t.Errorf("status = %+v, want 1 rule, 3 found", st)
	}
	if len(*queued) != 2 {
		t.Fatalf("queued %v, want the 2 new listings", *queued)
	}
	for _, tg := range *queued {
		if tg.JobURL == "https://www.pnet.co.za/jobs/1" {
			t.Error("duplicate listing was queued")
		}
		if tg.Board != "pnet" || tg.UserID != 1 {
			t.Errorf("bad target %+v", tg)
		}
	}
}

func TestSearchSweep_RespectsRuleDailyCap(t *testing.T) {
	sweep, queued := newSearchSweep(t, pnetResultsPage())
	ctx := context.Background()

	if _, err := store.InsertRule(ctx, sweep.DB, domain.AutomationRule{
		UserID: 1, Board: "pnet", SearchKeywords: "golang",
		ApplyAutomatically: true, MaxPerDay: 1, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	st, err := sweep.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Found != 3 || st.Queued != 1 {
		t.Errorf("status = %+v, want 3 found and 1 queued", st)
	}
	if len(*queued) != 1 {
		t.Errorf("queued %v, want exactly 1", *queued)
	}
}

func TestSearchSweep_BestMatchSpendsBudgetFirst(t *testing.T) {
	sweep, queued := newSearchSweep(t, pnetResultsPage())
	ctx := context.Background()

	// Only one slot; the engineer listings outrank "Go Developer".
	if _, err := store.InsertRule(ctx, sweep.DB, domain.AutomationRule{
		UserID: 1, Board: "pnet", SearchKeywords: "engineer",
		ApplyAutomatically: true, MaxPerDay: 1, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := sweep.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*queued) != 1 {
		t.Fatalf("queued %v, want exactly 1", *queued)
	}
	if (*queued)[0].JobURL != "https://www.pnet.co.za/jobs/2" {
		t.Errorf("queued %q, want the first engineer listing", (*queued)[0].JobURL)
	}
}

func TestSearchSweep_SearchOnlyRuleQueuesNothing(t *testing.T) {
	sweep, queued := newSearchSweep(t, pnetResultsPage())
	ctx := context.Background()

	if _, err := store.InsertRule(ctx, sweep.DB, domain.AutomationRule{
		UserID: 1, Board: "pnet", SearchKeywords: "golang",
		ApplyAutomatically: false, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	st, err := sweep.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Found != 3 || st.Queued != 0 {
		t.Errorf("status = %+v, want found only", st)
	}
	if len(*queued) != 0 {
		t.Errorf("queued %v, want none", *queued)
	}
}

func TestSearchSweep_RuleFailureIsolated(t *testing.T) {
	sweep, queued := newSearchSweep(t, pnetResultsPage())
	ctx := context.Background()

	// Sessions fail outright; the sweep must record the failure in its
	// status instead of returning an error.
	goodSessions := sweep.Sessions
	sweep.Sessions = func(ctx context.Context) (automation.Session, error) {
		return nil, errors.New("chrome went away")
	}
	if _, err := store.InsertRule(ctx, sweep.DB, domain.AutomationRule{
		UserID: 1, Board: "pnet", SearchKeywords: "golang",
		ApplyAutomatically: true, MaxPerDay: 5, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	st, err := sweep.Run(ctx)
	if err != nil {
		t.Fatalf("Run must not fail outright: %v", err)
	}
	if st.LastError == "" {
		t.Error("failed rule not recorded in status")
	}

	// With sessions healthy again the same sweep works.
	sweep.Sessions = goodSessions
	st, err = sweep.Run(ctx)
	if err != nil || st.Queued == 0 {
		t.Errorf("recovered sweep: status = %+v, err = %v", st, err)
	}
	if len(*queued) == 0 {
		t.Error("nothing queued after recovery")
	}
}

func TestSearchSweep_DisabledBoardSkipped(t *testing.T) {
	sweep, queued := newSearchSweep(t, pnetResultsPage())
	ctx := context.Background()

	if _, err := store.InsertRule(ctx, sweep.DB, domain.AutomationRule{
		UserID: 1, Board: "linkedin", SearchKeywords: "golang",
		ApplyAutomatically: true, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	st, err := sweep.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Found != 0 || st.LastError != "" {
		t.Errorf("status = %+v, want quiet skip", st)
	}
	if len(*queued) != 0 {
		t.Errorf("queued %v, want none", *queued)
	}
}
