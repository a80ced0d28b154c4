package guard_test

import (
	"context"
	"testing"
	"time"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/guard"
	"jobtrack-engine/internal/status"
	"jobtrack-engine/internal/store/storetest"
)

func TestDuplicateDetection_Symmetric(t *testing.T) {
	db := storetest.NewDB(t)
	g := &guard.Guard{DB: db}
	ctx := context.Background()

	app := storetest.SeedApplication(t, db, 7, "https://boards.example.com/jobs/42")

	byJob, err := g.IsDuplicateJob(ctx, 7, app.JobID)
	if err != nil {
		t.Fatal(err)
	}
	byURL, err := g.IsDuplicateURL(ctx, 7, "https://boards.example.com/jobs/42")
	if err != nil {
		t.Fatal(err)
	}
	if !byJob || !byURL {
		t.Errorf("duplicate detection asymmetric: byJob=%v byURL=%v", byJob, byURL)
	}

	// Same user, different job: not a duplicate.
	other, err := g.IsDuplicateURL(ctx, 7, "https://boards.example.com/jobs/43")
	if err != nil {
		t.Fatal(err)
	}
	if other {
		t.Error("different job flagged as duplicate")
	}

	// Different user, same job: not a duplicate.
	if dup, _ := g.IsDuplicateJob(ctx, 8, app.JobID); dup {
		t.Error("another user's application flagged as duplicate")
	}
}

func TestDuplicateURL_EmptyURL(t *testing.T) {
	db := storetest.NewDB(t)
	g := &guard.Guard{DB: db}
	if dup, err := g.IsDuplicateURL(context.Background(), 1, ""); err != nil || dup {
		t.Errorf("empty URL should never be a duplicate (dup=%v err=%v)", dup, err)
	}
}

func TestDailyAutomatedCount(t *testing.T) {
	db := storetest.NewDB(t)
	g := &guard.Guard{DB: db}
	tracker := &status.Tracker{DB: db}
	ctx := context.Background()

	// Two automated applications applied today, one manual, one automated
	// but never applied.
	for i, method := range []string{domain.MethodAutomated, domain.MethodAutomated, domain.MethodManual} {
		app := storetest.SeedApplication(t, db, 7, "https://jobs.example.com/"+string(rune('a'+i)))
		_, err := db.Exec(`UPDATE applications SET application_method = ? WHERE id = ?;`, method, app.ID)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := tracker.Transition(ctx, app.ID, status.Applied, "automation", ""); err != nil {
			t.Fatal(err)
		}
	}
	storetest.SeedApplication(t, db, 7, "https://jobs.example.com/unapplied")

	n, err := g.DailyAutomatedCount(ctx, 7, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("daily automated count = %d, want 2 (manual and unapplied must not count)", n)
	}

	// A different day counts nothing.
	n, err = g.DailyAutomatedCount(ctx, 7, time.Now().AddDate(0, 0, -2))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count for another day = %d, want 0", n)
	}
}

func TestDailyAutomatedCount_OtherUser(t *testing.T) {
	db := storetest.NewDB(t)
	g := &guard.Guard{DB: db}
	tracker := &status.Tracker{DB: db}
	ctx := context.Background()

	app := storetest.SeedApplication(t, db, 7, "https://jobs.example.com/x")
	if _, err := db.Exec(`UPDATE applications SET application_method = 'automated' WHERE id = ?;`, app.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.Transition(ctx, app.ID, status.Applied, "automation", ""); err != nil {
		t.Fatal(err)
	}

	if n, _ := g.DailyAutomatedCount(ctx, 8, time.Now()); n != 0 {
		t.Errorf("user 8 count = %d, want 0", n)
	}
}
