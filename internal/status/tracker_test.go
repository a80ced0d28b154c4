package status_test

import (
	"context"
	"errors"
	"testing"

	"jobtrack-engine/internal/status"
	"jobtrack-engine/internal/store"
	"jobtrack-engine/internal/store/storetest"
)

func TestTransition_RejectsIllegalMove(t *testing.T) {
	db := storetest.NewDB(t)
	app := storetest.SeedApplication(t, db, 1, "https://example.com/jobs/1")
	tracker := &status.Tracker{DB: db}
	ctx := context.Background()

	before, _ := store.CountActivities(ctx, db, app.ID)

	_, err := tracker.Transition(ctx, app.ID, status.Offer, "tester", "")
	var te *status.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.Error() != "cannot transition from saved to offer" {
		t.Errorf("unexpected message: %s", te.Error())
	}

	// Nothing may have changed.
	got, err := store.GetApplication(ctx, db, app.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != status.Saved {
		t.Errorf("status mutated to %s on rejected transition", got.Status)
	}
	after, _ := store.CountActivities(ctx, db, app.ID)
	if after != before {
		t.Errorf("activity count changed on rejected transition: %d -> %d", before, after)
	}
}

func TestTransition_HappyPath(t *testing.T) {
	db := storetest.NewDB(t)
	app := storetest.SeedApplication(t, db, 1, "https://example.com/jobs/2")
	tracker := &status.Tracker{DB: db}
	ctx := context.Background()

	before, _ := store.CountActivities(ctx, db, app.ID)

	got, err := tracker.Transition(ctx, app.ID, status.Applied, "tester", "sent via portal")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if got.Status != status.Applied {
		t.Errorf("status = %s, want applied", got.Status)
	}
	if got.AppliedDate == nil {
		t.Error("applied_date not stamped on first move into applied")
	}

	after, _ := store.CountActivities(ctx, db, app.ID)
	if after != before+1 {
		t.Errorf("expected exactly one new activity, got %d", after-before)
	}

	acts, err := store.ListActivities(ctx, db, app.ID)
	if err != nil {
		t.Fatal(err)
	}
	last := acts[len(acts)-1]
	if last.Description != "Status changed from saved to applied. Notes: sent via portal" {
		t.Errorf("unexpected activity description: %q", last.Description)
	}
}

func TestTransition_AppliedDateSetOnce(t *testing.T) {
	db := storetest.NewDB(t)
	app := storetest.SeedApplication(t, db, 1, "https://example.com/jobs/3")
	tracker := &status.Tracker{DB: db}
	ctx := context.Background()

	first, err := tracker.Transition(ctx, app.ID, status.Applied, "tester", "")
	if err != nil {
		t.Fatal(err)
	}
	stamp := *first.AppliedDate

	// applied -> screening -> back is illegal, but applied -> applied is a
	// legal no-op and must not restamp.
	second, err := tracker.Transition(ctx, app.ID, status.Applied, "tester", "")
	if err != nil {
		t.Fatal(err)
	}
	if second.AppliedDate == nil || !second.AppliedDate.Equal(stamp) {
		t.Error("applied_date must be set at most once")
	}
}

func TestTransition_ChainScenario(t *testing.T) {
	db := storetest.NewDB(t)
	app := storetest.SeedApplication(t, db, 1, "https://example.com/jobs/4")
	tracker := &status.Tracker{DB: db}
	ctx := context.Background()

	steps := []string{status.Applied, status.InterviewScheduled, status.Interviewed, status.Offer, status.Accepted}
	for _, s := range steps {
		got, err := tracker.Transition(ctx, app.ID, s, "tester", "")
		if err != nil {
			t.Fatalf("transition to %s failed: %v", s, err)
		}
		if got.Status != s {
			t.Fatalf("status = %s, want %s", got.Status, s)
		}
	}

	// accepted only allows withdrawn
	if _, err := tracker.Transition(ctx, app.ID, status.Screening, "tester", ""); err == nil {
		t.Error("accepted -> screening should be rejected")
	}
}

func TestTransition_UnknownTarget(t *testing.T) {
	db := storetest.NewDB(t)
	app := storetest.SeedApplication(t, db, 1, "https://example.com/jobs/5")
	tracker := &status.Tracker{DB: db}

	if _, err := tracker.Transition(context.Background(), app.ID, "archived", "tester", ""); err == nil {
		t.Error("unknown status should be rejected")
	}
}
