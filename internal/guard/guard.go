// Package guard holds the pre-flight checks that run before any browser
// session is touched: duplicate detection and the per-user daily cap on
// automated submissions.
//
// Both checks are advisory reads with no locking. Two concurrent tasks for
// the same user and job can both pass before either writes; a rare
// duplicate submission is logged, not prevented.
package guard

import (
	"context"
	"database/sql"
	"time"

	"jobtrack-engine/internal/store"
)

type Guard struct {
	DB *sql.DB
	// Loc is the user-facing time zone for the daily window. Defaults to UTC.
	Loc *time.Location
}

func (g *Guard) location() *time.Location {
	if g.Loc != nil {
		return g.Loc
	}
	return time.UTC
}

// IsDuplicateJob reports whether the user already has an application for
// this job.
func (g *Guard) IsDuplicateJob(ctx context.Context, userID, jobID int64) (bool, error) {
	return store.ApplicationExists(ctx, g.DB, userID, jobID)
}

// IsDuplicateURL reports whether the user already has an application for a
// job with this listing URL.
func (g *Guard) IsDuplicateURL(ctx context.Context, userID int64, jobURL string) (bool, error) {
	return store.ApplicationExistsForURL(ctx, g.DB, userID, jobURL)
}

// DailyAutomatedCount counts automated applications whose applied_date
// falls on the given calendar day in the guard's time zone. Manual
// applications never contribute.
func (g *Guard) DailyAutomatedCount(ctx context.Context, userID int64, day time.Time) (int, error) {
	loc := g.location()
	d := day.In(loc)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	to := from.Add(24 * time.Hour)
	return store.CountAutomatedApplied(ctx, g.DB, userID, from, to)
}
