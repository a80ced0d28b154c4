// Package storetest opens throwaway sqlite databases for package tests.
package storetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/store"
)

// NewDB returns a migrated sqlite database in the test's temp dir.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db.Pool); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db.Pool
}

// SeedApplication creates a company, a job with the given URL and an
// application for the user, returning the application.
func SeedApplication(t *testing.T, db *sql.DB, userID int64, jobURL string) domain.Application {
	t.Helper()
	ctx := context.Background()

	co, err := store.GetOrCreateCompany(ctx, db, domain.Company{Name: "Acme " + jobURL})
	if err != nil {
		t.Fatalf("seed company: %v", err)
	}
	job, err := store.CreateJob(ctx, db, domain.Job{
		CompanyID: co.ID,
		Title:     "Backend Engineer",
		URL:       jobURL,
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	app, err := store.CreateApplication(ctx, db, domain.Application{
		UserID:    userID,
		JobID:     job.ID,
		CompanyID: co.ID,
	}, "test")
	if err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}
