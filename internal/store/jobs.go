package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtrack-engine/internal/domain"
)

// GetJobByURL returns the job with the given listing URL, if any.
func GetJobByURL(ctx context.Context, db *sql.DB, url string) (domain.Job, bool, error) {
	var j domain.Job
	err := db.QueryRowContext(ctx, `
SELECT id, company_id, title, description, salary_range, location, work_mode, url, source_board, date_added
FROM jobs WHERE url = ? LIMIT 1;`, url).
		Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.SalaryRange,
			&j.Location, &j.WorkMode, &j.URL, &j.Board, scanTime{&j.DateAdded})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, false, nil
	}
	if err != nil {
		return domain.Job{}, false, fmt.Errorf("lookup job by url: %w", err)
	}
	return j, true, nil
}

// CreateJob inserts a new job listing.
func CreateJob(ctx context.Context, db *sql.DB, j domain.Job) (domain.Job, error) {
	if strings.TrimSpace(j.Title) == "" {
		j.Title = "Job Posting"
	}
	if j.WorkMode == "" {
		j.WorkMode = "unknown"
	}
	if j.Board == "" {
		j.Board = "other"
	}
	j.DateAdded = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
INSERT INTO jobs(company_id, title, description, salary_range, location, work_mode, url, source_board, date_added)
VALUES(?,?,?,?,?,?,?,?,?);`,
		j.CompanyID, j.Title, j.Description, j.SalaryRange, j.Location,
		j.WorkMode, j.URL, j.Board, fmtTime(j.DateAdded))
	if err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	j.ID, _ = res.LastInsertId()
	return j, nil
}

// GetOrCreateJobByURL finds an existing listing by URL or records a new one.
func GetOrCreateJobByURL(ctx context.Context, db *sql.DB, j domain.Job) (domain.Job, error) {
	if strings.TrimSpace(j.URL) == "" {
		return domain.Job{}, errors.New("missing job url")
	}
	existing, ok, err := GetJobByURL(ctx, db, j.URL)
	if err != nil {
		return domain.Job{}, err
	}
	if ok {
		return existing, nil
	}
	return CreateJob(ctx, db, j)
}
