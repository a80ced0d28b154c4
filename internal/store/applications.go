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

const appCols = `id, user_id, job_id, company_id, status, applied_date,
application_method, notes, automation_log, follow_up_date, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (domain.Application, error) {
	var a domain.Application
	var applied, followUp sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.JobID, &a.CompanyID, &a.Status,
		&applied, &a.Method, &a.Notes, &a.AutomationLog, &followUp,
		scanTime{&a.CreatedAt}, scanTime{&a.UpdatedAt})
	if err != nil {
		return domain.Application{}, err
	}
	a.AppliedDate = parseNullTime(applied)
	a.FollowUpDate = parseNullTime(followUp)
	return a, nil
}

// GetApplication returns one application by id.
func GetApplication(ctx context.Context, db *sql.DB, id int64) (domain.Application, error) {
	a, err := scanApplication(db.QueryRowContext(ctx,
		`SELECT `+appCols+` FROM applications WHERE id = ? LIMIT 1;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, fmt.Errorf("application %d not found: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// ListApplications returns a user's applications, newest first.
func ListApplications(ctx context.Context, db *sql.DB, userID int64) ([]domain.Application, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+appCols+` FROM applications WHERE user_id = ? ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateApplication inserts a new application and its creation activity in
// one transaction, so no application exists without its first log entry.
func CreateApplication(ctx context.Context, db *sql.DB, a domain.Application, actor string) (domain.Application, error) {
	if a.Status == "" {
		a.Status = "saved"
	}
	if a.Method == "" {
		a.Method = domain.MethodManual
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
INSERT INTO applications(user_id, job_id, company_id, status, applied_date,
  application_method, notes, automation_log, follow_up_date, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
		a.UserID, a.JobID, a.CompanyID, a.Status, nullTime(a.AppliedDate),
		a.Method, a.Notes, a.AutomationLog, nullTime(a.FollowUpDate),
		fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt))
	if err != nil {
		return domain.Application{}, fmt.Errorf("insert application: %w", err)
	}
	a.ID, _ = res.LastInsertId()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO application_activities(application_id, activity_type, description, actor, created_at)
VALUES(?,?,?,?,?);`,
		a.ID, domain.ActivityCreated, "Application created", actor, fmtTime(now)); err != nil {
		return domain.Application{}, fmt.Errorf("insert creation activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Application{}, err
	}
	return a, nil
}

// ApplicationExists reports whether the user already has an application for
// this job.
func ApplicationExists(ctx context.Context, db *sql.DB, userID, jobID int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `
SELECT 1 FROM applications WHERE user_id = ? AND job_id = ? LIMIT 1;`, userID, jobID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate by job: %w", err)
	}
	return true, nil
}

// ApplicationExistsForURL reports whether the user already has an
// application whose job carries the given listing URL.
func ApplicationExistsForURL(ctx context.Context, db *sql.DB, userID int64, url string) (bool, error) {
	if strings.TrimSpace(url) == "" {
		return false, nil
	}
	var one int
	err := db.QueryRowContext(ctx, `
SELECT 1
FROM applications a
JOIN jobs j ON j.id = a.job_id
WHERE a.user_id = ? AND j.url = ?
LIMIT 1;`, userID, url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate by url: %w", err)
	}
	return true, nil
}

// CountAutomatedApplied counts automated applications whose applied_date
// falls inside [from, to).
func CountAutomatedApplied(ctx context.Context, db *sql.DB, userID int64, from, to time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM applications
WHERE user_id = ?
  AND application_method = ?
  AND applied_date IS NOT NULL
  AND applied_date >= ?
  AND applied_date < ?;`,
		userID, domain.MethodAutomated, fmtTime(from), fmtTime(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count automated applications: %w", err)
	}
	return n, nil
}

// AppendAutomationLog adds one line to the application's automation audit
// trail.
func AppendAutomationLog(ctx context.Context, db *sql.DB, appID int64, line string) error {
	stamp := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
UPDATE applications
SET automation_log = automation_log || ? , updated_at = ?
WHERE id = ?;`,
		stamp+" "+line+"\n", stamp, appID)
	if err != nil {
		return fmt.Errorf("append automation log: %w", err)
	}
	return nil
}

// SetFollowUpDate records when the user should chase this application.
func SetFollowUpDate(ctx context.Context, db *sql.DB, appID int64, when time.Time) error {
	_, err := db.ExecContext(ctx, `
UPDATE applications SET follow_up_date = ?, updated_at = ? WHERE id = ?;`,
		fmtTime(when), fmtTime(time.Now()), appID)
	if err != nil {
		return fmt.Errorf("set follow-up date: %w", err)
	}
	return nil
}

// ClearFollowUpDate removes the reminder after it has been delivered.
func ClearFollowUpDate(ctx context.Context, db *sql.DB, appID int64) error {
	_, err := db.ExecContext(ctx, `
UPDATE applications SET follow_up_date = NULL, updated_at = ? WHERE id = ?;`,
		fmtTime(time.Now()), appID)
	if err != nil {
		return fmt.Errorf("clear follow-up date: %w", err)
	}
	return nil
}

// ListDueFollowUps returns applications whose follow-up date has passed and
// that are still in a status worth chasing.
func ListDueFollowUps(ctx context.Context, db *sql.DB, asOf time.Time) ([]domain.Application, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+appCols+`
FROM applications
WHERE follow_up_date IS NOT NULL
  AND follow_up_date <= ?
  AND status IN ('applied', 'screening')
ORDER BY follow_up_date ASC;`, fmtTime(asOf))
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// StatusSummary counts a user's applications per status.
func StatusSummary(ctx context.Context, db *sql.DB, userID int64) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `
SELECT status, COUNT(*) FROM applications WHERE user_id = ? GROUP BY status;`, userID)
	if err != nil {
		return nil, fmt.Errorf("status summary: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}
