package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobtrack-engine/internal/domain"
)

// InsertActivity appends one entry to an application's history.
func InsertActivity(ctx context.Context, db *sql.DB, act domain.Activity) (domain.Activity, error) {
	act.CreatedAt = time.Now().UTC()
	res, err := db.ExecContext(ctx, `
INSERT INTO application_activities(application_id, activity_type, description, actor, created_at)
VALUES(?,?,?,?,?);`,
		act.ApplicationID, act.ActivityType, act.Description, act.Actor, fmtTime(act.CreatedAt))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	act.ID, _ = res.LastInsertId()
	return act, nil
}

// ListActivities returns an application's history, oldest first.
func ListActivities(ctx context.Context, db *sql.DB, appID int64) ([]domain.Activity, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, application_id, activity_type, description, actor, created_at
FROM application_activities
WHERE application_id = ?
ORDER BY created_at ASC, id ASC;`, appID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.ApplicationID, &a.ActivityType,
			&a.Description, &a.Actor, scanTime{&a.CreatedAt}); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountActivities returns the number of history entries for an application.
func CountActivities(ctx context.Context, db *sql.DB, appID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM application_activities WHERE application_id = ?;`, appID).Scan(&n)
	return n, err
}
