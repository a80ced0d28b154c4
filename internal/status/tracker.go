package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/store"
)

// TransitionError is returned when a requested move is not in the table.
// Nothing is mutated when it is returned.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// Tracker applies status transitions. The status update and the activity
// log entry commit in the same transaction or not at all.
type Tracker struct {
	DB *sql.DB
}

// Transition moves an application to a new status. On the first move into
// "applied" it also stamps applied_date; the stamp is never overwritten or
// cleared afterwards.
func (t *Tracker) Transition(ctx context.Context, appID int64, newStatus, actor, notes string) (domain.Application, error) {
	if !Known(newStatus) {
		return domain.Application{}, fmt.Errorf("unknown status %q", newStatus)
	}

	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	var applied sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT status, applied_date FROM applications WHERE id = ? LIMIT 1;`, appID).
		Scan(&current, &applied)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, fmt.Errorf("application %d not found: %w", appID, sql.ErrNoRows)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("load application: %w", err)
	}

	if !IsValidTransition(current, newStatus) {
		log.Printf("[status] rejected transition app=%d %s -> %s", appID, current, newStatus)
		return domain.Application{}, &TransitionError{From: current, To: newStatus}
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if newStatus == Applied && !applied.Valid {
		_, err = tx.ExecContext(ctx,
			`UPDATE applications SET status = ?, applied_date = ?, updated_at = ? WHERE id = ?;`,
			newStatus, now, now, appID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE applications SET status = ?, updated_at = ? WHERE id = ?;`,
			newStatus, now, appID)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("update status: %w", err)
	}

	desc := fmt.Sprintf("Status changed from %s to %s", current, newStatus)
	if notes != "" {
		desc += ". Notes: " + notes
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO application_activities(application_id, activity_type, description, actor, created_at)
VALUES(?,?,?,?,?);`,
		appID, domain.ActivityStatusChange, desc, actor, now); err != nil {
		return domain.Application{}, fmt.Errorf("log status change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Application{}, err
	}

	log.Printf("[status] app=%d %s -> %s", appID, current, newStatus)
	return store.GetApplication(ctx, t.DB, appID)
}
