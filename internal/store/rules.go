package store

import (
	"context"
	"database/sql"
	"fmt"

	"jobtrack-engine/internal/domain"
)

// ListActiveRules returns every automation rule that is switched on.
func ListActiveRules(ctx context.Context, db *sql.DB) ([]domain.AutomationRule, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, user_id, job_board, search_keywords, location_filter, min_salary,
       apply_automatically, max_per_day, is_active
FROM automation_rules
WHERE is_active = 1
ORDER BY id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()

	var out []domain.AutomationRule
	for rows.Next() {
		var r domain.AutomationRule
		if err := rows.Scan(&r.ID, &r.UserID, &r.Board, &r.SearchKeywords,
			&r.LocationFilter, &r.MinSalary, &r.ApplyAutomatically,
			&r.MaxPerDay, &r.Active); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertRule is here for seeding and tests; rules are normally managed by
// the CRUD layer outside this engine.
func InsertRule(ctx context.Context, db *sql.DB, r domain.AutomationRule) (domain.AutomationRule, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO automation_rules(user_id, job_board, search_keywords, location_filter,
  min_salary, apply_automatically, max_per_day, is_active)
VALUES(?,?,?,?,?,?,?,?);`,
		r.UserID, r.Board, r.SearchKeywords, r.LocationFilter,
		r.MinSalary, r.ApplyAutomatically, r.MaxPerDay, r.Active)
	if err != nil {
		return domain.AutomationRule{}, fmt.Errorf("insert rule: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return r, nil
}
