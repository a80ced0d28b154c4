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

// GetOrCreateCompany finds a company by name, creating it if needed.
// Name matching is exact after trimming; empty names become "Unknown".
func GetOrCreateCompany(ctx context.Context, db *sql.DB, c domain.Company) (domain.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = "Unknown"
	}

	err := db.QueryRowContext(ctx, `
SELECT id, name, industry, location, website, date_added
FROM companies WHERE name = ? LIMIT 1;`, c.Name).
		Scan(&c.ID, &c.Name, &c.Industry, &c.Location, &c.Website, scanTime{&c.DateAdded})
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, fmt.Errorf("lookup company: %w", err)
	}

	c.DateAdded = time.Now().UTC()
	res, err := db.ExecContext(ctx, `
INSERT INTO companies(name, industry, location, website, date_added)
VALUES(?,?,?,?,?);`,
		c.Name, c.Industry, c.Location, c.Website, fmtTime(c.DateAdded))
	if err != nil {
		return domain.Company{}, fmt.Errorf("insert company: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return c, nil
}

// scanTime lets us Scan an RFC3339 TEXT column straight into a time.Time.
type scanTime struct{ t *time.Time }

func (s scanTime) Scan(v any) error {
	switch x := v.(type) {
	case string:
		*s.t = parseTime(x)
	case []byte:
		*s.t = parseTime(string(x))
	case nil:
		*s.t = time.Time{}
	}
	return nil
}
