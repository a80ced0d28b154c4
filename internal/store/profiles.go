package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Profiles reads user contact data out of the accounts tables. The engine
// never writes these; the accounts subsystem owns them.
type Profiles struct {
	DB *sql.DB
}

var ErrNoProfile = errors.New("no profile found")

// ProfileData returns the logical form-field mapping for a user.
func (p Profiles) ProfileData(ctx context.Context, userID int64) (map[string]string, error) {
	var full, first, last, email, phone, loc, skills string
	err := p.DB.QueryRowContext(ctx, `
SELECT full_name, first_name, last_name, email, phone, location, skills
FROM user_profiles WHERE user_id = ? LIMIT 1;`, userID).
		Scan(&full, &first, &last, &email, &phone, &loc, &skills)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNoProfile)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return map[string]string{
		"name":       full,
		"first_name": first,
		"last_name":  last,
		"email":      email,
		"phone":      phone,
		"location":   loc,
		"skills":     skills,
	}, nil
}

// UpsertProfile is for seeding and tests.
func (p Profiles) UpsertProfile(ctx context.Context, userID int64, fields map[string]string) error {
	_, err := p.DB.ExecContext(ctx, `
INSERT INTO user_profiles(user_id, full_name, first_name, last_name, email, phone, location, skills)
VALUES(?,?,?,?,?,?,?,?)
ON CONFLICT(user_id) DO UPDATE SET
  full_name=excluded.full_name, first_name=excluded.first_name,
  last_name=excluded.last_name, email=excluded.email, phone=excluded.phone,
  location=excluded.location, skills=excluded.skills;`,
		userID, fields["name"], fields["first_name"], fields["last_name"],
		fields["email"], fields["phone"], fields["location"], fields["skills"])
	return err
}
