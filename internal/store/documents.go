package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Documents resolves CV file paths. Upload, versioning and storage of the
// files themselves belong to the documents subsystem; this only reads.
type Documents struct {
	DB *sql.DB
}

var ErrNoCV = errors.New("no CV found")

// ResolveCV returns the file path for the requested CV. A cvID of 0 (or a
// cvID that does not belong to this user) falls back to the active CV. If
// neither resolves, ErrNoCV is returned.
func (d Documents) ResolveCV(ctx context.Context, userID, cvID int64) (string, error) {
	if cvID != 0 {
		var path string
		err := d.DB.QueryRowContext(ctx, `
SELECT file_path FROM documents
WHERE id = ? AND user_id = ? AND doc_type = 'cv' LIMIT 1;`, cvID, userID).Scan(&path)
		if err == nil && path != "" {
			return path, nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("resolve cv %d: %w", cvID, err)
		}
	}

	var path string
	err := d.DB.QueryRowContext(ctx, `
SELECT file_path FROM documents
WHERE user_id = ? AND doc_type = 'cv' AND is_active = 1
ORDER BY uploaded_at DESC LIMIT 1;`, userID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && path == "") {
		return "", ErrNoCV
	}
	if err != nil {
		return "", fmt.Errorf("resolve active cv: %w", err)
	}
	return path, nil
}

// InsertDocument is for seeding and tests.
func (d Documents) InsertDocument(ctx context.Context, userID int64, docType, path string, active bool) (int64, error) {
	res, err := d.DB.ExecContext(ctx, `
INSERT INTO documents(user_id, doc_type, file_path, is_active, uploaded_at)
VALUES(?,?,?,?,?);`, userID, docType, path, active, fmtTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	return res.LastInsertId()
}
