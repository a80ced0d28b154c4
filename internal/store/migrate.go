package store

import "database/sql"

// Migrate brings the schema up to the current version. Idempotent; runs at
// every startup inside one transaction, gated on PRAGMA user_version.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	stmts := []string{`
CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  industry TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  date_added TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  salary_range TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  work_mode TEXT NOT NULL DEFAULT 'unknown',
  url TEXT NOT NULL DEFAULT '',
  source_board TEXT NOT NULL DEFAULT 'other',
  date_added TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'saved',
  applied_date TEXT,
  application_method TEXT NOT NULL DEFAULT 'manual',
  notes TEXT NOT NULL DEFAULT '',
  automation_log TEXT NOT NULL DEFAULT '',
  follow_up_date TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS application_activities (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  application_id INTEGER NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
  activity_type TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  actor TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS automation_rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  job_board TEXT NOT NULL,
  search_keywords TEXT NOT NULL,
  location_filter TEXT NOT NULL DEFAULT '',
  min_salary INTEGER NOT NULL DEFAULT 0,
  apply_automatically INTEGER NOT NULL DEFAULT 0,
  max_per_day INTEGER NOT NULL DEFAULT 5,
  is_active INTEGER NOT NULL DEFAULT 1
);`, `
CREATE TABLE IF NOT EXISTS user_profiles (
  user_id INTEGER PRIMARY KEY,
  full_name TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  skills TEXT NOT NULL DEFAULT ''
);`, `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  doc_type TEXT NOT NULL DEFAULT 'cv',
  file_path TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 0,
  uploaded_at TEXT NOT NULL
);`,

		// ---- Schema v1: indexes ----
		`CREATE INDEX IF NOT EXISTS idx_jobs_url ON jobs(url);`,
		`CREATE INDEX IF NOT EXISTS idx_apps_user ON applications(user_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_apps_user_job ON applications(user_id, job_id);`,
		`CREATE INDEX IF NOT EXISTS idx_apps_applied_date ON applications(applied_date);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_app ON application_activities(application_id);`,
		`CREATE INDEX IF NOT EXISTS idx_rules_active ON automation_rules(is_active);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, doc_type);`,
	}

	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}
