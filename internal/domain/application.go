package domain

import "time"

// ApplicationMethod says how an application was submitted.
const (
	MethodManual    = "manual"
	MethodAutomated = "automated"
)

// Application tracks one user pursuing one job, from saved to done.
type Application struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	JobID       int64      `json:"job_id"`
	CompanyID   int64      `json:"company_id"`
	Status      string     `json:"status"`
	AppliedDate *time.Time `json:"applied_date,omitempty"`
	Method      string     `json:"application_method"`
	Notes       string     `json:"notes,omitempty"`
	// AutomationLog accumulates one line per automated task outcome.
	AutomationLog string     `json:"automated_application_log,omitempty"`
	FollowUpDate  *time.Time `json:"follow_up_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Activity is one append-only log entry on an application.
// Rows are created once and never edited or removed individually.
type Activity struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	ActivityType  string    `json:"activity_type"`
	Description   string    `json:"description"`
	Actor         string    `json:"actor,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	ActivityCreated      = "created"
	ActivityStatusChange = "status_change"
	ActivityNote         = "note"
	ActivityReminder     = "reminder"
)
