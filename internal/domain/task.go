package domain

// SiteTarget is one unit of automation work: apply to this job, for this
// user, on this board. It is never persisted; it travels through the queue.
type SiteTarget struct {
	UserID int64  `json:"user_id"`
	JobURL string `json:"job_url"`
	Board  string `json:"job_board"`
	CVID   int64  `json:"cv_id,omitempty"` // 0 means "use the active CV"
	DryRun bool   `json:"dry_run,omitempty"`
}

// TaskResult is returned to whoever queued the task. It may also be folded
// into the application's automation log, but is never stored on its own.
type TaskResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobURL  string `json:"job_url"`
	Board   string `json:"job_board"`
}
