package domain

// AutomationRule is a per-user, per-board search/apply configuration.
// The engine only ever reads these; they are edited through the API layer.
type AutomationRule struct {
	ID                 int64  `json:"id"`
	UserID             int64  `json:"user_id"`
	Board              string `json:"job_board"`
	SearchKeywords     string `json:"search_keywords"`
	LocationFilter     string `json:"location_filter,omitempty"`
	MinSalary          int64  `json:"min_salary,omitempty"`
	ApplyAutomatically bool   `json:"apply_automatically"`
	MaxPerDay          int    `json:"max_applications_per_day"`
	Active             bool   `json:"is_active"`
}
