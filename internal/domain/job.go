package domain

import "time"

// Job is a single listing on a board or company site.
type Job struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SalaryRange string    `json:"salary_range,omitempty"`
	Location    string    `json:"location,omitempty"`
	WorkMode    string    `json:"work_mode,omitempty"` // remote/hybrid/onsite/unknown
	URL         string    `json:"url"`
	Board       string    `json:"source_board,omitempty"` // pnet/careers24/linkedin/indeed/other
	DateAdded   time.Time `json:"date_added"`
}

// Listing is what a board search returns before anything is persisted.
type Listing struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
