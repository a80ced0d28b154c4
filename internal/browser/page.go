// Package browser wraps a headless Chrome tab behind a small Page
// interface so the form filler, CAPTCHA gate and site adapters never talk
// to the driver directly.
package browser

import "context"

// By selects the locator language for a Selector.
type By int

const (
	ByCSS By = iota
	ByXPath
)

// Selector locates one element on the page.
type Selector struct {
	By    By
	Query string
}

func CSS(q string) Selector   { return Selector{By: ByCSS, Query: q} }
func XPath(q string) Selector { return Selector{By: ByXPath, Query: q} }

func (s Selector) String() string {
	if s.By == ByXPath {
		return "xpath:" + s.Query
	}
	return s.Query
}

// Page is the set of DOM interactions the automation layer needs. The real
// implementation drives Chrome; tests use browsertest.FakePage.
type Page interface {
	// Navigate loads a URL, honouring the per-host rate limit.
	Navigate(ctx context.Context, url string) error
	// Location returns the current URL (after any redirects).
	Location(ctx context.Context) (string, error)
	// HTML returns the rendered document markup.
	HTML(ctx context.Context) (string, error)
	// Visible reports whether the selector matches a visible, enabled
	// element right now. It never blocks longer than the probe timeout.
	Visible(ctx context.Context, sel Selector) bool
	// WaitVisible blocks until the element is visible or the element wait
	// timeout elapses.
	WaitVisible(ctx context.Context, sel Selector) error
	// Fill clears the element and types the value into it.
	Fill(ctx context.Context, sel Selector, value string) error
	Click(ctx context.Context, sel Selector) error
	SelectByLabel(ctx context.Context, sel Selector, label string) error
	SelectByValue(ctx context.Context, sel Selector, value string) error
	// Upload attaches a local file to a file input.
	Upload(ctx context.Context, sel Selector, path string) error
}
