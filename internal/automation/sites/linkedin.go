package sites

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/domain"
)

const (
	linkedinBaseURL  = "https://www.linkedin.com"
	linkedinLoginURL = "https://www.linkedin.com/login"
	linkedinJobsURL  = "https://www.linkedin.com/jobs/search"

	// Easy Apply flows are a handful of pages at most; anything longer
	// is reported as incomplete rather than clicked through blindly.
	easyApplyMaxSteps = 5
)

// linkedin handles both Easy Apply and external-redirect postings. External
// postings are flagged for manual handling, never auto-followed.
type linkedin struct {
	base
}

func newLinkedIn(d Deps) Adapter { return &linkedin{base: newBase(d)} }

func (l *linkedin) Board() string { return "linkedin" }

func (l *linkedin) Login(ctx context.Context) error {
	if err := l.navigate(ctx, linkedinLoginURL); err != nil {
		return err
	}

	if err := l.page.Fill(ctx, browser.CSS("#username"), l.creds.Email); err != nil {
		return fmt.Errorf("%w: username field: %v", ErrLoginFailed, err)
	}
	l.delay(ctx)
	if err := l.page.Fill(ctx, browser.CSS("#password"), l.creds.Password); err != nil {
		return fmt.Errorf("%w: password field: %v", ErrLoginFailed, err)
	}
	if err := l.page.Click(ctx, browser.CSS(`button[type='submit']`)); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLoginFailed, err)
	}
	l.delay(ctx)

	loc, err := l.page.Location(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	loc = strings.ToLower(loc)
	if strings.Contains(loc, "checkpoint") {
		return ErrManualVerification
	}
	if strings.Contains(loc, "feed") {
		log.Printf("[sites] linkedin login successful")
		return nil
	}
	return ErrLoginFailed
}

func (l *linkedin) SearchJobs(ctx context.Context, keywords, location string) ([]domain.Listing, error) {
	searchURL := linkedinJobsURL + "?keywords=" + url.QueryEscape(keywords)
	if location != "" {
		searchURL += "&location=" + url.QueryEscape(location)
	} else {
		searchURL += "&location=South%20Africa"
	}
	if err := l.navigate(ctx, searchURL); err != nil {
		return nil, err
	}
	l.delay(ctx)

	jobs, err := l.listings(ctx,
		".job-card-container, .jobs-search-results__list-item",
		[]string{"a.job-card-list__title", "a.job-card-container__link"},
		linkedinBaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[sites] linkedin found %d jobs for %q", len(jobs), keywords)
	return jobs, nil
}

var linkedinEasyApplyButton = browser.CSS(
	`.jobs-apply-button, button[data-control-name="jobdetails_topcard_inapply"]`)

func (l *linkedin) ApplyToJob(ctx context.Context, jobURL, cvPath string) error {
	if err := l.navigate(ctx, jobURL); err != nil {
		return err
	}
	l.delay(ctx)

	if !l.page.Visible(ctx, linkedinEasyApplyButton) {
		log.Printf("[sites] linkedin posting is not Easy Apply, flagging for manual application")
		return ErrManualApplyRequired
	}
	if err := l.page.Click(ctx, linkedinEasyApplyButton); err != nil {
		return fmt.Errorf("easy apply button: %w", err)
	}
	l.delay(ctx)

	if err := l.captchaCheckpoint(ctx); err != nil {
		return err
	}
	return l.completeEasyApply(ctx, cvPath)
}

var (
	linkedinSubmitButton   = browser.CSS(`button[aria-label="Submit application"]`)
	linkedinContinueButton = browser.CSS(
		`button[aria-label="Continue to next step"], button[aria-label="Review your application"]`)
)

// completeEasyApply walks the multi-page Easy Apply form: fill what is
// visible, attach the CV where a file input exists, then advance.
func (l *linkedin) completeEasyApply(ctx context.Context, cvPath string) error {
	for step := 0; step < easyApplyMaxSteps; step++ {
		l.delay(ctx)

		l.fill.FillPersonalInfo(ctx, nil)
		if err := l.fill.UploadCV(ctx, cvPath); err != nil {
			log.Printf("[sites] linkedin step %d: no cv field: %v", step+1, err)
		}

		if l.page.Visible(ctx, linkedinSubmitButton) {
			if err := l.page.Click(ctx, linkedinSubmitButton); err != nil {
				return fmt.Errorf("easy apply submit: %w", err)
			}
			l.delay(ctx)
			log.Printf("[sites] linkedin easy apply submitted")
			return nil
		}
		if !l.page.Visible(ctx, linkedinContinueButton) {
			break
		}
		if err := l.page.Click(ctx, linkedinContinueButton); err != nil {
			return fmt.Errorf("easy apply step %d: %w", step+1, err)
		}
	}
	return ErrStepLimit
}
