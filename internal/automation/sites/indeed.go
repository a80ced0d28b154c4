package sites

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/domain"
)

const (
	indeedBaseURL   = "https://za.indeed.com"
	indeedSearchURL = "https://za.indeed.com/jobs"
)

type indeed struct {
	base
}

func newIndeed(d Deps) Adapter { return &indeed{base: newBase(d)} }

func (i *indeed) Board() string { return "indeed" }

// Login handles Indeed's two-step flow: email first, then a password page
// when Indeed decides to show one.
func (i *indeed) Login(ctx context.Context) error {
	if err := i.navigate(ctx, indeedBaseURL+"/account/login"); err != nil {
		return err
	}
	i.dismissPopups(ctx)

	emailSel := browser.CSS("#ifl-InputFormField-3")
	if !i.page.Visible(ctx, emailSel) {
		emailSel = browser.CSS(`input[type='email']`)
	}
	if err := i.page.Fill(ctx, emailSel, i.creds.Email); err != nil {
		return fmt.Errorf("%w: email field: %v", ErrLoginFailed, err)
	}
	if err := i.page.Click(ctx, browser.CSS(`button[type='submit']`)); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLoginFailed, err)
	}
	i.delay(ctx)

	passwordSel := browser.CSS(`input[type='password']`)
	if i.page.Visible(ctx, passwordSel) {
		if err := i.page.Fill(ctx, passwordSel, i.creds.Password); err != nil {
			return fmt.Errorf("%w: password field: %v", ErrLoginFailed, err)
		}
		if err := i.page.Click(ctx, browser.CSS(`button[type='submit']`)); err != nil {
			return fmt.Errorf("%w: submit: %v", ErrLoginFailed, err)
		}
		i.delay(ctx)
	}

	log.Printf("[sites] indeed login attempted")
	return nil
}

func (i *indeed) SearchJobs(ctx context.Context, keywords, location string) ([]domain.Listing, error) {
	searchURL := indeedSearchURL + "?q=" + url.QueryEscape(keywords)
	if location != "" {
		searchURL += "&l=" + url.QueryEscape(location)
	}
	if err := i.navigate(ctx, searchURL); err != nil {
		return nil, err
	}
	i.dismissPopups(ctx)
	i.delay(ctx)

	jobs, err := i.listings(ctx,
		".job_seen_beacon, .jobsearch-ResultsList .result",
		[]string{"a.jcs-JobTitle", "h2 a"},
		indeedBaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[sites] indeed found %d jobs for %q", len(jobs), keywords)
	return jobs, nil
}

var indeedApplySelectors = []browser.Selector{
	browser.CSS("#indeedApplyButton"),
	browser.CSS(".jobsearch-IndeedApplyButton-newDesign"),
	browser.CSS(`button[id*="apply"]`),
	browser.CSS(".indeed-apply-button"),
}

func (i *indeed) ApplyToJob(ctx context.Context, jobURL, cvPath string) error {
	if err := i.navigate(ctx, jobURL); err != nil {
		return err
	}
	i.dismissPopups(ctx)
	i.delay(ctx)

	clicked := false
	for _, sel := range indeedApplySelectors {
		if i.page.Click(ctx, sel) == nil {
			clicked = true
			break
		}
	}
	if !clicked {
		return ErrNoApplyButton
	}
	i.delay(ctx)

	if i.loginRedirected(ctx) {
		if err := i.Login(ctx); err != nil {
			return err
		}
	}
	if err := i.captchaCheckpoint(ctx); err != nil {
		return err
	}

	i.fill.FillPersonalInfo(ctx, nil)
	i.delay(ctx)
	if err := i.fill.UploadCV(ctx, cvPath); err != nil {
		log.Printf("[sites] indeed cv upload: %v", err)
	}
	i.delay(ctx)

	if i.page.Click(ctx, browser.CSS(".indeed-apply-submit")) != nil {
		if !i.fill.ClickSubmit(ctx) {
			return fmt.Errorf("%w: no submit control", ErrNoApplyButton)
		}
	}
	return i.verifySubmission(ctx, "indeed")
}
