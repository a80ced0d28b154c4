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
	careers24BaseURL   = "https://www.careers24.com"
	careers24LoginURL  = "https://www.careers24.com/auth/login"
	careers24SearchURL = "https://www.careers24.com/jobs"
)

type careers24 struct {
	base
}

func newCareers24(d Deps) Adapter { return &careers24{base: newBase(d)} }

func (c *careers24) Board() string { return "careers24" }

func (c *careers24) Login(ctx context.Context) error {
	if err := c.navigate(ctx, careers24LoginURL); err != nil {
		return err
	}
	c.dismissPopups(ctx)

	if err := c.page.Fill(ctx, browser.CSS(`input[name='email'], #email`), c.creds.Email); err != nil {
		return fmt.Errorf("%w: email field: %v", ErrLoginFailed, err)
	}
	c.delay(ctx)
	if err := c.page.Fill(ctx, browser.CSS(`input[name='password'], #password`), c.creds.Password); err != nil {
		return fmt.Errorf("%w: password field: %v", ErrLoginFailed, err)
	}
	if err := c.page.Click(ctx, browser.CSS(`button[type='submit'], .login-btn`)); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLoginFailed, err)
	}
	c.delay(ctx)

	if c.loggedOut(ctx) {
		return ErrLoginFailed
	}
	log.Printf("[sites] careers24 login successful")
	return nil
}

func (c *careers24) SearchJobs(ctx context.Context, keywords, location string) ([]domain.Listing, error) {
	searchURL := careers24SearchURL + "?keyword=" + url.QueryEscape(keywords)
	if location != "" {
		searchURL += "&location=" + url.QueryEscape(location)
	}
	if err := c.navigate(ctx, searchURL); err != nil {
		return nil, err
	}
	c.dismissPopups(ctx)
	c.delay(ctx)

	jobs, err := c.listings(ctx, ".job-result, .job-card", []string{"a.job-title", "h2 a", "h3 a"}, careers24BaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[sites] careers24 found %d jobs for %q", len(jobs), keywords)
	return jobs, nil
}

var careers24ApplySelectors = []browser.Selector{
	browser.CSS(".apply-btn"),
	browser.CSS("#apply-now"),
	browser.CSS(`[data-action="apply"]`),
}

func (c *careers24) ApplyToJob(ctx context.Context, jobURL, cvPath string) error {
	if err := c.navigate(ctx, jobURL); err != nil {
		return err
	}
	c.dismissPopups(ctx)
	c.delay(ctx)

	clicked := false
	for _, sel := range careers24ApplySelectors {
		if c.page.Click(ctx, sel) == nil {
			clicked = true
			break
		}
	}
	if !clicked {
		return ErrNoApplyButton
	}
	c.delay(ctx)

	if c.loginRedirected(ctx) {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}
	if err := c.captchaCheckpoint(ctx); err != nil {
		return err
	}

	c.fill.FillPersonalInfo(ctx, nil)
	c.delay(ctx)
	if err := c.fill.UploadCV(ctx, cvPath); err != nil {
		log.Printf("[sites] careers24 cv upload: %v", err)
	}
	c.delay(ctx)

	if !c.fill.ClickSubmit(ctx) {
		return fmt.Errorf("%w: no submit control", ErrNoApplyButton)
	}
	return c.verifySubmission(ctx, "careers24")
}
