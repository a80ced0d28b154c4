package sites

import (
	"context"
	"fmt"
	"log"

	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/domain"
)

const (
	pnetBaseURL   = "https://www.pnet.co.za"
	pnetLoginURL  = "https://www.pnet.co.za/5/login.html"
	pnetSearchURL = "https://www.pnet.co.za/5/job-search.html"
)

// pnet drives PNet.co.za, one of the big South African boards.
type pnet struct {
	base
}

func newPNet(d Deps) Adapter { return &pnet{base: newBase(d)} }

func (p *pnet) Board() string { return "pnet" }

func (p *pnet) Login(ctx context.Context) error {
	if err := p.navigate(ctx, pnetLoginURL); err != nil {
		return err
	}
	p.dismissPopups(ctx)

	if err := p.page.Fill(ctx, browser.CSS("#email"), p.creds.Email); err != nil {
		return fmt.Errorf("%w: email field: %v", ErrLoginFailed, err)
	}
	p.delay(ctx)
	if err := p.page.Fill(ctx, browser.CSS("#password"), p.creds.Password); err != nil {
		return fmt.Errorf("%w: password field: %v", ErrLoginFailed, err)
	}
	p.delay(ctx)
	if err := p.page.Click(ctx, browser.CSS(`button[type='submit']`)); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLoginFailed, err)
	}
	p.delay(ctx)

	if p.loggedOut(ctx) {
		return ErrLoginFailed
	}
	log.Printf("[sites] pnet login successful")
	return nil
}

func (p *pnet) SearchJobs(ctx context.Context, keywords, location string) ([]domain.Listing, error) {
	if err := p.navigate(ctx, pnetSearchURL); err != nil {
		return nil, err
	}
	p.dismissPopups(ctx)

	if err := p.page.Fill(ctx, browser.CSS("#keywords-input"), keywords); err != nil {
		return nil, fmt.Errorf("keywords field: %w", err)
	}
	if location != "" {
		// Location is optional on PNet; a missing field is not fatal.
		_ = p.page.Fill(ctx, browser.CSS("#location-input"), location)
	}
	p.delay(ctx)
	if err := p.page.Click(ctx, browser.CSS("button.search-btn")); err != nil {
		return nil, fmt.Errorf("search button: %w", err)
	}
	p.delay(ctx)

	jobs, err := p.listings(ctx, ".job-card, .search-result", []string{"a.job-title", "h3 a"}, pnetBaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[sites] pnet found %d jobs for %q", len(jobs), keywords)
	return jobs, nil
}

var pnetApplySelectors = []browser.Selector{
	browser.CSS("#apply-button"),
	browser.CSS(".apply-btn"),
	browser.CSS(`[data-action="apply"]`),
}

func (p *pnet) ApplyToJob(ctx context.Context, jobURL, cvPath string) error {
	if err := p.navigate(ctx, jobURL); err != nil {
		return err
	}
	p.dismissPopups(ctx)
	p.delay(ctx)

	clicked := false
	for _, sel := range pnetApplySelectors {
		if p.page.Click(ctx, sel) == nil {
			clicked = true
			break
		}
	}
	if !clicked {
		return ErrNoApplyButton
	}
	p.delay(ctx)

	if p.loginRedirected(ctx) {
		if err := p.Login(ctx); err != nil {
			return err
		}
	}
	if err := p.captchaCheckpoint(ctx); err != nil {
		return err
	}

	p.fill.FillPersonalInfo(ctx, nil)
	p.delay(ctx)
	if err := p.fill.UploadCV(ctx, cvPath); err != nil {
		log.Printf("[sites] pnet cv upload: %v", err)
	}
	p.delay(ctx)

	if p.page.Click(ctx, browser.CSS("#submit-application")) != nil {
		if !p.fill.ClickSubmit(ctx) {
			return fmt.Errorf("%w: no submit control", ErrNoApplyButton)
		}
	}
	return p.verifySubmission(ctx, "pnet")
}
