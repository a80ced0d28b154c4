package sites

import (
	"context"
	"errors"
	"testing"

	"jobtrack-engine/internal/browser/browsertest"
)

const liEasyApply = `.jobs-apply-button, button[data-control-name="jobdetails_topcard_inapply"]`

func TestLinkedInApply_EasyApplySubmitted(t *testing.T) {
	page := browsertest.New()
	page.URL = "https://www.linkedin.com/jobs/view/42"
	page.AddVisible(liEasyApply)
	page.AddVisible(`button[aria-label="Submit application"]`)

	a, _ := For("linkedin", testDeps(page))
	if err := a.ApplyToJob(context.Background(), "https://www.linkedin.com/jobs/view/42", "/tmp/cv.pdf"); err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
}

func TestLinkedInApply_NotEasyApply(t *testing.T) {
	page := browsertest.New()
	page.URL = "https://www.linkedin.com/jobs/view/42"

	a, _ := For("linkedin", testDeps(page))
	err := a.ApplyToJob(context.Background(), "https://www.linkedin.com/jobs/view/42", "/tmp/cv.pdf")
	if !errors.Is(err, ErrManualApplyRequired) {
		t.Fatalf("err = %v, want ErrManualApplyRequired", err)
	}
	if len(page.Clicks) != 0 {
		t.Errorf("external posting should not be clicked: %v", page.Clicks)
	}
}

func TestLinkedInApply_StepLimit(t *testing.T) {
	page := browsertest.New()
	page.URL = "https://www.linkedin.com/jobs/view/42"
	page.AddVisible(liEasyApply)
	// Continue is always present and submit never appears, so the flow
	// must give up at the step cap instead of looping.
	page.AddVisible(`button[aria-label="Continue to next step"], button[aria-label="Review your application"]`)

	a, _ := For("linkedin", testDeps(page))
	err := a.ApplyToJob(context.Background(), "https://www.linkedin.com/jobs/view/42", "/tmp/cv.pdf")
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("err = %v, want ErrStepLimit", err)
	}
	// One apply click plus one continue click per step.
	if want := 1 + easyApplyMaxSteps; len(page.Clicks) != want {
		t.Errorf("got %d clicks, want %d", len(page.Clicks), want)
	}
}

func TestLinkedInApply_SubmitOnLaterStep(t *testing.T) {
	page := browsertest.New()
	page.URL = "https://www.linkedin.com/jobs/view/42"
	page.AddVisible(liEasyApply)
	page.Add(`button[aria-label="Continue to next step"], button[aria-label="Review your application"]`,
		&browsertest.Element{
			Visible: true,
			OnClick: func(p *browsertest.FakePage) {
				p.AddVisible(`button[aria-label="Submit application"]`)
			},
		})

	a, _ := For("linkedin", testDeps(page))
	if err := a.ApplyToJob(context.Background(), "https://www.linkedin.com/jobs/view/42", "/tmp/cv.pdf"); err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
}

func TestLinkedInLogin(t *testing.T) {
	tests := []struct {
		name    string
		landing string
		wantErr error
	}{
		{"success", "https://www.linkedin.com/feed/", nil},
		{"verification checkpoint", "https://www.linkedin.com/checkpoint/challenge", ErrManualVerification},
		{"unknown landing page", "https://www.linkedin.com/uas/authenticate", ErrLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.New()
			page.AddVisible("#username")
			page.AddVisible("#password")
			landing := tt.landing
			page.Add(`button[type='submit']`, &browsertest.Element{
				Visible: true,
				OnClick: func(p *browsertest.FakePage) { p.URL = landing },
			})

			a, _ := For("linkedin", testDeps(page))
			err := a.Login(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Login: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinkedInSearch_DefaultsToSouthAfrica(t *testing.T) {
	page := browsertest.New()
	page.Body = `<div class="job-card-container"><a class="job-card-container__link" href="/jobs/view/7">SRE</a></div>`

	a, _ := For("linkedin", testDeps(page))
	jobs, err := a.SearchJobs(context.Background(), "sre", "")
	if err != nil {
		t.Fatalf("SearchJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].URL != "https://www.linkedin.com/jobs/view/7" {
		t.Fatalf("jobs = %v", jobs)
	}
	if len(page.Navigations) != 1 {
		t.Fatalf("navigations = %v", page.Navigations)
	}
	if got := page.Navigations[0]; got != "https://www.linkedin.com/jobs/search?keywords=sre&location=South%20Africa" {
		t.Errorf("search url = %q", got)
	}
}
