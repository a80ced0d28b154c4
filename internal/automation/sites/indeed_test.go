package sites

import (
	"context"
	"errors"
	"testing"

	"jobtrack-engine/internal/browser/browsertest"
)

func TestIndeedLogin_TwoStep(t *testing.T) {
	page := browsertest.New()
	page.AddVisible(`input[type='email']`)
	// The password page only appears after the email step submits.
	page.Add(`button[type='submit']`, &browsertest.Element{
		Visible: true,
		OnClick: func(p *browsertest.FakePage) {
			p.AddVisible(`input[type='password']`)
		},
	})

	a, _ := For("indeed", testDeps(page))
	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if page.Fills[`input[type='email']`] != "jo@example.com" {
		t.Errorf("email not filled: %v", page.Fills)
	}
	if page.Fills[`input[type='password']`] != "hunter2" {
		t.Errorf("password not filled: %v", page.Fills)
	}
	if len(page.Clicks) != 2 {
		t.Errorf("got %d submit clicks, want 2", len(page.Clicks))
	}
}

func TestIndeedLogin_SingleStep(t *testing.T) {
	page := browsertest.New()
	page.AddVisible("#ifl-InputFormField-3")
	page.AddVisible(`button[type='submit']`)

	a, _ := For("indeed", testDeps(page))
	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if page.Fills["#ifl-InputFormField-3"] != "jo@example.com" {
		t.Errorf("email not filled into form field: %v", page.Fills)
	}
	if len(page.Clicks) != 1 {
		t.Errorf("got %d clicks, want 1", len(page.Clicks))
	}
}

func TestIndeedApply_Submitted(t *testing.T) {
	page := browsertest.New()
	page.URL = "https://za.indeed.com/viewjob?jk=abc"
	page.Body = "<html><body>Thank you for applying!</body></html>"
	page.AddVisible("#indeedApplyButton")
	page.AddVisible(".indeed-apply-submit")

	a, _ := For("indeed", testDeps(page))
	if err := a.ApplyToJob(context.Background(), "https://za.indeed.com/viewjob?jk=abc", "/tmp/cv.pdf"); err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
}

func TestIndeedApply_NoApplyButton(t *testing.T) {
	page := browsertest.New()
	page.URL = "https://za.indeed.com/viewjob?jk=abc"

	a, _ := For("indeed", testDeps(page))
	err := a.ApplyToJob(context.Background(), "https://za.indeed.com/viewjob?jk=abc", "/tmp/cv.pdf")
	if !errors.Is(err, ErrNoApplyButton) {
		t.Fatalf("err = %v, want ErrNoApplyButton", err)
	}
}

func TestIndeedSearch(t *testing.T) {
	page := browsertest.New()
	page.Body = `<html><body>
		<div class="job_seen_beacon"><a class="jcs-JobTitle" href="/rc/clk?jk=1">Data Engineer</a></div>
		<div class="job_seen_beacon"><h2><a href="https://za.indeed.com/rc/clk?jk=2">Platform Engineer</a></h2></div>
	</body></html>`

	a, _ := For("indeed", testDeps(page))
	jobs, err := a.SearchJobs(context.Background(), "engineer", "Johannesburg")
	if err != nil {
		t.Fatalf("SearchJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2: %v", len(jobs), jobs)
	}
	if jobs[0].URL != "https://za.indeed.com/rc/clk?jk=1" {
		t.Errorf("first listing = %+v", jobs[0])
	}
	if got := page.Navigations[0]; got != "https://za.indeed.com/jobs?q=engineer&l=Johannesburg" {
		t.Errorf("search url = %q", got)
	}
}
