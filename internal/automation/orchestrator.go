// Package automation sequences one automated job application from guard
// checks through the board adapter to the status update.
package automation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"jobtrack-engine/internal/automation/captcha"
	"jobtrack-engine/internal/automation/formfill"
	"jobtrack-engine/internal/automation/sites"
	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/guard"
	"jobtrack-engine/internal/secrets"
	"jobtrack-engine/internal/status"
	"jobtrack-engine/internal/store"
)

// followUpAfter is how long after an automated submission the follow-up
// reminder is scheduled.
const followUpAfter = 7 * 24 * time.Hour

// Session is the exclusive browser resource one task owns. *browser.Session
// satisfies it; tests substitute a fake.
type Session interface {
	browser.Page
	SaveScreenshot(ctx context.Context, name string) (string, error)
	Close()
}

// SessionFactory starts a fresh browser session for one task.
type SessionFactory func(ctx context.Context) (Session, error)

// CredentialSource resolves a user's stored login for a board.
type CredentialSource func(userID int64, board string) (secrets.Credentials, error)

type Orchestrator struct {
	DB       *sql.DB
	Guard    *guard.Guard
	Tracker  *status.Tracker
	Profiles store.Profiles
	Docs     store.Documents
	Sessions SessionFactory
	Creds    CredentialSource
	Limiter  *browser.HostLimiter
	Hub      *events.Hub

	// Cfg returns the current configuration snapshot.
	Cfg func() config.Config

	// now is swapped in tests.
	now func() time.Time
}

func (o *Orchestrator) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

// Apply runs one application task end to end. The returned TaskResult is
// always populated; the error carries the failure kind for the retry loop.
func (o *Orchestrator) Apply(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
	res := domain.TaskResult{JobURL: target.JobURL, Board: target.Board}
	cfg := o.Cfg()

	fail := func(err error) (domain.TaskResult, error) {
		res.Success = false
		res.Message = err.Error()
		return res, err
	}

	// Profile data feeds the form filler.
	profile, err := o.Profiles.ProfileData(ctx, target.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoProfile) {
			return fail(guardf("no profile for user %d", target.UserID))
		}
		return fail(transient("load profile", err))
	}

	// Guard checks come before any browser activity.
	dup, err := o.Guard.IsDuplicateURL(ctx, target.UserID, target.JobURL)
	if err != nil {
		return fail(transient("duplicate check", err))
	}
	if dup {
		return fail(guardf("already applied to %s", target.JobURL))
	}

	count, err := o.Guard.DailyAutomatedCount(ctx, target.UserID, o.clock())
	if err != nil {
		return fail(transient("daily count", err))
	}
	if count >= cfg.Automation.MaxDailyApplications {
		return fail(guardf("daily limit reached (%d of %d)", count, cfg.Automation.MaxDailyApplications))
	}

	cvPath, err := o.Docs.ResolveCV(ctx, target.UserID, target.CVID)
	if err != nil {
		if errors.Is(err, store.ErrNoCV) {
			return fail(guardf("no CV available for user %d", target.UserID))
		}
		return fail(transient("resolve CV", err))
	}

	if !sites.IsSupported(target.Board) {
		return fail(guardf("unsupported board: %s", target.Board))
	}
	if !cfg.BoardEnabled(target.Board) {
		return fail(guardf("board %s is disabled", target.Board))
	}

	if target.DryRun {
		log.Printf("[orchestrator] dry run user=%d board=%s url=%s", target.UserID, target.Board, target.JobURL)
		res.Success = true
		res.Message = "dry run: all checks passed"
		return res, nil
	}

	creds, err := o.Creds(target.UserID, target.Board)
	if err != nil {
		return fail(guardf("no stored credentials for %s: %v", target.Board, err))
	}

	sess, err := o.Sessions(ctx)
	if err != nil {
		return fail(transient("start browser session", err))
	}
	defer sess.Close()

	filler := formfill.New(sess, profile)
	adapter, _ := sites.For(target.Board, sites.Deps{
		Page:        sess,
		Filler:      filler,
		Gate:        captcha.New(sess),
		Creds:       creds,
		Limiter:     o.Limiter,
		DelayMin:    time.Duration(cfg.Automation.DelayMinMs) * time.Millisecond,
		DelayMax:    time.Duration(cfg.Automation.DelayMaxMs) * time.Millisecond,
		CaptchaWait: time.Duration(cfg.Automation.CaptchaWaitSeconds) * time.Second,
	})

	if err := adapter.ApplyToJob(ctx, target.JobURL, cvPath); err != nil {
		if path, serr := sess.SaveScreenshot(ctx, target.Board+"_failure"); serr == nil {
			log.Printf("[orchestrator] saved diagnostic screenshot %s", path)
		}
		return fail(classifyAdapterError(target.Board, err))
	}

	app, err := o.recordApplication(ctx, target)
	if err != nil {
		// The submission went through but bookkeeping failed. Report
		// the failure; the guard will stop a duplicate re-submission.
		return fail(transient("record application", err))
	}

	log.Printf("[orchestrator] applied user=%d board=%s url=%s app=%d",
		target.UserID, target.Board, target.JobURL, app.ID)
	res.Success = true
	res.Message = fmt.Sprintf("application submitted via %s", target.Board)
	return res, nil
}

// classifyAdapterError sorts a board failure into the taxonomy: known
// board-side conditions are terminal, everything else is infrastructure.
func classifyAdapterError(board string, err error) error {
	for _, known := range []error{
		sites.ErrLoginFailed,
		sites.ErrManualVerification,
		sites.ErrNoApplyButton,
		sites.ErrUnverified,
		sites.ErrCaptchaTimeout,
		sites.ErrStepLimit,
		sites.ErrManualApplyRequired,
	} {
		if errors.Is(err, known) {
			return adapterFailure(board+" application failed", err)
		}
	}
	return transient(board+" application errored", err)
}

// recordApplication persists the submitted application: company and job
// records first if missing, then the application, then the transition to
// applied with its activity entry and follow-up reminder.
func (o *Orchestrator) recordApplication(ctx context.Context, target domain.SiteTarget) (domain.Application, error) {
	company, err := store.GetOrCreateCompany(ctx, o.DB, domain.Company{Name: hostOf(target.JobURL)})
	if err != nil {
		return domain.Application{}, err
	}
	job, err := store.GetOrCreateJobByURL(ctx, o.DB, domain.Job{
		CompanyID: company.ID,
		Title:     "Automated application",
		URL:       target.JobURL,
		Board:     target.Board,
	})
	if err != nil {
		return domain.Application{}, err
	}

	app, err := store.CreateApplication(ctx, o.DB, domain.Application{
		UserID:    target.UserID,
		JobID:     job.ID,
		CompanyID: company.ID,
		Status:    status.Saved,
		Method:    domain.MethodAutomated,
	}, "automation")
	if err != nil {
		return domain.Application{}, err
	}

	app, err = o.Tracker.Transition(ctx, app.ID, status.Applied, "automation",
		fmt.Sprintf("Automated application via %s", target.Board))
	if err != nil {
		return domain.Application{}, err
	}

	if err := store.SetFollowUpDate(ctx, o.DB, app.ID, o.clock().Add(followUpAfter)); err != nil {
		return domain.Application{}, err
	}
	line := fmt.Sprintf("%s applied via %s: %s", o.clock().UTC().Format(time.RFC3339), target.Board, target.JobURL)
	if err := store.AppendAutomationLog(ctx, o.DB, app.ID, line); err != nil {
		return domain.Application{}, err
	}

	if o.Hub != nil {
		o.Hub.Publish(events.MakeEvent("", events.TypeStatusChanged, 1, events.StatusData{
			ApplicationID: app.ID,
			From:          status.Saved,
			To:            status.Applied,
		}))
	}
	return app, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
