// Package sites holds one adapter per supported job board. Every adapter
// implements the same capability set; board differences live in selectors,
// URLs and, for guided flows, a bounded step loop.
package sites

import (
	"context"
	"errors"
	"sort"
	"time"

	"jobtrack-engine/internal/automation/captcha"
	"jobtrack-engine/internal/automation/formfill"
	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/secrets"
)

// Failure modes the orchestrator tells apart with errors.Is.
var (
	ErrLoginFailed         = errors.New("login failed")
	ErrManualVerification  = errors.New("board requires manual verification")
	ErrNoApplyButton       = errors.New("apply button not found")
	ErrUnverified          = errors.New("submission could not be verified")
	ErrCaptchaTimeout      = errors.New("CAPTCHA not resolved in time")
	ErrStepLimit           = errors.New("application did not complete within the step limit")
	ErrManualApplyRequired = errors.New("external application, manual handling required")
)

type Adapter interface {
	Board() string
	Login(ctx context.Context) error
	SearchJobs(ctx context.Context, keywords, location string) ([]domain.Listing, error)
	ApplyToJob(ctx context.Context, jobURL, cvPath string) error
}

// Deps is everything an adapter needs for one task. The page and filler are
// bound to a single browser session owned by the calling task.
type Deps struct {
	Page    browser.Page
	Filler  *formfill.Filler
	Gate    *captcha.Gate
	Creds   secrets.Credentials
	Limiter *browser.HostLimiter

	DelayMin, DelayMax time.Duration
	CaptchaWait        time.Duration
}

var constructors = map[string]func(Deps) Adapter{
	"pnet":      newPNet,
	"careers24": newCareers24,
	"linkedin":  newLinkedIn,
	"indeed":    newIndeed,
}

// For looks up the adapter for a board identifier.
func For(board string, deps Deps) (Adapter, bool) {
	ctor, ok := constructors[board]
	if !ok {
		return nil, false
	}
	return ctor(deps), true
}

// IsSupported reports whether a board identifier has an adapter, without
// building one.
func IsSupported(board string) bool {
	_, ok := constructors[board]
	return ok
}

func Supported() []string {
	boards := make([]string, 0, len(constructors))
	for b := range constructors {
		boards = append(boards, b)
	}
	sort.Strings(boards)
	return boards
}
