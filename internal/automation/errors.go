package automation

import (
	"errors"
	"fmt"
)

// Kind classifies a task failure for the retry loop and the caller.
type Kind int

const (
	// KindGuard covers pre-flight rejections: duplicate, daily cap,
	// missing CV, unsupported or disabled board. Never retried.
	KindGuard Kind = iota + 1
	// KindAdapter covers board-side failures: missing elements, failed
	// logins, unverifiable or incomplete submissions, CAPTCHA timeouts.
	// Site logic is deterministic given the error, so no retry either.
	KindAdapter
	// KindTransient covers infrastructure faults: session start,
	// navigation timeouts, crashes. Retried up to the configured budget.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindGuard:
		return "guard"
	case KindAdapter:
		return "adapter"
	case KindTransient:
		return "transient"
	}
	return "unknown"
}

// Failure is the typed error every orchestrator exit path returns.
type Failure struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Msg, f.Err)
	}
	return f.Msg
}

func (f *Failure) Unwrap() error { return f.Err }

func guardf(format string, args ...any) *Failure {
	return &Failure{Kind: KindGuard, Msg: fmt.Sprintf(format, args...)}
}

func adapterFailure(msg string, err error) *Failure {
	return &Failure{Kind: KindAdapter, Msg: msg, Err: err}
}

func transient(msg string, err error) *Failure {
	return &Failure{Kind: KindTransient, Msg: msg, Err: err}
}

func kindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindTransient
}

// IsRetryable reports whether the runner should spend another attempt on
// this failure. Anything untyped counts as infrastructure trouble.
func IsRetryable(err error) bool {
	return err != nil && kindOf(err) == KindTransient
}

// IsGuardRejection reports whether the task was stopped before any browser
// or network activity.
func IsGuardRejection(err error) bool {
	return err != nil && kindOf(err) == KindGuard
}
