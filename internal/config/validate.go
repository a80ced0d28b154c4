package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate applies defaults and sanity-checks the result.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	applyDefaults(&out)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	a := out.Automation
	if a.MaxDailyApplications > 50 {
		res.addWarn("automation.max_daily_applications is very high (%d); boards throttle aggressive accounts.", a.MaxDailyApplications)
	}
	if a.RetryAttempts > 5 {
		res.addWarn("automation.retry_attempts > 5 rarely helps; site failures are deterministic.")
	}
	if a.DelayMaxMs < a.DelayMinMs {
		res.addErr("automation.delay_max_ms must be >= delay_min_ms")
	}
	if a.DelayMinMs < 250 {
		res.addWarn("automation.delay_min_ms below 250ms makes the click pattern easy to fingerprint.")
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		res.addErr("automation.timezone %q is not a valid IANA zone", a.Timezone)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for name, expr := range map[string]string{
		"schedules.reminders": out.Schedules.Reminders,
		"schedules.search":    out.Schedules.Search,
		"schedules.cleanup":   out.Schedules.Cleanup,
	} {
		if _, err := parser.Parse(expr); err != nil {
			res.addErr("%s: bad cron expression %q: %v", name, expr, err)
		}
	}

	if !out.Boards.PNet.Enabled && !out.Boards.Careers24.Enabled &&
		!out.Boards.LinkedIn.Enabled && !out.Boards.Indeed.Enabled {
		res.addWarn("no job boards enabled; automation tasks will all be rejected.")
	}

	return out, res
}
