package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobtrack-engine/internal/automation"
	"jobtrack-engine/internal/automation/captcha"
	"jobtrack-engine/internal/automation/formfill"
	"jobtrack-engine/internal/automation/sites"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/guard"
	"jobtrack-engine/internal/rank"
	"jobtrack-engine/internal/store"
)

// SweepStatus is the last search sweep's outcome, held in an atomic.Value
// behind the HTTP API.
type SweepStatus struct {
	Running   bool   `json:"running"`
	LastRunAt string `json:"last_run_at,omitempty"`
	LastOkAt  string `json:"last_ok_at,omitempty"`
	Rules     int    `json:"rules"`
	Found     int    `json:"found"`
	Queued    int    `json:"queued"`
	LastError string `json:"last_error,omitempty"`
}

// SearchSweep runs every active automation rule: search the rule's board,
// skip already-applied listings, and queue applications for rules that
// allow automatic applying.
type SearchSweep struct {
	DB       *sql.DB
	Guard    *guard.Guard
	Sessions automation.SessionFactory
	Creds    automation.CredentialSource
	Cfg      func() config.Config
	Enqueue  func(domain.SiteTarget) (string, error)

	now func() time.Time
}

func (s *SearchSweep) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Run fans out over active rules. One rule's failure never aborts the
// others; each outcome is logged and folded into the returned status.
func (s *SearchSweep) Run(ctx context.Context) (SweepStatus, error) {
	rules, err := store.ListActiveRules(ctx, s.DB)
	if err != nil {
		return SweepStatus{}, fmt.Errorf("list active rules: %w", err)
	}

	st := SweepStatus{Rules: len(rules), LastRunAt: s.clock().UTC().Format(time.RFC3339)}
	if len(rules) == 0 {
		st.LastOkAt = st.LastRunAt
		return st, nil
	}

	workers := s.Cfg().Automation.Workers
	if workers <= 0 {
		workers = 1
	}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(workers)

	for _, rule := range rules {
		rule := rule
		g.Go(func() error {
			found, queued, err := s.runRule(ctx, rule)
			mu.Lock()
			st.Found += found
			st.Queued += queued
			if err != nil && st.LastError == "" {
				st.LastError = err.Error()
			}
			mu.Unlock()
			if err != nil {
				// isolate this rule's failure from the rest
				log.Printf("[search] rule=%d board=%s: %v", rule.ID, rule.Board, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if st.LastError == "" {
		st.LastOkAt = s.clock().UTC().Format(time.RFC3339)
	}
	log.Printf("[search] sweep done rules=%d found=%d queued=%d", st.Rules, st.Found, st.Queued)
	return st, nil
}

// runRule searches one rule's board and queues new listings.
func (s *SearchSweep) runRule(ctx context.Context, rule domain.AutomationRule) (found, queued int, err error) {
	cfg := s.Cfg()
	if !cfg.BoardEnabled(rule.Board) || !sites.IsSupported(rule.Board) {
		log.Printf("[search] rule=%d skipped, board %s unavailable", rule.ID, rule.Board)
		return 0, 0, nil
	}

	creds, err := s.Creds(rule.UserID, rule.Board)
	if err != nil {
		return 0, 0, fmt.Errorf("credentials: %w", err)
	}
	sess, err := s.Sessions(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("browser session: %w", err)
	}
	defer sess.Close()

	adapter, _ := sites.For(rule.Board, sites.Deps{
		Page:        sess,
		Filler:      formfill.New(sess, nil),
		Gate:        captcha.New(sess),
		Creds:       creds,
		DelayMin:    time.Duration(cfg.Automation.DelayMinMs) * time.Millisecond,
		DelayMax:    time.Duration(cfg.Automation.DelayMaxMs) * time.Millisecond,
		CaptchaWait: time.Duration(cfg.Automation.CaptchaWaitSeconds) * time.Second,
	})

	listings, err := adapter.SearchJobs(ctx, rule.SearchKeywords, rule.LocationFilter)
	if err != nil {
		return 0, 0, fmt.Errorf("search: %w", err)
	}
	found = len(listings)

	if !rule.ApplyAutomatically {
		return found, 0, nil
	}

	// Strongest matches spend the daily budget first.
	rank.Sort(listings, rank.NewKeywordScorer(rule))

	budget := rule.MaxPerDay
	if budget <= 0 {
		budget = cfg.Automation.MaxDailyApplications
	}
	count, err := s.Guard.DailyAutomatedCount(ctx, rule.UserID, s.clock())
	if err != nil {
		return found, 0, fmt.Errorf("daily count: %w", err)
	}
	budget -= count

	for _, l := range listings {
		if budget <= 0 {
			break
		}
		dup, err := s.Guard.IsDuplicateURL(ctx, rule.UserID, l.URL)
		if err != nil {
			return found, queued, fmt.Errorf("duplicate check: %w", err)
		}
		if dup {
			continue
		}
		if _, err := s.Enqueue(domain.SiteTarget{
			UserID: rule.UserID,
			JobURL: l.URL,
			Board:  rule.Board,
		}); err != nil {
			return found, queued, fmt.Errorf("enqueue: %w", err)
		}
		queued++
		budget--
	}
	return found, queued, nil
}
