package tasks

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobtrack-engine/internal/automation"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
)

func runnerConfig(workers, attempts int) func() config.Config {
	var cfg config.Config
	cfg.Automation.Workers = workers
	cfg.Automation.RetryAttempts = attempts
	cfg.Automation.RetryBackoffSeconds = 60
	return func() config.Config { return cfg }
}

func noSleep(ctx context.Context, d time.Duration) {}

// runUntil starts the pool, waits for done, then cancels it.
func runUntil(t *testing.T, d *Dispatcher, done <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(finished)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not finish in time")
	}
	cancel()
	<-finished
}

func TestDispatcher_RunsTask(t *testing.T) {
	var got domain.SiteTarget
	done := make(chan struct{})
	apply := func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
		got = target
		defer close(done)
		return domain.TaskResult{Success: true, Message: "ok", JobURL: target.JobURL, Board: target.Board}, nil
	}

	d := NewDispatcher(apply, nil, runnerConfig(1, 3), 8)
	d.sleep = noSleep

	id, err := d.Enqueue(domain.SiteTarget{UserID: 1, JobURL: "https://x/1", Board: "pnet"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	runUntil(t, d, done)

	if got.JobURL != "https://x/1" {
		t.Errorf("ran target %+v", got)
	}
	res, ok := d.Result(id)
	if !ok || !res.Success {
		t.Errorf("Result(%s) = %+v, %v", id, res, ok)
	}
}

func TestDispatcher_RetriesTransientOnly(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	transientErr := &automation.Failure{Kind: automation.KindTransient, Msg: "session crashed"}
	apply := func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
		if calls.Add(1) < 3 {
			return domain.TaskResult{}, transientErr
		}
		defer close(done)
		return domain.TaskResult{Success: true}, nil
	}

	d := NewDispatcher(apply, nil, runnerConfig(1, 3), 8)
	d.sleep = noSleep

	if _, err := d.Enqueue(domain.SiteTarget{UserID: 1, JobURL: "https://x/1", Board: "pnet"}); err != nil {
		t.Fatal(err)
	}
	runUntil(t, d, done)

	if n := calls.Load(); n != 3 {
		t.Errorf("apply called %d times, want 3", n)
	}
}

func TestDispatcher_GuardNotRetried(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	apply := func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
		calls.Add(1)
		defer close(done)
		return domain.TaskResult{Message: "already applied"},
			&automation.Failure{Kind: automation.KindGuard, Msg: "already applied"}
	}

	d := NewDispatcher(apply, nil, runnerConfig(1, 3), 8)
	d.sleep = noSleep

	id, _ := d.Enqueue(domain.SiteTarget{UserID: 1, JobURL: "https://x/1", Board: "pnet"})
	runUntil(t, d, done)

	if n := calls.Load(); n != 1 {
		t.Errorf("apply called %d times, want 1", n)
	}
	if res, ok := d.Result(id); !ok || res.Success {
		t.Errorf("Result = %+v, %v", res, ok)
	}
}

func TestDispatcher_RetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	apply := func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
		if calls.Add(1) == 3 {
			defer close(done)
		}
		return domain.TaskResult{Message: "boom"},
			&automation.Failure{Kind: automation.KindTransient, Msg: "boom"}
	}

	d := NewDispatcher(apply, nil, runnerConfig(1, 3), 8)
	d.sleep = noSleep

	id, _ := d.Enqueue(domain.SiteTarget{UserID: 1, JobURL: "https://x/1", Board: "pnet"})
	runUntil(t, d, done)

	if n := calls.Load(); n != 3 {
		t.Errorf("apply called %d times, want 3", n)
	}
	if res, _ := d.Result(id); res.Success {
		t.Error("exhausted task must report failure")
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	apply := func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
		return domain.TaskResult{}, nil
	}
	d := NewDispatcher(apply, nil, runnerConfig(1, 1), 1)

	if _, err := d.Enqueue(domain.SiteTarget{JobURL: "https://x/1"}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := d.Enqueue(domain.SiteTarget{JobURL: "https://x/2"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
}

func TestDispatcher_PublishesLifecycleEvents(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	done := make(chan struct{})
	apply := func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error) {
		defer close(done)
		return domain.TaskResult{Success: true}, nil
	}

	d := NewDispatcher(apply, hub, runnerConfig(1, 1), 8)
	d.sleep = noSleep

	if _, err := d.Enqueue(domain.SiteTarget{UserID: 1, JobURL: "https://x/1", Board: "pnet"}); err != nil {
		t.Fatal(err)
	}
	runUntil(t, d, done)

	want := map[string]bool{
		events.TypeTaskQueued:   false,
		events.TypeTaskStarted:  false,
		events.TypeTaskFinished: false,
	}
	deadline := time.After(2 * time.Second)
	for {
		allSeen := true
		for _, seen := range want {
			if !seen {
				allSeen = false
			}
		}
		if allSeen {
			return
		}
		select {
		case evt := <-ch:
			for typ := range want {
				if strings.Contains(evt, typ) {
					want[typ] = true
				}
			}
		case <-deadline:
			t.Fatalf("missing events: %v", want)
		}
	}
}
