// Package tasks queues automation work onto a worker pool and drives the
// retry loop around each attempt.
package tasks

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobtrack-engine/internal/automation"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
)

// Applier is the orchestrator entry point the runner drives.
type Applier func(ctx context.Context, target domain.SiteTarget) (domain.TaskResult, error)

// Task is one queued application attempt.
type Task struct {
	ID     string
	Target domain.SiteTarget
}

var ErrQueueFull = errors.New("task queue is full")

type Dispatcher struct {
	apply Applier
	hub   *events.Hub
	cfg   func() config.Config

	queue chan Task

	mu      sync.Mutex
	results map[string]domain.TaskResult

	// sleep is swapped in tests to skip real backoff waits.
	sleep func(ctx context.Context, d time.Duration)
}

func NewDispatcher(apply Applier, hub *events.Hub, cfg func() config.Config, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		apply:   apply,
		hub:     hub,
		cfg:     cfg,
		queue:   make(chan Task, queueSize),
		results: make(map[string]domain.TaskResult),
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// Enqueue adds a task and returns its ID without blocking; a full queue is
// reported to the caller instead of being waited out.
func (d *Dispatcher) Enqueue(target domain.SiteTarget) (string, error) {
	task := Task{ID: uuid.NewString(), Target: target}
	select {
	case d.queue <- task:
	default:
		return "", ErrQueueFull
	}
	d.publish(events.TypeTaskQueued, events.TaskData{
		TaskID: task.ID, UserID: target.UserID, Board: target.Board, JobURL: target.JobURL,
	})
	log.Printf("[tasks] queued task=%s user=%d board=%s url=%s",
		task.ID, target.UserID, target.Board, target.JobURL)
	return task.ID, nil
}

// Result returns the outcome of a finished task, if still known.
func (d *Dispatcher) Result(id string) (domain.TaskResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, ok := d.results[id]
	return res, ok
}

func (d *Dispatcher) record(id string, res domain.TaskResult) {
	d.mu.Lock()
	d.results[id] = res
	d.mu.Unlock()
}

// Run starts the worker pool and blocks until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	workers := d.cfg().Automation.Workers
	if workers <= 0 {
		workers = 1
	}
	log.Printf("[tasks] starting %d workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case task := <-d.queue:
					d.runTask(ctx, task)
				}
			}
		})
	}
	return g.Wait()
}

// runTask drives one task through the retry budget. Only infrastructure
// failures earn another attempt; guard and adapter failures are final.
func (d *Dispatcher) runTask(ctx context.Context, task Task) {
	cfg := d.cfg()
	attempts := cfg.Automation.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := cfg.RetryBackoff()

	d.publish(events.TypeTaskStarted, events.TaskData{
		TaskID: task.ID, UserID: task.Target.UserID, Board: task.Target.Board, JobURL: task.Target.JobURL,
	})

	var res domain.TaskResult
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err = d.apply(ctx, task.Target)
		if err == nil || !automation.IsRetryable(err) {
			break
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		log.Printf("[tasks] task=%s attempt %d/%d failed, retrying in %s: %v",
			task.ID, attempt, attempts, backoff, err)
		d.publish(events.TypeTaskRetried, events.TaskData{
			TaskID: task.ID, UserID: task.Target.UserID, Board: task.Target.Board,
			JobURL: task.Target.JobURL, Attempt: attempt,
		})
		d.sleep(ctx, backoff)
	}

	if err != nil {
		log.Printf("[tasks] task=%s failed: %v", task.ID, err)
	} else {
		log.Printf("[tasks] task=%s done: %s", task.ID, res.Message)
	}
	d.record(task.ID, res)
	d.publish(events.TypeTaskFinished, events.TaskData{
		TaskID: task.ID, UserID: task.Target.UserID, Board: task.Target.Board,
		JobURL: task.Target.JobURL, Success: res.Success, Message: res.Message,
	})
}

func (d *Dispatcher) publish(typ string, data events.TaskData) {
	if d.hub != nil {
		d.hub.Publish(events.MakeEvent("", typ, 1, data))
	}
}
