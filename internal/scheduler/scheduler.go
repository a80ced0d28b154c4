// Package scheduler runs the engine's recurring sweeps on cron schedules.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Task func(ctx context.Context) error

// Scheduler wraps a cron runner; task panics and errors are logged, never
// allowed to kill the process.
type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron
}

func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		ctx:  ctx,
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
}

// Add registers a task under a standard 5-field cron spec.
func (s *Scheduler) Add(spec, name string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := task(s.ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
			return
		}
		log.Printf("[%s] ok took=%s", name, time.Since(start).Round(time.Millisecond))
	})
	return err
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Every runs a task on a fixed interval, first run immediately. Used for
// lightweight housekeeping that does not need a cron spec.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	go func() {
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}
	}
}
