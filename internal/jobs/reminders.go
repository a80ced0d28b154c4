// Package jobs holds the recurring sweeps: follow-up reminders, automated
// searches across active rules, and screenshot cleanup.
package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/store"
)

// Notifier delivers a follow-up reminder to the user. The engine only has
// the event stream; richer channels live in the outer application.
type Notifier interface {
	Notify(ctx context.Context, app domain.Application) error
}

// HubNotifier publishes reminder.due events for SSE consumers.
type HubNotifier struct {
	Hub *events.Hub
}

func (n HubNotifier) Notify(ctx context.Context, app domain.Application) error {
	if n.Hub != nil {
		n.Hub.Publish(events.MakeEvent("", events.TypeReminderDue, 1, app))
	}
	return nil
}

// ReminderSweep finds applications whose follow-up date has passed, logs a
// reminder activity on each and hands them to the notifier.
type ReminderSweep struct {
	DB       *sql.DB
	Notifier Notifier

	now func() time.Time
}

func (r *ReminderSweep) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Run delivers all due reminders. One application's failure does not stop
// the rest; the first error is reported after the sweep completes.
func (r *ReminderSweep) Run(ctx context.Context) error {
	due, err := store.ListDueFollowUps(ctx, r.DB, r.clock())
	if err != nil {
		return fmt.Errorf("list due follow-ups: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	var firstErr error
	delivered := 0
	for _, app := range due {
		if err := r.remind(ctx, app); err != nil {
			log.Printf("[reminders] app=%d: %v", app.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delivered++
	}
	log.Printf("[reminders] delivered %d of %d due reminders", delivered, len(due))
	return firstErr
}

func (r *ReminderSweep) remind(ctx context.Context, app domain.Application) error {
	if r.Notifier != nil {
		if err := r.Notifier.Notify(ctx, app); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
	}
	if _, err := store.InsertActivity(ctx, r.DB, domain.Activity{
		ApplicationID: app.ID,
		ActivityType:  domain.ActivityReminder,
		Description:   "Follow-up reminder sent",
		Actor:         "scheduler",
	}); err != nil {
		return err
	}
	return store.ClearFollowUpDate(ctx, r.DB, app.ID)
}
