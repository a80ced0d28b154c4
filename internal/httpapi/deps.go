package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/jobs"
	"jobtrack-engine/internal/status"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Tracker *status.Tracker

	// Atomic stores
	CfgVal      *atomic.Value // stores config.Config
	SweepStatus *atomic.Value // stores jobs.SweepStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Task queue (inject for testability)
	EnqueueTask func(target domain.SiteTarget) (string, error)
	TaskResult  func(id string) (domain.TaskResult, bool)

	// Search sweep entrypoint
	RunSearchSweep func(ctx context.Context) (jobs.SweepStatus, error)
}
