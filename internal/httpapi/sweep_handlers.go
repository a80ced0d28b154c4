package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/jobs"
)

type SweepHandler struct {
	SweepStatus    *atomic.Value // jobs.SweepStatus
	Hub            *events.Hub
	RunSearchSweep func(ctx context.Context) (jobs.SweepStatus, error)
}

func (h SweepHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.SweepStatus.Load().(jobs.SweepStatus)
	writeJSON(w, st)
}

func (h SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.SweepStatus.Load().(jobs.SweepStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.SweepStatus.Store(jobs.SweepStatus{
		Running:   true,
		LastRunAt: time.Now().UTC().Format(time.RFC3339),
		LastOkAt:  st.LastOkAt,
	})

	go func() {
		next, err := h.RunSearchSweep(context.Background())

		now := time.Now().UTC().Format(time.RFC3339)
		next.Running = false
		next.LastRunAt = now
		if err != nil {
			next.LastError = err.Error()
		} else if next.LastError == "" {
			next.LastOkAt = now
		}
		h.SweepStatus.Store(next)
		h.Hub.Publish(events.MakeEvent("", events.TypeSweepFinished, 1, next))
	}()

	writeJSON(w, map[string]any{"ok": true})
}
