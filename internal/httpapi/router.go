package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach extras that need
// the server handle.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Automation tasks
	th := TasksHandler{Enqueue: d.EnqueueTask, Result: d.TaskResult}
	mux.HandleFunc("/tasks/apply", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: th.Apply,
	}))
	mux.HandleFunc("/tasks/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.GetByPath, // expects /tasks/{id}
	}))

	// Applications
	ah := ApplicationsHandler{DB: d.DB, Tracker: d.Tracker}
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.List,
	}))
	mux.HandleFunc("/applications/summary", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Summary,
	}))
	mux.HandleFunc("/applications/", methodMux(map[string]http.HandlerFunc{
		// /applications/{id}, /{id}/activities, /{id}/transitions
		http.MethodGet: ah.GetByPath,
		// /applications/{id}/status
		http.MethodPost: ah.PostByPath,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Board credentials go straight to the keychain, never the DB
	sh := SecretsHandler{}
	mux.HandleFunc("/api/secrets/board", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetBoardCredentials,
	}))

	// Search sweep
	swh := SweepHandler{
		SweepStatus:    d.SweepStatus,
		Hub:            d.Hub,
		RunSearchSweep: d.RunSearchSweep,
	}
	mux.HandleFunc("/sweep/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: swh.Status,
	}))
	mux.HandleFunc("/sweep/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: swh.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
