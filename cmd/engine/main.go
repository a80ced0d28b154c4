package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"jobtrack-engine/internal/automation"
	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/guard"
	"jobtrack-engine/internal/httpapi"
	"jobtrack-engine/internal/jobs"
	"jobtrack-engine/internal/scheduler"
	"jobtrack-engine/internal/secrets"
	"jobtrack-engine/internal/status"
	"jobtrack-engine/internal/store"
	"jobtrack-engine/internal/tasks"
)

func main() {
	// Engine data dir: use env if provided (the desktop shell passes one),
	// else a local folder.
	dataDir := os.Getenv("JOBTRACK_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir. A second instance would race the browser
	// sessions and double-submit applications.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	held, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock: %v", err)
	}
	if !held {
		log.Fatalf("another engine is already running for %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)
	cfgNow := func() config.Config { return cfgVal.Load().(config.Config) }

	dbPath := filepath.Join(dataDir, "jobtrack.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Pool.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()

	screenshotDir := cfg.Automation.ScreenshotDir
	if !filepath.IsAbs(screenshotDir) {
		screenshotDir = filepath.Join(dataDir, screenshotDir)
	}
	limiter := browser.NewHostLimiter(cfg.Automation.RequestsPerSecond, cfg.Automation.Burst)

	sessions := func(ctx context.Context) (automation.Session, error) {
		c := cfgNow()
		return browser.NewSession(ctx, browser.Options{
			Headless:      c.Automation.Headless,
			ScreenshotDir: screenshotDir,
			Limiter:       limiter,
			WaitTimeout:   time.Duration(c.Automation.ElementWaitSeconds) * time.Second,
		})
	}

	gd := &guard.Guard{DB: db.Pool, Loc: cfg.Location()}
	tracker := &status.Tracker{DB: db.Pool}

	orch := &automation.Orchestrator{
		DB:       db.Pool,
		Guard:    gd,
		Tracker:  tracker,
		Profiles: store.Profiles{DB: db.Pool},
		Docs:     store.Documents{DB: db.Pool},
		Sessions: sessions,
		Creds:    secrets.GetBoardCredentials,
		Limiter:  limiter,
		Hub:      hub,
		Cfg:      cfgNow,
	}

	dispatcher := tasks.NewDispatcher(orch.Apply, hub, cfgNow, 0)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[tasks] dispatcher stopped: %v", err)
		}
	}()

	var sweepStatus atomic.Value
	sweepStatus.Store(jobs.SweepStatus{})

	search := &jobs.SearchSweep{
		DB:       db.Pool,
		Guard:    gd,
		Sessions: sessions,
		Creds:    secrets.GetBoardCredentials,
		Cfg:      cfgNow,
		Enqueue:  dispatcher.Enqueue,
	}
	runSearch := func(ctx context.Context) (jobs.SweepStatus, error) {
		return search.Run(ctx)
	}

	reminders := &jobs.ReminderSweep{
		DB:       db.Pool,
		Notifier: jobs.HubNotifier{Hub: hub},
	}
	cleanup := &jobs.CleanupSweep{Dir: screenshotDir}

	sched := scheduler.New(ctx)
	mustSchedule(sched, cfg.Schedules.Reminders, "reminders", reminders.Run)
	mustSchedule(sched, cfg.Schedules.Search, "search", func(ctx context.Context) error {
		st, err := search.Run(ctx)
		sweepStatus.Store(st)
		hub.Publish(events.MakeEvent("", events.TypeSweepFinished, 1, st))
		return err
	})
	mustSchedule(sched, cfg.Schedules.Cleanup, "cleanup", cleanup.Run)
	sched.Start()
	defer sched.Stop()

	mux := httpapi.NewMux(httpapi.Deps{
		DB:             db.Pool,
		Hub:            hub,
		Tracker:        tracker,
		CfgVal:         &cfgVal,
		SweepStatus:    &sweepStatus,
		UserCfgPath:    userCfgPath,
		LoadCfg:        loadCfg,
		EnqueueTask:    dispatcher.Enqueue,
		TaskResult:     dispatcher.Result,
		RunSearchSweep: runSearch,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Local shutdown endpoint, token-guarded so only the desktop shell
	// that spawned us can use it.
	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	log.Printf("engine shutdown token: %s", token)

	go func() {
		<-ctx.Done()
		log.Print("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func mustSchedule(s *scheduler.Scheduler, spec, name string, task scheduler.Task) {
	if err := s.Add(spec, name, task); err != nil {
		log.Fatalf("schedule %s (%q): %v", name, spec, err)
	}
}
