package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"

	"blogbuilder/internal/config"
	"blogbuilder/internal/events"
	"blogbuilder/internal/history"
	"blogbuilder/internal/logfields"
	"blogbuilder/internal/metrics"
	"blogbuilder/internal/render"
	"blogbuilder/internal/server"
	"blogbuilder/internal/watch"
)

// serveRuntime bundles everything the serve loop needs per rebuild.
type serveRuntime struct {
	cfg       *config.Config
	gen       *render.Generator
	recorder  metrics.Recorder
	store     *history.Store
	publisher events.Publisher
	srv       *server.Server

	mu       sync.Mutex
	building atomic.Bool
}

func runServe(cfg *config.Config) error {
	if CLI.Serve.Addr != "" {
		cfg.Server.Addr = CLI.Serve.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt := &serveRuntime{cfg: cfg}

	var registry *prometheus.Registry
	rt.recorder = metrics.NoopRecorder{}
	if cfg.Server.Metrics {
		registry = prometheus.NewRegistry()
		rt.recorder = metrics.NewPrometheusRecorder(registry)
	}

	gen, err := render.NewGenerator(cfg,
		render.WithDrafts(CLI.Serve.Drafts),
		render.WithRecorder(rt.recorder),
	)
	if err != nil {
		return err
	}
	rt.gen = gen

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Build history disabled", "error", err)
	} else {
		rt.store = store
		defer store.Close()
	}

	rt.publisher = events.NoopPublisher{}
	if cfg.Events.URL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			slog.Warn("Build event publishing disabled", "error", err)
		} else {
			rt.publisher = pub
			defer pub.Close()
		}
	}

	// The first build must succeed before serving anything.
	if err := rt.rebuild(ctx, "startup"); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	rt.srv = server.New(server.Options{
		Addr:      cfg.Server.Addr,
		OutputDir: cfg.Output.Dir,
		Registry:  registry,
	})
	if err := rt.srv.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = rt.srv.Stop(stopCtx)
	}()

	debouncer, err := watch.NewDebouncer(watch.DebouncerConfig{
		QuietWindow:  cfg.Watch.QuietWindow.Std(),
		MaxDelay:     cfg.Watch.MaxDelay.Std(),
		BuildRunning: rt.building.Load,
	})
	if err != nil {
		return err
	}

	roots := []string{cfg.Content.Dir}
	if cfg.Content.LayoutsDir != "" {
		roots = append(roots, cfg.Content.LayoutsDir)
	}
	watcher, err := watch.NewWatcher(debouncer, roots...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	go func() { _ = debouncer.Run(ctx) }()
	go func() { _ = watcher.Run(ctx) }()

	scheduler, err := startScheduler(cfg, debouncer)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	slog.Info("Serving site", "addr", rt.srv.Addr(), "drafts", CLI.Serve.Drafts)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return nil
		case trig := <-debouncer.Triggers():
			slog.Info("Rebuilding",
				logfields.Cause(trig.Cause),
				slog.Int("changes", trig.ChangeCount),
				logfields.Path(trig.LastPath))
			if err := rt.rebuild(ctx, trig.Cause); err != nil {
				// Keep serving the last good output.
				slog.Error("Rebuild failed", "error", err)
			}
		}
	}
}

// rebuild runs one build and fans the report out to history, events,
// metrics and the status endpoint.
func (rt *serveRuntime) rebuild(ctx context.Context, reason string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.building.Store(true)
	defer rt.building.Store(false)

	rt.recorder.IncRebuildTrigger(reason)

	report, err := rt.gen.Build(ctx)
	if rt.srv != nil {
		rt.srv.RecordBuild(report)
	}
	if rt.store != nil {
		if herr := rt.store.Record(ctx, report); herr != nil {
			slog.Warn("Failed to record build history", "error", herr)
		}
	}
	if perr := rt.publisher.PublishBuild(report); perr != nil {
		slog.Warn("Failed to publish build event", "error", perr)
	}
	return err
}

// startScheduler wires the optional cron rebuild. Scheduled rebuilds feed
// the debouncer so they coalesce with file-change triggers.
func startScheduler(cfg *config.Config, debouncer *watch.Debouncer) (gocron.Scheduler, error) {
	if cfg.Server.RebuildCron == "" {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(cfg.Server.RebuildCron, false),
		gocron.NewTask(func() {
			slog.Debug("Scheduled rebuild tick")
			debouncer.Notify("scheduled")
		}),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule rebuild job: %w", err)
	}

	scheduler.Start()
	slog.Info("Scheduled rebuilds enabled", "cron", cfg.Server.RebuildCron)
	return scheduler, nil
}
