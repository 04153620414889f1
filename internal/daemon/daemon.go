// Package daemon runs notionsync as a long-lived service: a cron scheduled sync,
// a webhook endpoint for page status changes, health, status and metrics
// endpoints, and configuration hot reload.
package daemon

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
	"git.home.luguber.info/inful/notionsync/internal/metrics"
	"git.home.luguber.info/inful/notionsync/internal/state"
	"git.home.luguber.info/inful/notionsync/internal/syncer"
)

// Runner executes sync requests.
type Runner interface {
	Run(ctx context.Context, req syncer.Request) (syncer.Report, error)
	State() *state.Store
	Close() error
}

// Factory builds a Runner for a configuration.
type Factory func(ctx context.Context, cfg *config.Config, rec metrics.Recorder) (Runner, error)

// OpenSyncer is the production Factory.
func OpenSyncer(ctx context.Context, cfg *config.Config, rec metrics.Recorder) (Runner, error) {
	return syncer.Open(ctx, cfg, syncer.WithRecorder(rec))
}

// Daemon owns the runner, scheduler, watcher and HTTP server.
type Daemon struct {
	configPath string
	factory    Factory

	mu     sync.RWMutex
	cfg    *config.Config
	runner Runner
	last   *syncer.Report

	// runMu serialises sync runs and runner swaps.
	runMu sync.Mutex

	registry     *prom.Registry
	recorder     metrics.Recorder
	scheduler    *Scheduler
	watcher      *ConfigWatcher
	server       *http.Server
	errorAdapter *errors.HTTPErrorAdapter
	startedAt    time.Time
}

// New prepares a daemon. configPath may be empty when the configuration did not
// come from a file; hot reload is then disabled.
func New(configPath string, cfg *config.Config, factory Factory) *Daemon {
	if factory == nil {
		factory = OpenSyncer
	}
	d := &Daemon{
		configPath:   configPath,
		factory:      factory,
		cfg:          cfg,
		recorder:     metrics.NoopRecorder{},
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
		startedAt:    time.Now(),
	}
	if cfg.Monitoring.Metrics.Enabled {
		d.registry = prom.NewRegistry()
		d.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}
	return d
}

// Run starts every component and blocks until ctx is canceled, then shuts down.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.config()
	if err := checkWebhookAuth(cfg); err != nil {
		return err
	}
	runner, err := d.factory(ctx, cfg, d.recorder)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.runner = runner
	d.mu.Unlock()

	d.scheduler, err = NewScheduler()
	if err != nil {
		_ = runner.Close()
		return err
	}
	if err := d.scheduler.ScheduleSync(cfg.Daemon.Schedule, func() { d.scheduledSync(ctx) }); err != nil {
		_ = runner.Close()
		return err
	}

	ln, err := net.Listen("tcp", cfg.Daemon.HTTP.Addr)
	if err != nil {
		_ = runner.Close()
		return errors.DaemonError("failed to bind HTTP listener").WithCause(err).WithContext("addr", cfg.Daemon.HTTP.Addr).Build()
	}
	d.server = &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := d.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	d.scheduler.Start()
	slog.Info("Daemon started",
		slog.String("addr", ln.Addr().String()),
		logfields.ScheduleName(cfg.Daemon.Schedule))

	if cfg.Daemon.WatchConfig && d.configPath != "" {
		d.watcher, err = NewConfigWatcher(d.configPath, d.reloadFromFile)
		if err == nil {
			err = d.watcher.Start(ctx)
		}
		if err != nil {
			slog.Warn("Configuration hot reload disabled", logfields.Error(err))
			d.watcher = nil
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = errors.DaemonError("HTTP server failed").WithCause(err).Build()
		}
	}
	d.shutdown()
	return runErr
}

func (d *Daemon) shutdown() {
	slog.Info("Shutting down daemon")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.server != nil {
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown", logfields.Error(err))
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			slog.Error("Scheduler shutdown", logfields.Error(err))
		}
	}

	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runner != nil {
		if err := d.runner.Close(); err != nil {
			slog.Error("Closing sync runner", logfields.Error(err))
		}
		d.runner = nil
	}
}

func (d *Daemon) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Sync runs one request on the current runner. Runs never overlap.
func (d *Daemon) Sync(ctx context.Context, req syncer.Request) (syncer.Report, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.RLock()
	runner := d.runner
	d.mu.RUnlock()
	if runner == nil {
		return syncer.Report{}, errors.DaemonError("daemon is not running").Build()
	}

	rep, err := runner.Run(ctx, req)
	if err == nil {
		d.mu.Lock()
		d.last = &rep
		d.mu.Unlock()
	}
	return rep, err
}

func (d *Daemon) scheduledSync(ctx context.Context) {
	if _, err := d.Sync(ctx, syncer.Request{Mode: config.SyncModeScheduled}); err != nil {
		slog.Error("Scheduled sync failed", logfields.Error(err))
	}
}

func (d *Daemon) reloadFromFile(ctx context.Context) error {
	cfg, err := config.Load(d.configPath)
	if err != nil {
		return err
	}
	return d.ReloadConfig(ctx, cfg)
}

// ReloadConfig builds a runner for cfg and swaps it in once no run is active.
// Listener address and webhook path changes need a restart.
func (d *Daemon) ReloadConfig(ctx context.Context, cfg *config.Config) error {
	current := d.config()
	if err := checkWebhookAuth(cfg); err != nil {
		return err
	}
	if cfg.Daemon.HTTP.Addr != current.Daemon.HTTP.Addr || cfg.Daemon.Webhook.Path != current.Daemon.Webhook.Path {
		slog.Warn("HTTP address or webhook path changed; restart the daemon to apply")
	}

	runner, err := d.factory(ctx, cfg, d.recorder)
	if err != nil {
		return err
	}

	d.runMu.Lock()
	d.mu.Lock()
	old := d.runner
	d.runner = runner
	d.cfg = cfg
	d.mu.Unlock()
	d.runMu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			slog.Warn("Closing previous sync runner", logfields.Error(err))
		}
	}
	if d.scheduler != nil && cfg.Daemon.Schedule != current.Daemon.Schedule {
		return d.scheduler.Reschedule(cfg.Daemon.Schedule)
	}
	return nil
}
