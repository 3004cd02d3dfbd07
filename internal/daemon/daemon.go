package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"anisync/internal/cache"
	"anisync/internal/config"
	"anisync/internal/jikan"
	"anisync/internal/listing"
	"anisync/internal/logging"
	"anisync/internal/notifications"
	"anisync/internal/queue"
	"anisync/internal/server"
	"anisync/internal/store"
	"anisync/internal/worker"
)

// Daemon wires the sync pipeline together and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store     store.Store
	cache     *cache.Store
	queue     *queue.Queue
	worker    *worker.Worker
	scheduler *worker.Scheduler
	server    *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with all collaborators initialized but nothing
// started.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	backend, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ttl := time.Duration(cfg.Store.CacheTTLHours) * time.Hour
	cacheStore := cache.New(backend, ttl, logger)
	slugQueue := queue.New(backend, cfg.Store.QueueKey, logger)

	catalog, err := jikan.New(cfg.Catalog.BaseURL,
		jikan.WithRateLimit(cfg.Catalog.RequestsPerSec, cfg.Catalog.Burst),
		jikan.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Catalog.RequestTimeout) * time.Second}))
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("catalog client: %w", err)
	}

	scraper, err := listing.NewScraper(cfg.Listing.BaseURL,
		listing.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Listing.RequestTimeout) * time.Second}),
		listing.WithUserAgent(cfg.Listing.UserAgent))
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("listing scraper: %w", err)
	}

	notifier := notifications.NewService(cfg)
	w := worker.New(slugQueue, cacheStore, catalog, scraper, notifier, cfg.Sync, logger)
	sched := worker.NewScheduler(w, cfg.Sync, logger)

	srv, err := server.New(cfg, w, cacheStore, slugQueue, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	lockPath := filepath.Join(cfg.Logging.Dir, "anisyncd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     backend,
		cache:     cacheStore,
		queue:     slugQueue,
		worker:    w,
		scheduler: sched,
		server:    srv,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the worker, scheduler, and
// API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another anisync daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.worker.Start(runCtx)
	d.scheduler.Start(runCtx)

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.scheduler.Stop()
	d.worker.Stop()
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the worker snapshot.
func (d *Daemon) Status(ctx context.Context) worker.Snapshot {
	return d.worker.Status(ctx)
}
