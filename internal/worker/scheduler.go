package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"anisync/internal/config"
	"anisync/internal/logging"
)

// Scheduler periodically reseeds the slug queue from the freshest listing
// pages so listings keep flowing in even when nobody hits the read surface.
// A reseed that collides with a running sync pass is skipped, not queued:
// the next interval will catch up.
type Scheduler struct {
	worker   *Worker
	interval time.Duration
	pages    int
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler builds a scheduler over the worker's reseed operation.
func NewScheduler(w *Worker, syncCfg config.Sync, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := time.Duration(syncCfg.ReseedIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	pages := syncCfg.ReseedPages
	if pages <= 0 {
		pages = 2
	}
	return &Scheduler{
		worker:   w,
		interval: interval,
		pages:    pages,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the reseed loop, beginning with an immediate reseed.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop terminates the reseed loop.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	s.logger.Info("scheduler started",
		logging.String("interval", s.interval.String()),
		logging.Int("pages", s.pages))
	s.reseed(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.reseed(ctx)
		}
	}
}

func (s *Scheduler) reseed(ctx context.Context) {
	added, err := s.worker.Reseed(ctx, s.pages)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		s.logger.Debug("reseed skipped, sync pass in progress")
	case err != nil:
		s.logger.Error("reseed failed", logging.Error(err))
	default:
		s.logger.Info("reseed complete", logging.Int("slugs", added))
	}
}
