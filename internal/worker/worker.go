package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"anisync/internal/cache"
	"anisync/internal/config"
	"anisync/internal/jikan"
	"anisync/internal/listing"
	"anisync/internal/logging"
	"anisync/internal/match"
	"anisync/internal/notifications"
	"anisync/internal/queue"
)

// State describes the worker lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateTicking State = "ticking"
	StateStopped State = "stopped"
)

// ErrSyncInProgress is returned when a sync pass is requested while another
// pass already holds the gate.
var ErrSyncInProgress = errors.New("sync already in progress")

// Snapshot is a point-in-time view of the worker for the status surface.
type Snapshot struct {
	State       State     `json:"state"`
	Syncing     bool      `json:"syncing"`
	QueueLength int64     `json:"queue_length"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Processed   int64     `json:"processed"`
	Failed      int64     `json:"failed"`
}

// Worker drains the slug queue and enriches each identifier against the
// catalog. Exactly one sync pass runs at a time: the periodic tick, a manual
// full sync, and the scheduler reseed all contend for the same gate, and a
// pass that finds the gate held simply yields.
type Worker struct {
	queue    *queue.Queue
	cache    *cache.Store
	catalog  jikan.Searcher
	source   listing.Source
	notifier notifications.Service
	logger   *slog.Logger

	tickInterval  time.Duration
	tickPause     time.Duration
	fullSyncPause time.Duration
	fullSyncPages int

	syncing atomic.Bool
	started atomic.Bool

	mu        sync.Mutex
	state     State
	lastRun   time.Time
	lastErr   error
	processed int64
	failed    int64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New assembles a worker from its collaborators. A nil notifier falls back
// to the no-op service; a nil logger logs nowhere.
func New(q *queue.Queue, c *cache.Store, catalog jikan.Searcher, source listing.Source, notifier notifications.Service, syncCfg config.Sync, logger *slog.Logger) *Worker {
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		queue:         q,
		cache:         c,
		catalog:       catalog,
		source:        source,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, "worker"),
		tickInterval:  secondsOr(syncCfg.TickIntervalSeconds, 5*time.Second),
		tickPause:     millisOr(syncCfg.TickPauseMillis, 300*time.Millisecond),
		fullSyncPause: millisOr(syncCfg.FullSyncPauseMillis, 500*time.Millisecond),
		fullSyncPages: intOr(syncCfg.FullSyncPages, 2),
		state:         StateIdle,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func secondsOr(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func millisOr(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Millisecond
}

func intOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Start launches the tick loop. The loop runs until Stop is called or the
// context is cancelled. Calling Start on an already-running worker is a
// logged no-op.
func (w *Worker) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		w.logger.Debug("start requested on already-running worker")
		return
	}
	go w.run(ctx)
}

// Stop terminates the tick loop and waits for the in-flight tick to finish.
// Calling Stop on an already-stopped worker is a logged no-op.
func (w *Worker) Stop() {
	stopped := false
	w.stopOnce.Do(func() {
		close(w.stop)
		if w.started.Load() {
			<-w.done
		}
		stopped = true
	})
	if !stopped {
		w.logger.Debug("stop requested on already-stopped worker")
		return
	}
	w.setState(StateStopped)
	w.logger.Info("worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.logger.Info("worker started", logging.String("tick_interval", w.tickInterval.String()))
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick processes at most one queued identifier. A tick that cannot take the
// gate, or finds the queue empty, leaves the worker idle.
func (w *Worker) tick(ctx context.Context) {
	if !w.tryBeginPass() {
		w.logger.Debug("tick skipped, sync pass in progress")
		return
	}
	defer w.endPass()

	slug, ok := w.queue.Next(ctx)
	if !ok {
		w.setState(StateIdle)
		return
	}

	w.setState(StateTicking)
	runID := uuid.NewString()
	if err := w.processSlug(ctx, slug, runID); err != nil {
		w.recordResult(err, 0, 1)
		w.logger.Error("enrichment failed",
			logging.String(logging.FieldRunID, runID),
			logging.String(logging.FieldSlug, slug),
			logging.Error(err))
	} else {
		w.recordResult(nil, 1, 0)
	}
	w.pause(ctx, w.tickPause)
	w.setState(StateIdle)
}

// RunFullSync scrapes the configured number of listing pages, replaces the
// queue's contents with the discovered identifiers, and drains the queue in
// one pass. It returns ErrSyncInProgress when another pass holds the gate.
func (w *Worker) RunFullSync(ctx context.Context) (processed, failed int, err error) {
	if !w.tryBeginPass() {
		return 0, 0, ErrSyncInProgress
	}
	defer w.endPass()

	runID := uuid.NewString()
	started := time.Now()
	w.setState(StateTicking)
	defer w.setState(StateIdle)

	w.logger.Info("full sync started",
		logging.String(logging.FieldRunID, runID),
		logging.Int("pages", w.fullSyncPages))
	if err := w.notifier.NotifySyncStarted(ctx, w.fullSyncPages); err != nil {
		w.logger.Warn("sync-started notification failed", logging.Error(err))
	}

	slugs := w.collectSlugs(ctx, w.fullSyncPages)
	if err := w.queue.Clear(ctx); err != nil {
		w.recordResult(err, 0, 0)
		if nerr := w.notifier.NotifySyncError(ctx, err, "full sync"); nerr != nil {
			w.logger.Warn("sync-error notification failed", logging.Error(nerr))
		}
		return 0, 0, fmt.Errorf("clear queue: %w", err)
	}
	if _, err := w.queue.AddBatch(ctx, slugs); err != nil {
		w.recordResult(err, 0, 0)
		if nerr := w.notifier.NotifySyncError(ctx, err, "full sync"); nerr != nil {
			w.logger.Warn("sync-error notification failed", logging.Error(nerr))
		}
		return 0, 0, fmt.Errorf("seed queue: %w", err)
	}

	for {
		if ctx.Err() != nil {
			return processed, failed, ctx.Err()
		}
		slug, ok := w.queue.Next(ctx)
		if !ok {
			break
		}
		if err := w.processSlug(ctx, slug, runID); err != nil {
			failed++
			w.logger.Error("enrichment failed",
				logging.String(logging.FieldRunID, runID),
				logging.String(logging.FieldSlug, slug),
				logging.Error(err))
		} else {
			processed++
		}
		w.pause(ctx, w.fullSyncPause)
	}

	w.recordResult(nil, processed, failed)

	w.logger.Info("full sync completed",
		logging.String(logging.FieldRunID, runID),
		logging.Int("processed", processed),
		logging.Int("failed", failed),
		logging.String("duration", time.Since(started).Round(time.Second).String()))
	if err := w.notifier.NotifySyncCompleted(ctx, processed, failed, time.Since(started)); err != nil {
		w.logger.Warn("sync-completed notification failed", logging.Error(err))
	}
	return processed, failed, nil
}

// processSlug enriches one listing identifier: search the catalog with the
// normalized slug, pick the structurally best candidate, stamp the listing
// identifier onto the match, and fold it into the caches.
func (w *Worker) processSlug(ctx context.Context, slug, runID string) error {
	identifier := match.NormalizeSlug(slug)
	if identifier == "" {
		return fmt.Errorf("empty identifier from %q", slug)
	}

	candidates, err := w.catalog.SearchBySlug(ctx, identifier)
	if err != nil {
		return fmt.Errorf("catalog search: %w", err)
	}

	matched := match.FindMatchBySlug(identifier, candidates)
	if matched == nil {
		w.logger.Info("no catalog match",
			logging.String(logging.FieldRunID, runID),
			logging.String(logging.FieldSlug, identifier))
		if err := w.notifier.NotifyUnmatchedSlug(ctx, identifier); err != nil {
			w.logger.Warn("unmatched notification failed", logging.Error(err))
		}
		return nil
	}

	enriched := *matched
	// The aggregate is keyed by the listing's identifier, not the catalog's
	// own slug, so later lookups from the listing side stay exact.
	enriched.Slug = identifier

	if err := w.cache.SetMeta(ctx, enriched.ID, *matched); err != nil {
		return err
	}
	if err := w.cache.SetIntegration(ctx, identifier, enriched); err != nil {
		return err
	}
	if err := w.cache.UpsertHome(ctx, enriched); err != nil {
		return err
	}

	w.logger.Info("enriched",
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldSlug, identifier),
		logging.String("title", enriched.Title))
	return nil
}

// collectSlugs scrapes the latest listing pages, caches each page's entries,
// and returns the slugs in page order.
func (w *Worker) collectSlugs(ctx context.Context, pages int) []string {
	collected := listing.CollectPages(ctx, w.source, pages, w.logger)
	for _, page := range collected {
		identifier := fmt.Sprintf("page-%d", page.Number)
		if err := w.cache.SetListing(ctx, identifier, page.Entries); err != nil {
			w.logger.Warn("listing cache write failed",
				logging.Int(logging.FieldPage, page.Number), logging.Error(err))
		}
	}
	return listing.Slugs(collected)
}

// Reseed clears the queue and refills it from the latest listing pages. Used
// by the scheduler; shares the sync gate with tick and full sync.
func (w *Worker) Reseed(ctx context.Context, pages int) (int, error) {
	if !w.tryBeginPass() {
		return 0, ErrSyncInProgress
	}
	defer w.endPass()

	if err := w.queue.Clear(ctx); err != nil {
		return 0, err
	}
	added, err := w.queue.AddBatch(ctx, w.collectSlugs(ctx, pages))
	if err != nil {
		return added, err
	}
	w.logger.Info("queue reseeded", logging.Int("slugs", added), logging.Int("pages", pages))
	return added, nil
}

// Status reports the current worker snapshot, including queue depth.
func (w *Worker) Status(ctx context.Context) Snapshot {
	length, err := w.queue.Len(ctx)
	if err != nil {
		w.logger.Warn("queue length unavailable", logging.Error(err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		State:       w.state,
		Syncing:     w.syncing.Load(),
		QueueLength: length,
		LastRun:     w.lastRun,
		Processed:   w.processed,
		Failed:      w.failed,
	}
	if w.lastErr != nil {
		snap.LastError = w.lastErr.Error()
	}
	return snap
}

// Syncing reports whether a sync pass currently holds the gate.
func (w *Worker) Syncing() bool {
	return w.syncing.Load()
}

func (w *Worker) tryBeginPass() bool {
	return w.syncing.CompareAndSwap(false, true)
}

func (w *Worker) endPass() {
	w.syncing.Store(false)
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Worker) recordResult(err error, processed, failed int) {
	w.mu.Lock()
	w.lastRun = time.Now()
	w.lastErr = err
	w.processed += int64(processed)
	w.failed += int64(failed)
	w.mu.Unlock()
}

func (w *Worker) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-w.stop:
	case <-timer.C:
	}
}
