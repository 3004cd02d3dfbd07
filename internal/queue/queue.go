package queue

import (
	"context"
	"fmt"
	"log/slog"

	"anisync/internal/logging"
	"anisync/internal/store"
)

// DefaultKey is the list key the slug queue lives under.
const DefaultKey = "anime_slugs_queue"

// Queue is a durable FIFO of listing identifiers awaiting enrichment. It is
// backed by a store list, so queued work survives process restarts.
//
// Enqueue failures are surfaced to the caller: losing work silently is worse
// than failing the sync pass that produced it. Dequeue failures degrade to
// "nothing available" with a log line, so a flaky store stalls the worker
// instead of crashing it.
type Queue struct {
	backend store.Store
	key     string
	logger  *slog.Logger
}

// New creates a queue over the given store. An empty key falls back to
// DefaultKey.
func New(backend store.Store, key string, logger *slog.Logger) *Queue {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Queue{
		backend: backend,
		key:     key,
		logger:  logging.NewComponentLogger(logger, "queue"),
	}
}

// Add appends one identifier to the tail of the queue.
func (q *Queue) Add(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	if err := q.backend.ListPush(ctx, q.key, slug); err != nil {
		return fmt.Errorf("enqueue %q: %w", slug, err)
	}
	return nil
}

// AddBatch appends identifiers in order, skipping empties.
func (q *Queue) AddBatch(ctx context.Context, slugs []string) (int, error) {
	added := 0
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if err := q.backend.ListPush(ctx, q.key, slug); err != nil {
			return added, fmt.Errorf("enqueue %q: %w", slug, err)
		}
		added++
	}
	return added, nil
}

// Next pops the oldest identifier. It returns false when the queue is empty
// or the pop failed; failures are logged, not raised.
func (q *Queue) Next(ctx context.Context) (string, bool) {
	slug, ok, err := q.backend.ListPop(ctx, q.key)
	if err != nil {
		q.logger.Warn("queue pop failed", logging.Error(err))
		return "", false
	}
	return slug, ok
}

// NextBatch pops up to n identifiers in FIFO order.
func (q *Queue) NextBatch(ctx context.Context, n int) []string {
	slugs := make([]string, 0, n)
	for len(slugs) < n {
		slug, ok := q.Next(ctx)
		if !ok {
			break
		}
		slugs = append(slugs, slug)
	}
	return slugs
}

// Len reports the number of queued identifiers.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.backend.ListLen(ctx, q.key)
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Clear drops every queued identifier.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.backend.Delete(ctx, q.key); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}
