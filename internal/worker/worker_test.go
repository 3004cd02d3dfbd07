package worker_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"anisync/internal/cache"
	"anisync/internal/config"
	"anisync/internal/jikan"
	"anisync/internal/listing"
	"anisync/internal/queue"
	"anisync/internal/store"
	"anisync/internal/worker"
)

type fakeSource struct {
	pages map[int][]listing.Entry
}

func (s *fakeSource) LatestPage(_ context.Context, page int) ([]listing.Entry, error) {
	entries, ok := s.pages[page]
	if !ok {
		return nil, fmt.Errorf("no page %d", page)
	}
	return entries, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	searched []string
	results  map[string][]jikan.Anime
	block    chan struct{}
}

func (c *fakeCatalog) SearchByTitle(_ context.Context, query string) ([]jikan.Anime, error) {
	return nil, errors.New("unused")
}

func (c *fakeCatalog) SearchBySlug(ctx context.Context, slug string) ([]jikan.Anime, error) {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	c.searched = append(c.searched, slug)
	c.mu.Unlock()
	if results, ok := c.results[slug]; ok {
		return results, nil
	}
	// Default: one candidate whose title mirrors the slug.
	title := strings.ReplaceAll(slug, "-", " ")
	return []jikan.Anime{{ID: "id-" + slug, Title: title, Slug: slug}}, nil
}

func (c *fakeCatalog) GetByID(_ context.Context, id int64) (*jikan.Anime, error) {
	return nil, nil
}

func newHarness(t *testing.T, source listing.Source, catalog jikan.Searcher, syncCfg config.Sync) (*worker.Worker, *cache.Store, *queue.Queue) {
	t.Helper()
	backend := store.NewMemory()
	t.Cleanup(func() { backend.Close() })
	c := cache.New(backend, time.Hour, nil)
	q := queue.New(backend, "", nil)
	w := worker.New(q, c, catalog, source, nil, syncCfg, nil)
	return w, c, q
}

func TestRunFullSyncEnrichesEveryListing(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{
		1: {
			{Slug: "sousou-no-frieren", Title: "Frieren"},
			{Slug: "dungeon-meshi", Title: "Dungeon Meshi"},
		},
		2: {
			{Slug: "one-piece", Title: "One Piece"},
		},
	}}
	catalog := &fakeCatalog{}
	cfg := config.Sync{FullSyncPages: 2, FullSyncPauseMillis: 1}
	w, c, _ := newHarness(t, source, catalog, cfg)

	processed, failed, err := w.RunFullSync(context.Background())
	if err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}
	if processed != 3 || failed != 0 {
		t.Fatalf("processed=%d failed=%d, want 3/0", processed, failed)
	}

	ctx := context.Background()
	for _, slug := range []string{"sousou-no-frieren", "dungeon-meshi", "one-piece"} {
		got, ok, err := c.GetIntegration(ctx, slug)
		if err != nil || !ok {
			t.Fatalf("integration entry missing for %s (ok=%v err=%v)", slug, ok, err)
		}
		if got.Slug != slug {
			t.Fatalf("integration slug = %q, want listing identifier %q", got.Slug, slug)
		}
	}

	home, ok, err := c.GetHome(ctx)
	if err != nil || !ok {
		t.Fatalf("GetHome ok=%v err=%v", ok, err)
	}
	if len(home) != 3 {
		t.Fatalf("home has %d entries, want 3", len(home))
	}

	// The scraped pages land in the listing cache as a side effect.
	pageOne, ok, err := c.GetListing(ctx, "page-1")
	if err != nil || !ok {
		t.Fatalf("listing page-1 not cached: ok=%v err=%v", ok, err)
	}
	if len(pageOne) != 2 {
		t.Fatalf("page-1 has %d entries, want 2", len(pageOne))
	}
}

func TestRunFullSyncProcessesInListingOrder(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{
		1: {{Slug: "alpha"}, {Slug: "beta"}, {Slug: "gamma"}},
	}}
	catalog := &fakeCatalog{}
	cfg := config.Sync{FullSyncPages: 1, FullSyncPauseMillis: 1}
	w, _, _ := newHarness(t, source, catalog, cfg)

	if _, _, err := w.RunFullSync(context.Background()); err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if len(catalog.searched) != len(want) {
		t.Fatalf("searched %v, want %v", catalog.searched, want)
	}
	for i := range want {
		if catalog.searched[i] != want[i] {
			t.Fatalf("searched %v, want %v", catalog.searched, want)
		}
	}
}

func TestRunFullSyncReplacesQueuedSlugs(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{
		1: {{Slug: "fresh-slug"}},
	}}
	catalog := &fakeCatalog{}
	cfg := config.Sync{FullSyncPages: 1, FullSyncPauseMillis: 1}
	w, _, q := newHarness(t, source, catalog, cfg)

	ctx := context.Background()
	if err := q.Add(ctx, "stale-slug"); err != nil {
		t.Fatal(err)
	}

	processed, failed, err := w.RunFullSync(ctx)
	if err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}
	if processed != 1 || failed != 0 {
		t.Fatalf("processed=%d failed=%d, want 1/0", processed, failed)
	}
	for _, slug := range catalog.searched {
		if slug == "stale-slug" {
			t.Fatalf("stale entry survived the reseed: searched %v", catalog.searched)
		}
	}
	if depth, err := q.Len(ctx); err != nil || depth != 0 {
		t.Fatalf("queue depth after sync = %d (err=%v), want 0", depth, err)
	}
}

func TestRunFullSyncSingleFlight(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{
		1: {{Slug: "alpha"}},
	}}
	catalog := &fakeCatalog{block: make(chan struct{})}
	cfg := config.Sync{FullSyncPages: 1, FullSyncPauseMillis: 1}
	w, _, _ := newHarness(t, source, catalog, cfg)

	firstDone := make(chan error, 1)
	go func() {
		_, _, err := w.RunFullSync(context.Background())
		firstDone <- err
	}()

	// Wait for the first pass to take the gate, then a second pass must
	// yield instead of running concurrently.
	deadline := time.After(2 * time.Second)
	for !w.Syncing() {
		select {
		case <-deadline:
			t.Fatal("first sync never took the gate")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, _, err := w.RunFullSync(context.Background()); !errors.Is(err, worker.ErrSyncInProgress) {
		t.Fatalf("second sync error = %v, want ErrSyncInProgress", err)
	}

	close(catalog.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first sync: %v", err)
	}
}

func TestReseedClearsAndRefills(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{
		1: {{Slug: "fresh-one"}, {Slug: "fresh-two"}},
	}}
	catalog := &fakeCatalog{}
	w, _, q := newHarness(t, source, catalog, config.Sync{})

	ctx := context.Background()
	if err := q.Add(ctx, "stale-entry"); err != nil {
		t.Fatal(err)
	}

	added, err := w.Reseed(ctx, 1)
	if err != nil {
		t.Fatalf("Reseed: %v", err)
	}
	if added != 2 {
		t.Fatalf("added %d, want 2", added)
	}

	got, ok := q.Next(ctx)
	if !ok || got != "fresh-one" {
		t.Fatalf("Next = %q ok=%v, want fresh-one", got, ok)
	}
}

func TestUnmatchedSlugIsNotAFailure(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{
		1: {{Slug: "mystery-show"}},
	}}
	catalog := &fakeCatalog{results: map[string][]jikan.Anime{
		"mystery-show": nil,
	}}
	cfg := config.Sync{FullSyncPages: 1, FullSyncPauseMillis: 1}
	w, c, _ := newHarness(t, source, catalog, cfg)

	processed, failed, err := w.RunFullSync(context.Background())
	if err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}
	if failed != 0 {
		t.Fatalf("failed=%d, want 0: an unmatched slug is a miss, not an error", failed)
	}
	if processed != 1 {
		t.Fatalf("processed=%d, want 1", processed)
	}
	if _, ok, _ := c.GetIntegration(context.Background(), "mystery-show"); ok {
		t.Fatal("unmatched slug must not produce an integration entry")
	}
}

func TestStatusReportsQueueDepth(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{}}
	catalog := &fakeCatalog{}
	w, _, q := newHarness(t, source, catalog, config.Sync{})

	ctx := context.Background()
	if _, err := q.AddBatch(ctx, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	snap := w.Status(ctx)
	if snap.QueueLength != 2 {
		t.Fatalf("QueueLength = %d, want 2", snap.QueueLength)
	}
	if snap.State != worker.StateIdle {
		t.Fatalf("State = %q, want idle", snap.State)
	}
	if snap.Syncing {
		t.Fatal("Syncing should be false")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{}}
	catalog := &fakeCatalog{}
	w, _, _ := newHarness(t, source, catalog, config.Sync{TickIntervalSeconds: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	w.Stop()
	w.Stop()

	if snap := w.Status(ctx); snap.State != worker.StateStopped {
		t.Fatalf("State = %q, want stopped", snap.State)
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	source := &fakeSource{pages: map[int][]listing.Entry{}}
	catalog := &fakeCatalog{}
	w, _, _ := newHarness(t, source, catalog, config.Sync{TickIntervalSeconds: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	w.Start(ctx)
	w.Stop()

	if snap := w.Status(ctx); snap.State != worker.StateStopped {
		t.Fatalf("State = %q, want stopped", snap.State)
	}
}
