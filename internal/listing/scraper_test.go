package listing_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anisync/internal/listing"
	"anisync/internal/logging"
)

const listingHTML = `<!doctype html>
<html><body>
<div class="post-show"><ul>
  <li>
    <div class="thumb"><a href="#"><img class="npws" src="https://cdn.example/a.jpg"></a></div>
    <h2 class="entry-title"><a href="https://example.com/anime/spy-x-family-season-2/">Spy x Family Season 2</a></h2>
    <span><i class="dashicons dashicons-controls-play"></i><author>Episode 12</author></span>
  </li>
  <li>
    <h2 class="entry-title"><a href="https://example.com/anime/one-punch-man/">One Punch Man</a></h2>
  </li>
  <li>
    <h2 class="entry-title"><a href="https://example.com/anime/untitled/"></a></h2>
  </li>
</ul></div>
</body></html>`

func TestLatestPageParsesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anime-terbaru/" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, listingHTML)
	}))
	t.Cleanup(server.Close)

	scraper, err := listing.NewScraper(server.URL)
	if err != nil {
		t.Fatalf("NewScraper: %v", err)
	}

	entries, err := scraper.LatestPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("LatestPage returned error: %v", err)
	}
	// The row without a title is dropped.
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.Title != "Spy x Family Season 2" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.Slug != "https://example.com/anime/spy-x-family-season-2/" {
		t.Fatalf("slug = %q", first.Slug)
	}
	if first.Image != "https://cdn.example/a.jpg" {
		t.Fatalf("image = %q", first.Image)
	}
	if first.LastEpisode != "Episode 12" {
		t.Fatalf("last episode = %q", first.LastEpisode)
	}
}

func TestLatestPagePaginationPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anime-terbaru/page/3/" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, listingHTML)
	}))
	t.Cleanup(server.Close)

	scraper, err := listing.NewScraper(server.URL)
	if err != nil {
		t.Fatalf("NewScraper: %v", err)
	}
	if _, err := scraper.LatestPage(context.Background(), 3); err != nil {
		t.Fatalf("LatestPage returned error: %v", err)
	}
}

func TestLatestPageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	scraper, err := listing.NewScraper(server.URL)
	if err != nil {
		t.Fatalf("NewScraper: %v", err)
	}
	if _, err := scraper.LatestPage(context.Background(), 1); err == nil {
		t.Fatal("expected error for 503 page")
	}
}

type pagedSource struct {
	pages map[int][]listing.Entry
	errs  map[int]error
}

func (s *pagedSource) LatestPage(_ context.Context, page int) ([]listing.Entry, error) {
	if err := s.errs[page]; err != nil {
		return nil, err
	}
	return s.pages[page], nil
}

func TestCollectPagesSkipsFailedPages(t *testing.T) {
	src := &pagedSource{
		pages: map[int][]listing.Entry{
			2: {{Slug: "b"}, {Slug: "c"}, {Slug: ""}},
		},
		errs: map[int]error{1: errors.New("boom")},
	}

	pages := listing.CollectPages(context.Background(), src, 2, logging.NewNop())
	if len(pages) != 1 || pages[0].Number != 2 {
		t.Fatalf("pages = %+v, want only page 2", pages)
	}

	slugs := listing.Slugs(pages)
	if len(slugs) != 2 || slugs[0] != "b" || slugs[1] != "c" {
		t.Fatalf("slugs = %v, want [b c]", slugs)
	}
}
