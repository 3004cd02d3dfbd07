package jikan_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"anisync/internal/jikan"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *jikan.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := jikan.New(server.URL, jikan.WithRateLimit(1000, 1000))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := jikan.New("  "); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestSearchByTitleSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "One Punch Man" {
			t.Fatalf("query = %q, want %q", got, "One Punch Man")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"mal_id":30276,"title":"One Punch Man","url":"https://myanimelist.net/anime/30276/One_Punch_Man","score":8.5,"status":"Finished Airing","images":{"jpg":{"image_url":"https://cdn.example/cover.jpg"}}}]}`))
	})

	results, err := client.SearchByTitle(context.Background(), "One Punch Man")
	if err != nil {
		t.Fatalf("SearchByTitle returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	got := results[0]
	if got.ID != "30276" || got.Title != "One Punch Man" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if got.Status != jikan.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
	if got.Slug != "One_Punch_Man" {
		t.Fatalf("slug = %q, want One_Punch_Man", got.Slug)
	}
	if got.Cover != "https://cdn.example/cover.jpg" {
		t.Fatalf("cover = %q", got.Cover)
	}
}

func TestSearchByTitleHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := client.SearchByTitle(context.Background(), "fail"); err == nil {
		t.Fatal("expected error when catalog returns non-200")
	}
}

func TestSearchByTitleEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := client.SearchByTitle(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchBySlugFormatsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Spy X Family Season 2" {
			t.Fatalf("query = %q, want title-cased slug words", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	if _, err := client.SearchBySlug(context.Background(), "spy-x-family-season-2"); err != nil {
		t.Fatalf("SearchBySlug returned error: %v", err)
	}
}

func TestGetByIDNotFoundIsAbsence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	anime, err := client.GetByID(context.Background(), 404404)
	if err != nil {
		t.Fatalf("GetByID returned error for 404: %v", err)
	}
	if anime != nil {
		t.Fatalf("expected nil record for 404, got %#v", anime)
	}
}

func TestGetByIDServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := client.GetByID(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500")
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want jikan.Status
	}{
		{"Currently Airing", jikan.StatusOngoing},
		{"Finished Airing", jikan.StatusCompleted},
		{"Not yet aired", jikan.StatusUpcoming},
		{"Hiatus", jikan.StatusUnknown},
		{"", jikan.StatusUnknown},
	}
	for _, tt := range tests {
		if got := jikan.MapStatus(tt.raw); got != tt.want {
			t.Errorf("MapStatus(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
