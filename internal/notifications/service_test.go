package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anisync/internal/config"
	"anisync/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySyncCompleted(context.Background(), 10, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "sync started",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncStarted(context.Background(), 2)
			},
			expectTitle:   "anisync - Full Sync Started",
			expectMessage: "Started full sync across 2 listing pages",
			expectTags:    "anisync,sync,started",
		},
		{
			name: "sync completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncCompleted(context.Background(), 14, 0, 90*time.Second)
			},
			expectTitle:   "anisync - Sync Complete",
			expectMessage: "Full sync complete: 14 titles enriched in 1m30s",
			expectTags:    "anisync,sync,completed",
		},
		{
			name: "sync completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncCompleted(context.Background(), 12, 2, time.Minute)
			},
			expectTitle:   "anisync - Sync Complete (with errors)",
			expectMessage: "Full sync complete: 12 enriched, 2 failed in 1m0s",
			expectTags:    "anisync,sync,completed",
		},
		{
			name: "sync error",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncError(context.Background(), errors.New("catalog unreachable"), "full sync")
			},
			expectTitle:    "anisync - Error",
			expectMessage:  "Error with full sync: catalog unreachable",
			expectTags:     "anisync,error,alert",
			expectPriority: "high",
		},
		{
			name: "unmatched slug",
			notify: func(svc notifications.Service) error {
				return svc.NotifyUnmatchedSlug(context.Background(), "some-obscure-show")
			},
			expectTitle:   "anisync - Unmatched Title",
			expectMessage: "No catalog match for: some-obscure-show\nManual review required",
			expectTags:    "anisync,unmatched,review",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
