package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"anisync/internal/cache"
	"anisync/internal/config"
	"anisync/internal/jikan"
	"anisync/internal/logging"
	"anisync/internal/queue"
	"anisync/internal/worker"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// QueueView is the payload of the queue endpoint.
type QueueView struct {
	Length int64 `json:"length"`
}

// StatusView is the payload of the status endpoint: the worker snapshot plus
// the size of the current aggregate view.
type StatusView struct {
	worker.Snapshot
	HomeEntries int `json:"home_entries"`
}

// Server exposes the read surface and a handful of control endpoints over
// the enrichment pipeline.
type Server struct {
	bind   string
	logger *slog.Logger
	worker *worker.Worker
	cache  *cache.Store
	queue  *queue.Queue

	listener net.Listener
	server   *http.Server
}

// New builds the HTTP server. It does not listen until Start is called.
func New(cfg *config.Config, w *worker.Worker, c *cache.Store, q *queue.Queue, logger *slog.Logger) (*Server, error) {
	if cfg == nil || w == nil || c == nil || q == nil {
		return nil, errors.New("server: missing collaborators")
	}
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return nil, errors.New("server: empty bind address")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		worker: w,
		cache:  c,
		queue:  q,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/home", srv.handleHome)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/sync", srv.handleSync)
	mux.HandleFunc("/api/queue", srv.handleQueue)
	mux.HandleFunc("/api/cache/clear", srv.handleCacheClear)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving. Shutdown is tied to the context: when it is
// cancelled the server drains with a short grace period.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down with a grace period.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// handleHome serves the aggregate view with a three-tier fallback: the cached
// aggregate if present, else a rebuild from the integration cache, else an
// empty result while a full sync is kicked off in the background.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	view, ok, err := s.cache.GetHome(ctx)
	if err == nil && ok && len(view) > 0 {
		s.writeJSON(w, http.StatusOK, Response{Success: true, Data: view})
		return
	}

	view, err = s.cache.RebuildHome(ctx)
	if err != nil {
		s.logger.Warn("home rebuild failed", logging.Error(err))
	}
	if len(view) > 0 {
		s.writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    view,
			Message: "rebuilt from integration cache",
		})
		return
	}

	s.triggerFullSync()
	s.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    []jikan.Anime{},
		Message: "sync in progress, retry shortly",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	view, _, _ := s.cache.GetHome(ctx)
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: StatusView{
		Snapshot:    s.worker.Status(ctx),
		HomeEntries: len(view),
	}})
}

// handleSync kicks off a full sync in the background. A sync already in
// flight is reported, not queued behind the current one.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.worker.Syncing() {
		s.writeJSON(w, http.StatusConflict, Response{
			Success: false,
			Message: "sync already in progress",
		})
		return
	}
	s.triggerFullSync()
	s.writeJSON(w, http.StatusAccepted, Response{Success: true, Message: "full sync started"})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	length, err := s.queue.Len(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: QueueView{Length: length}})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.cache.ClearAll(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Message: "cache cleared"})
}

// triggerFullSync starts a background full sync detached from the request
// context; the caller's disconnect must not cancel the pass.
func (s *Server) triggerFullSync() {
	go func() {
		_, _, err := s.worker.RunFullSync(context.Background())
		if err != nil && !errors.Is(err, worker.ErrSyncInProgress) {
			s.logger.Error("background full sync failed", logging.Error(err))
		}
	}()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, Response{Success: false, Message: message})
}
