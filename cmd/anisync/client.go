package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"anisync/internal/jikan"
	"anisync/internal/worker"
)

// envelope mirrors the daemon's response shape with the payload left raw so
// each command can decode its own type.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type queuePayload struct {
	Length int64 `json:"length"`
}

type apiClient struct {
	base   string
	client *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) Home(ctx context.Context) ([]jikan.Anime, string, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/home")
	if err != nil {
		return nil, "", err
	}
	var view []jikan.Anime
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &view); err != nil {
			return nil, "", fmt.Errorf("decode home view: %w", err)
		}
	}
	return view, env.Message, nil
}

func (c *apiClient) Status(ctx context.Context) (worker.Snapshot, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/status")
	if err != nil {
		return worker.Snapshot{}, err
	}
	var snap worker.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return worker.Snapshot{}, fmt.Errorf("decode status: %w", err)
	}
	return snap, nil
}

func (c *apiClient) Sync(ctx context.Context) (string, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/sync")
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *apiClient) QueueLength(ctx context.Context) (int64, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/queue")
	if err != nil {
		return 0, err
	}
	var payload queuePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return 0, fmt.Errorf("decode queue view: %w", err)
	}
	return payload.Length, nil
}

func (c *apiClient) CacheClear(ctx context.Context) (string, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/cache/clear")
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *apiClient) call(ctx context.Context, method, path string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	// A conflict is an answer ("a sync is already running"), not a failure.
	if resp.StatusCode == http.StatusConflict {
		return &env, nil
	}
	if resp.StatusCode >= 400 || !env.Success {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("daemon returned %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", message)
	}
	return &env, nil
}
