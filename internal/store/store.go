package store

import (
	"context"
	"fmt"
	"time"

	"anisync/internal/config"
)

// Store is the shared substrate beneath the cache layers and the slug
// queue: namespaced string values with TTLs plus one ordered list.
//
// Reads report absence as (zero, false, nil); an error means the store
// itself failed, not that the key was missing. ListPush and ListPop pair up
// FIFO: the first value pushed is the first value popped. Delete removes
// string values and whole lists alike, mirroring redis DEL.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Keys returns all keys matching a redis-style glob pattern ("prefix:*").
	Keys(ctx context.Context, pattern string) ([]string, error)

	ListPush(ctx context.Context, key string, values ...string) error
	ListPop(ctx context.Context, key string) (string, bool, error)
	ListLen(ctx context.Context, key string) (int64, error)

	Close() error
}

// Open builds the store backend selected by configuration.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	switch cfg.Store.Backend {
	case "redis":
		return OpenRedis(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB), nil
	case "sqlite":
		return OpenSQLite(cfg.Store.SQLitePath)
	default:
		return nil, fmt.Errorf("store backend: unsupported value %q", cfg.Store.Backend)
	}
}
