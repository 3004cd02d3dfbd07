package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateListing(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "redis":
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr must be set when backend is redis")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path must be set when backend is sqlite")
		}
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected redis or sqlite)", c.Store.Backend)
	}
	if c.Store.QueueKey == "" {
		return errors.New("store.queue_key must be set")
	}
	if c.Store.CacheTTLHours <= 0 {
		return errors.New("store.cache_ttl_hours must be positive")
	}
	return nil
}

func (c *Config) validateListing() error {
	if c.Listing.BaseURL == "" {
		return errors.New("listing.base_url must be set")
	}
	if c.Listing.RequestTimeout <= 0 {
		return errors.New("listing.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url must be set")
	}
	if c.Catalog.RequestTimeout <= 0 {
		return errors.New("catalog.request_timeout must be positive")
	}
	if c.Catalog.RequestsPerSec <= 0 {
		return errors.New("catalog.requests_per_sec must be positive")
	}
	if c.Catalog.Burst <= 0 {
		return errors.New("catalog.burst must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.TickIntervalSeconds <= 0 {
		return errors.New("sync.tick_interval_seconds must be positive")
	}
	if c.Sync.TickPauseMillis < 0 {
		return errors.New("sync.tick_pause_millis must not be negative")
	}
	if c.Sync.FullSyncPauseMillis < 0 {
		return errors.New("sync.full_sync_pause_millis must not be negative")
	}
	if c.Sync.ReseedIntervalMinutes <= 0 {
		return errors.New("sync.reseed_interval_minutes must be positive")
	}
	if c.Sync.ReseedPages <= 0 {
		return errors.New("sync.reseed_pages must be positive")
	}
	if c.Sync.FullSyncPages <= 0 {
		return errors.New("sync.full_sync_pages must be positive")
	}
	return nil
}
