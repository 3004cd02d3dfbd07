package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains bind address configuration for the read API.
type Server struct {
	Bind string `toml:"bind"`
}

// Store contains configuration for the shared cache/queue substrate.
type Store struct {
	// Backend selects the store implementation: "redis" or "sqlite".
	Backend string `toml:"backend"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	// SQLitePath is the database file used when backend is "sqlite".
	SQLitePath string `toml:"sqlite_path"`
	// QueueKey is the list key holding pending slugs.
	QueueKey string `toml:"queue_key"`
	// CacheTTLHours is the time-to-live applied to every cache write.
	CacheTTLHours int `toml:"cache_ttl_hours"`
}

// Listing contains configuration for the listing site scrape source.
type Listing struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// Catalog contains configuration for the Jikan catalog API.
type Catalog struct {
	BaseURL        string  `toml:"base_url"`
	RequestTimeout int     `toml:"request_timeout"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
	Burst          int     `toml:"burst"`
}

// Sync contains configuration for worker and scheduler timing.
type Sync struct {
	// TickIntervalSeconds is the period of the worker tick.
	TickIntervalSeconds int `toml:"tick_interval_seconds"`
	// TickPauseMillis is the pause after each processed item.
	TickPauseMillis int `toml:"tick_pause_millis"`
	// FullSyncPauseMillis is the longer pause used by the full-sync drain.
	FullSyncPauseMillis int `toml:"full_sync_pause_millis"`
	// ReseedIntervalMinutes is the period of the scheduler reseed.
	ReseedIntervalMinutes int `toml:"reseed_interval_minutes"`
	// ReseedPages is how many listing pages the reseed scrapes.
	ReseedPages int `toml:"reseed_pages"`
	// FullSyncPages is how many listing pages the full sync scrapes.
	FullSyncPages int `toml:"full_sync_pages"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for anisync.
//
// Configuration sections by subsystem:
//   - Server: read API bind address
//   - Store: shared cache/queue substrate (redis or sqlite)
//   - Listing: listing site scrape source
//   - Catalog: Jikan catalog API access and rate limiting
//   - Sync: worker/scheduler intervals and pauses
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and directory
type Config struct {
	Server        Server        `toml:"server"`
	Store         Store         `toml:"store"`
	Listing       Listing       `toml:"listing"`
	Catalog       Catalog       `toml:"catalog"`
	Sync          Sync          `toml:"sync"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/anisync/config.toml")
}

// Load locates, parses, and validates a configuration file. When no file
// exists at the resolved location the defaults are returned. The second
// return value is the resolved path, the third reports whether a file was
// actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidate = defaultPath
	}

	expanded, err := expandPath(candidate)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, true, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path must not be empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return abs, nil
}

func (c *Config) normalize() error {
	if c.Logging.Dir != "" {
		expanded, err := expandPath(c.Logging.Dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = expanded
	}
	if c.Store.SQLitePath != "" {
		expanded, err := expandPath(c.Store.SQLitePath)
		if err != nil {
			return fmt.Errorf("store.sqlite_path: %w", err)
		}
		c.Store.SQLitePath = expanded
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Listing.BaseURL = strings.TrimRight(strings.TrimSpace(c.Listing.BaseURL), "/")
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	return nil
}

// EnsureDirectories creates the directories the daemon writes to.
func (c *Config) EnsureDirectories() error {
	dirs := make([]string, 0, 2)
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	if c.Store.Backend == "sqlite" && c.Store.SQLitePath != "" {
		dirs = append(dirs, filepath.Dir(c.Store.SQLitePath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
