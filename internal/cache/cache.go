package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"anisync/internal/jikan"
	"anisync/internal/listing"
	"anisync/internal/logging"
	"anisync/internal/store"
)

// Namespace prefixes. Every cached value lives under exactly one of these;
// the home aggregate has its own fixed key.
const (
	ListingPrefix     = "listing:"
	MetaPrefix        = "meta:"
	IntegrationPrefix = "integration:"
	HomeKey           = "home"
)

// DefaultTTL is applied to every cache write unless configured otherwise.
const DefaultTTL = 24 * time.Hour

// Store layers namespaced, TTL-bounded caches over the shared substrate.
//
// Reads treat a malformed stored payload as a miss: the error is logged and
// the caller sees absence, never a decode failure. Writes that fail at the
// store level surface the error, because a failed write must not be assumed
// successful.
type Store struct {
	backend store.Store
	ttl     time.Duration
	logger  *slog.Logger
}

// New creates a cache store over the given substrate. A zero ttl falls back
// to DefaultTTL; a nil logger logs nowhere.
func New(backend store.Store, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		backend: backend,
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "cache"),
	}
}

// SetListing caches the scraped entries for one listing identifier.
func (s *Store) SetListing(ctx context.Context, identifier string, entries []listing.Entry) error {
	return setJSON(s, ctx, ListingPrefix+identifier, entries)
}

// GetListing returns the cached entries for one listing identifier.
func (s *Store) GetListing(ctx context.Context, identifier string) ([]listing.Entry, bool, error) {
	return getJSON[[]listing.Entry](s, ctx, ListingPrefix+identifier)
}

// SetMeta caches one catalog record by its external ID.
func (s *Store) SetMeta(ctx context.Context, externalID string, anime jikan.Anime) error {
	return setJSON(s, ctx, MetaPrefix+externalID, anime)
}

// GetMeta returns the cached catalog record for an external ID.
func (s *Store) GetMeta(ctx context.Context, externalID string) (jikan.Anime, bool, error) {
	return getJSON[jikan.Anime](s, ctx, MetaPrefix+externalID)
}

// SetIntegration stores the join result for a listing identifier. The
// record's slug is expected to already carry the identifier; re-processing
// the same identifier overwrites rather than duplicates.
func (s *Store) SetIntegration(ctx context.Context, identifier string, anime jikan.Anime) error {
	return setJSON(s, ctx, IntegrationPrefix+identifier, anime)
}

// GetIntegration returns the join result for a listing identifier.
func (s *Store) GetIntegration(ctx context.Context, identifier string) (jikan.Anime, bool, error) {
	return getJSON[jikan.Anime](s, ctx, IntegrationPrefix+identifier)
}

// SetHome writes the aggregate view.
func (s *Store) SetHome(ctx context.Context, anime []jikan.Anime) error {
	return setJSON(s, ctx, HomeKey, anime)
}

// GetHome returns the aggregate view.
func (s *Store) GetHome(ctx context.Context) ([]jikan.Anime, bool, error) {
	return getJSON[[]jikan.Anime](s, ctx, HomeKey)
}

// Invalidate removes one cached entry. A key without a namespace prefix is
// assumed to be a listing identifier in the integration namespace.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, ListingPrefix) &&
		!strings.HasPrefix(key, MetaPrefix) &&
		!strings.HasPrefix(key, IntegrationPrefix) &&
		key != HomeKey {
		key = IntegrationPrefix + key
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// ClearAll deletes every entry under all cache namespaces plus the home
// aggregate.
func (s *Store) ClearAll(ctx context.Context) error {
	patterns := []string{ListingPrefix + "*", MetaPrefix + "*", IntegrationPrefix + "*"}
	keys := []string{HomeKey}
	for _, pattern := range patterns {
		matched, err := s.backend.Keys(ctx, pattern)
		if err != nil {
			return fmt.Errorf("enumerate %s: %w", pattern, err)
		}
		keys = append(keys, matched...)
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.logger.Info("cleared all cache namespaces", logging.Int("keys", len(keys)))
	return nil
}

func setJSON[T any](s *Store, ctx context.Context, key string, value T) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(encoded), s.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func getJSON[T any](s *Store, ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed, treating as miss",
			logging.String("key", key), logging.Error(err))
		return zero, false, nil
	}
	if !ok {
		return zero, false, nil
	}
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.logger.Warn("malformed cache payload, treating as miss",
			logging.String("key", key), logging.Error(err))
		return zero, false, nil
	}
	return value, true, nil
}
