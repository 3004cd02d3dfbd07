package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"anisync/internal/jikan"
	"anisync/internal/logging"
)

// RebuildHome reassembles the aggregate view from every current integration
// record and writes it back under the home key. Records that fail to decode
// are skipped with a log line rather than aborting the rebuild. The rebuilt
// view is returned so callers can serve it without a second read.
func (s *Store) RebuildHome(ctx context.Context) ([]jikan.Anime, error) {
	keys, err := s.backend.Keys(ctx, IntegrationPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("enumerate integration cache: %w", err)
	}
	view := make([]jikan.Anime, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := s.backend.Get(ctx, key)
		if err != nil || !ok {
			if err != nil {
				s.logger.Warn("integration read failed during rebuild",
					logging.String("key", key), logging.Error(err))
			}
			continue
		}
		var anime jikan.Anime
		if err := json.Unmarshal([]byte(raw), &anime); err != nil {
			s.logger.Warn("skipping malformed integration record",
				logging.String("key", key), logging.Error(err))
			continue
		}
		view = append(view, anime)
	}
	if err := s.SetHome(ctx, view); err != nil {
		return nil, err
	}
	s.logger.Info("rebuilt home aggregate",
		logging.Int("entries", len(view)), logging.Int("keys", len(keys)))
	return view, nil
}

// UpsertHome folds one record into the aggregate view. The first existing
// entry whose ID or slug matches the incoming record is replaced in place;
// otherwise the record is appended. An absent aggregate starts empty.
func (s *Store) UpsertHome(ctx context.Context, anime jikan.Anime) error {
	view, _, err := s.GetHome(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range view {
		if view[i].ID == anime.ID || strings.EqualFold(view[i].Slug, anime.Slug) {
			view[i] = anime
			replaced = true
			break
		}
	}
	if !replaced {
		view = append(view, anime)
	}
	return s.SetHome(ctx, view)
}

// RemoveFromHome drops every aggregate entry whose catalog ID or slug
// matches. An absent key is a no-op.
func (s *Store) RemoveFromHome(ctx context.Context, id string) error {
	view, ok, err := s.GetHome(ctx)
	if err != nil || !ok {
		return err
	}
	kept := view[:0]
	for _, entry := range view {
		if entry.ID != id && !strings.EqualFold(entry.Slug, id) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(view) {
		return nil
	}
	return s.SetHome(ctx, kept)
}
