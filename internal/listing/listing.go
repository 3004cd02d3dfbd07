package listing

import (
	"context"
	"log/slog"

	"anisync/internal/logging"
)

// Entry is one scraped row from the listing site's "latest episodes" view.
// Entries are ephemeral: they exist only for the duration of a scrape pass.
type Entry struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Image       string `json:"image"`
	LastEpisode string `json:"last_episode"`
}

// Source produces listing entries for one page of the latest view. Pages
// are indexed from 1.
type Source interface {
	LatestPage(ctx context.Context, page int) ([]Entry, error)
}

// Page is one scraped listing page with its 1-based number.
type Page struct {
	Number  int
	Entries []Entry
}

// CollectPages scrapes pages 1..pages in order. A page that fails to fetch
// is logged and skipped; the remaining pages still contribute.
func CollectPages(ctx context.Context, src Source, pages int, logger *slog.Logger) []Page {
	if logger == nil {
		logger = logging.NewNop()
	}
	collected := make([]Page, 0, pages)
	for page := 1; page <= pages; page++ {
		entries, err := src.LatestPage(ctx, page)
		if err != nil {
			logger.Warn("listing page fetch failed, skipping",
				logging.Int(logging.FieldPage, page),
				logging.Error(err))
			continue
		}
		collected = append(collected, Page{Number: page, Entries: entries})
	}
	return collected
}

// Slugs flattens collected pages into their slugs, preserving page order and
// dropping empties.
func Slugs(pages []Page) []string {
	var slugs []string
	for _, page := range pages {
		for _, entry := range page.Entries {
			if entry.Slug != "" {
				slugs = append(slugs, entry.Slug)
			}
		}
	}
	return slugs
}
