package listing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Scraper implements Source against the listing site's HTML.
type Scraper struct {
	baseURL   string
	userAgent string
	hc        *http.Client
}

var _ Source = (*Scraper)(nil)

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ScraperOption {
	return func(s *Scraper) {
		if client != nil {
			s.hc = client
		}
	}
}

// WithUserAgent sets the User-Agent sent on scrape requests.
func WithUserAgent(ua string) ScraperOption {
	return func(s *Scraper) {
		if strings.TrimSpace(ua) != "" {
			s.userAgent = ua
		}
	}
}

// NewScraper creates a Scraper for the listing site at baseURL.
func NewScraper(baseURL string, opts ...ScraperOption) (*Scraper, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("listing base url required")
	}
	s := &Scraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LatestPage fetches and parses one page of the latest-episodes view.
func (s *Scraper) LatestPage(ctx context.Context, page int) ([]Entry, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	pageURL := s.baseURL + "/anime-terbaru/"
	if page > 1 {
		pageURL = fmt.Sprintf("%s/anime-terbaru/page/%d/", s.baseURL, page)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("listing page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var entries []Entry
	doc.Find(".post-show ul li").Each(func(_ int, li *goquery.Selection) {
		titleLink := li.Find(".entry-title a")
		title := strings.TrimSpace(titleLink.Text())
		if title == "" {
			return
		}
		slug, _ := titleLink.Attr("href")
		image, _ := li.Find(".thumb a img.npws").Attr("src")

		var lastEpisode string
		li.Find("i.dashicons-controls-play").EachWithBreak(func(_ int, icon *goquery.Selection) bool {
			author := icon.NextAllFiltered("author").First()
			if author.Length() > 0 {
				lastEpisode = strings.TrimSpace(author.Text())
				return false
			}
			return true
		})

		entries = append(entries, Entry{
			Title:       title,
			Slug:        slug,
			Image:       image,
			LastEpisode: lastEpisode,
		})
	})

	return entries, nil
}
