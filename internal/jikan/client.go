package jikan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Searcher defines the catalog operations the enrichment pipeline uses.
type Searcher interface {
	SearchByTitle(ctx context.Context, query string) ([]Anime, error)
	SearchBySlug(ctx context.Context, normalizedSlug string) ([]Anime, error)
	GetByID(ctx context.Context, id int64) (*Anime, error)
}

// Client provides access to the Jikan catalog API. All calls pass through a
// client-side rate limiter; the public API throttles aggressively and a
// blocked caller is cheaper than a banned one.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		if perSec > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// New creates a catalog client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchByTitle searches the catalog for the supplied title. Results come
// back in the API's relevance order; a non-200 response is an error.
func (c *Client) SearchByTitle(ctx context.Context, query string) ([]Anime, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/anime")
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	endpoint.RawQuery = params.Encode()

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	results := make([]Anime, 0, len(payload.Data))
	for _, item := range payload.Data {
		results = append(results, item.toAnime())
	}
	return results, nil
}

// SearchBySlug turns a normalized slug into a title query (hyphens to
// spaces, words title-cased) and searches by it.
func (c *Client) SearchBySlug(ctx context.Context, normalizedSlug string) ([]Anime, error) {
	query := slugToTitleQuery(normalizedSlug)
	if query == "" {
		return nil, errors.New("slug must not be empty")
	}
	return c.SearchByTitle(ctx, query)
}

// GetByID fetches a single record. A 404 reports absence, not failure.
func (c *Client) GetByID(ctx context.Context, id int64) (*Anime, error) {
	endpoint := c.baseURL + "/anime/" + strconv.FormatInt(id, 10)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %d", resp.StatusCode)
	}

	var payload detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if payload.Data == nil {
		return nil, nil
	}
	anime := payload.Data.toAnime()
	return &anime, nil
}

// GetMultipleByID fetches several records in sequence, skipping absent IDs.
func (c *Client) GetMultipleByID(ctx context.Context, ids []int64) ([]Anime, error) {
	results := make([]Anime, 0, len(ids))
	for _, id := range ids {
		anime, err := c.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get anime %d: %w", id, err)
		}
		if anime != nil {
			results = append(results, *anime)
		}
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog search returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func (p animePayload) toAnime() Anime {
	cover := p.Images.JPG.ImageURL
	if cover == "" {
		cover = p.ImageURL
	}
	return Anime{
		ID:     strconv.FormatInt(p.MalID, 10),
		Title:  p.Title,
		Slug:   slugFromURL(p.URL),
		Status: MapStatus(p.Status),
		Rating: p.Score,
		Cover:  cover,
	}
}

// slugFromURL extracts the catalog's own slug segment from an entry URL of
// the form https://myanimelist.net/anime/<id>/<slug>.
func slugFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return raw
}

func slugToTitleQuery(slug string) string {
	words := strings.Fields(strings.ReplaceAll(strings.TrimSpace(slug), "-", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
