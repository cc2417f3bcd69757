// Package search talks to the web search backend and normalizes its nested
// response payloads into flat story candidates.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// Searcher is the search backend boundary: a free-text query in, the raw
// nested provider payload out.
type Searcher interface {
	Search(ctx context.Context, query string) (map[string]any, error)
}

// Client implements Searcher against the Bing Web Search v7 API.
type Client struct {
	apiKey     string
	endpoint   string
	count      int
	market     string
	httpClient *http.Client
}

// Option configures the search client.
type Option func(*Client)

// WithEndpoint overrides the search API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithCount sets the number of results requested per query.
func WithCount(n int) Option {
	return func(c *Client) { c.count = n }
}

// WithMarket sets the locale passed to the backend.
func WithMarket(market string) Option {
	return func(c *Client) { c.market = market }
}

// NewClient creates a search client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		count:    50,
		market:   "en-CA",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one query with fixed parameters: strict safe search, results
// from the last day only, and the configured locale. The raw decoded JSON
// payload is returned untouched; extraction happens downstream.
func (c *Client) Search(ctx context.Context, query string) (map[string]any, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.count))
	params.Set("safeSearch", "Strict")
	params.Set("freshness", "Day")
	params.Set("setLang", "en-US")
	params.Set("mkt", c.market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search HTTP %d: %s", resp.StatusCode, body)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return payload, nil
}
