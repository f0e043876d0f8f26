// Package newsapi implements the client for the external article search
// service (NewsAPI-compatible "everything" endpoint).
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/news"
)

// dateLayout is the calendar-date format the search service expects for the
// from/to publication window. No time-of-day component.
const dateLayout = "2006-01-02"

// Client calls the article search service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *zap.Logger
}

// envelope is the service's response wrapper. On failure Status is "error"
// and Code/Message describe the problem.
type envelope struct {
	Status       string               `json:"status"`
	Code         string               `json:"code"`
	Message      string               `json:"message"`
	TotalResults int                  `json:"totalResults"`
	Articles     []news.RemoteArticle `json:"articles"`
}

// NewClient builds a Client. The API key is required; its absence is a
// configuration error, not something to discover mid-run.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("newsapi: api key is required")
	}
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Search runs one full-text query, sorted by recency and bounded to the
// query's inclusive publication-date window.
func (c *Client) Search(ctx context.Context, q news.SearchQuery) ([]news.RemoteArticle, error) {
	u, err := url.Parse(c.baseURL + "/everything")
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}

	params := url.Values{}
	params.Set("q", q.Keyword)
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	params.Set("sortBy", "publishedAt")
	params.Set("from", q.From.Format(dateLayout))
	params.Set("to", q.To.Format(dateLayout))
	params.Set("apiKey", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Keyword, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode search response for %q: %w", q.Keyword, err)
	}
	if resp.StatusCode != http.StatusOK || env.Status != "ok" {
		return nil, fmt.Errorf("search %q: service returned %d %s: %s", q.Keyword, resp.StatusCode, env.Code, env.Message)
	}

	c.logger.Debug("search completed",
		zap.String("keyword", q.Keyword),
		zap.Int("total_results", env.TotalResults),
		zap.Int("returned", len(env.Articles)),
	)
	return env.Articles, nil
}
