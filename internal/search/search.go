// Package search queries the Tavily web search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/maypok86/otter"
)

// DefaultBaseURL is the Tavily API endpoint.
const DefaultBaseURL = "https://api.tavily.com"

const (
	defaultDepth      = "basic"
	defaultMaxResults = 5
	defaultCacheSize  = 1000
	defaultMaxTries   = 3
)

// ErrMissingAPIKey is returned by Query when no API key is configured.
var ErrMissingAPIKey = errors.New("TAVILY_API_KEY not configured")

// Result is one search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response is the decoded search response.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Depth      string
	CacheTTL   time.Duration
	HTTPClient *http.Client
	MaxTries   uint
}

// Client queries Tavily and caches formatted results per query.
type Client struct {
	apiKey     string
	baseURL    string
	depth      string
	httpClient *http.Client
	maxTries   uint
	cache      *otter.Cache[string, string]
}

// New creates a search client. An empty apiKey is allowed; searches then
// report the missing key in their output.
func New(apiKey string, opts Options) (*Client, error) {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		depth:      opts.Depth,
		httpClient: opts.HTTPClient,
		maxTries:   opts.MaxTries,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.depth == "" {
		c.depth = defaultDepth
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.maxTries == 0 {
		c.maxTries = defaultMaxTries
	}

	if opts.CacheTTL > 0 {
		cache, err := otter.MustBuilder[string, string](defaultCacheSize).
			WithTTL(opts.CacheTTL).
			Build()
		if err != nil {
			return nil, fmt.Errorf("build search cache: %w", err)
		}
		c.cache = &cache
	}
	return c, nil
}

// Close releases the cache.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// Search runs a query and returns the results formatted as text. It never
// fails: errors are reported in the returned text.
func (c *Client) Search(ctx context.Context, query string, maxResults int) string {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	key := fmt.Sprintf("%d\x00%s", maxResults, query)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached
		}
	}

	resp, err := c.Query(ctx, query, maxResults)
	if errors.Is(err, ErrMissingAPIKey) {
		return "Error: Variable de entorno TAVILY_API_KEY no encontrada."
	}
	if err != nil {
		return fmt.Sprintf("Error al buscar en la web: %v", err)
	}
	if resp == nil || resp.Results == nil {
		return fmt.Sprintf("No se encontraron resultados para la consulta: %s", query)
	}

	text := Format(query, resp.Results)
	if c.cache != nil {
		c.cache.Set(key, text)
	}
	return text
}

// Format renders results as numbered title, URL and content entries.
func Format(query string, results []Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resultados de búsqueda web para '%s':\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, orDefault(r.Title, "Sin título"))
		fmt.Fprintf(&b, "   URL: %s\n", orDefault(r.URL, "Sin URL"))
		fmt.Fprintf(&b, "   %s\n\n", orDefault(r.Content, "No hay contenido disponible"))
	}
	return b.String()
}

type searchRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

// StatusError is a non-2xx API response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tavily returned status %d: %s", e.StatusCode, e.Body)
}

// Query calls the search endpoint, retrying 429 and 5xx responses with
// exponential backoff.
func (c *Client) Query(ctx context.Context, query string, maxResults int) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	body, err := json.Marshal(searchRequest{Query: query, SearchDepth: c.depth, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	operation := func() (*Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		if httpResp.StatusCode != http.StatusOK {
			statusErr := &StatusError{StatusCode: httpResp.StatusCode, Body: strings.TrimSpace(string(data))}
			if retryable(httpResp.StatusCode) {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}

		var out Response
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode search response: %w", err))
		}
		return &out, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
