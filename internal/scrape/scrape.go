// Package scrape fetches web pages as markdown through ScraperAPI.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/cenkalti/backoff/v5"
	"github.com/go-shiori/go-readability"
)

// DefaultBaseURL is the ScraperAPI endpoint.
const DefaultBaseURL = "https://api.scraperapi.com/"

const defaultMaxTries = 3

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("SCRAPER_API_KEY not configured")

// Options configures a Client.
type Options struct {
	BaseURL      string
	OutputFormat string
	HTTPClient   *http.Client
	MaxTries     uint
}

// Client fetches pages through the scraping proxy.
type Client struct {
	apiKey       string
	baseURL      string
	outputFormat string
	httpClient   *http.Client
	maxTries     uint
}

// New creates a scraper client.
func New(apiKey string, opts Options) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      opts.BaseURL,
		outputFormat: opts.OutputFormat,
		httpClient:   opts.HTTPClient,
		maxTries:     opts.MaxTries,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.outputFormat == "" {
		c.outputFormat = "markdown"
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	if c.maxTries == 0 {
		c.maxTries = defaultMaxTries
	}
	return c
}

// StatusError is a non-2xx response from the scraper.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scraper returned status %d: %s", e.StatusCode, e.Body)
}

// Fetch returns the page at target as markdown. HTML responses are reduced
// to their main content and converted.
func (c *Client) Fetch(ctx context.Context, target string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	pageURL, err := url.Parse(target)
	if err != nil || pageURL.Host == "" {
		return "", fmt.Errorf("invalid page url %q", target)
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid scraper url: %w", err)
	}
	q := endpoint.Query()
	q.Set("api_key", c.apiKey)
	q.Set("url", target)
	q.Set("output_format", c.outputFormat)
	endpoint.RawQuery = q.Encode()

	type page struct {
		body        string
		contentType string
	}
	operation := func() (page, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return page{}, backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return page{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return page{}, err
		}
		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return page{}, statusErr
			}
			return page{}, backoff.Permanent(statusErr)
		}
		return page{body: string(data), contentType: resp.Header.Get("Content-Type")}, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	p, err := backoff.Retry(ctx, operation, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", target, err)
	}

	if !looksLikeHTML(p.contentType, p.body) {
		return p.body, nil
	}
	return HTMLToMarkdown(p.body, pageURL)
}

// HTMLToMarkdown extracts the readable part of an HTML page and converts it
// to markdown. When readability finds nothing, the whole document is
// converted.
func HTMLToMarkdown(html string, pageURL *url.URL) (string, error) {
	content := html
	title := ""
	if article, err := readability.FromReader(strings.NewReader(html), pageURL); err == nil && strings.TrimSpace(article.Content) != "" {
		content = article.Content
		title = article.Title
	}

	domain := ""
	if pageURL != nil {
		domain = pageURL.Host
	}
	converter := md.NewConverter(domain, true, nil)
	markdown, err := converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if title != "" && !strings.HasPrefix(markdown, "# ") {
		markdown = "# " + title + "\n\n" + markdown
	}
	return markdown, nil
}

func looksLikeHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
