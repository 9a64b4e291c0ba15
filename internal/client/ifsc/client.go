package ifsc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the external competition-results provider. The provider
// rejects requests without a Referer header, so every request carries the
// configured one.
type Client struct {
	host       string
	referer    string
	httpClient *http.Client
	cache      *responseCache
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, referer string, cacheTTL time.Duration) *Client {
	host = strings.TrimRight(host, "/")
	c := &Client{
		host:       host,
		referer:    referer,
		httpClient: httpClient,
	}
	if cacheTTL > 0 {
		c.cache = newResponseCache(cacheTTL)
	}
	return c
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.get(fullURL); ok {
			return body, nil
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	if c.cache != nil {
		c.cache.put(fullURL, body)
	}
	return body, nil
}

// GetEvent fetches the event document (metadata plus the ordered category
// list with statuses and result URLs).
func (c *Client) GetEvent(ctx context.Context, eventID uint64) (*EventDocument, []byte, error) {
	if eventID == 0 {
		return nil, nil, fmt.Errorf("event id is required")
	}
	query := url.Values{}
	query.Set("api", "event_results")
	query.Set("event_id", fmt.Sprintf("%d", eventID))
	body, err := c.doRequest(ctx, c.host+"?"+query.Encode())
	if err != nil {
		return nil, nil, err
	}
	doc, err := parseEventDocument(body)
	if err != nil {
		return nil, nil, err
	}
	return doc, body, nil
}

// GetCategoryResult fetches one category's full ranking from its result URL.
// Result URLs come from the event document and may be relative to the host.
func (c *Client) GetCategoryResult(ctx context.Context, resultURL string) (*ResultDocument, []byte, error) {
	resultURL = strings.TrimSpace(resultURL)
	if resultURL == "" {
		return nil, nil, fmt.Errorf("result url is required")
	}
	if strings.HasPrefix(resultURL, "/") || strings.HasPrefix(resultURL, "?") {
		resultURL = c.host + resultURL
	}
	body, err := c.doRequest(ctx, resultURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := parseResultDocument(body)
	if err != nil {
		return nil, nil, err
	}
	return doc, body, nil
}
