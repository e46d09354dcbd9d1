// Package fetch wraps outbound HTTP into the narrow Fetcher port the
// extractors depend on: one GET, one timeout, no retries.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"LottoScanner/internal/ports"
)

const userAgent = "Mozilla/5.0 (compatible; LottoScanner/1.0)"

// Client is a resty-backed Fetcher with a fixed per-request timeout.
type Client struct {
	http *resty.Client
}

var _ ports.Fetcher = (*Client)(nil)

// New builds the shared HTTP client.
func New(timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("user-agent", userAgent)
	return &Client{http: client}
}

// Get fetches url with optional extra headers. Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (ports.FetchResult, error) {
	req := c.http.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return ports.FetchResult{}, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.IsError() {
		return ports.FetchResult{}, fmt.Errorf("get %s: unexpected status %s", url, resp.Status())
	}

	return ports.FetchResult{
		Body:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}
