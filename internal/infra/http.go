// Package infra holds shared HTTP plumbing for providers.
package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single outbound request when the caller's client has none.
const DefaultTimeout = 30 * time.Second

const userAgent = "catalystiv/1.0"

var defaultClient = &http.Client{Timeout: DefaultTimeout}

// NewHTTPClient returns a client with a fixed overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// DoGet performs a GET with the shared client. See DoGetWith.
func DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	return DoGetWith(ctx, defaultClient, url, headers)
}

// DoGetWith performs a single GET request. On success the caller owns the
// returned body. Any non-2xx status is an error and the body is closed.
func DoGetWith(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	if client == nil {
		client = defaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, resp.StatusCode, fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, snippet)
	}
	return resp.Body, resp.StatusCode, nil
}
