// Package client fetches commute reports from a commute backend over HTTP.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"distancematrix/internal/commute/transport"
	"distancematrix/platform/logger"
)

const maxBodyBytes = 1 << 20

// Client issues GET <base>/commute requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a client for the backend at baseURL. The request is bounded
// only by the caller's context.
func New(baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// Fetch requests the report for q. Transport failures, non-2xx answers and
// bodies that are not a complete report all come back as errors.
func (c *Client) Fetch(ctx context.Context, q transport.Query) (*transport.Result, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("date", q.Date)

	reqURL := fmt.Sprintf("%s/commute?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("commute backend error body", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("commute backend: status %d", resp.StatusCode)
	}

	result, err := transport.DecodeResult(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
