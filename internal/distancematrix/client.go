// Package distancematrix looks up traffic-aware travel durations and distances
// between two places for a given departure time.
package distancematrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"distancematrix/platform/config"
	"distancematrix/platform/logger"

	"golang.org/x/time/rate"
)

const defaultHTTPTimeout = 10 * time.Second

// Lookup is the travel estimate for one departure.
// Found is false when the provider had no traffic-aware route for the pair.
type Lookup struct {
	DurationMinutes float64 `json:"durationMinutes"`
	DistanceKm      float64 `json:"distanceKm"`
	Found           bool    `json:"found"`
}

// Provider returns a travel estimate between two places for a departure time.
type Provider interface {
	Lookup(ctx context.Context, origin, destination string, departure time.Time) (Lookup, error)
}

// Client calls the Google Distance Matrix API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a Distance Matrix client. A non-positive QPS disables
// outbound throttling.
func NewClient(cfg config.DistanceMatrixConfig, log *logger.Logger) *Client {
	limit := rate.Inf
	if qps := cfg.GetDistanceMatrixQPS(); qps > 0 {
		limit = rate.Limit(qps)
	}

	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		endpoint:   cfg.GetDistanceMatrixURL(),
		apiKey:     cfg.GetGoogleMapsAPIKey(),
		limiter:    rate.NewLimiter(limit, 1),
		log:        log,
	}
}

// Lookup fetches the duration in traffic and the distance of the first route.
func (c *Client) Lookup(ctx context.Context, origin, destination string, departure time.Time) (Lookup, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Lookup{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", destination)
	params.Set("departure_time", strconv.FormatInt(departure.Unix(), 10))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Lookup{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("distance_matrix", 0, err)
		return Lookup{}, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.UpstreamError("distance_matrix", resp.StatusCode, nil)
		return Lookup{}, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var payload matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("distance matrix decode failed", "error", err)
		return Lookup{}, fmt.Errorf("decode response: %w", err)
	}

	c.log.Debug("distance matrix response", "status", payload.Status, "origin", origin, "destination", destination)

	if payload.Status != "" && payload.Status != statusOK {
		c.log.Error("distance matrix request rejected", "status", payload.Status, "message", payload.ErrorMessage)
		return Lookup{}, fmt.Errorf("distance matrix status %s: %s", payload.Status, payload.ErrorMessage)
	}

	return payload.firstLookup(), nil
}

const statusOK = "OK"

type matrixValue struct {
	Value float64 `json:"value"`
}

type matrixElement struct {
	Status            string       `json:"status"`
	Duration          *matrixValue `json:"duration"`
	DurationInTraffic *matrixValue `json:"duration_in_traffic"`
	Distance          *matrixValue `json:"distance"`
}

// matrixResponse mirrors the relevant parts of the Distance Matrix payload.
type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// firstLookup reads rows[0].elements[0]. Only traffic-aware durations count.
func (r matrixResponse) firstLookup() Lookup {
	if len(r.Rows) == 0 || len(r.Rows[0].Elements) == 0 {
		return Lookup{}
	}

	el := r.Rows[0].Elements[0]
	if el.Status != "" && el.Status != statusOK {
		return Lookup{}
	}
	if el.DurationInTraffic == nil || el.Distance == nil {
		return Lookup{}
	}

	return Lookup{
		DurationMinutes: el.DurationInTraffic.Value / 60,
		DistanceKm:      el.Distance.Value / 1000,
		Found:           true,
	}
}

var _ Provider = (*Client)(nil)
