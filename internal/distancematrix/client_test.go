package distancematrix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"distancematrix/platform/logger"
)

type testMatrixConfig struct {
	url string
}

func (c testMatrixConfig) GetGoogleMapsAPIKey() string   { return "test-key" }
func (c testMatrixConfig) GetDistanceMatrixURL() string  { return c.url }
func (c testMatrixConfig) GetDistanceMatrixQPS() float64 { return 0 }
func (c testMatrixConfig) IsDistanceMatrixEnabled() bool { return true }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testMatrixConfig{url: srv.URL}, logger.Discard())
}

func TestLookupReadsDurationInTraffic(t *testing.T) {
	departure := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("origins") != "Amsterdam Centraal" || q.Get("destinations") != "Utrecht Centraal" {
			t.Errorf("unexpected origins/destinations: %v", q)
		}
		if q.Get("departure_time") != "1714550400" {
			t.Errorf("expected unix departure 1714550400, got %q", q.Get("departure_time"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("expected api key to be sent")
		}
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK",
			"duration":{"value":1500},"duration_in_traffic":{"value":1800},"distance":{"value":42500}}]}]}`))
	})

	lookup, err := client.Lookup(context.Background(), "Amsterdam Centraal", "Utrecht Centraal", departure)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if !lookup.Found || lookup.DurationMinutes != 30 || lookup.DistanceKm != 42.5 {
		t.Fatalf("unexpected lookup: %+v", lookup)
	}
}

func TestLookupWithoutTrafficDurationIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK",
			"duration":{"value":1500},"distance":{"value":42500}}]}]}`))
	})

	lookup, err := client.Lookup(context.Background(), "A", "B", time.Now())
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if lookup.Found {
		t.Fatalf("expected not found without duration_in_traffic, got %+v", lookup)
	}
}

func TestLookupElementZeroResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`))
	})

	lookup, err := client.Lookup(context.Background(), "A", "B", time.Now())
	if err != nil || lookup.Found {
		t.Fatalf("expected empty lookup without error, got %+v, %v", lookup, err)
	}
}

func TestLookupRequestDeniedIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","rows":[]}`))
	})

	if _, err := client.Lookup(context.Background(), "A", "B", time.Now()); err == nil {
		t.Fatal("expected error for REQUEST_DENIED")
	}
}

func TestLookupUpstreamStatusIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := client.Lookup(context.Background(), "A", "B", time.Now()); err == nil {
		t.Fatal("expected error for 503")
	}
}
