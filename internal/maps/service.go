package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"distancematrix/platform/apperr"
	"distancematrix/platform/config"
	"distancematrix/platform/logger"

	"golang.org/x/time/rate"
)

const (
	userAgent       = "DistanceMatrixCommute/1.0"
	suggestionLimit = 5
)

// ErrNoMatch is returned by Resolve when a search yields nothing usable.
var ErrNoMatch = errors.New("no matching place")

// Service searches addresses through a Nominatim endpoint.
type Service struct {
	client       *http.Client
	endpoint     string
	countryCodes string
	limiter      *rate.Limiter
	log          *logger.Logger
}

// NewService creates a search service. Nominatim asks for at most one
// request per second, so outbound calls are throttled to that.
func NewService(cfg config.PlacesConfig, log *logger.Logger) *Service {
	return &Service{
		client:       &http.Client{Timeout: 5 * time.Second},
		endpoint:     cfg.GetNominatimURL(),
		countryCodes: cfg.GetPlacesCountryCodes(),
		limiter:      rate.NewLimiter(rate.Limit(1), 1),
		log:          log,
	}
}

func (s *Service) SearchAddress(ctx context.Context, query string) ([]AddressSuggestion, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", fmt.Sprint(suggestionLimit))
	if s.countryCodes != "" {
		params.Add("countrycodes", s.countryCodes)
	}

	reqURL := fmt.Sprintf("%s?%s", s.endpoint, params.Encode())

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.UpstreamError("nominatim", 0, err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "address lookup service unavailable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		s.log.UpstreamError("nominatim", resp.StatusCode, err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "address lookup service unavailable", err)
	}

	var rawResults []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResults); err != nil {
		s.log.Error("failed to decode nominatim payload", "error", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "address lookup service unavailable", err)
	}

	suggestions := make([]AddressSuggestion, 0, len(rawResults))
	for _, raw := range rawResults {
		suggestion, ok := buildSuggestion(raw)
		if !ok {
			continue
		}

		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

// Resolve returns the best match for query as a place selection.
func (s *Service) Resolve(ctx context.Context, query string) (*Selection, error) {
	suggestions, err := s.SearchAddress(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoMatch, query)
	}
	return Select(suggestions[0]), nil
}

// buildSuggestion prefers a street-level label and falls back to
// Nominatim's display name for places without a road (stations, towns).
func buildSuggestion(raw nominatimResponse) (AddressSuggestion, bool) {
	city := pickCity(raw.Address)

	suggestion := AddressSuggestion{
		Street:      raw.Address.Road,
		HouseNumber: raw.Address.HouseNumber,
		ZipCode:     raw.Address.Postcode,
		City:        city,
		Lat:         raw.Lat,
		Lon:         raw.Lon,
	}

	switch {
	case raw.Address.Road != "" && city != "":
		suggestion.Label = buildLabel(suggestion, raw.Address.Country)
	case strings.TrimSpace(raw.DisplayName) != "":
		suggestion.Label = strings.TrimSpace(raw.DisplayName)
	default:
		return AddressSuggestion{}, false
	}

	return suggestion, true
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}

// buildLabel formats "Street 1, 1234 AB City, Country".
func buildLabel(suggestion AddressSuggestion, country string) string {
	parts := []string{suggestion.Street}
	if suggestion.HouseNumber != "" {
		parts = append(parts, suggestion.HouseNumber)
	}
	parts = append(parts, ",")
	if suggestion.ZipCode != "" {
		parts = append(parts, suggestion.ZipCode)
	}
	parts = append(parts, suggestion.City)
	if country != "" {
		parts = append(parts, ",", country)
	}

	label := strings.Join(parts, " ")
	label = strings.ReplaceAll(label, " ,", ",")
	return strings.TrimSpace(label)
}
