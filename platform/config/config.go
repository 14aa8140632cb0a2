// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// RateLimitConfig provides settings for the inbound per-IP limiter.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// DistanceMatrixConfig provides settings for the distance matrix provider.
type DistanceMatrixConfig interface {
	GetGoogleMapsAPIKey() string
	GetDistanceMatrixURL() string
	GetDistanceMatrixQPS() float64
	IsDistanceMatrixEnabled() bool
}

// CommuteConfig provides the constants used to derive commute statistics.
type CommuteConfig interface {
	GetCommuteLocation() *time.Location
	GetCarbonEmissionFactor() float64
	GetWorkdaysPerYear() int
}

// CacheConfig provides settings for the distance lookup cache.
type CacheConfig interface {
	GetRedisURL() string
	GetCacheTTL() time.Duration
	IsRedisEnabled() bool
}

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// PlacesConfig provides settings for the place autocomplete lookup.
type PlacesConfig interface {
	GetNominatimURL() string
	GetPlacesCountryCodes() string
}

// FormConfig provides settings for the commute form front ends.
type FormConfig interface {
	GetCommuteBackendURL() string
	GetSessionTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	CORSAllowAll         bool
	CORSOrigins          []string
	RateLimitRPS         float64
	RateLimitBurst       int
	GoogleMapsAPIKey     string
	DistanceMatrixURL    string
	DistanceMatrixQPS    float64
	CommuteLocation      *time.Location
	CarbonEmissionFactor float64
	WorkdaysPerYear      int
	RedisURL             string
	CacheTTL             time.Duration
	DatabaseURL          string
	NominatimURL         string
	PlacesCountryCodes   string
	CommuteBackendURL    string
	SessionTTL           time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// DistanceMatrixConfig implementation
func (c *Config) GetGoogleMapsAPIKey() string   { return c.GoogleMapsAPIKey }
func (c *Config) GetDistanceMatrixURL() string  { return c.DistanceMatrixURL }
func (c *Config) GetDistanceMatrixQPS() float64 { return c.DistanceMatrixQPS }
func (c *Config) IsDistanceMatrixEnabled() bool { return c.GoogleMapsAPIKey != "" }

// CommuteConfig implementation
func (c *Config) GetCommuteLocation() *time.Location { return c.CommuteLocation }
func (c *Config) GetCarbonEmissionFactor() float64   { return c.CarbonEmissionFactor }
func (c *Config) GetWorkdaysPerYear() int            { return c.WorkdaysPerYear }

// CacheConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetCacheTTL() time.Duration { return c.CacheTTL }
func (c *Config) IsRedisEnabled() bool       { return c.RedisURL != "" }

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// PlacesConfig implementation
func (c *Config) GetNominatimURL() string       { return c.NominatimURL }
func (c *Config) GetPlacesCountryCodes() string { return c.PlacesCountryCodes }

// FormConfig implementation
func (c *Config) GetCommuteBackendURL() string { return c.CommuteBackendURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	location, err := time.LoadLocation(getEnv("COMMUTE_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("COMMUTE_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8000"),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		RateLimitRPS:         mustFloat(getEnv("RATE_LIMIT_RPS", "5")),
		RateLimitBurst:       mustInt(getEnv("RATE_LIMIT_BURST", "10")),
		GoogleMapsAPIKey:     getEnv("GOOGLE_MAPS_API_KEY", ""),
		DistanceMatrixURL:    getEnv("DISTANCE_MATRIX_URL", "https://maps.googleapis.com/maps/api/distancematrix/json"),
		DistanceMatrixQPS:    mustFloat(getEnv("DISTANCE_MATRIX_QPS", "10")),
		CommuteLocation:      location,
		CarbonEmissionFactor: mustFloat(getEnv("CARBON_EMISSION_FACTOR", "0.120")),
		WorkdaysPerYear:      mustInt(getEnv("WORKDAYS_PER_YEAR", "250")),
		RedisURL:             getEnv("REDIS_URL", ""),
		CacheTTL:             mustDuration(getEnv("CACHE_TTL", "6h")),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		NominatimURL:         getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		PlacesCountryCodes:   getEnv("PLACES_COUNTRY_CODES", ""),
		CommuteBackendURL:    strings.TrimRight(getEnv("COMMUTE_BACKEND_URL", "http://127.0.0.1:8000"), "/"),
		SessionTTL:           mustDuration(getEnv("SESSION_TTL", "2h")),
	}

	if cfg.CarbonEmissionFactor < 0 {
		return nil, fmt.Errorf("CARBON_EMISSION_FACTOR must not be negative")
	}
	if cfg.WorkdaysPerYear <= 0 {
		return nil, fmt.Errorf("WORKDAYS_PER_YEAR must be a positive integer")
	}
	if cfg.CommuteBackendURL == "" {
		return nil, fmt.Errorf("COMMUTE_BACKEND_URL must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
