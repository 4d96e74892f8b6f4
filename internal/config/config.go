// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ThreatAtlas/atlas-backend/internal/geocoding"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrBadGeocoder        = errors.New("GEOCODER_PROVIDER must be nominatim or none")
	ErrBadTimeout         = errors.New("GEOCODER_TIMEOUT must be positive")
	ErrBadRPS             = errors.New("GEOCODER_RPS must be positive")
	ErrBadCacheTTL        = errors.New("GEOCODER_CACHE_TTL must be a non-negative duration")
	ErrBadIdleTTL         = errors.New("SESSION_IDLE_TTL must be a non-negative duration")
	ErrBadRateLimit       = errors.New("RATE_LIMIT_WRITES_PER_MINUTE must be positive")
)

// DefaultCORSOrigins are the local dashboard dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5173",
}

type Config struct {
	Port        string
	DatabaseURL string

	Geocoder geocoding.Config
	// GeocoderCacheTTL of zero disables the Postgres lookup cache.
	GeocoderCacheTTL time.Duration

	// Optional overrides for the embedded tables.
	AliasTablePath     string
	ContinentTablePath string

	SessionIdleTTL           time.Duration
	RateLimitWritesPerMinute int
	CORSOrigins              []string
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT (default: 5050)
//   - DATABASE_URL: Postgres DSN (required)
//   - GEOCODER_PROVIDER: "nominatim" or "none" (default: nominatim)
//   - GEOCODER_URL (default: https://nominatim.openstreetmap.org)
//   - GEOCODER_USER_AGENT (default: atlas-backend/1.0)
//   - GEOCODER_TIMEOUT (default: 5s)
//   - GEOCODER_RPS (default: 1)
//   - GEOCODER_CACHE_TTL (default: 720h, 0 disables)
//   - ALIAS_TABLE_PATH, CONTINENT_TABLE_PATH: optional YAML overrides
//   - SESSION_IDLE_TTL (default: 30m, 0 keeps views until closed)
//   - RATE_LIMIT_WRITES_PER_MINUTE (default: 60)
//   - CORS_ORIGINS: comma separated allow-list
//
// Unparseable durations are kept as -1 and unparseable numbers as 0 so
// Validate reports them.
func LoadFromEnv() Config {
	provider := strings.ToLower(env("GEOCODER_PROVIDER", geocoding.ProviderNominatim))

	return Config{
		Port:        env("PORT", "5050"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Geocoder: geocoding.Config{
			Provider:  provider,
			BaseURL:   env("GEOCODER_URL", geocoding.DefaultBaseURL),
			UserAgent: env("GEOCODER_USER_AGENT", "atlas-backend/1.0"),
			Timeout:   durationEnv("GEOCODER_TIMEOUT", 5*time.Second),
			RPS:       floatEnv("GEOCODER_RPS", 1),
		},
		GeocoderCacheTTL:         durationEnv("GEOCODER_CACHE_TTL", 720*time.Hour),
		AliasTablePath:           strings.TrimSpace(os.Getenv("ALIAS_TABLE_PATH")),
		ContinentTablePath:       strings.TrimSpace(os.Getenv("CONTINENT_TABLE_PATH")),
		SessionIdleTTL:           durationEnv("SESSION_IDLE_TTL", 30*time.Minute),
		RateLimitWritesPerMinute: intEnv("RATE_LIMIT_WRITES_PER_MINUTE", 60),
		CORSOrigins:              listEnv("CORS_ORIGINS", DefaultCORSOrigins),
	}
}

// Validate checks that the configuration can start a server.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	switch c.Geocoder.Provider {
	case geocoding.ProviderNominatim:
		if c.Geocoder.Timeout <= 0 {
			return ErrBadTimeout
		}
		if c.Geocoder.RPS <= 0 {
			return ErrBadRPS
		}
	case geocoding.ProviderNone:
	default:
		return fmt.Errorf("%w: %q", ErrBadGeocoder, c.Geocoder.Provider)
	}
	if c.GeocoderCacheTTL < 0 {
		return ErrBadCacheTTL
	}
	if c.SessionIdleTTL < 0 {
		return ErrBadIdleTTL
	}
	if c.RateLimitWritesPerMinute <= 0 {
		return ErrBadRateLimit
	}
	return nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return -1
	}
	return d
}

func intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func floatEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func listEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
