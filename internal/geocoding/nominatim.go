package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Provider names accepted by Config.
const (
	ProviderNominatim = "nominatim"
	ProviderNone      = "none"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

var (
	ErrLookupEmpty = errors.New("reverse lookup returned no country")
	ErrBadLocation = errors.New("coordinate outside lat/lng range")
	ErrBadProvider = errors.New("unknown geocoder provider")
)

// Config controls the reverse geocoder.
type Config struct {
	Provider  string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
}

// Client wraps a Nominatim-compatible reverse geocoding endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient builds a client for cfg. Returns nil, nil when the provider is
// "none" so callers fall back to continent-level results.
func NewClient(cfg Config) (*Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderNone:
		return nil, nil
	case "", ProviderNominatim:
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadProvider, cfg.Provider)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type reverseResponse struct {
	Address struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
	Error string `json:"error"`
}

// ReverseCountry returns the English country name at the coordinate.
// Waiting for the rate limiter counts against the timeout.
func (c *Client) ReverseCountry(ctx context.Context, lat, lng float64) (string, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", ErrBadLocation
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for geocoder slot: %w", err)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "4")
	q.Set("addressdetails", "1")
	u := c.baseURL + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logError("reverse", err)
		return "", fmt.Errorf("reverse geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoder returned HTTP %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	country := strings.TrimSpace(body.Address.Country)
	logResponse(lat, lng, resp.StatusCode, time.Since(start), country)
	if country == "" {
		return "", ErrLookupEmpty
	}
	return country, nil
}
