// Package geocode resolves free-text place names to coordinates (and back)
// through the Nominatim search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// userAgent identifies us to Nominatim; the service rejects anonymous
// default Go clients.
const userAgent = "skycast/1.0"

// ErrNoMatch is returned when the search succeeds but matches no location.
var ErrNoMatch = errors.New("no matching location")

// Place is one resolved location. Ephemeral: produced by one lookup,
// consumed by the next reasoning step, never cached.
type Place struct {
	DisplayName string
	Latitude    float64
	Longitude   float64
}

// Client issues lookups against a Nominatim-compatible endpoint.
//
// Calls are rate limited to one per second per the Nominatim usage policy.
// Each call is independent and stateless; nothing is cached.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a geocoding client with a 10 second request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search resolves a free-text address or place name to coordinates, taking
// the first result only. Returns ErrNoMatch when the service finds nothing.
func (c *Client) Search(ctx context.Context, address string) (Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Place{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", address)

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return Place{}, err
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return Place{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(results) == 0 {
		return Place{}, ErrNoMatch
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("failed to parse latitude %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("failed to parse longitude %q: %w", first.Lon, err)
	}

	display := first.DisplayName
	if display == "" {
		display = address
	}

	return Place{DisplayName: display, Latitude: lat, Longitude: lon}, nil
}

// Reverse resolves coordinates to a display name. Used by the map-pin drag
// path in the chat page.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	body, err := c.get(ctx, "/reverse", params)
	if err != nil {
		return "", err
	}

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.DisplayName == "" {
		return "", ErrNoMatch
	}
	return result.DisplayName, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
