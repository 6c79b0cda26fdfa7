// Package forecast fetches daily weather aggregates from the Open-Meteo
// forecast API and renders them as text for the dialogue agent.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.open-meteo.com"

// HorizonDays is the maximum forecast window the service supports.
const HorizonDays = 16

// DefaultWindowDays is the window applied when the user gives no end date.
const DefaultWindowDays = 7

// dailyMetrics are the per-day aggregates requested from the service.
var dailyMetrics = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"precipitation_probability_max",
	"windspeed_10m_max",
	"weathercode",
}

// Query holds the six parameters the dialogue collects. StartDate and
// EndDate may be empty; defaults are applied at fetch time only, so
// user-supplied dates always win.
type Query struct {
	Latitude        float64
	Longitude       float64
	StartDate       string // YYYY-MM-DD, optional
	EndDate         string // YYYY-MM-DD, optional
	TemperatureUnit string // "celsius" or "fahrenheit"
	Timezone        string // "auto" or an IANA zone
}

// Day is one daily record, in the order returned by the service.
type Day struct {
	Date                     string
	Code                     int
	TempMin                  float64
	TempMax                  float64
	PrecipitationMM          float64
	PrecipitationProbability float64
	MaxWindKPH               float64
}

// Client fetches forecasts from an Open-Meteo compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithClock replaces the process clock used for date defaulting. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a forecast client with a 30 second request timeout.
// No retries; a failed request returns no partial data.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplyDefaults fills missing dates: start defaults to today (process-local
// date), end to start plus seven days. Returns the defaulted copy.
func (c *Client) ApplyDefaults(q Query) Query {
	if q.StartDate == "" {
		q.StartDate = c.now().Format("2006-01-02")
	}
	if q.EndDate == "" {
		start, err := time.Parse("2006-01-02", q.StartDate)
		if err != nil {
			start = c.now()
		}
		q.EndDate = start.AddDate(0, 0, DefaultWindowDays).Format("2006-01-02")
	}
	if q.TemperatureUnit == "" {
		q.TemperatureUnit = "fahrenheit"
	}
	if q.Timezone == "" {
		q.Timezone = "auto"
	}
	return q
}

// Validate checks the defaulted query against the ranges the service accepts.
func Validate(q Query) error {
	if q.Latitude < -90 || q.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", q.Longitude)
	}
	if q.TemperatureUnit != "celsius" && q.TemperatureUnit != "fahrenheit" {
		return fmt.Errorf("temperature unit must be 'celsius' or 'fahrenheit', got %q", q.TemperatureUnit)
	}
	start, err := time.Parse("2006-01-02", q.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: want YYYY-MM-DD", q.StartDate)
	}
	end, err := time.Parse("2006-01-02", q.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: want YYYY-MM-DD", q.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", q.EndDate, q.StartDate)
	}
	if end.Sub(start) > HorizonDays*24*time.Hour {
		return fmt.Errorf("date range exceeds the %d-day forecast horizon", HorizonDays)
	}
	return nil
}

// Fetch requests daily aggregates for every date in the query window,
// inclusive. The query must already be defaulted and valid.
func (c *Client) Fetch(ctx context.Context, q Query) ([]Day, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(q.Latitude))
	params.Set("longitude", formatCoord(q.Longitude))
	params.Set("start_date", q.StartDate)
	params.Set("end_date", q.EndDate)
	params.Set("temperature_unit", q.TemperatureUnit)
	params.Set("timezone", q.Timezone)
	for _, metric := range dailyMetrics {
		params.Add("daily", metric)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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
		return nil, fmt.Errorf("API Error: %d - %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Daily struct {
			Time                 []string  `json:"time"`
			TemperatureMax       []float64 `json:"temperature_2m_max"`
			TemperatureMin       []float64 `json:"temperature_2m_min"`
			PrecipitationSum     []float64 `json:"precipitation_sum"`
			PrecipitationProbMax []float64 `json:"precipitation_probability_max"`
			WindSpeedMax         []float64 `json:"windspeed_10m_max"`
			WeatherCode          []int     `json:"weathercode"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	daily := parsed.Daily
	days := make([]Day, 0, len(daily.Time))
	for i, date := range daily.Time {
		day := Day{Date: date}
		if i < len(daily.WeatherCode) {
			day.Code = daily.WeatherCode[i]
		}
		if i < len(daily.TemperatureMax) {
			day.TempMax = daily.TemperatureMax[i]
		}
		if i < len(daily.TemperatureMin) {
			day.TempMin = daily.TemperatureMin[i]
		}
		if i < len(daily.PrecipitationSum) {
			day.PrecipitationMM = daily.PrecipitationSum[i]
		}
		if i < len(daily.PrecipitationProbMax) {
			day.PrecipitationProbability = daily.PrecipitationProbMax[i]
		}
		if i < len(daily.WindSpeedMax) {
			day.MaxWindKPH = daily.WindSpeedMax[i]
		}
		days = append(days, day)
	}
	return days, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
