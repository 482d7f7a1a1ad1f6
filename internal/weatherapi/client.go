package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is the weather provider API client. A client constructed with an
// empty API key is disabled; callers fall back to estimation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new weather API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Observation is a single weather reading, current or historical.
type Observation struct {
	Temperature   float64
	WindSpeed     float64
	WindDegrees   int
	Humidity      float64
	Precipitation float64
	Condition     string
	Timestamp     time.Time
}

// Coordinates is a geocoded location.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

var errDisabled = fmt.Errorf("weather API key not configured")

// IsDisabled reports whether err means the client has no API key.
func IsDisabled(err error) bool {
	return err == errDisabled
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	if !c.Enabled() {
		return errDisabled
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		q.Add(key, value)
	}
	q.Add("appid", c.apiKey)
	q.Add("units", "imperial")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal weather response: %w", err)
	}

	return nil
}

// conditionsPayload is the provider's shared observation shape.
type conditionsPayload struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Rain map[string]float64 `json:"rain"`
	Snow map[string]float64 `json:"snow"`
}

func (p *conditionsPayload) toObservation() Observation {
	obs := Observation{
		Temperature: p.Main.Temp,
		WindSpeed:   p.Wind.Speed,
		WindDegrees: p.Wind.Deg,
		Humidity:    p.Main.Humidity,
		Timestamp:   time.Unix(p.Dt, 0).UTC(),
	}
	if len(p.Weather) > 0 {
		obs.Condition = p.Weather[0].Main
	}
	// Rain/snow volumes arrive in mm over 1h or 3h windows; convert to inches.
	for _, v := range p.Rain {
		obs.Precipitation += v / 25.4
	}
	for _, v := range p.Snow {
		obs.Precipitation += v / 25.4
	}
	return obs
}

// Current fetches current weather at a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Observation, error) {
	var payload conditionsPayload
	err := c.get(ctx, "data/2.5/weather", map[string]string{
		"lat": fmt.Sprintf("%.4f", lat),
		"lon": fmt.Sprintf("%.4f", lon),
	}, &payload)
	if err != nil {
		return nil, err
	}

	obs := payload.toObservation()
	return &obs, nil
}

// Forecast fetches the 5-day/3-hour forecast at a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]Observation, error) {
	var payload struct {
		List []conditionsPayload `json:"list"`
	}
	err := c.get(ctx, "data/2.5/forecast", map[string]string{
		"lat": fmt.Sprintf("%.4f", lat),
		"lon": fmt.Sprintf("%.4f", lon),
	}, &payload)
	if err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(payload.List))
	for i := range payload.List {
		observations = append(observations, payload.List[i].toObservation())
	}
	return observations, nil
}

// Historical fetches the observation nearest a past timestamp.
func (c *Client) Historical(ctx context.Context, lat, lon float64, at time.Time) (*Observation, error) {
	var payload struct {
		Data []conditionsPayload `json:"data"`
	}
	err := c.get(ctx, "data/3.0/onecall/timemachine", map[string]string{
		"lat": fmt.Sprintf("%.4f", lat),
		"lon": fmt.Sprintf("%.4f", lon),
		"dt":  fmt.Sprintf("%d", at.Unix()),
	}, &payload)
	if err != nil {
		return nil, err
	}

	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("no historical data for %s", at.Format(time.RFC3339))
	}

	obs := payload.Data[0].toObservation()
	return &obs, nil
}

// Geocode resolves a "city,state" query to coordinates.
func (c *Client) Geocode(ctx context.Context, query string) (*Coordinates, error) {
	var results []Coordinates
	err := c.get(ctx, "geo/1.0/direct", map[string]string{
		"q":     query + ",US",
		"limit": "1",
	}, &results)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		log.Debug().Str("query", query).Msg("Geocoding returned no results")
		return nil, fmt.Errorf("no coordinates found for %q", query)
	}

	return &results[0], nil
}
