package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/metrics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/rs/zerolog/log"
)

// Client is the college football data provider API client.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{}
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new provider API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Rate limiting semaphore: at most 5 in-flight requests
	rateLimiter := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request with retry logic and rate limiting.
// Retries network errors and 429/503/504; auth and other client errors
// surface immediately.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		body, retryable, err := c.doOnce(ctx, url, params)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordAPICall("cfbd", path, status, time.Since(start).Seconds())
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, url string, params map[string]string) (body []byte, retryable bool, err error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CollegeForecastPro/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Received retryable error")
		return nil, true, fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, false, fmt.Errorf("API authentication failed (status %d): %s", resp.StatusCode, string(body))

	default:
		return nil, false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// FetchGames fetches the full season schedule with results where final.
func (c *Client) FetchGames(ctx context.Context, year int, seasonType string) ([]models.GameInput, error) {
	params := map[string]string{
		"year":       fmt.Sprintf("%d", year),
		"seasonType": seasonType,
	}

	body, err := c.get(ctx, "games", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}

	var games []models.GameInput
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal games: %w", err)
	}

	return games, nil
}

// FetchLines fetches betting lines for a season. Each entry carries a
// list of per-bookmaker spread/over-under pairs.
func (c *Client) FetchLines(ctx context.Context, year int, seasonType string) ([]models.GameLines, error) {
	params := map[string]string{
		"year":       fmt.Sprintf("%d", year),
		"seasonType": seasonType,
	}

	body, err := c.get(ctx, "lines", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch betting lines: %w", err)
	}

	var lines []models.GameLines
	if err := json.Unmarshal(body, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal betting lines: %w", err)
	}

	return lines, nil
}

// Venue is one entry from the provider's venue list.
type Venue struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Dome      bool    `json:"dome"`
}

// FetchVenues fetches the provider's venue list.
func (c *Client) FetchVenues(ctx context.Context) ([]Venue, error) {
	body, err := c.get(ctx, "venues", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %w", err)
	}

	var venues []Venue
	if err := json.Unmarshal(body, &venues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal venues: %w", err)
	}

	return venues, nil
}

// TeamSeasonStat is one per-team statistic entry.
type TeamSeasonStat struct {
	Season    int             `json:"season"`
	Team      string          `json:"team"`
	StatName  string          `json:"statName"`
	StatValue json.RawMessage `json:"statValue"`
}

// FetchTeamSeasonStats fetches season statistics for all teams.
func (c *Client) FetchTeamSeasonStats(ctx context.Context, year int) ([]TeamSeasonStat, error) {
	params := map[string]string{"year": fmt.Sprintf("%d", year)}

	body, err := c.get(ctx, "stats/season", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team season stats: %w", err)
	}

	var stats []TeamSeasonStat
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team season stats: %w", err)
	}

	return stats, nil
}

// RecruitingClass is one team's recruiting class summary.
type RecruitingClass struct {
	Year          int     `json:"year"`
	Team          string  `json:"team"`
	Rank          int     `json:"rank"`
	AverageRating float64 `json:"averageRating"`
}

// FetchRecruitingClasses fetches recruiting class ranks for a year.
func (c *Client) FetchRecruitingClasses(ctx context.Context, year int) ([]RecruitingClass, error) {
	params := map[string]string{"year": fmt.Sprintf("%d", year)}

	body, err := c.get(ctx, "recruiting/teams", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recruiting classes: %w", err)
	}

	var classes []RecruitingClass
	if err := json.Unmarshal(body, &classes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recruiting classes: %w", err)
	}

	return classes, nil
}

// TeamRating is the provider's own strength rating for a team.
type TeamRating struct {
	Year       int     `json:"year"`
	Team       string  `json:"team"`
	Conference string  `json:"conference"`
	Rating     float64 `json:"rating"`
}

// FetchTeamRatings fetches the provider's team ratings for a year.
func (c *Client) FetchTeamRatings(ctx context.Context, year int) ([]TeamRating, error) {
	params := map[string]string{"year": fmt.Sprintf("%d", year)}

	body, err := c.get(ctx, "ratings/sp", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team ratings: %w", err)
	}

	var ratings []TeamRating
	if err := json.Unmarshal(body, &ratings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team ratings: %w", err)
	}

	return ratings, nil
}
