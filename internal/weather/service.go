// Package weather attaches current, forecast, historical or estimated
// conditions plus a derived impact score to games.
package weather

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/cache"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/client"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/metrics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/weatherapi"

	"github.com/rs/zerolog/log"
)

// forecastHorizon is how far ahead the short-range forecast reaches.
const forecastHorizon = 5 * 24 * time.Hour

// Controlled-climate values reported for dome games.
const (
	domeTemperature = 72.0
	domeHumidity    = 40.0
)

// VenueSource provides the provider's venue list for coordinate lookup.
type VenueSource interface {
	FetchVenues(ctx context.Context) ([]client.Venue, error)
}

// Conditions is the weather-provider surface the service consumes.
type Conditions interface {
	Enabled() bool
	Current(ctx context.Context, lat, lon float64) (*weatherapi.Observation, error)
	Forecast(ctx context.Context, lat, lon float64) ([]weatherapi.Observation, error)
	Historical(ctx context.Context, lat, lon float64, at time.Time) (*weatherapi.Observation, error)
	Geocode(ctx context.Context, query string) (*weatherapi.Coordinates, error)
}

// Service enriches games with weather. Enrichment is pure with respect
// to its input aside from network calls: it returns a patch and never
// mutates the game.
type Service struct {
	api    Conditions
	venues VenueSource
	cache  *cache.Store
	now    func() time.Time
}

// NewService creates a weather enrichment service.
func NewService(api Conditions, venues VenueSource, store *cache.Store) *Service {
	if store == nil {
		store = cache.NewInProcess()
	}
	return &Service{
		api:    api,
		venues: venues,
		cache:  store,
		now:    time.Now,
	}
}

// Enrich produces the weather patch for a game. It never fails: any
// resolution or fetch problem degrades to the deterministic estimator.
func (s *Service) Enrich(ctx context.Context, game *models.Game) *models.WeatherPatch {
	venueName := ""
	if game.Venue.Valid {
		venueName = game.Venue.String
	}

	if IsDome(venueName) {
		patch := &models.WeatherPatch{
			Temperature: domeTemperature,
			Humidity:    domeHumidity,
			Condition:   "Controlled",
			IsDome:      true,
		}
		patch.Impact = ImpactScore(patch.Temperature, 0, 0, patch.Condition, true)
		metrics.RecordWeatherEnrichment("dome")
		return patch
	}

	lat, lon, ok := s.resolveCoordinates(ctx, venueName)
	if !ok {
		patch := Estimate(defaultLatitude, defaultLongitude, game.StartTime)
		metrics.RecordWeatherEnrichment("estimate")
		return &patch
	}

	obs := s.fetchObservation(ctx, lat, lon, game.StartTime)
	if obs == nil {
		patch := Estimate(lat, lon, game.StartTime)
		metrics.RecordWeatherEnrichment("estimate")
		return &patch
	}

	patch := &models.WeatherPatch{
		Temperature:   obs.Temperature,
		WindSpeed:     obs.WindSpeed,
		WindDirection: CompassFromDegrees(obs.WindDegrees),
		Humidity:      obs.Humidity,
		Precipitation: obs.Precipitation,
		Condition:     obs.Condition,
	}
	patch.Impact = ImpactScore(patch.Temperature, patch.WindSpeed, patch.Precipitation, patch.Condition, false)
	metrics.RecordWeatherEnrichment("observed")
	return patch
}

// Geographic center of the continental US, used when a venue cannot be
// resolved at all.
const (
	defaultLatitude  = 39.5
	defaultLongitude = -98.35
)

// fetchObservation picks the right endpoint for the kickoff time:
// historical for past games, the nearest forecast entry within the
// horizon, current weather for games starting about now. Returns nil
// when the provider is disabled or the fetch fails.
func (s *Service) fetchObservation(ctx context.Context, lat, lon float64, kickoff time.Time) *weatherapi.Observation {
	if !s.api.Enabled() {
		return nil
	}

	now := s.now()
	until := kickoff.Sub(now)

	switch {
	case until < -time.Hour:
		obs, err := s.api.Historical(ctx, lat, lon, kickoff)
		if err != nil {
			log.Warn().Err(err).Msg("Historical weather fetch failed, estimating")
			return nil
		}
		return obs

	case until <= time.Hour:
		obs, err := s.api.Current(ctx, lat, lon)
		if err != nil {
			log.Warn().Err(err).Msg("Current weather fetch failed, estimating")
			return nil
		}
		return obs

	case until <= forecastHorizon:
		entries, err := s.api.Forecast(ctx, lat, lon)
		if err != nil || len(entries) == 0 {
			log.Warn().Err(err).Msg("Forecast fetch failed, estimating")
			return nil
		}
		return closestObservation(entries, kickoff)

	default:
		// Too far out for the short-range forecast.
		return nil
	}
}

// closestObservation selects the forecast entry nearest kickoff.
func closestObservation(entries []weatherapi.Observation, kickoff time.Time) *weatherapi.Observation {
	best := &entries[0]
	bestDiff := math.Abs(entries[0].Timestamp.Sub(kickoff).Seconds())
	for i := 1; i < len(entries); i++ {
		diff := math.Abs(entries[i].Timestamp.Sub(kickoff).Seconds())
		if diff < bestDiff {
			best = &entries[i]
			bestDiff = diff
		}
	}
	return best
}

type cachedCoords struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Found     bool    `json:"found"`
}

// resolveCoordinates maps a venue name to coordinates via the provider
// venue list, with exact-then-substring matching, caching both hits and
// misses per venue name.
func (s *Service) resolveCoordinates(ctx context.Context, venueName string) (lat, lon float64, ok bool) {
	if venueName == "" {
		return 0, 0, false
	}

	key := "venue:" + models.NormalizeName(venueName)

	var cached cachedCoords
	if s.cache.Get(ctx, key, &cached) {
		return cached.Latitude, cached.Longitude, cached.Found
	}

	venues, err := s.venues.FetchVenues(ctx)
	if err != nil {
		log.Warn().Err(err).Str("venue", venueName).Msg("Venue list fetch failed")
		return 0, 0, false
	}

	needle := models.NormalizeName(venueName)
	var match *client.Venue
	for i := range venues {
		name := models.NormalizeName(venues[i].Name)
		if name == needle {
			match = &venues[i]
			break
		}
		if match == nil && (strings.Contains(name, needle) || strings.Contains(needle, name)) {
			match = &venues[i]
		}
	}

	if match == nil {
		s.cache.Set(ctx, key, cachedCoords{Found: false})
		return 0, 0, false
	}

	lat, lon = match.Latitude, match.Longitude
	if lat == 0 && lon == 0 {
		// Provider venues sometimes ship without coordinates but with
		// a city, which the weather provider's geocoder can resolve.
		lat, lon, ok = s.geocodeCity(ctx, match.City, match.State)
		if !ok {
			s.cache.Set(ctx, key, cachedCoords{Found: false})
			return 0, 0, false
		}
	}

	s.cache.Set(ctx, key, cachedCoords{Latitude: lat, Longitude: lon, Found: true})
	return lat, lon, true
}

// geocodeCity resolves a city/state pair through the weather provider's
// geocoder. Returns false when the provider is disabled, the venue has
// no city, or the lookup fails.
func (s *Service) geocodeCity(ctx context.Context, city, state string) (lat, lon float64, ok bool) {
	if city == "" || !s.api.Enabled() {
		return 0, 0, false
	}

	query := city
	if state != "" {
		query = city + "," + state
	}

	coords, err := s.api.Geocode(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Venue geocoding failed")
		return 0, 0, false
	}
	return coords.Latitude, coords.Longitude, true
}
