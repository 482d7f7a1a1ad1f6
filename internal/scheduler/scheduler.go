// Package scheduler sequences the weekly sync work across a day/hour
// table and exposes the same day handlers as manual triggers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/ingest"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/metrics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// The weekly trigger table. Cron entries fire at minute 0 so a slot
// cannot double-fire within its hour.
const (
	mondayCron   = "0 6 * * 1"
	thursdayCron = "0 18 * * 4"
	fridayCron   = "0 12 * * 5"
	saturdayCron = "0 8 * * 6"
	sundayCron   = "0 21 * * 0"
)

// SeasonSyncer ingests one season of schedule, results and lines.
type SeasonSyncer interface {
	SyncSeason(ctx context.Context, year int) (ingest.Result, error)
}

// RatingApplier rates newly-completed games.
type RatingApplier interface {
	Apply(ctx context.Context) (int, error)
}

// WeatherEnricher produces a weather patch for a game.
type WeatherEnricher interface {
	Enrich(ctx context.Context, game *models.Game) *models.WeatherPatch
}

// GameStore is the game persistence surface the scheduler's steps use.
type GameStore interface {
	ListUpcomingWindow(ctx context.Context, from, to time.Time) ([]*models.Game, error)
	UpdateWeather(ctx context.Context, gameID int, patch *models.WeatherPatch) error
	MarkCompletedHistorical(ctx context.Context) (int64, error)
}

// StatsRefresher refreshes the analytics inputs for a season.
type StatsRefresher interface {
	Refresh(ctx context.Context, year int) (int, error)
}

// RunStore records sync run outcomes; recording failures never fail a sync.
type RunStore interface {
	Record(ctx context.Context, run *models.SyncRun) error
}

// CacheResetter clears per-run lookup caches between syncs.
type CacheResetter interface {
	Reset()
}

// Deps wires the scheduler's collaborators. Runs and Resolver may be nil.
type Deps struct {
	Pipeline  SeasonSyncer
	Ratings   RatingApplier
	Weather   WeatherEnricher
	Games     GameStore
	Analytics StatsRefresher
	Runs      RunStore
	Resolver  CacheResetter

	// Season is the season year the weekly slots operate on.
	Season int
}

// step is one unit of scheduled work within a day's sequence.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// Scheduler is constructed once at process start and passed by handle to
// whatever invokes manual triggers. One sync runs at a time; overlapping
// triggers wait.
type Scheduler struct {
	deps Deps
	cron *cron.Cron
	now  func() time.Time

	mu sync.Mutex
}

// New creates a scheduler.
func New(deps Deps) *Scheduler {
	return &Scheduler{
		deps: deps,
		cron: cron.New(),
		now:  time.Now,
	}
}

// Start registers the weekly trigger table and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	entries := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{mondayCron, "monday", s.RunMonday},
		{thursdayCron, "thursday", s.RunThursday},
		{fridayCron, "friday", s.RunFriday},
		{saturdayCron, "saturday", s.RunSaturday},
		{sundayCron, "sunday", s.RunSunday},
	}

	for _, entry := range entries {
		entry := entry
		if _, err := s.cron.AddFunc(entry.spec, func() {
			if err := entry.run(ctx); err != nil {
				log.Error().Err(err).Str("day_slot", entry.name).Msg("Scheduled sync finished with failures")
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule %s sync: %w", entry.name, err)
		}
	}

	s.cron.Start()
	log.Info().Msg("Weekly sync schedule started")
	return nil
}

// Stop stops the cron loop. In-flight work runs to completion; there is
// no cancellation of a started step.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Info().Msg("Scheduler stopped")
}

// RunMonday marks newly-completed games historical, ingests the coming
// week's games, refreshes rankings, and refreshes opening betting lines.
func (s *Scheduler) RunMonday(ctx context.Context) error {
	return s.runDay(ctx, "monday", []step{
		{"mark_historical", s.stepMarkHistorical},
		{"ingest_games", s.stepSyncSeason},
		{"refresh_rankings", s.stepApplyRatings},
		{"refresh_opening_lines", s.stepSyncSeason},
	})
}

// RunThursday refreshes mid-week betting lines.
func (s *Scheduler) RunThursday(ctx context.Context) error {
	return s.runDay(ctx, "thursday", []step{
		{"refresh_midweek_lines", s.stepSyncSeason},
	})
}

// RunFriday refreshes closing betting lines and fetches weekend weather
// forecasts.
func (s *Scheduler) RunFriday(ctx context.Context) error {
	return s.runDay(ctx, "friday", []step{
		{"refresh_closing_lines", s.stepSyncSeason},
		{"weekend_weather", s.stepWeekendWeather},
	})
}

// RunSaturday refreshes game-day betting lines and game-day weather.
func (s *Scheduler) RunSaturday(ctx context.Context) error {
	return s.runDay(ctx, "saturday", []step{
		{"refresh_gameday_lines", s.stepSyncSeason},
		{"gameday_weather", s.stepGamedayWeather},
	})
}

// RunSunday performs the full comprehensive resync.
func (s *Scheduler) RunSunday(ctx context.Context) error {
	return s.runDay(ctx, "sunday", []step{
		{"mark_historical", s.stepMarkHistorical},
		{"ingest_games", s.stepSyncSeason},
		{"refresh_rankings", s.stepApplyRatings},
		{"refresh_lines", s.stepSyncSeason},
		{"weekend_weather", s.stepWeekendWeather},
		{"refresh_analytics", s.stepRefreshAnalytics},
	})
}

// runDay executes a day's steps sequentially. A step failure is caught,
// logged with the step name, recorded, and never blocks later steps.
// The returned error summarizes failures for manual callers.
func (s *Scheduler) runDay(ctx context.Context, slot string, steps []step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deps.Resolver != nil {
		s.deps.Resolver.Reset()
	}

	run := &models.SyncRun{
		DaySlot:   slot,
		StartedAt: s.now().UTC(),
	}

	log.Info().Str("day_slot", slot).Int("steps", len(steps)).Msg("Sync run starting")

	failed := 0
	for _, st := range steps {
		outcome := models.SyncStepResult{Step: st.name, Success: true}

		if err := st.run(ctx); err != nil {
			failed++
			outcome.Success = false
			outcome.Message = err.Error()
			metrics.RecordSyncStep(st.name, "failure")
			log.Error().Err(err).
				Str("day_slot", slot).
				Str("step", st.name).
				Msg("Sync step failed")
		} else {
			metrics.RecordSyncStep(st.name, "success")
			log.Info().
				Str("day_slot", slot).
				Str("step", st.name).
				Msg("Sync step complete")
		}

		run.Steps = append(run.Steps, outcome)
	}

	if s.deps.Runs != nil {
		if err := s.deps.Runs.Record(ctx, run); err != nil {
			log.Warn().Err(err).Str("day_slot", slot).Msg("Failed to record sync run")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%s sync: %d of %d steps failed", slot, failed, len(steps))
	}
	return nil
}

func (s *Scheduler) stepMarkHistorical(ctx context.Context) error {
	count, err := s.deps.Games.MarkCompletedHistorical(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("Completed games marked historical")
	}
	return nil
}

func (s *Scheduler) stepSyncSeason(ctx context.Context) error {
	_, err := s.deps.Pipeline.SyncSeason(ctx, s.deps.Season)
	return err
}

func (s *Scheduler) stepApplyRatings(ctx context.Context) error {
	_, err := s.deps.Ratings.Apply(ctx)
	return err
}

func (s *Scheduler) stepRefreshAnalytics(ctx context.Context) error {
	_, err := s.deps.Analytics.Refresh(ctx, s.deps.Season)
	return err
}

// stepWeekendWeather attaches forecasts to games kicking off within the
// forecast horizon.
func (s *Scheduler) stepWeekendWeather(ctx context.Context) error {
	from := s.now()
	return s.enrichWindow(ctx, from, from.Add(5*24*time.Hour))
}

// stepGamedayWeather refreshes weather for games kicking off today.
func (s *Scheduler) stepGamedayWeather(ctx context.Context) error {
	from := s.now()
	return s.enrichWindow(ctx, from.Add(-6*time.Hour), from.Add(24*time.Hour))
}

func (s *Scheduler) enrichWindow(ctx context.Context, from, to time.Time) error {
	games, err := s.deps.Games.ListUpcomingWindow(ctx, from, to)
	if err != nil {
		return err
	}

	failed := 0
	for _, game := range games {
		patch := s.deps.Weather.Enrich(ctx, game)
		if err := s.deps.Games.UpdateWeather(ctx, game.GameID, patch); err != nil {
			failed++
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to persist weather")
		}
	}

	log.Info().
		Int("games", len(games)).
		Int("failed", failed).
		Msg("Weather window enriched")

	if failed > 0 {
		return fmt.Errorf("weather enrichment failed for %d of %d games", failed, len(games))
	}
	return nil
}
