// Package ingest fetches season schedules, results and betting lines
// from the provider and reconciles them into the store.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/metrics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/repository"

	"github.com/rs/zerolog/log"
)

// defaultBatchSize bounds how many game writes happen between progress
// checkpoints.
const defaultBatchSize = 50

// Provider is the schedule/lines surface of the external data provider.
type Provider interface {
	FetchGames(ctx context.Context, year int, seasonType string) ([]models.GameInput, error)
	FetchLines(ctx context.Context, year int, seasonType string) ([]models.GameLines, error)
}

// TeamResolver maps external team names to internal ids.
type TeamResolver interface {
	Resolve(ctx context.Context, name, conference string) (int, error)
}

// GameStore is the persistence surface the pipeline writes through.
type GameStore interface {
	Upsert(ctx context.Context, game *models.Game) (repository.UpsertResult, error)
	CountBySeason(ctx context.Context, season int) (int, error)
}

// Result summarizes one season sync.
type Result struct {
	Inserted int
	Updated  int
	Skipped  int
	// NewlyCompleted counts games that gained final scores this run and
	// are now awaiting a rating update.
	NewlyCompleted int
}

// Pipeline ingests one season per call. Records are processed
// sequentially with per-record failure isolation: one bad record is
// logged and skipped, the rest of the season continues.
type Pipeline struct {
	provider  Provider
	resolver  TeamResolver
	games     GameStore
	batchSize int

	// seasonPause is the fixed delay between season syncs, to respect
	// provider rate limits during backfills.
	seasonPause time.Duration
}

// New creates an ingestion pipeline.
func New(provider Provider, resolver TeamResolver, games GameStore) *Pipeline {
	return &Pipeline{
		provider:    provider,
		resolver:    resolver,
		games:       games,
		batchSize:   defaultBatchSize,
		seasonPause: 2 * time.Second,
	}
}

// WithBatchSize overrides the write batch size.
func (p *Pipeline) WithBatchSize(n int) *Pipeline {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// WithSeasonPause overrides the inter-season pacing delay.
func (p *Pipeline) WithSeasonPause(d time.Duration) *Pipeline {
	p.seasonPause = d
	return p
}

// SyncSeason fetches and reconciles one season. A provider failure
// aborts the whole season with the error surfaced to the caller;
// per-record problems only skip that record.
func (p *Pipeline) SyncSeason(ctx context.Context, year int) (Result, error) {
	start := time.Now()
	log.Info().Int("season", year).Msg("Season sync starting")

	games, err := p.provider.FetchGames(ctx, year, "regular")
	if err != nil {
		metrics.RecordSync("season", "failure", time.Since(start).Seconds())
		return Result{}, fmt.Errorf("failed to fetch season %d schedule: %w", year, err)
	}

	lines, err := p.provider.FetchLines(ctx, year, "regular")
	if err != nil {
		metrics.RecordSync("season", "failure", time.Since(start).Seconds())
		return Result{}, fmt.Errorf("failed to fetch season %d lines: %w", year, err)
	}

	lineIndex := indexLines(lines)

	var result Result
	batched := 0
	for i := range games {
		input := &games[i]

		if err := p.ingestOne(ctx, input, lineIndex, &result); err != nil {
			log.Warn().Err(err).
				Int("game_id", input.ID).
				Str("home", input.HomeTeam).
				Str("away", input.AwayTeam).
				Msg("Skipping game record")
			result.Skipped++
			metrics.RecordSkippedRecord("game")
			continue
		}

		batched++
		if batched >= p.batchSize {
			log.Debug().
				Int("season", year).
				Int("processed", i+1).
				Int("total", len(games)).
				Msg("Ingest batch checkpoint")
			batched = 0
		}
	}

	stored, err := p.games.CountBySeason(ctx, year)
	if err != nil {
		log.Warn().Err(err).Int("season", year).Msg("Failed to count stored season games")
	}

	metrics.RecordSync("season", "success", time.Since(start).Seconds())
	log.Info().
		Int("season", year).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("newly_completed", result.NewlyCompleted).
		Int("season_total", stored).
		Dur("duration", time.Since(start)).
		Msg("Season sync complete")

	return result, nil
}

// SyncSeasons backfills a range of seasons in order, pausing between
// them. A season failure is logged and the rest continue.
func (p *Pipeline) SyncSeasons(ctx context.Context, from, to int) (Result, error) {
	var total Result
	for year := from; year <= to; year++ {
		res, err := p.SyncSeason(ctx, year)
		if err != nil {
			log.Error().Err(err).Int("season", year).Msg("Season backfill failed")
			continue
		}
		total.Inserted += res.Inserted
		total.Updated += res.Updated
		total.Skipped += res.Skipped
		total.NewlyCompleted += res.NewlyCompleted

		if year < to {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(p.seasonPause):
			}
		}
	}
	return total, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, input *models.GameInput, lineIndex map[models.LineKey]*models.BookLine, result *Result) error {
	if input.HomeTeam == "" || input.AwayTeam == "" {
		return fmt.Errorf("missing team name")
	}
	if models.NormalizeName(input.HomeTeam) == models.NormalizeName(input.AwayTeam) {
		return fmt.Errorf("home and away teams are identical: %q", input.HomeTeam)
	}

	homeID, err := p.resolver.Resolve(ctx, input.HomeTeam, input.HomeConference)
	if err != nil {
		return fmt.Errorf("failed to resolve home team: %w", err)
	}
	awayID, err := p.resolver.Resolve(ctx, input.AwayTeam, input.AwayConference)
	if err != nil {
		return fmt.Errorf("failed to resolve away team: %w", err)
	}
	if homeID == awayID {
		return fmt.Errorf("both names resolve to team %d", homeID)
	}

	game := input.ToGame(homeID, awayID)

	if line, ok := lineIndex[models.KeyFor(input.HomeTeam, input.AwayTeam, input.Week)]; ok {
		if line.Spread != nil {
			game.Spread = sql.NullFloat64{Float64: *line.Spread, Valid: true}
		}
		if line.OverUnder != nil {
			game.OverUnder = sql.NullFloat64{Float64: *line.OverUnder, Valid: true}
		}
	}

	upsert, err := p.games.Upsert(ctx, game)
	if err != nil {
		return err
	}

	if upsert.Inserted {
		result.Inserted++
	}
	if upsert.Updated {
		result.Updated++
	}
	if upsert.NewlyCompleted {
		result.NewlyCompleted++
	}

	return nil
}

// indexLines builds the (home, away, week) lookup, choosing each
// matchup's line by bookmaker priority. The first entry for a key wins
// if the provider repeats a matchup.
func indexLines(lines []models.GameLines) map[models.LineKey]*models.BookLine {
	index := make(map[models.LineKey]*models.BookLine, len(lines))
	for i := range lines {
		entry := &lines[i]
		best := entry.BestLine()
		if best == nil {
			continue
		}
		key := models.KeyFor(entry.HomeTeam, entry.AwayTeam, entry.Week)
		if _, exists := index[key]; !exists {
			index[key] = best
		}
	}
	return index
}
