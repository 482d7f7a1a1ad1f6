package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `id, game_id, season, week, home_team_id, away_team_id,
	       start_time, venue, completed, home_score, away_score,
	       spread, over_under,
	       temperature, wind_speed, wind_direction, humidity, precipitation,
	       weather_condition, is_dome, weather_impact,
	       rating_applied, historical, created_at, updated_at`

// UpsertResult reports what an upsert did, so callers can react to a
// game completing for the first time.
type UpsertResult struct {
	Inserted       bool
	Updated        bool
	NewlyCompleted bool
}

// Upsert inserts a game or folds new provider data into the existing row.
// A row that already has final scores is never regressed: incoming scores
// are only applied when the stored game lacked them, and betting lines
// stop moving once the game is complete. The sync worker is the only
// writer, so the read-then-write pair here does not race.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) (UpsertResult, error) {
	existing, err := r.GetByGameID(ctx, game.GameID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return UpsertResult{}, err
	}

	if existing == nil {
		if err := r.insert(ctx, game); err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{Inserted: true, NewlyCompleted: game.IsCompleted()}, nil
	}

	result := UpsertResult{}

	fillScores := !existing.IsCompleted() && game.IsCompleted()
	if fillScores {
		result.NewlyCompleted = true
	}

	// Latest write wins for lines until kickoff outcome is known.
	updateLines := !existing.IsCompleted() && (game.Spread.Valid || game.OverUnder.Valid)

	if !fillScores && !updateLines {
		return result, nil
	}

	query := `
		UPDATE games SET
			home_score = CASE WHEN $1 THEN $2 ELSE home_score END,
			away_score = CASE WHEN $1 THEN $3 ELSE away_score END,
			completed = completed OR $1,
			spread = CASE WHEN $4 AND $5 THEN $6 ELSE spread END,
			over_under = CASE WHEN $4 AND $7 THEN $8 ELSE over_under END,
			updated_at = NOW()
		WHERE game_id = $9
		RETURNING id, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		fillScores, game.HomeScore, game.AwayScore,
		updateLines, game.Spread.Valid, game.Spread,
		game.OverUnder.Valid, game.OverUnder,
		game.GameID,
	).Scan(&game.ID, &game.UpdatedAt)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to update game %d: %w", game.GameID, err)
	}

	result.Updated = true
	return result, nil
}

func (r *GameRepository) insert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			game_id, season, week, home_team_id, away_team_id,
			start_time, venue, completed, home_score, away_score,
			spread, over_under
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		game.GameID, game.Season, game.Week, game.HomeTeamID, game.AwayTeamID,
		game.StartTime, game.Venue, game.IsCompleted(), game.HomeScore, game.AwayScore,
		game.Spread, game.OverUnder,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game %d: %w", game.GameID, err)
	}

	log.Debug().
		Int("id", game.ID).
		Int("game_id", game.GameID).
		Int("season", game.Season).
		Int("week", game.Week).
		Msg("Game created")

	return nil
}

// GetByGameID retrieves a game by its provider game id. Returns
// pgx.ErrNoRows wrapped when no row exists, with a nil game.
func (r *GameRepository) GetByGameID(ctx context.Context, gameID int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE game_id = $1`

	game, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game not found: game_id=%d: %w", gameID, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListUnrated returns completed games whose rating update has not run,
// oldest kickoff first so ratings evolve chronologically.
func (r *GameRepository) ListUnrated(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE completed AND NOT rating_applied
		ORDER BY start_time, game_id`

	return r.list(ctx, query)
}

// ApplyRating flags a game as rated and persists both teams' post-game
// state in one transaction. A failure on any of the three writes rolls
// the whole update back, leaving the game pending for the next sweep.
// Returns an error if the game was already flagged, which callers treat
// as a double-apply bug.
func (r *GameRepository) ApplyRating(ctx context.Context, id int, home, away *models.Team) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rating transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE games SET rating_applied = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT rating_applied
	`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark game rated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %d already rated or missing", id)
	}

	if err := applyTeamResult(ctx, tx, home); err != nil {
		return fmt.Errorf("failed to persist home team: %w", err)
	}
	if err := applyTeamResult(ctx, tx, away); err != nil {
		return fmt.Errorf("failed to persist away team: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkCompletedHistorical sweeps completed games into the historical set.
// Returns the number of newly-swept games.
func (r *GameRepository) MarkCompletedHistorical(ctx context.Context) (int64, error) {
	query := `
		UPDATE games SET historical = TRUE, updated_at = NOW()
		WHERE completed AND NOT historical
	`

	tag, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to mark games historical: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateWeather persists a weather enrichment patch onto a game row.
func (r *GameRepository) UpdateWeather(ctx context.Context, gameID int, patch *models.WeatherPatch) error {
	query := `
		UPDATE games SET
			temperature = $1,
			wind_speed = $2,
			wind_direction = $3,
			humidity = $4,
			precipitation = $5,
			weather_condition = $6,
			is_dome = $7,
			weather_impact = $8,
			updated_at = NOW()
		WHERE game_id = $9
	`

	windDir := sql.NullString{String: patch.WindDirection, Valid: patch.WindDirection != ""}
	condition := sql.NullString{String: patch.Condition, Valid: patch.Condition != ""}

	tag, err := r.db.Pool.Exec(ctx, query,
		patch.Temperature, patch.WindSpeed, windDir, patch.Humidity,
		patch.Precipitation, condition, patch.IsDome, patch.Impact,
		gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to update weather for game %d: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game not found: game_id=%d", gameID)
	}

	return nil
}

// ListUpcomingWindow returns incomplete games kicking off inside the
// given window, soonest first.
func (r *GameRepository) ListUpcomingWindow(ctx context.Context, from, to time.Time) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE NOT completed AND start_time >= $1 AND start_time < $2
		ORDER BY start_time, game_id`

	return r.list(ctx, query, from, to)
}

// Count returns the total number of games stored.
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

// CountBySeason returns the number of games stored for a season.
func (r *GameRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	query := `SELECT COUNT(*) FROM games WHERE season = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, season).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

func (r *GameRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

func (r *GameRepository) scanOne(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID, &game.GameID, &game.Season, &game.Week,
		&game.HomeTeamID, &game.AwayTeamID,
		&game.StartTime, &game.Venue, &game.Completed,
		&game.HomeScore, &game.AwayScore,
		&game.Spread, &game.OverUnder,
		&game.Temperature, &game.WindSpeed, &game.WindDirection,
		&game.Humidity, &game.Precipitation,
		&game.Condition, &game.IsDome, &game.WeatherImpact,
		&game.RatingApplied, &game.Historical,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
