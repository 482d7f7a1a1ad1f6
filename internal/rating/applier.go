package rating

import (
	"context"
	"fmt"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/metrics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/rs/zerolog/log"
)

// GameStore lists newly-completed games awaiting a rating update and
// commits the flag plus both team states as one atomic write.
type GameStore interface {
	ListUnrated(ctx context.Context) ([]*models.Game, error)
	ApplyRating(ctx context.Context, id int, home, away *models.Team) error
}

// TeamStore reads the per-team state the update starts from.
type TeamStore interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
}

// Applier walks completed-but-unrated games in kickoff order and applies
// the rating update to both teams. Each game is rated exactly once: the
// store's rating_applied flag is checked and set around every update.
type Applier struct {
	games GameStore
	teams TeamStore
}

// NewApplier creates an applier over the given stores.
func NewApplier(games GameStore, teams TeamStore) *Applier {
	return &Applier{games: games, teams: teams}
}

// Apply rates all pending games. A failure on one game is logged and
// skipped; the rest continue. Returns the number of games rated.
func (a *Applier) Apply(ctx context.Context) (int, error) {
	games, err := a.games.ListUnrated(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unrated games: %w", err)
	}

	rated := 0
	for _, game := range games {
		if err := a.applyOne(ctx, game); err != nil {
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to rate game")
			metrics.RecordError("rating", "apply")
			continue
		}
		metrics.RecordRatingApplied()
		rated++
	}

	if rated > 0 {
		log.Info().Int("count", rated).Msg("Ratings applied")
	}
	return rated, nil
}

func (a *Applier) applyOne(ctx context.Context, game *models.Game) error {
	if !game.IsCompleted() {
		return fmt.Errorf("game %d is not completed", game.GameID)
	}

	home, err := a.teams.GetByID(ctx, game.HomeTeamID)
	if err != nil {
		return fmt.Errorf("failed to load home team: %w", err)
	}
	away, err := a.teams.GetByID(ctx, game.AwayTeamID)
	if err != nil {
		return fmt.Errorf("failed to load away team: %w", err)
	}

	homeScore := int(game.HomeScore.Int32)
	awayScore := int(game.AwayScore.Int32)

	newHome, newAway := UpdateRatings(home.Rating, away.Rating, homeScore, awayScore)

	home.RatingDelta = newHome - home.Rating
	away.RatingDelta = newAway - away.Rating
	home.Rating = newHome
	away.Rating = newAway

	if homeScore > awayScore {
		home.Wins++
		away.Losses++
		home.PushResult('W')
		away.PushResult('L')
	} else if awayScore > homeScore {
		away.Wins++
		home.Losses++
		away.PushResult('W')
		home.PushResult('L')
	}

	// The flag and both team writes commit together: a failure on
	// either side rolls everything back and the game stays pending,
	// so ratings are never half applied.
	if err := a.games.ApplyRating(ctx, game.ID, home, away); err != nil {
		return err
	}

	log.Debug().
		Int("game_id", game.GameID).
		Float64("home_delta", home.RatingDelta).
		Float64("away_delta", away.RatingDelta).
		Msg("Game rated")

	return nil
}
