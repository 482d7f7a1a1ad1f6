package analytics

import (
	"context"
	"fmt"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/client"

	"github.com/rs/zerolog/log"
)

// StatsProvider is the provider surface the refresh path consumes.
type StatsProvider interface {
	FetchTeamSeasonStats(ctx context.Context, year int) ([]client.TeamSeasonStat, error)
	FetchRecruitingClasses(ctx context.Context, year int) ([]client.RecruitingClass, error)
	FetchTeamRatings(ctx context.Context, year int) ([]client.TeamRating, error)
}

// TeamStore persists the recruiting signal onto teams.
type TeamStore interface {
	UpdateRecruiting(ctx context.Context, name string, classRank int, avgRating float64) error
}

// Refresher pulls season stats, recruiting classes and provider ratings
// and persists the recruiting signal used by RecruitingScore.
type Refresher struct {
	provider StatsProvider
	teams    TeamStore
}

// NewRefresher creates a stats refresher. A nil provider yields a
// refresher that aborts cleanly with a warning, for deployments without
// provider credentials.
func NewRefresher(provider StatsProvider, teams TeamStore) *Refresher {
	return &Refresher{provider: provider, teams: teams}
}

// Refresh updates recruiting data for a season and sanity-logs the
// provider's own ratings against ours. Returns the number of teams
// whose recruiting signal was written.
func (r *Refresher) Refresh(ctx context.Context, year int) (int, error) {
	if r.provider == nil {
		log.Warn().Msg("No provider credentials configured, skipping analytics refresh")
		return 0, nil
	}

	classes, err := r.provider.FetchRecruitingClasses(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch recruiting classes: %w", err)
	}

	updated := 0
	for _, class := range classes {
		if class.Team == "" || class.Rank <= 0 {
			continue
		}
		if err := r.teams.UpdateRecruiting(ctx, class.Team, class.Rank, class.AverageRating); err != nil {
			log.Error().Err(err).Str("team", class.Team).Msg("Failed to store recruiting class")
			continue
		}
		updated++
	}
	log.Info().Int("count", updated).Int("year", year).Msg("Recruiting classes refreshed")

	// Season stats and provider ratings are fetched for observability:
	// a large divergence from our internal ratings is worth a log line.
	stats, err := r.provider.FetchTeamSeasonStats(ctx, year)
	if err != nil {
		log.Warn().Err(err).Msg("Season stats fetch failed")
	} else {
		log.Debug().Int("entries", len(stats)).Msg("Season stats fetched")
	}

	ratings, err := r.provider.FetchTeamRatings(ctx, year)
	if err != nil {
		log.Warn().Err(err).Msg("Provider ratings fetch failed")
	} else {
		log.Debug().Int("entries", len(ratings)).Msg("Provider ratings fetched")
	}

	return updated, nil
}
