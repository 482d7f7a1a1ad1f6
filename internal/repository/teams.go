package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

const teamColumns = `id, name, conference, wins, losses, rating, rating_delta,
	       recent_form, recruiting_class_rank, avg_recruit_rating, created_at, updated_at`

// FindOrCreate atomically resolves a team name to its stable id, creating
// the team with placeholder metadata on first sight. Uniqueness is
// enforced by the store's unique index on lower(name); the no-op update
// makes the insert return the existing row's id on conflict.
func (r *TeamRepository) FindOrCreate(ctx context.Context, name, conference string) (int, error) {
	query := `
		INSERT INTO teams (name, conference, rating)
		VALUES ($1, NULLIF($2, ''), $3)
		ON CONFLICT ((lower(name))) DO UPDATE SET
			name = teams.name
		RETURNING id
	`

	var id int
	err := r.db.Pool.QueryRow(ctx, query, name, conference, models.InitialRating(conference)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to find or create team %q: %w", name, err)
	}

	return id, nil
}

// GetByID retrieves a team by its database ID
func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByName retrieves a team by external name, case-insensitively.
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE lower(name) = $1`

	team, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, models.NormalizeName(name)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: name=%s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// List retrieves all teams ordered by name.
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// applyTeamResult persists the post-game state of one side: new rating,
// delta, won/loss counters and recent-form string. Runs on whatever
// querier the caller holds, so it can join a game-rating transaction.
func applyTeamResult(ctx context.Context, q rowQuerier, team *models.Team) error {
	query := `
		UPDATE teams SET
			rating = $1,
			rating_delta = $2,
			wins = $3,
			losses = $4,
			recent_form = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := q.QueryRow(
		ctx, query,
		team.Rating, team.RatingDelta, team.Wins, team.Losses,
		team.RecentForm, team.ID,
	).Scan(&team.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("team not found: id=%d", team.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to apply game result: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Str("name", team.Name).
		Float64("rating", team.Rating).
		Float64("delta", team.RatingDelta).
		Msg("Team rating updated")

	return nil
}

// UpdateRecruiting stores the recruiting class rank and average recruit
// rating for a team, matched by name. Unknown names are ignored.
func (r *TeamRepository) UpdateRecruiting(ctx context.Context, name string, classRank int, avgRating float64) error {
	query := `
		UPDATE teams SET
			recruiting_class_rank = $1,
			avg_recruit_rating = $2,
			updated_at = NOW()
		WHERE lower(name) = $3
	`

	_, err := r.db.Pool.Exec(ctx, query, classRank, avgRating, models.NormalizeName(name))
	if err != nil {
		return fmt.Errorf("failed to update recruiting for %q: %w", name, err)
	}

	return nil
}

// UpdateConference fills in the conference for a team that was created
// with placeholder metadata.
func (r *TeamRepository) UpdateConference(ctx context.Context, id int, conference string) error {
	query := `
		UPDATE teams SET
			conference = $1,
			updated_at = NOW()
		WHERE id = $2 AND conference IS NULL
	`

	_, err := r.db.Pool.Exec(ctx, query, conference, id)
	if err != nil {
		return fmt.Errorf("failed to update conference: %w", err)
	}

	return nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}

func (r *TeamRepository) scanOne(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID, &team.Name, &team.Conference, &team.Wins, &team.Losses,
		&team.Rating, &team.RatingDelta, &team.RecentForm,
		&team.RecruitingClassRank, &team.AvgRecruitRating,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}
