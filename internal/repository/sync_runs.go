package repository

import (
	"context"
	"fmt"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncRunRepository persists sync run outcomes for observability.
type SyncRunRepository struct {
	db *Database
}

// Record stores a sync run and its step outcomes. Failures here are
// logged but must never fail a sync, so callers usually ignore the error.
func (r *SyncRunRepository) Record(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (day_slot, started_at)
		VALUES ($1, $2)
		RETURNING id
	`

	if err := r.db.Pool.QueryRow(ctx, query, run.DaySlot, run.StartedAt).Scan(&run.ID); err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}

	for i := range run.Steps {
		step := &run.Steps[i]
		step.RunID = run.ID

		stepQuery := `
			INSERT INTO sync_run_steps (run_id, step, success, message)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := r.db.Pool.QueryRow(ctx, stepQuery, step.RunID, step.Step, step.Success, step.Message).Scan(&step.ID); err != nil {
			return fmt.Errorf("failed to record sync step %q: %w", step.Step, err)
		}
	}

	log.Debug().
		Int("run_id", run.ID).
		Str("day_slot", run.DaySlot).
		Int("steps", len(run.Steps)).
		Msg("Sync run recorded")

	return nil
}

// Latest returns the most recent sync run for a day slot, without steps.
func (r *SyncRunRepository) Latest(ctx context.Context, daySlot string) (*models.SyncRun, error) {
	query := `
		SELECT id, day_slot, started_at
		FROM sync_runs
		WHERE day_slot = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run models.SyncRun
	err := r.db.Pool.QueryRow(ctx, query, daySlot).Scan(&run.ID, &run.DaySlot, &run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}

	return &run, nil
}
