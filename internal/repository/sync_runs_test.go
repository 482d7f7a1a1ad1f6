//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRunRepository_RecordAndLatest(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	run := &models.SyncRun{
		DaySlot:   "monday",
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Steps: []models.SyncStepResult{
			{Step: "ingest_games", Success: true},
			{Step: "refresh_rankings", Success: false, Message: "provider timeout"},
		},
	}

	require.NoError(t, db.SyncRuns.Record(ctx, run))
	assert.Greater(t, run.ID, 0, "Run id should be assigned")
	assert.Equal(t, run.ID, run.Steps[0].RunID, "Steps should link to the run")

	later := &models.SyncRun{DaySlot: "monday", StartedAt: run.StartedAt.Add(time.Hour)}
	require.NoError(t, db.SyncRuns.Record(ctx, later))

	latest, err := db.SyncRuns.Latest(ctx, "monday")
	require.NoError(t, err)
	assert.Equal(t, later.ID, latest.ID, "Latest should return the newest run for the slot")

	_, err = db.SyncRuns.Latest(ctx, "thursday")
	assert.Error(t, err, "Slots with no runs should error")
}
