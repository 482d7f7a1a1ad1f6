package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/ingest"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) SyncSeason(ctx context.Context, year int) (ingest.Result, error) {
	f.calls++
	return ingest.Result{Inserted: 1}, f.err
}

type fakeRatings struct {
	calls int
	err   error
}

func (f *fakeRatings) Apply(ctx context.Context) (int, error) {
	f.calls++
	return 3, f.err
}

type fakeEnricher struct {
	calls int
}

func (f *fakeEnricher) Enrich(ctx context.Context, game *models.Game) *models.WeatherPatch {
	f.calls++
	return &models.WeatherPatch{Temperature: 60, Condition: "Clear"}
}

type fakeGames struct {
	upcoming   []*models.Game
	listErr    error
	markCalls  int
	markErr    error
	weatherIDs []int
	weatherErr error
}

func (f *fakeGames) ListUpcomingWindow(ctx context.Context, from, to time.Time) ([]*models.Game, error) {
	return f.upcoming, f.listErr
}

func (f *fakeGames) UpdateWeather(ctx context.Context, gameID int, patch *models.WeatherPatch) error {
	if f.weatherErr != nil {
		return f.weatherErr
	}
	f.weatherIDs = append(f.weatherIDs, gameID)
	return nil
}

func (f *fakeGames) MarkCompletedHistorical(ctx context.Context) (int64, error) {
	f.markCalls++
	return 2, f.markErr
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, year int) (int, error) {
	f.calls++
	return 5, f.err
}

type fakeRuns struct {
	recorded []*models.SyncRun
	err      error
}

func (f *fakeRuns) Record(ctx context.Context, run *models.SyncRun) error {
	f.recorded = append(f.recorded, run)
	return f.err
}

type fakeResetter struct {
	calls int
}

func (f *fakeResetter) Reset() { f.calls++ }

type fixture struct {
	syncer    *fakeSyncer
	ratings   *fakeRatings
	enricher  *fakeEnricher
	games     *fakeGames
	refresher *fakeRefresher
	runs      *fakeRuns
	resetter  *fakeResetter
	sched     *Scheduler
}

func newFixture() *fixture {
	f := &fixture{
		syncer:    &fakeSyncer{},
		ratings:   &fakeRatings{},
		enricher:  &fakeEnricher{},
		games:     &fakeGames{},
		refresher: &fakeRefresher{},
		runs:      &fakeRuns{},
		resetter:  &fakeResetter{},
	}
	f.sched = New(Deps{
		Pipeline:  f.syncer,
		Ratings:   f.ratings,
		Weather:   f.enricher,
		Games:     f.games,
		Analytics: f.refresher,
		Runs:      f.runs,
		Resolver:  f.resetter,
		Season:    2025,
	})
	return f
}

func upcomingGame(gameID int) *models.Game {
	return &models.Game{
		GameID:    gameID,
		StartTime: time.Now().Add(24 * time.Hour),
		Venue:     sql.NullString{String: "Memorial Stadium", Valid: true},
	}
}

func TestRunMonday_StepOrder(t *testing.T) {
	f := newFixture()

	err := f.sched.RunMonday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.games.markCalls, "Monday should sweep completed games to historical")
	assert.Equal(t, 2, f.syncer.calls, "Monday should ingest games and refresh opening lines")
	assert.Equal(t, 1, f.ratings.calls, "Monday should refresh rankings")
	assert.Equal(t, 1, f.resetter.calls, "Each run should reset the resolver cache")

	require.Len(t, f.runs.recorded, 1)
	run := f.runs.recorded[0]
	assert.Equal(t, "monday", run.DaySlot)
	require.Len(t, run.Steps, 4)
	assert.Equal(t, "mark_historical", run.Steps[0].Step)
	assert.Equal(t, "ingest_games", run.Steps[1].Step)
	assert.Equal(t, "refresh_rankings", run.Steps[2].Step)
	assert.Equal(t, "refresh_opening_lines", run.Steps[3].Step)
	for _, step := range run.Steps {
		assert.True(t, step.Success, "Step %s should record success", step.Step)
	}
}

func TestRunDay_FailingStepDoesNotBlockLaterSteps(t *testing.T) {
	f := newFixture()
	f.games.markErr = fmt.Errorf("db deadlock")

	err := f.sched.RunMonday(context.Background())
	require.Error(t, err, "Manual callers should see a failure summary")
	assert.Contains(t, err.Error(), "1 of 4 steps failed")

	assert.Equal(t, 2, f.syncer.calls, "Later steps should still run")
	assert.Equal(t, 1, f.ratings.calls, "Later steps should still run")

	require.Len(t, f.runs.recorded, 1)
	steps := f.runs.recorded[0].Steps
	assert.False(t, steps[0].Success, "The failing step should be recorded as failed")
	assert.Contains(t, steps[0].Message, "db deadlock")
	assert.True(t, steps[1].Success)
}

func TestRunThursday_OnlyRefreshesLines(t *testing.T) {
	f := newFixture()

	err := f.sched.RunThursday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.syncer.calls)
	assert.Equal(t, 0, f.ratings.calls, "Thursday should not touch ratings")
	assert.Equal(t, 0, f.games.markCalls, "Thursday should not sweep historical games")
}

func TestRunFriday_EnrichesWeekendWeather(t *testing.T) {
	f := newFixture()
	f.games.upcoming = []*models.Game{upcomingGame(1), upcomingGame(2)}

	err := f.sched.RunFriday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, f.enricher.calls, "Each upcoming game should be enriched")
	assert.Equal(t, []int{1, 2}, f.games.weatherIDs, "Each patch should be persisted")
}

func TestRunFriday_WeatherPersistFailureIsAStepFailure(t *testing.T) {
	f := newFixture()
	f.games.upcoming = []*models.Game{upcomingGame(1)}
	f.games.weatherErr = fmt.Errorf("row gone")

	err := f.sched.RunFriday(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 steps failed")
}

func TestRunSunday_FullResync(t *testing.T) {
	f := newFixture()

	err := f.sched.RunSunday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.games.markCalls)
	assert.Equal(t, 2, f.syncer.calls, "Sunday ingests and refreshes lines")
	assert.Equal(t, 1, f.ratings.calls)
	assert.Equal(t, 1, f.refresher.calls, "Sunday should refresh analytics inputs")
}

func TestRunDay_RecordFailureDoesNotFailSync(t *testing.T) {
	f := newFixture()
	f.runs.err = fmt.Errorf("sync_runs table missing")

	err := f.sched.RunSaturday(context.Background())
	assert.NoError(t, err, "Run bookkeeping failures should never fail a sync")
}

func TestRunDay_SerializesOverlappingTriggers(t *testing.T) {
	f := newFixture()

	done := make(chan error, 2)
	go func() { done <- f.sched.RunThursday(context.Background()) }()
	go func() { done <- f.sched.RunThursday(context.Background()) }()

	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.Equal(t, 2, f.syncer.calls, "Both runs should complete, one after the other")
	assert.Len(t, f.runs.recorded, 2)
}
