package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestGame_IsCompleted(t *testing.T) {
	game := &Game{}
	assert.False(t, game.IsCompleted(), "No scores means not completed")

	game.HomeScore.Int32, game.HomeScore.Valid = 21, true
	assert.False(t, game.IsCompleted(), "One score is not enough")

	game.AwayScore.Int32, game.AwayScore.Valid = 0, true
	assert.True(t, game.IsCompleted(), "A valid zero score still completes the game")
}

func TestGameInput_ParseStartTime(t *testing.T) {
	input := &GameInput{Season: 2025, StartDate: "2025-10-04T19:30:00.000Z"}
	parsed := input.ParseStartTime()
	assert.Equal(t, 2025, parsed.Year())
	assert.Equal(t, time.October, parsed.Month())
	assert.Equal(t, 19, parsed.Hour())

	// Garbage timestamps fall back to September 1 of the season
	input = &GameInput{Season: 2023, StartDate: "not a date"}
	parsed = input.ParseStartTime()
	assert.Equal(t, time.Date(2023, time.September, 1, 12, 0, 0, 0, time.UTC), parsed)
}

func TestGameInput_ToGame(t *testing.T) {
	input := &GameInput{
		ID:         401501,
		Season:     2025,
		Week:       5,
		StartDate:  "2025-10-04T19:30:00Z",
		HomeTeam:   "Georgia",
		AwayTeam:   "Auburn",
		Venue:      "Sanford Stadium",
		HomePoints: intPtr(27),
		AwayPoints: intPtr(20),
	}

	game := input.ToGame(10, 20)
	assert.Equal(t, 401501, game.GameID)
	assert.Equal(t, 10, game.HomeTeamID)
	assert.Equal(t, 20, game.AwayTeamID)
	require.True(t, game.Venue.Valid)
	assert.Equal(t, "Sanford Stadium", game.Venue.String)
	assert.True(t, game.Completed, "Both scores present should mean completed")
	assert.Equal(t, int32(27), game.HomeScore.Int32)
}

func TestGameInput_ToGame_PartialScores(t *testing.T) {
	input := &GameInput{ID: 1, Season: 2025, HomeTeam: "A", AwayTeam: "B", HomePoints: intPtr(14)}

	game := input.ToGame(1, 2)
	assert.False(t, game.Completed, "A single score must not complete the game")
	assert.False(t, game.HomeScore.Valid, "Partial scores are dropped, not half-stored")
	assert.False(t, game.AwayScore.Valid)
}

func TestWeatherPatch_Apply(t *testing.T) {
	patch := &WeatherPatch{
		Temperature:   41.5,
		WindSpeed:     12,
		WindDirection: "NW",
		Humidity:      70,
		Precipitation: 0.2,
		Condition:     "Rain",
		Impact:        4,
	}

	game := &Game{}
	patch.Apply(game)

	assert.Equal(t, 41.5, game.Temperature.Float64)
	assert.Equal(t, "NW", game.WindDirection.String)
	assert.Equal(t, "Rain", game.Condition.String)
	assert.Equal(t, 4.0, game.WeatherImpact.Float64)
	assert.False(t, game.IsDome)
}
