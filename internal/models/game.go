package models

import (
	"database/sql"
	"time"
)

// Game represents a college football game. GameID is the provider's
// external identity and is globally unique.
type Game struct {
	ID         int            `db:"id"`
	GameID     int            `db:"game_id"`
	Season     int            `db:"season"`
	Week       int            `db:"week"`
	HomeTeamID int            `db:"home_team_id"`
	AwayTeamID int            `db:"away_team_id"`
	StartTime  time.Time      `db:"start_time"`
	Venue      sql.NullString `db:"venue"`

	Completed bool          `db:"completed"`
	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`

	// Betting market. Null means no market for the game.
	Spread    sql.NullFloat64 `db:"spread"`
	OverUnder sql.NullFloat64 `db:"over_under"`

	// Weather attributes, populated by enrichment.
	Temperature   sql.NullFloat64 `db:"temperature"`
	WindSpeed     sql.NullFloat64 `db:"wind_speed"`
	WindDirection sql.NullString  `db:"wind_direction"`
	Humidity      sql.NullFloat64 `db:"humidity"`
	Precipitation sql.NullFloat64 `db:"precipitation"`
	Condition     sql.NullString  `db:"weather_condition"`
	IsDome        bool            `db:"is_dome"`
	WeatherImpact sql.NullFloat64 `db:"weather_impact"`

	// RatingApplied guards the once-per-game rating update.
	RatingApplied bool `db:"rating_applied"`

	// Historical marks completed games already swept by the Monday sync.
	Historical bool `db:"historical"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsCompleted reports whether both final scores are present. A game is
// completed iff both scores are non-null.
func (g *Game) IsCompleted() bool {
	return g.HomeScore.Valid && g.AwayScore.Valid
}

// GameInput is one schedule entry from the provider.
type GameInput struct {
	ID             int    `json:"id"`
	Season         int    `json:"season"`
	Week           int    `json:"week"`
	SeasonType     string `json:"season_type"`
	StartDate      string `json:"start_date"`
	HomeTeam       string `json:"home_team"`
	HomeConference string `json:"home_conference"`
	HomePoints     *int   `json:"home_points"`
	AwayTeam       string `json:"away_team"`
	AwayConference string `json:"away_conference"`
	AwayPoints     *int   `json:"away_points"`
	Venue          string `json:"venue"`
	VenueID        *int   `json:"venue_id"`
	ConferenceGame bool   `json:"conference_game"`
}

// ParseStartTime parses the provider's start timestamp. An unparsable
// timestamp yields a mid-season default (September 1 of the season year)
// rather than an error.
func (gi *GameInput) ParseStartTime() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if ts, err := time.Parse(layout, gi.StartDate); err == nil {
			return ts
		}
	}
	return time.Date(gi.Season, time.September, 1, 12, 0, 0, 0, time.UTC)
}

// ToGame converts a provider schedule entry to a Game. Team ids must
// already be resolved.
func (gi *GameInput) ToGame(homeTeamID, awayTeamID int) *Game {
	game := &Game{
		GameID:     gi.ID,
		Season:     gi.Season,
		Week:       gi.Week,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		StartTime:  gi.ParseStartTime(),
	}

	if gi.Venue != "" {
		game.Venue = sql.NullString{String: gi.Venue, Valid: true}
	}

	if gi.HomePoints != nil && gi.AwayPoints != nil {
		game.HomeScore = sql.NullInt32{Int32: int32(*gi.HomePoints), Valid: true}
		game.AwayScore = sql.NullInt32{Int32: int32(*gi.AwayPoints), Valid: true}
		game.Completed = true
	}

	return game
}

// WeatherPatch is the weather portion of a game produced by enrichment.
// Enrichment returns a patch; callers persist it.
type WeatherPatch struct {
	Temperature   float64
	WindSpeed     float64
	WindDirection string
	Humidity      float64
	Precipitation float64
	Condition     string
	IsDome        bool
	Impact        float64
}

// Apply copies the patch onto a game.
func (p *WeatherPatch) Apply(g *Game) {
	g.Temperature = sql.NullFloat64{Float64: p.Temperature, Valid: true}
	g.WindSpeed = sql.NullFloat64{Float64: p.WindSpeed, Valid: true}
	g.WindDirection = sql.NullString{String: p.WindDirection, Valid: p.WindDirection != ""}
	g.Humidity = sql.NullFloat64{Float64: p.Humidity, Valid: true}
	g.Precipitation = sql.NullFloat64{Float64: p.Precipitation, Valid: true}
	g.Condition = sql.NullString{String: p.Condition, Valid: p.Condition != ""}
	g.IsDome = p.IsDome
	g.WeatherImpact = sql.NullFloat64{Float64: p.Impact, Valid: true}
}
