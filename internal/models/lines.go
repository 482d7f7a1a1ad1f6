package models

// BookLine is one bookmaker's market for a game.
type BookLine struct {
	Provider  string   `json:"provider"`
	Spread    *float64 `json:"spread"`
	OverUnder *float64 `json:"over_under"`
}

// GameLines is the provider's betting-line entry for one matchup.
type GameLines struct {
	ID       int        `json:"id"`
	Season   int        `json:"year"`
	Week     int        `json:"week"`
	HomeTeam string     `json:"home_team"`
	AwayTeam string     `json:"away_team"`
	Lines    []BookLine `json:"lines"`
}

// bookPriority orders bookmakers from most to least authoritative. The
// consensus line wins when present; otherwise the majors, then whatever
// the provider listed first.
var bookPriority = map[string]int{
	"consensus":  0,
	"draftkings": 1,
	"bovada":     2,
	"espn bet":   3,
}

// BestLine picks the line from the most authoritative bookmaker that
// carries a spread or total. Returns nil when no book has a market.
func (gl *GameLines) BestLine() *BookLine {
	var best *BookLine
	bestRank := len(bookPriority) + 1
	for i := range gl.Lines {
		line := &gl.Lines[i]
		if line.Spread == nil && line.OverUnder == nil {
			continue
		}
		rank, ok := bookPriority[NormalizeName(line.Provider)]
		if !ok {
			rank = len(bookPriority)
		}
		if best == nil || rank < bestRank {
			best = line
			bestRank = rank
		}
	}
	return best
}

// LineKey is the (home, away, week) lookup key used to attach betting
// lines to schedule entries. Names are matched case-insensitively.
type LineKey struct {
	Home string
	Away string
	Week int
}

// KeyFor builds the normalized lookup key for a matchup.
func KeyFor(home, away string, week int) LineKey {
	return LineKey{Home: NormalizeName(home), Away: NormalizeName(away), Week: week}
}
