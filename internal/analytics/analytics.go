// Package analytics derives per-team composite signals from persisted
// state. Everything here is a pure read-time computation; only the
// rating engine mutates the underlying rating.
package analytics

import (
	"strings"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"
)

// recencyWeights weight the last up to five results, most recent first.
var recencyWeights = [5]float64{2.0, 1.6, 1.4, 1.2, 1.0}

// Momentum scores recent form on a 0-100 scale, starting from a neutral
// 50. Wins add and losses subtract with recency weighting, then the
// current streak nudges up to +/-15.
func Momentum(team *models.Team) float64 {
	score := 50.0

	form := team.RecentForm
	for i := 0; i < len(form) && i < len(recencyWeights); i++ {
		switch form[i] {
		case 'W':
			score += 8 * recencyWeights[i]
		case 'L':
			score -= 8 * recencyWeights[i]
		}
	}

	streak := team.CurrentStreak()
	bonus := float64(streak) * 5
	if bonus > 15 {
		bonus = 15
	}
	if bonus < -15 {
		bonus = -15
	}
	score += bonus

	return clamp(score, 0, 100)
}

// Injury is one reported injury for snapshot purposes.
type Injury struct {
	Player   string
	Position string
}

// keyPositions are the non-quarterback positions whose loss moves the
// injury score most.
var keyPositions = map[string]bool{
	"RB":  true,
	"WR1": true,
	"OL":  true,
	"OT":  true,
	"OG":  true,
	"C":   true,
	"DE":  true,
	"DT":  true,
	"LB":  true,
	"CB":  true,
	"S":   true,
}

// InjuryImpact scores a team's injury report on a 0-10 scale: half a
// point per injury, plus 3 if a quarterback is out and 1.5 for other
// key-position players.
func InjuryImpact(injuries []Injury) float64 {
	score := 0.0
	for _, injury := range injuries {
		score += 0.5
		pos := strings.ToUpper(strings.TrimSpace(injury.Position))
		switch {
		case pos == "QB":
			score += 3.0
		case keyPositions[pos]:
			score += 1.5
		}
	}
	return clamp(score, 0, 10)
}

// RecruitingScore scores the recruiting signal on a 0-100 scale. Teams
// with no ranked class sit at a neutral 50.
func RecruitingScore(team *models.Team) float64 {
	if !team.RecruitingClassRank.Valid {
		return 50
	}

	score := 130.0 - float64(team.RecruitingClassRank.Int32)
	if score < 0 {
		score = 0
	}

	if team.AvgRecruitRating.Valid {
		score += (team.AvgRecruitRating.Float64 - 2.5) * 20
	}

	return clamp(score, 0, 100)
}

// Snapshot is the per-team analytics bundle served to consumers.
type Snapshot struct {
	TeamID          int
	Name            string
	Rating          float64
	RatingDelta     float64
	Wins            int
	Losses          int
	RecentForm      string
	Momentum        float64
	InjuryImpact    float64
	RecruitingScore float64
}

// BuildSnapshot computes the transient analytics scores for a team.
func BuildSnapshot(team *models.Team, injuries []Injury) Snapshot {
	return Snapshot{
		TeamID:          team.ID,
		Name:            team.Name,
		Rating:          team.Rating,
		RatingDelta:     team.RatingDelta,
		Wins:            team.Wins,
		Losses:          team.Losses,
		RecentForm:      team.RecentForm,
		Momentum:        Momentum(team),
		InjuryImpact:    InjuryImpact(injuries),
		RecruitingScore: RecruitingScore(team),
	}
}

// Composite folds a snapshot's analytics signals into one comparable
// number. Injuries count against; momentum and recruiting in favor.
func (s Snapshot) Composite() float64 {
	return s.Momentum + s.RecruitingScore - s.InjuryImpact*10
}

// Gap classification labels for a rating difference.
const (
	GapEven     = "even"
	GapSlight   = "slight"
	GapModerate = "moderate"
	GapMajor    = "major"
)

// ClassifyGap labels the absolute rating gap between two teams.
func ClassifyGap(ratingDiff float64) string {
	gap := ratingDiff
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap < 5:
		return GapEven
	case gap < 10:
		return GapSlight
	case gap < 15:
		return GapModerate
	default:
		return GapMajor
	}
}

// Comparison is a per-game analytics matchup.
type Comparison struct {
	Home      Snapshot
	Away      Snapshot
	RatingGap string
	// Favorite is the name of the higher-composite team; empty on a
	// dead-even matchup.
	Favorite string
}

// CompareGame builds the matchup view for two team snapshots.
func CompareGame(home, away Snapshot) Comparison {
	cmp := Comparison{
		Home:      home,
		Away:      away,
		RatingGap: ClassifyGap(home.Rating - away.Rating),
	}

	switch {
	case home.Composite() > away.Composite():
		cmp.Favorite = home.Name
	case away.Composite() > home.Composite():
		cmp.Favorite = away.Name
	}

	return cmp
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
