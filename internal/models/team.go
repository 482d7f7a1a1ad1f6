package models

import (
	"database/sql"
	"strings"
	"time"
)

// Rating defaults. Power-conference programs start above the field.
const (
	DefaultRating      = 1500.0
	PowerDefaultRating = 1550.0
)

var powerConferences = map[string]bool{
	"SEC":     true,
	"Big Ten": true,
	"Big 12":  true,
	"ACC":     true,
	"Pac-12":  true,
}

// IsPowerConference reports whether teams in conference seed at PowerDefaultRating.
func IsPowerConference(conference string) bool {
	return powerConferences[conference]
}

// InitialRating returns the seed rating for a team in the given conference.
func InitialRating(conference string) float64 {
	if IsPowerConference(conference) {
		return PowerDefaultRating
	}
	return DefaultRating
}

// Team represents a college football team. Name is the external join key;
// ID is assigned once and never changes.
type Team struct {
	ID         int            `db:"id"`
	Name       string         `db:"name"`
	Conference sql.NullString `db:"conference"`
	Wins       int            `db:"wins"`
	Losses     int            `db:"losses"`

	Rating      float64 `db:"rating"`
	RatingDelta float64 `db:"rating_delta"`

	// RecentForm is most-recent-first, e.g. "WWLWL", at most 5 entries.
	RecentForm string `db:"recent_form"`

	RecruitingClassRank sql.NullInt32   `db:"recruiting_class_rank"`
	AvgRecruitRating    sql.NullFloat64 `db:"avg_recruit_rating"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NormalizeName returns the case-insensitive lookup key for a team name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PushResult prepends a result ('W' or 'L') to the recent-form string,
// keeping at most 5 entries.
func (t *Team) PushResult(result byte) {
	form := string(result) + t.RecentForm
	if len(form) > 5 {
		form = form[:5]
	}
	t.RecentForm = form
}

// CurrentStreak returns the length of the streak at the head of the form
// string, positive for wins and negative for losses.
func (t *Team) CurrentStreak() int {
	if t.RecentForm == "" {
		return 0
	}
	head := t.RecentForm[0]
	n := 0
	for i := 0; i < len(t.RecentForm) && t.RecentForm[i] == head; i++ {
		n++
	}
	if head == 'L' {
		return -n
	}
	return n
}
