// Package rating maintains per-team ELO-style strength ratings with a
// home-field bonus and margin-of-victory scaling.
package rating

import "math"

const (
	// HomeFieldBonus is added to the home side's rating before any
	// expected-score calculation.
	HomeFieldBonus = 65.0

	// scale is the logistic divisor: ~400 rating points per order of
	// magnitude in win odds.
	scale = 400.0

	// baseK is the base update magnitude before margin scaling.
	baseK = 32.0

	// movFactor scales the log margin-of-victory multiplier.
	movFactor = 2.2

	// pointsPerSpread converts a rating gap into a point-spread estimate.
	pointsPerSpread = 25.0
)

// ExpectedScore returns the probability that side A beats side B. When
// aIsHome, A receives the home-field bonus before differencing.
func ExpectedScore(ratingA, ratingB float64, aIsHome bool) float64 {
	adjA := ratingA
	if aIsHome {
		adjA += HomeFieldBonus
	}
	return 1.0 / (1.0 + math.Pow(10, -(adjA-ratingB)/scale))
}

// UpdateRatings returns both sides' new ratings after a completed game.
// The construction is zero-sum: the two deltas are exact negatives, so
// total rating mass is conserved by every update.
func UpdateRatings(homeRating, awayRating float64, homeScore, awayScore int) (newHome, newAway float64) {
	expectedHome := ExpectedScore(homeRating, awayRating, true)
	expectedAway := 1.0 - expectedHome

	var actualHome, actualAway float64
	switch {
	case homeScore > awayScore:
		actualHome, actualAway = 1.0, 0.0
	case homeScore < awayScore:
		actualHome, actualAway = 0.0, 1.0
	default:
		actualHome, actualAway = 0.5, 0.5
	}

	margin := float64(homeScore - awayScore)
	multiplier := math.Log(math.Abs(margin)+1.0) * movFactor
	k := baseK * multiplier

	newHome = homeRating + k*(actualHome-expectedHome)
	newAway = awayRating + k*(actualAway-expectedAway)
	return newHome, newAway
}

// Prediction is a pregame forecast derived from the two ratings.
type Prediction struct {
	HomeWinProbability float64
	// Spread is positive when the home side is favored, in points,
	// rounded to the nearest half point.
	Spread float64
	// Confidence is a bounded 55-95 signal from the rating gap.
	Confidence float64
}

// Predict forecasts a game from the two current ratings.
func Predict(homeRating, awayRating float64) Prediction {
	diff := homeRating - awayRating

	spread := (diff + HomeFieldBonus) / pointsPerSpread
	spread = math.Round(spread*2) / 2

	confidence := math.Abs(diff)/10 + 50
	if confidence < 55 {
		confidence = 55
	}
	if confidence > 95 {
		confidence = 95
	}

	return Prediction{
		HomeWinProbability: ExpectedScore(homeRating, awayRating, true),
		Spread:             spread,
		Confidence:         confidence,
	}
}
