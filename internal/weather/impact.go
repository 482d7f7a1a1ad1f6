package weather

import "strings"

// ImpactScore derives a 0-10 game-impact score from weather conditions.
// Dome games subtract 4 and floor at 0, so a mild-weather dome game
// always scores 0.
func ImpactScore(temperature, windSpeed, precipitation float64, condition string, dome bool) float64 {
	score := 0.0

	switch {
	case temperature < 32 || temperature > 95:
		score += 3
	case temperature <= 40 || temperature >= 85:
		score += 2
	}

	switch {
	case windSpeed > 25:
		score += 3
	case windSpeed > 15:
		score += 2
	case windSpeed > 10:
		score += 1
	}

	switch {
	case precipitation > 0.5:
		score += 3
	case precipitation > 0.1:
		score += 2
	}

	switch {
	case strings.EqualFold(condition, "snow"):
		score += 2
	case strings.EqualFold(condition, "rain"), strings.EqualFold(condition, "fog"):
		score += 1
	}

	if dome {
		score -= 4
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}
