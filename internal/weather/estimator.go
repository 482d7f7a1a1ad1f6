package weather

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"
)

// Estimate derives plausible weather from latitude and time of year when
// no provider data is available. It is a pure function of (coordinates,
// date): the variation inside realistic bands comes from a hash of the
// rounded inputs, not from a random source, so results are reproducible.
// It never fails.
func Estimate(lat, lon float64, kickoff time.Time) models.WeatherPatch {
	h := estimatorSeed(lat, lon, kickoff)

	temp := baseTemperature(lat) + monthAdjustment(kickoff.Month())
	// Day-to-day wobble of up to +/-5 degrees.
	temp += float64(h%11) - 5

	// Wind 3-18 mph, humidity 35-85 percent.
	wind := 3 + float64((h>>8)%16)
	humidity := 35 + float64((h>>16)%51)
	windDir := compassPoints[(h>>24)%uint64(len(compassPoints))]

	precip := 0.0
	condition := "Clear"
	// Precipitation chance: ~35% in winter months, ~20% otherwise.
	threshold := uint64(20)
	winter := kickoff.Month() <= time.February || kickoff.Month() == time.December
	if winter {
		threshold = 35
	}
	if (h>>32)%100 < threshold {
		// 0.05-0.45 inches.
		precip = 0.05 + float64((h>>40)%40)/100
		condition = "Rain"
		if winter && temp < 34 {
			condition = "Snow"
		}
	}

	return models.WeatherPatch{
		Temperature:   temp,
		WindSpeed:     wind,
		WindDirection: windDir,
		Humidity:      humidity,
		Precipitation: precip,
		Condition:     condition,
		Impact:        ImpactScore(temp, wind, precip, condition, false),
	}
}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// baseTemperature maps latitude to a typical fall afternoon temperature:
// colder above 45N, warmer below 35N.
func baseTemperature(lat float64) float64 {
	switch {
	case lat > 45:
		return 48
	case lat < 35:
		return 72
	default:
		return 60
	}
}

// monthAdjustment shifts the base by season: winter -25, summer +15.
func monthAdjustment(m time.Month) float64 {
	switch m {
	case time.December, time.January, time.February:
		return -25
	case time.June, time.July, time.August:
		return 15
	case time.March, time.November:
		return -10
	case time.September:
		return 8
	default:
		return 0
	}
}

func estimatorSeed(lat, lon float64, kickoff time.Time) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.2f|%.2f|%s", lat, lon, kickoff.UTC().Format("2006-01-02"))
	return h.Sum64()
}

// CompassFromDegrees converts a wind bearing to its compass point.
func CompassFromDegrees(deg int) string {
	deg = ((deg % 360) + 360) % 360
	idx := ((deg + 22) % 360) / 45
	return compassPoints[idx]
}
