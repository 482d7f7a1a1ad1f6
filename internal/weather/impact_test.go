package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImpactScore_MildConditions(t *testing.T) {
	score := ImpactScore(65, 5, 0, "Clear", false)
	assert.Equal(t, 0.0, score, "A mild clear day should have no impact")
}

func TestImpactScore_Temperature(t *testing.T) {
	assert.Equal(t, 3.0, ImpactScore(25, 0, 0, "Clear", false), "Freezing temps should add 3")
	assert.Equal(t, 3.0, ImpactScore(100, 0, 0, "Clear", false), "Extreme heat should add 3")
	assert.Equal(t, 2.0, ImpactScore(38, 0, 0, "Clear", false), "Cold temps should add 2")
	assert.Equal(t, 2.0, ImpactScore(88, 0, 0, "Clear", false), "Hot temps should add 2")
}

func TestImpactScore_Wind(t *testing.T) {
	assert.Equal(t, 1.0, ImpactScore(65, 12, 0, "Clear", false), "Breezy should add 1")
	assert.Equal(t, 2.0, ImpactScore(65, 18, 0, "Clear", false), "Windy should add 2")
	assert.Equal(t, 3.0, ImpactScore(65, 30, 0, "Clear", false), "High wind should add 3")
}

func TestImpactScore_Precipitation(t *testing.T) {
	assert.Equal(t, 3.0, ImpactScore(65, 0, 0.6, "Clear", false), "Heavy precipitation should add 3")
	assert.Equal(t, 2.0, ImpactScore(65, 0, 0.2, "Clear", false), "Light precipitation should add 2")
}

func TestImpactScore_Condition(t *testing.T) {
	assert.Equal(t, 2.0, ImpactScore(65, 0, 0, "Snow", false), "Snow should add 2")
	assert.Equal(t, 1.0, ImpactScore(65, 0, 0, "Rain", false), "Rain should add 1")
	assert.Equal(t, 1.0, ImpactScore(65, 0, 0, "Fog", false), "Fog should add 1")
	assert.Equal(t, 2.0, ImpactScore(65, 0, 0, "snow", false), "Condition matching should ignore case")
}

func TestImpactScore_DomeDiscount(t *testing.T) {
	open := ImpactScore(28, 20, 0.3, "Snow", false)
	dome := ImpactScore(28, 20, 0.3, "Snow", true)
	assert.Equal(t, open-4, dome, "A dome should subtract 4 from the same conditions")

	assert.Equal(t, 0.0, ImpactScore(72, 0, 0, "Controlled", true), "Dome games in controlled air should score 0")
}

func TestImpactScore_Bounds(t *testing.T) {
	worst := ImpactScore(10, 40, 1.0, "Snow", false)
	assert.Equal(t, 10.0, worst, "Score should cap at 10")

	best := ImpactScore(70, 0, 0, "Clear", true)
	assert.Equal(t, 0.0, best, "Score should floor at 0")
}
