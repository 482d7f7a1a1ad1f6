package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDome(t *testing.T) {
	assert.True(t, IsDome("Mercedes-Benz Stadium"), "Known roofed venue should match")
	assert.True(t, IsDome("CAESARS SUPERDOME"), "Matching should ignore case")
	assert.True(t, IsDome("  Ford Field  "), "Matching should ignore whitespace")
	assert.True(t, IsDome("Thunderdome Arena"), "Names containing 'dome' should match")
	assert.True(t, IsDome("Husky Indoor Facility"), "Names containing 'indoor' should match")

	assert.False(t, IsDome("Michigan Stadium"), "Open-air venues should not match")
	assert.False(t, IsDome("Tiger Stadium"), "Open-air venues should not match")
	assert.False(t, IsDome(""), "Empty venue should not match")
}
