package palette_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/palette"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pitch float64
		want  palette.Tier
		color string
	}{
		{-30, palette.Low, "#00FF00"},
		{-0.1, palette.Low, "#00FF00"},
		{0, palette.Low, "#00FF00"},
		{14.999, palette.Low, "#00FF00"},
		{15, palette.Medium, "#FFFF00"},
		{22.5, palette.Medium, "#FFFF00"},
		{29.99, palette.Medium, "#FFFF00"},
		{30, palette.High, "#FFA500"},
		{44.9, palette.High, "#FFA500"},
		{45, palette.Extreme, "#FF0000"},
		{90, palette.Extreme, "#FF0000"},
		{math.Inf(1), palette.Extreme, "#FF0000"},
		{math.Inf(-1), palette.Low, "#00FF00"},
		{math.NaN(), palette.Low, "#00FF00"},
	}

	for _, tc := range cases {
		tier := palette.Classify(tc.pitch)
		assert.Equal(t, tc.want, tier, "pitch %v", tc.pitch)
		assert.Equal(t, tc.color, tier.Color(), "pitch %v", tc.pitch)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	t.Parallel()

	prev := palette.Classify(-100)
	for p := -100.0; p <= 100; p += 0.25 {
		tier := palette.Classify(p)
		assert.GreaterOrEqual(t, tier, prev, "tier decreased at pitch %v", p)
		assert.Contains(t, []palette.Tier{palette.Low, palette.Medium, palette.High, palette.Extreme}, tier)
		prev = tier
	}
}

func TestForPitch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, palette.Low, palette.ForPitch(models.None[float64]()))
	assert.Equal(t, palette.Medium, palette.ForPitch(models.Some(22.5)))
}

func TestTier_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", palette.Low.String())
	assert.Equal(t, "medium", palette.Medium.String())
	assert.Equal(t, "high", palette.High.String())
	assert.Equal(t, "extreme", palette.Extreme.String())
	assert.Equal(t, "unknown", palette.Tier(42).String())
	assert.Equal(t, "#00FF00", palette.Tier(-1).Color())
}
