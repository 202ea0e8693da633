// Package palette classifies roof segments into severity tiers by pitch.
package palette

import "github.com/UnknownOlympus/helios/internal/models"

// Tier is the visual severity of a roof segment.
type Tier int

const (
	// Low covers pitches below 15 degrees, negatives included.
	Low Tier = iota
	// Medium covers [15, 30).
	Medium
	// High covers [30, 45).
	High
	// Extreme covers 45 degrees and above.
	Extreme
)

// Pitch thresholds in degrees; each is the inclusive lower bound of the next tier.
const (
	MediumFrom  = 15.0
	HighFrom    = 30.0
	ExtremeFrom = 45.0
)

var (
	tierNames  = [...]string{"low", "medium", "high", "extreme"}
	tierColors = [...]string{"#00FF00", "#FFFF00", "#FFA500", "#FF0000"}
)

// Classify maps a pitch to its tier. NaN is treated like a missing pitch and lands in Low.
func Classify(pitch float64) Tier {
	switch {
	case pitch >= ExtremeFrom:
		return Extreme
	case pitch >= HighFrom:
		return High
	case pitch >= MediumFrom:
		return Medium
	default:
		return Low
	}
}

// ForPitch classifies an optional pitch, defaulting a missing value to 0.
func ForPitch(pitch models.Optional[float64]) Tier {
	return Classify(pitch.Or(0))
}

// String returns the tier name.
func (t Tier) String() string {
	if t < Low || t > Extreme {
		return "unknown"
	}

	return tierNames[t]
}

// Color returns the stroke and fill color used for the tier.
func (t Tier) Color() string {
	if t < Low || t > Extreme {
		return tierColors[Low]
	}

	return tierColors[t]
}
