// Package solar models building-insights responses and normalizes them into a form
// the overlay renderer can consume without further nil checks.
package solar

import (
	"fmt"

	"github.com/UnknownOlympus/helios/internal/geo"
	"github.com/UnknownOlympus/helios/internal/models"
)

// Reasons a segment carries no geometry.
const (
	ReasonNoBoundingBox         = "no valid polygon data"
	ReasonIncompleteBoundingBox = "incomplete bounding box"
	ReasonMalformedSegment      = "malformed segment"
)

// Potential is the normalized solar potential of the building closest to a click.
type Potential struct {
	Building                   Building
	MaxArrayPanelsCount        models.Optional[int]
	MaxArrayAreaMeters2        models.Optional[float64]
	MaxSunshineHoursPerYear    models.Optional[float64]
	CarbonOffsetFactorKgPerMwh models.Optional[float64]
	Segments                   []Segment
}

// Building holds descriptive fields of the matched building.
type Building struct {
	ImageryQuality string
	ImageryDate    models.Optional[Date]
	PostalCode     string
	RegionCode     string
	Address        string // Address is resolved by reverse geocoding, not by the Solar API.
}

// Date is a calendar date as reported by the API.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Segment is one roof segment. Segments without a Box are kept so their stats
// still count, but they cannot be drawn.
type Segment struct {
	Index          int // Index is the zero-based position in the response.
	PitchDegrees   models.Optional[float64]
	AzimuthDegrees models.Optional[float64]
	AreaMeters2    models.Optional[float64]
	Box            models.Optional[geo.Box]
	Reason         string // Reason explains a missing Box.
}

// Renderable reports whether the segment carries a bounding box.
func (s Segment) Renderable() bool {
	return s.Box.Valid()
}

// APIError is an error payload returned by the building-insights API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("solar API error (%s): %s", e.Status, e.Message)
	}

	return "solar API error: " + e.Message
}
