// Package geo validates coordinates and derives drawable geometry from roof bounding boxes.
package geo

import (
	"errors"
	"math"

	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/paulmach/orb"
)

// Latitude and longitude limits in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrInvalidCoordinate is returned when a point is not finite or lies outside the WGS84 ranges.
var ErrInvalidCoordinate = errors.New("invalid latitude/longitude")

// IsValid reports whether lat and lng are finite numbers within [-90, 90] and [-180, 180].
func IsValid(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}

	return lat >= MinLatitude && lat <= MaxLatitude && lng >= MinLongitude && lng <= MaxLongitude
}

// Validate returns ErrInvalidCoordinate if the coordinate does not pass IsValid.
func Validate(c models.Coordinate) error {
	if !IsValid(c.Latitude, c.Longitude) {
		return ErrInvalidCoordinate
	}

	return nil
}

// Box is an axis-aligned bounding box given by its south-west and north-east corners.
type Box struct {
	SW models.Coordinate `json:"sw"`
	NE models.Coordinate `json:"ne"`
}

// Valid reports whether both defining corners are valid. Every derived corner reuses
// one of their latitudes and one of their longitudes, so this covers all four.
func (b Box) Valid() bool {
	return IsValid(b.SW.Latitude, b.SW.Longitude) && IsValid(b.NE.Latitude, b.NE.Longitude)
}

// Corners returns the four corners of the box in drawing order:
// SW, (SW.lat, NE.lng), NE, (NE.lat, SW.lng).
func (b Box) Corners() []models.Coordinate {
	return []models.Coordinate{
		{Latitude: b.SW.Latitude, Longitude: b.SW.Longitude},
		{Latitude: b.SW.Latitude, Longitude: b.NE.Longitude},
		{Latitude: b.NE.Latitude, Longitude: b.NE.Longitude},
		{Latitude: b.NE.Latitude, Longitude: b.SW.Longitude},
	}
}

// Ring converts a path into a closed orb ring. orb points are [lng, lat].
func Ring(path []models.Coordinate) orb.Ring {
	ring := make(orb.Ring, 0, len(path)+1)
	for _, c := range path {
		ring = append(ring, Point(c))
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}

	return ring
}

// Point converts a coordinate to an orb point.
func Point(c models.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}
