package geocoding

import (
	"context"

	"github.com/UnknownOlympus/helios/internal/models"
)

// Provider is an interface that defines a method for reverse geocoding a coordinate.
// The ReverseGeocode method takes a context and a coordinate as input,
// and returns a human readable address and an error if any occurs.
type Provider interface {
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)
}

// NoopProvider resolves every coordinate to an empty address. It is used when
// address lookups are disabled.
type NoopProvider struct{}

// ReverseGeocode always returns an empty address.
func (NoopProvider) ReverseGeocode(context.Context, models.Coordinate) (string, error) {
	return "", nil
}
