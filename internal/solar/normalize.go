package solar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/helios/internal/geo"
	"github.com/UnknownOlympus/helios/internal/models"
)

// ErrMalformedResponse is returned when the body is not a JSON object.
var ErrMalformedResponse = errors.New("malformed building insights response")

// defaultAPIErrorMessage is used when the API reports an error without a message.
const defaultAPIErrorMessage = "unknown error"

type envelope struct {
	Error          json.RawMessage `json:"error"`
	ImageryQuality json.RawMessage `json:"imageryQuality"`
	ImageryDate    json.RawMessage `json:"imageryDate"`
	PostalCode     json.RawMessage `json:"postalCode"`
	RegionCode     json.RawMessage `json:"regionCode"`
	SolarPotential json.RawMessage `json:"solarPotential"`
}

type rawPotential struct {
	MaxArrayPanelsCount        json.RawMessage `json:"maxArrayPanelsCount"`
	MaxArrayAreaMeters2        json.RawMessage `json:"maxArrayAreaMeters2"`
	MaxSunshineHoursPerYear    json.RawMessage `json:"maxSunshineHoursPerYear"`
	CarbonOffsetFactorKgPerMwh json.RawMessage `json:"carbonOffsetFactorKgPerMwh"`
	RoofSegmentStats           json.RawMessage `json:"roofSegmentStats"`
}

type rawSegment struct {
	PitchDegrees   json.RawMessage `json:"pitchDegrees"`
	AzimuthDegrees json.RawMessage `json:"azimuthDegrees"`
	Stats          json.RawMessage `json:"stats"`
	BoundingBox    json.RawMessage `json:"boundingBox"`
}

type rawStats struct {
	AreaMeters2 json.RawMessage `json:"areaMeters2"`
}

type rawBox struct {
	SW json.RawMessage `json:"sw"`
	NE json.RawMessage `json:"ne"`
}

type rawLatLng struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

// Normalize decodes a building-insights body.
//
// An error payload short-circuits into *APIError. Otherwise every missing or mistyped
// field degrades to an absent value instead of failing, so a partially populated
// response still yields whatever can be drawn. Only a body that is not a JSON object
// fails with ErrMalformedResponse.
func Normalize(body []byte) (*Potential, error) {
	if !present(body) {
		return nil, ErrMalformedResponse
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if truthy(env.Error) {
		return nil, decodeAPIError(env.Error)
	}

	potential := &Potential{
		Building: Building{
			ImageryQuality: decodeString(env.ImageryQuality),
			PostalCode:     decodeString(env.PostalCode),
			RegionCode:     decodeString(env.RegionCode),
		},
		Segments: []Segment{},
	}

	if present(env.ImageryDate) {
		var date Date
		if err := json.Unmarshal(env.ImageryDate, &date); err == nil && date.Year > 0 {
			potential.Building.ImageryDate = models.Some(date)
		}
	}

	if !present(env.SolarPotential) {
		return potential, nil
	}

	var raw rawPotential
	if err := json.Unmarshal(env.SolarPotential, &raw); err != nil {
		// A solarPotential of the wrong shape is treated as absent.
		return potential, nil
	}

	potential.MaxArrayPanelsCount = decodeInt(raw.MaxArrayPanelsCount)
	potential.MaxArrayAreaMeters2 = decodeFloat(raw.MaxArrayAreaMeters2)
	potential.MaxSunshineHoursPerYear = decodeFloat(raw.MaxSunshineHoursPerYear)
	potential.CarbonOffsetFactorKgPerMwh = decodeFloat(raw.CarbonOffsetFactorKgPerMwh)

	var segments []json.RawMessage
	if err := json.Unmarshal(raw.RoofSegmentStats, &segments); err != nil {
		// A roofSegmentStats that is not an array means no segments.
		return potential, nil
	}

	for idx, rawSeg := range segments {
		potential.Segments = append(potential.Segments, decodeSegment(idx, rawSeg))
	}

	return potential, nil
}

func decodeSegment(idx int, data json.RawMessage) Segment {
	seg := Segment{Index: idx}

	var raw rawSegment
	if err := json.Unmarshal(data, &raw); err != nil {
		seg.Reason = ReasonMalformedSegment
		return seg
	}

	seg.PitchDegrees = decodeFloat(raw.PitchDegrees)
	seg.AzimuthDegrees = decodeFloat(raw.AzimuthDegrees)

	var stats rawStats
	if err := json.Unmarshal(raw.Stats, &stats); err == nil {
		seg.AreaMeters2 = decodeFloat(stats.AreaMeters2)
	}

	if !present(raw.BoundingBox) {
		seg.Reason = ReasonNoBoundingBox
		return seg
	}

	var box rawBox
	if err := json.Unmarshal(raw.BoundingBox, &box); err != nil {
		seg.Reason = ReasonIncompleteBoundingBox
		return seg
	}

	sw, swOK := decodeLatLng(box.SW)
	ne, neOK := decodeLatLng(box.NE)
	if !swOK || !neOK {
		seg.Reason = ReasonIncompleteBoundingBox
		return seg
	}

	seg.Box = models.Some(geo.Box{SW: sw, NE: ne})

	return seg
}

func decodeLatLng(data json.RawMessage) (models.Coordinate, bool) {
	var raw rawLatLng
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Coordinate{}, false
	}

	lat, latOK := decodeFloat(raw.Latitude).Get()
	lng, lngOK := decodeFloat(raw.Longitude).Get()

	return models.Coordinate{Latitude: lat, Longitude: lng}, latOK && lngOK
}

func decodeAPIError(data json.RawMessage) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(data, apiErr); err != nil {
		// Some gateways answer with "error": "text".
		apiErr.Message = decodeString(data)
	}
	if apiErr.Message == "" {
		apiErr.Message = defaultAPIErrorMessage
	}

	return apiErr
}

// truthy reports whether an error field should short-circuit: false, 0 and "" do not.
func truthy(data json.RawMessage) bool {
	if !present(data) {
		return false
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return true
	}

	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func present(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func decodeFloat(data json.RawMessage) models.Optional[float64] {
	if !present(data) {
		return models.None[float64]()
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return models.None[float64]()
	}

	return models.Some(v)
}

func decodeInt(data json.RawMessage) models.Optional[int] {
	f := decodeFloat(data)
	v, ok := f.Get()
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return models.None[int]()
	}

	return models.Some(int(v))
}

func decodeString(data json.RawMessage) string {
	if !present(data) {
		return ""
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}

	return s
}
