// Package scene keeps the drawn overlays and panel contents of one map page and
// exports them as GeoJSON for the browser widget.
package scene

import (
	"sync"

	"github.com/UnknownOlympus/helios/internal/geo"
	"github.com/UnknownOlympus/helios/internal/overlay"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultMaxDiagnostics bounds the diagnostics log when no limit is given.
const DefaultMaxDiagnostics = 50

// Feature kinds written to the "kind" property.
const (
	KindSegment = "segment"
	KindMarker  = "marker"
)

// Scene is an in-memory map surface with an info panel and a bounded diagnostics log.
// It is safe for concurrent use.
type Scene struct {
	mu             sync.RWMutex
	polygons       []overlay.Polygon
	markers        []overlay.Marker
	info           string
	diagnostics    []string
	maxDiagnostics int
}

// Snapshot is a point-in-time copy of a scene.
type Snapshot struct {
	Info        string                     `json:"info"`
	Diagnostics []string                   `json:"diagnostics"`
	Latest      string                     `json:"latest"`
	Overlays    *geojson.FeatureCollection `json:"overlays"`
}

// New creates an empty scene keeping at most maxDiagnostics log lines.
func New(maxDiagnostics int) *Scene {
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}

	return &Scene{maxDiagnostics: maxDiagnostics}
}

// AddPolygon implements overlay.Surface.
func (s *Scene) AddPolygon(p overlay.Polygon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polygons = append(s.polygons, p)
}

// AddMarker implements overlay.Surface.
func (s *Scene) AddMarker(m overlay.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, m)
}

// Clear removes every overlay. Panels are left untouched.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polygons = nil
	s.markers = nil
}

// SetInfo replaces the info panel.
func (s *Scene) SetInfo(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = html
}

// Log appends a diagnostics line, dropping the oldest once the log is full.
func (s *Scene) Log(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, message)
	if over := len(s.diagnostics) - s.maxDiagnostics; over > 0 {
		s.diagnostics = append([]string(nil), s.diagnostics[over:]...)
	}
}

// Counts returns the number of polygons and markers on the surface.
func (s *Scene) Counts() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.polygons), len(s.markers)
}

// Snapshot copies the scene, rendering overlays as a GeoJSON feature collection.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	for _, p := range s.polygons {
		fc.Append(polygonFeature(p))
	}
	for _, m := range s.markers {
		fc.Append(markerFeature(m))
	}

	snap := Snapshot{
		Info:        s.info,
		Diagnostics: append([]string{}, s.diagnostics...),
		Overlays:    fc,
	}
	if n := len(s.diagnostics); n > 0 {
		snap.Latest = s.diagnostics[n-1]
	}

	return snap
}

func polygonFeature(p overlay.Polygon) *geojson.Feature {
	feature := geojson.NewFeature(orb.Polygon{geo.Ring(p.Path)})
	feature.Properties["kind"] = KindSegment
	feature.Properties["segmentIndex"] = p.SegmentIndex
	feature.Properties["tier"] = p.Tier
	feature.Properties["strokeColor"] = p.Style.StrokeColor
	feature.Properties["strokeOpacity"] = p.Style.StrokeOpacity
	feature.Properties["strokeWeight"] = p.Style.StrokeWeight
	feature.Properties["fillColor"] = p.Style.FillColor
	feature.Properties["fillOpacity"] = p.Style.FillOpacity
	feature.Properties["popup"] = p.Popup.Content
	feature.Properties["anchor"] = string(p.Popup.Anchor)

	return feature
}

func markerFeature(m overlay.Marker) *geojson.Feature {
	feature := geojson.NewFeature(geo.Point(m.Position))
	feature.Properties["kind"] = KindMarker
	feature.Properties["title"] = m.Title
	feature.Properties["popup"] = m.Popup.Content
	feature.Properties["anchor"] = string(m.Popup.Anchor)

	return feature
}
