// Package overlay turns normalized solar potential into drawable map overlays and panel text.
package overlay

import "github.com/UnknownOlympus/helios/internal/models"

// Anchor tells the map widget where to open a popup.
type Anchor string

const (
	// AnchorClick opens the popup at the position of the click on the overlay.
	AnchorClick Anchor = "click"
	// AnchorMarker opens the popup attached to the marker.
	AnchorMarker Anchor = "marker"
)

// Style is the stroke and fill of a polygon.
type Style struct {
	StrokeColor   string  `json:"strokeColor"`
	StrokeOpacity float64 `json:"strokeOpacity"`
	StrokeWeight  int     `json:"strokeWeight"`
	FillColor     string  `json:"fillColor"`
	FillOpacity   float64 `json:"fillOpacity"`
}

// Popup is an info window bound to an overlay. Content is HTML.
type Popup struct {
	Content string `json:"content"`
	Anchor  Anchor `json:"anchor"`
}

// Polygon is a closed path drawn on the map.
type Polygon struct {
	SegmentIndex int                 // SegmentIndex is the zero-based roof segment index.
	Tier         string              // Tier is the pitch severity name.
	Path         []models.Coordinate // Path lists the corners; the ring closes implicitly.
	Style        Style
	Popup        Popup
}

// Marker is a pinned point with a popup.
type Marker struct {
	Position models.Coordinate
	Title    string
	Popup    Popup
}

// Surface is the map drawing area. Implementations must be safe to call from one
// render pass at a time; callers serialize passes.
type Surface interface {
	AddPolygon(p Polygon)
	AddMarker(m Marker)
	Clear()
}

// InfoPanel is the region outside the map that shows the latest summary or error.
type InfoPanel interface {
	SetInfo(html string)
}

// Diagnostics receives developer-facing messages.
type Diagnostics interface {
	Log(message string)
}

// Skip records a segment that was not drawn.
type Skip struct {
	SegmentIndex int    `json:"segmentIndex"`
	Reason       string `json:"reason"`
}

// Report summarizes one render pass.
type Report struct {
	Drawn   int    `json:"drawn"`
	Skipped []Skip `json:"skipped"`
}
