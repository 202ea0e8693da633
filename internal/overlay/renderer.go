package overlay

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/palette"
	"github.com/UnknownOlympus/helios/internal/solar"
)

// Polygon styling shared by every segment; only the color varies.
const (
	strokeOpacity = 0.8
	strokeWeight  = 2
	fillOpacity   = 0.35
)

// MarkerTitle is the title of the summary marker.
const MarkerTitle = "Solar Potential"

// NoData is shown for a missing panel count.
const NoData = "No data"

// Diagnostic reasons produced by the renderer.
const (
	ReasonInvalidCoordinates = "invalid LatLng in bounding box"
	msgNoSegments            = "No roofSegmentStats found in the data"
)

var summaryTemplate = template.Must(template.New("summary").Parse(`<h3>Solar Potential</h3>
<p>Max panel count: {{.Panels}}</p>
<p>Max array area: {{.Area}} m²</p>
<p>Max sunshine hours per year: {{.Sunshine}} hours</p>
{{- if .Carbon}}
<p>Carbon offset factor: {{.Carbon}} kg/MWh</p>
{{- end}}
{{- if .Address}}
<p>Address: {{.Address}}</p>
{{- end}}
{{- if .Region}}
<p>Region: {{.Region}}</p>
{{- end}}
{{- if .Imagery}}
<p>Imagery: {{.Imagery}}</p>
{{- end}}
`))

type summaryView struct {
	Panels   string
	Area     string
	Sunshine string
	Carbon   string
	Address  string
	Region   string
	Imagery  string
}

// Renderer draws one solar potential onto a surface and its panels.
type Renderer struct {
	surface Surface
	info    InfoPanel
	diag    Diagnostics
	log     *slog.Logger
}

// NewRenderer creates a renderer bound to a surface, an info panel and a diagnostics sink.
func NewRenderer(surface Surface, info InfoPanel, diag Diagnostics, log *slog.Logger) *Renderer {
	return &Renderer{surface: surface, info: info, diag: diag, log: log}
}

// Render draws every renderable segment in input order, then the summary marker at clicked.
// A segment without a box or with invalid corners is skipped and reported; it never stops
// the remaining segments or the summary from being drawn. Render only adds overlays;
// clearing previous ones is up to the caller.
func (r *Renderer) Render(potential *solar.Potential, clicked models.Coordinate) Report {
	report := Report{Skipped: []Skip{}}

	if len(potential.Segments) == 0 {
		r.diag.Log(msgNoSegments)
	}

	for _, seg := range potential.Segments {
		if reason, ok := r.drawSegment(seg); !ok {
			report.Skipped = append(report.Skipped, Skip{SegmentIndex: seg.Index, Reason: reason})
			r.diag.Log(fmt.Sprintf("Error in segment %d: %s", seg.Index, reason))
			r.log.Warn("Skipping roof segment", "segment", seg.Index, "reason", reason)
			continue
		}
		report.Drawn++
	}

	summary := Summary(potential)
	r.surface.AddMarker(Marker{
		Position: clicked,
		Title:    MarkerTitle,
		Popup:    Popup{Content: summary, Anchor: AnchorMarker},
	})
	r.info.SetInfo(summary)

	r.log.Debug("Render pass finished", "drawn", report.Drawn, "skipped", len(report.Skipped))

	return report
}

func (r *Renderer) drawSegment(seg solar.Segment) (string, bool) {
	if !seg.Renderable() {
		reason := seg.Reason
		if reason == "" {
			reason = solar.ReasonNoBoundingBox
		}
		return reason, false
	}

	box, _ := seg.Box.Get()
	if !box.Valid() {
		r.log.Warn("Invalid LatLng in bounding box",
			"segment", seg.Index, "sw", box.SW, "ne", box.NE)
		return ReasonInvalidCoordinates, false
	}

	tier := palette.ForPitch(seg.PitchDegrees)
	color := tier.Color()

	r.surface.AddPolygon(Polygon{
		SegmentIndex: seg.Index,
		Tier:         tier.String(),
		Path:         box.Corners(),
		Style: Style{
			StrokeColor:   color,
			StrokeOpacity: strokeOpacity,
			StrokeWeight:  strokeWeight,
			FillColor:     color,
			FillOpacity:   fillOpacity,
		},
		Popup: Popup{Content: SegmentContent(seg), Anchor: AnchorClick},
	})

	return "", true
}

// SegmentContent is the popup HTML of a roof segment. Azimuth is only shown when known.
func SegmentContent(seg solar.Segment) string {
	content := fmt.Sprintf("Segment %d<br>Pitch: %.2f°<br>Area: %.2f m²",
		seg.Index+1, seg.PitchDegrees.Or(0), seg.AreaMeters2.Or(0))
	if azimuth, ok := seg.AzimuthDegrees.Get(); ok {
		content += fmt.Sprintf("<br>Azimuth: %.2f°", azimuth)
	}

	return content
}

// Summary is the HTML summary shown in the marker popup and the info panel.
func Summary(potential *solar.Potential) string {
	view := summaryView{
		Panels:   NoData,
		Area:     strconv.FormatFloat(potential.MaxArrayAreaMeters2.Or(0), 'f', 2, 64),
		Sunshine: strconv.FormatFloat(potential.MaxSunshineHoursPerYear.Or(0), 'f', 2, 64),
		Address:  potential.Building.Address,
		Region:   region(potential.Building),
		Imagery:  imagery(potential.Building),
	}
	if panels, ok := potential.MaxArrayPanelsCount.Get(); ok {
		view.Panels = strconv.Itoa(panels)
	}
	if carbon, ok := potential.CarbonOffsetFactorKgPerMwh.Get(); ok {
		view.Carbon = strconv.FormatFloat(carbon, 'f', 2, 64)
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, view); err != nil {
		// Only strings are interpolated; execution cannot fail on this view.
		return ""
	}

	return buf.String()
}

func region(b solar.Building) string {
	return strings.TrimSpace(b.PostalCode + " " + b.RegionCode)
}

func imagery(b solar.Building) string {
	date, hasDate := b.ImageryDate.Get()
	switch {
	case b.ImageryQuality != "" && hasDate:
		return b.ImageryQuality + " (" + date.String() + ")"
	case hasDate:
		return date.String()
	default:
		return b.ImageryQuality
	}
}
