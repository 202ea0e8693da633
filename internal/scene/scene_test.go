package scene_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/overlay"
	"github.com/UnknownOlympus/helios/internal/scene"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePolygon() overlay.Polygon {
	return overlay.Polygon{
		SegmentIndex: 3,
		Tier:         "high",
		Path: []models.Coordinate{
			{Latitude: 1, Longitude: 2},
			{Latitude: 1, Longitude: 3},
			{Latitude: 4, Longitude: 3},
			{Latitude: 4, Longitude: 2},
		},
		Style: overlay.Style{
			StrokeColor: "#FFA500", StrokeOpacity: 0.8, StrokeWeight: 2,
			FillColor: "#FFA500", FillOpacity: 0.35,
		},
		Popup: overlay.Popup{Content: "Segment 4", Anchor: overlay.AnchorClick},
	}
}

func TestScene_Snapshot(t *testing.T) {
	t.Parallel()

	sc := scene.New(0)
	sc.AddPolygon(samplePolygon())
	sc.AddMarker(overlay.Marker{
		Position: models.Coordinate{Latitude: 41, Longitude: 29},
		Title:    overlay.MarkerTitle,
		Popup:    overlay.Popup{Content: "<h3>Solar Potential</h3>", Anchor: overlay.AnchorMarker},
	})
	sc.SetInfo("<h3>Solar Potential</h3>")
	sc.Log("first")
	sc.Log("second")

	snap := sc.Snapshot()

	assert.Equal(t, "<h3>Solar Potential</h3>", snap.Info)
	assert.Equal(t, []string{"first", "second"}, snap.Diagnostics)
	assert.Equal(t, "second", snap.Latest)
	require.Len(t, snap.Overlays.Features, 2)

	poly := snap.Overlays.Features[0]
	assert.Equal(t, scene.KindSegment, poly.Properties["kind"])
	assert.Equal(t, "#FFA500", poly.Properties["fillColor"])
	assert.Equal(t, "high", poly.Properties["tier"])
	assert.Equal(t, "click", poly.Properties["anchor"])
	polygon, ok := poly.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, polygon[0], 5)
	assert.Equal(t, orb.Point{2, 1}, polygon[0][0])
	assert.Equal(t, polygon[0][0], polygon[0][4])

	marker := snap.Overlays.Features[1]
	assert.Equal(t, scene.KindMarker, marker.Properties["kind"])
	assert.Equal(t, orb.Point{29, 41}, marker.Geometry)
	assert.Equal(t, "Solar Potential", marker.Properties["title"])

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
}

func TestScene_Clear(t *testing.T) {
	t.Parallel()

	sc := scene.New(10)
	sc.AddPolygon(samplePolygon())
	sc.AddMarker(overlay.Marker{})
	sc.SetInfo("info")
	sc.Log("kept")

	sc.Clear()

	polygons, markers := sc.Counts()
	assert.Zero(t, polygons)
	assert.Zero(t, markers)
	snap := sc.Snapshot()
	assert.Empty(t, snap.Overlays.Features)
	assert.Equal(t, "info", snap.Info)
	assert.Equal(t, "kept", snap.Latest)
}

func TestScene_DiagnosticsAreBounded(t *testing.T) {
	t.Parallel()

	sc := scene.New(3)
	for i := range 5 {
		sc.Log(fmt.Sprintf("line %d", i))
	}

	snap := sc.Snapshot()

	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, snap.Diagnostics)
	assert.Equal(t, "line 4", snap.Latest)
}

func TestScene_EmptySnapshot(t *testing.T) {
	t.Parallel()

	snap := scene.New(1).Snapshot()

	assert.Empty(t, snap.Latest)
	assert.NotNil(t, snap.Diagnostics)
	assert.Empty(t, snap.Overlays.Features)
}

func TestScene_Concurrent(t *testing.T) {
	t.Parallel()

	sc := scene.New(1000)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.AddPolygon(samplePolygon())
			sc.Log(fmt.Sprintf("worker %d", i))
			_ = sc.Snapshot()
		}()
	}
	wg.Wait()

	polygons, _ := sc.Counts()
	assert.Equal(t, 20, polygons)
}
