package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/cansat-data/terrain.report/internal/terrain"
)

func testFrame(t *testing.T) telemetry.Frame {
	t.Helper()
	recon, err := terrain.NewReconstructor(terrain.ReconstructorConfig{GridSize: 5})
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	values := []float64{50, 38, 58, 42, 65}
	surface, err := recon.Reconstruct(values)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	positions := recon.Positions()
	sx := make([]float64, len(positions))
	sy := make([]float64, len(positions))
	for i, p := range positions {
		sx[i], sy[i] = p.X, p.Y
	}

	return telemetry.Frame{
		Grid:         surface.Z,
		XAxis:        surface.XAxis,
		YAxis:        surface.YAxis,
		SensorX:      sx,
		SensorY:      sy,
		SensorValues: values,
		Status:       telemetry.StatusUneven,
		SampleCount:  12,
		MinDistance:  38,
		MaxDistance:  65,
		Timestamp:    time.Unix(100, 0),
	}
}

func TestHeatmapRendererWritesPNG(t *testing.T) {
	base := t.TempDir()
	h, err := NewHeatmapRenderer(base)
	if err != nil {
		t.Fatalf("NewHeatmapRenderer: %v", err)
	}

	if err := h.Render(testFrame(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := filepath.Join(h.Dir(), "surface_000012.png")
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("expected PNG at %s: %v", out, err)
	}
	if info.Size() == 0 {
		t.Error("rendered PNG is empty")
	}
}

func TestHeatmapRendererSkipsNoGround(t *testing.T) {
	h, err := NewHeatmapRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewHeatmapRenderer: %v", err)
	}

	f := testFrame(t)
	f.Grid = nil
	f.Status = telemetry.StatusNoGround

	if err := h.Render(f); err != nil {
		t.Fatalf("Render: %v", err)
	}

	entries, err := os.ReadDir(h.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("gridless frame produced %d files, want none", len(entries))
	}
}

func TestHeatmapRendererSeparatesRuns(t *testing.T) {
	base := t.TempDir()
	a, err := NewHeatmapRenderer(base)
	if err != nil {
		t.Fatalf("NewHeatmapRenderer: %v", err)
	}
	b, err := NewHeatmapRenderer(base)
	if err != nil {
		t.Fatalf("NewHeatmapRenderer: %v", err)
	}
	if a.Dir() == b.Dir() {
		t.Error("two runs share an output directory")
	}
}
