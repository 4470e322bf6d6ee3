// Package render provides the renderer implementations fed by the snapshot
// consumer: a log summary, a PNG heatmap writer, and a fan-out combinator.
package render

import (
	"github.com/cansat-data/terrain.report/internal/monitoring"
	"github.com/cansat-data/terrain.report/internal/telemetry"
)

// LogRenderer writes a one-line summary per frame. It is the default sink
// in headless runs so the station always displays a status even when no
// dashboard is attached.
type LogRenderer struct{}

// Render implements telemetry.Renderer.
func (LogRenderer) Render(f telemetry.Frame) error {
	monitoring.Logf("scan #%d status=%s min=%.0f max=%.0f spread=%.0f",
		f.SampleCount, f.Status, f.MinDistance, f.MaxDistance, f.MaxDistance-f.MinDistance)
	return nil
}

// FanOut delivers each frame to every renderer in turn. A failing renderer
// is logged and skipped so one faulty sink never starves the others; the
// fan-out itself never reports an error upward.
type FanOut []telemetry.Renderer

// Render implements telemetry.Renderer.
func (r FanOut) Render(f telemetry.Frame) error {
	for _, sink := range r {
		if err := sink.Render(f); err != nil {
			monitoring.Logf("renderer %T failed: %v", sink, err)
		}
	}
	return nil
}
