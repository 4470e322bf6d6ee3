package telemetry

import (
	"context"
	"time"

	"github.com/cansat-data/terrain.report/internal/monitoring"
	"github.com/cansat-data/terrain.report/internal/terrain"
	"github.com/cansat-data/terrain.report/internal/timeutil"
)

// Frame is the per-tick payload handed to renderers: the reconstructed
// surface plus the snapshot it was derived from. Grid is nil when the
// snapshot classified as NO_GROUND, since there is no surface to draw.
type Frame struct {
	Grid         [][]float64 `json:"grid,omitempty"`
	XAxis        []float64   `json:"x_axis,omitempty"`
	YAxis        []float64   `json:"y_axis,omitempty"`
	SensorX      []float64   `json:"sensor_x"`
	SensorY      []float64   `json:"sensor_y"`
	SensorValues []float64   `json:"sensor_values"`
	Status       Status      `json:"status"`
	SampleCount  uint64      `json:"sample_count"`
	MinDistance  float64     `json:"min_distance"`
	MaxDistance  float64     `json:"max_distance"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Renderer receives frames from the snapshot consumer. Implementations are
// synchronous and best-effort: a returned error skips the tick and never
// stops the pipeline. Renderers must not retain or mutate the frame's
// slices beyond the call.
type Renderer interface {
	Render(Frame) error
}

// ConsumerConfig configures a Consumer. Zero values fall back to the design
// defaults (500ms cadence, real clock).
type ConsumerConfig struct {
	State         *State
	Reconstructor *terrain.Reconstructor
	Renderer      Renderer
	Interval      time.Duration
	Clock         timeutil.Clock
}

// Consumer is the cadence controller of the pipeline: on a fixed period it
// snapshots shared state, reconstructs the surface, and hands the frame to
// the renderer. It is the only component allowed to block on rendering
// latency; a slow render delays the next tick but never touches ingestion.
type Consumer struct {
	state    *State
	recon    *terrain.Reconstructor
	renderer Renderer
	interval time.Duration
	clock    timeutil.Clock

	sensorX []float64
	sensorY []float64
}

// NewConsumer creates a Consumer from the given configuration.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.Interval == 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}

	positions := cfg.Reconstructor.Positions()
	sx := make([]float64, len(positions))
	sy := make([]float64, len(positions))
	for i, p := range positions {
		sx[i] = p.X
		sy[i] = p.Y
	}

	return &Consumer{
		state:    cfg.State,
		recon:    cfg.Reconstructor,
		renderer: cfg.Renderer,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		sensorX:  sx,
		sensorY:  sy,
	}
}

// Run ticks until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			c.Tick()
		}
	}
}

// Tick performs one snapshot-reconstruct-render cycle. Exported so offline
// tools can drive the consumer without a ticker.
func (c *Consumer) Tick() {
	snap := c.state.Snapshot()

	frame := Frame{
		SensorX:      c.sensorX,
		SensorY:      c.sensorY,
		SensorValues: snap.Distances[:],
		Status:       snap.Status,
		SampleCount:  snap.SampleCount,
		MinDistance:  snap.MinDistance,
		MaxDistance:  snap.MaxDistance,
		Timestamp:    snap.Timestamp,
	}

	// No surface when there is no ground under the constellation. A failed
	// reconstruction likewise drops only the grid; the status frame still
	// goes out so the dashboard keeps showing state under sustained faults.
	if snap.Status != StatusNoGround {
		surface, err := c.recon.Reconstruct(snap.Distances[:])
		if err != nil {
			monitoring.Logf("surface reconstruction failed: %v", err)
		} else {
			frame.Grid = surface.Z
			frame.XAxis = surface.XAxis
			frame.YAxis = surface.YAxis
		}
	}

	if err := c.renderer.Render(frame); err != nil {
		monitoring.Logf("render failed for sample %d: %v", frame.SampleCount, err)
	}
}
