// Package terrain reconstructs a continuous height field from the sparse
// readings of the fixed sensor constellation.
package terrain

import (
	"fmt"
	"math"
)

// Point is a fixed sensor position in the constellation plane. Positions
// are immutable after startup.
type Point struct {
	X float64
	Y float64
}

// DefaultPositions returns the physical layout of the five-sensor array:
// sensor 0 at the centre, sensors 1-4 at the corners.
//
//	S1 (-1,+1) ------ S2 (+1,+1)
//	        \   S0   /
//	        / (0,0)  \
//	S3 (-1,-1) ------ S4 (+1,-1)
func DefaultPositions() []Point {
	return []Point{
		{0, 0},
		{-1, 1},
		{1, 1},
		{-1, -1},
		{1, -1},
	}
}

// Surface is a dense height field over a square domain, plus the coordinate
// axes used to produce it. A Surface is recomputed from scratch every render
// cycle and has no identity beyond that cycle.
type Surface struct {
	// Z holds height values indexed [row][col], i.e. Z[yi][xi].
	Z [][]float64
	// XAxis and YAxis are the grid coordinates along each dimension.
	XAxis []float64
	YAxis []float64
}

// ReconstructorConfig configures a Reconstructor. Zero values fall back to
// the design defaults (25x25 grid on [-1.5, 1.5]^2, power 2.5).
type ReconstructorConfig struct {
	Positions   []Point
	GridSize    int
	Extent      float64 // half-width of the square domain
	Power       float64 // inverse-distance weighting exponent
	Coincidence float64 // distance below which a cell snaps to the sensor value
}

// Reconstructor interpolates sensor readings onto a dense grid using
// inverse distance weighting. It is pure: identical inputs always yield
// identical surfaces, and no state is retained between calls.
type Reconstructor struct {
	positions   []Point
	gridSize    int
	extent      float64
	power       float64
	coincidence float64
	xAxis       []float64
	yAxis       []float64
}

// NewReconstructor validates the configuration and precomputes the grid
// axes. Configuration faults here are fatal by design: a degenerate grid
// cannot produce meaningful output.
func NewReconstructor(cfg ReconstructorConfig) (*Reconstructor, error) {
	if len(cfg.Positions) == 0 {
		cfg.Positions = DefaultPositions()
	}
	if cfg.GridSize == 0 {
		cfg.GridSize = 25
	}
	if cfg.GridSize <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %d", cfg.GridSize)
	}
	if cfg.Extent == 0 {
		cfg.Extent = 1.5
	}
	if cfg.Extent <= 0 {
		return nil, fmt.Errorf("domain extent must be positive, got %f", cfg.Extent)
	}
	if cfg.Power == 0 {
		cfg.Power = 2.5
	}
	if cfg.Power <= 0 {
		return nil, fmt.Errorf("IDW power must be positive, got %f", cfg.Power)
	}
	if cfg.Coincidence == 0 {
		cfg.Coincidence = 0.01
	}

	r := &Reconstructor{
		positions:   cfg.Positions,
		gridSize:    cfg.GridSize,
		extent:      cfg.Extent,
		power:       cfg.Power,
		coincidence: cfg.Coincidence,
	}
	r.xAxis = linspace(-cfg.Extent, cfg.Extent, cfg.GridSize)
	r.yAxis = linspace(-cfg.Extent, cfg.Extent, cfg.GridSize)
	return r, nil
}

// GridSize returns the configured grid resolution.
func (r *Reconstructor) GridSize() int { return r.gridSize }

// Positions returns the sensor positions the reconstructor was built with.
func (r *Reconstructor) Positions() []Point { return r.positions }

// Reconstruct produces a dense height field from the current sensor values.
// values must have one entry per sensor position.
//
// Each grid cell is a normalized weighted average of the sensor readings
// with weights 1/d^p. A cell within the coincidence threshold of a sensor
// takes exactly that sensor's value: IDW is an exact interpolator at the
// sample sites, and the short-circuit also avoids dividing by a near-zero
// distance. Every interpolated value therefore lies within
// [min(values), max(values)].
func (r *Reconstructor) Reconstruct(values []float64) (*Surface, error) {
	if len(values) != len(r.positions) {
		return nil, fmt.Errorf("got %d sensor values, want %d", len(values), len(r.positions))
	}

	z := make([][]float64, r.gridSize)
	for yi := range z {
		row := make([]float64, r.gridSize)
		y := r.yAxis[yi]
		for xi := range row {
			row[xi] = r.interpolate(r.xAxis[xi], y, values)
		}
		z[yi] = row
	}

	return &Surface{
		Z:     z,
		XAxis: append([]float64(nil), r.xAxis...),
		YAxis: append([]float64(nil), r.yAxis...),
	}, nil
}

// interpolate computes the IDW value at a single grid coordinate.
func (r *Reconstructor) interpolate(x, y float64, values []float64) float64 {
	var weightSum, valueSum float64
	for k, p := range r.positions {
		dx := x - p.X
		dy := y - p.Y
		dist := math.Sqrt(dx*dx + dy*dy)

		// Exact interpolation at the sensor's own location. Checked before
		// any weight is computed so the division below never blows up.
		if dist < r.coincidence {
			return values[k]
		}

		w := 1.0 / math.Pow(dist, r.power)
		weightSum += w
		valueSum += w * values[k]
	}
	return valueSum / weightSum
}

// linspace returns n evenly spaced values over [lo, hi] inclusive.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	// guard against accumulated rounding on the last sample
	out[n-1] = hi
	return out
}
