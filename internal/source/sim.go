package source

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/cansat-data/terrain.report/internal/timeutil"
	"gonum.org/v1/gonum/stat/distuv"
)

// slopeProfile is the per-sensor modulation of the synthetic terrain,
// matching the demo generator in the flight viewer: the corners tilt in
// different directions while the centre stays put.
var slopeProfile = [telemetry.NumSensors]float64{0, -12, 8, -8, 15}

// SimulatorConfig configures a Simulator. Zero values fall back to the
// design defaults (800ms interval, unseeded noise).
type SimulatorConfig struct {
	Interval time.Duration
	Clock    timeutil.Clock
	// Seed makes the noise stream reproducible when non-zero.
	Seed uint64
}

// Simulator generates synthetic terrain samples for demo mode: a slow
// sinusoidal base height with per-sensor slope modulation and Gaussian
// noise, clamped to the valid sensing range downstream. It implements
// telemetry.Source so demo mode swaps in without touching the ingestion
// loop.
type Simulator struct {
	interval time.Duration
	clock    timeutil.Clock
	noise    distuv.Normal
	start    time.Time
	ticker   timeutil.Ticker
}

// NewSimulator creates a Simulator from the given configuration.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.Interval == 0 {
		cfg.Interval = 800 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}

	noise := distuv.Normal{Mu: 0, Sigma: 3}
	if cfg.Seed != 0 {
		noise.Src = rand.NewPCG(cfg.Seed, cfg.Seed)
	}

	return &Simulator{
		interval: cfg.Interval,
		clock:    cfg.Clock,
		noise:    noise,
		start:    cfg.Clock.Now(),
	}
}

// Next blocks for one sample interval, then returns a synthetic reading.
func (s *Simulator) Next(ctx context.Context) (telemetry.Reading, error) {
	if s.ticker == nil {
		s.ticker = s.clock.NewTicker(s.interval)
	}

	select {
	case <-ctx.Done():
		return telemetry.Reading{}, ctx.Err()
	case <-s.ticker.C():
	}

	return s.Sample(), nil
}

// Sample produces one synthetic reading at the current mock or wall time.
// Split out from Next so offline tools can generate batches without waiting.
func (s *Simulator) Sample() telemetry.Reading {
	t := s.clock.Since(s.start).Seconds()
	base := 50 + 20*math.Sin(t*0.5)
	tilt := math.Sin(t * 0.3)

	var r telemetry.Reading
	for i := range r.Distances {
		r.Distances[i] = base + slopeProfile[i]*tilt + s.noise.Rand()
	}
	return r
}

// Close stops the sample ticker.
func (s *Simulator) Close() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}
