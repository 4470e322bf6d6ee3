package telemetry

import (
	"sync"
	"time"
)

// DefaultDistance seeds the state at startup so the dashboard has a surface
// to draw before the first sample arrives.
const DefaultDistance = 50.0

// State is the shared telemetry holder between the ingestion loop and the
// snapshot consumer. Publish and Snapshot are safe to call concurrently;
// a reader never observes a partially updated set of fields. The critical
// section only copies a small fixed-size record, so publishing can never
// stall behind slow downstream rendering.
type State struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewState creates a State seeded with centre values and StatusInit.
func NewState() *State {
	var d Distances
	for i := range d {
		d[i] = DefaultDistance
	}
	return &State{
		snap: Snapshot{
			Distances:   d,
			MinDistance: DefaultDistance,
			MaxDistance: DefaultDistance,
			Spread:      0,
			Status:      StatusInit,
			SampleCount: 0,
			Timestamp:   time.Now(),
		},
	}
}

// Publish atomically replaces the held snapshot and increments the sample
// counter. Called only by the ingestion loop.
func (s *State) Publish(d Distances, min, max, spread float64, status Status, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{
		Distances:   d,
		MinDistance: min,
		MaxDistance: max,
		Spread:      spread,
		Status:      status,
		SampleCount: s.snap.SampleCount + 1,
		Timestamp:   ts,
	}
}

// Snapshot returns an independent copy of the current state. Mutating the
// returned value never affects the internal state; Distances is a value
// array so the copy is deep.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
