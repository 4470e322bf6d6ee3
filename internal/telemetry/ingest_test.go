package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cansat-data/terrain.report/internal/timeutil"
)

// scriptedSource replays a fixed sequence of results, then blocks until the
// context is cancelled.
type scriptedSource struct {
	readings []Reading
	errs     []error
	i        int
}

func (s *scriptedSource) Next(ctx context.Context) (Reading, error) {
	if s.i < len(s.errs) && s.errs[s.i] != nil {
		err := s.errs[s.i]
		s.i++
		return Reading{}, err
	}
	if s.i < len(s.readings) {
		r := s.readings[s.i]
		s.i++
		return r, nil
	}
	<-ctx.Done()
	return Reading{}, ctx.Err()
}

func newTestIngestor(state *State, clock timeutil.Clock) *Ingestor {
	return NewIngestor(IngestorConfig{
		State: state,
		Clock: clock,
	})
}

func TestIngestClampsOutOfRange(t *testing.T) {
	state := NewState()
	ing := newTestIngestor(state, timeutil.NewMockClock(time.Unix(0, 0)))

	ing.Ingest(Reading{Distances: Distances{1, 500, 50, 0.5, 401}})

	snap := state.Snapshot()
	want := Distances{2, 400, 50, 2, 400}
	if snap.Distances != want {
		t.Errorf("clamped distances = %v, want %v", snap.Distances, want)
	}
	if snap.MinDistance != 2 || snap.MaxDistance != 400 {
		t.Errorf("stats = (%.1f, %.1f), want (2, 400)", snap.MinDistance, snap.MaxDistance)
	}
}

func TestIngestClassifies(t *testing.T) {
	tests := []struct {
		name string
		d    Distances
		want Status
	}{
		{"flat ground", Distances{50, 52, 49, 51, 50}, StatusFlatSafe},
		{"uneven ground", Distances{50, 38, 58, 42, 65}, StatusUneven},
		{"hazardous ground", Distances{50, 10, 90, 5, 95}, StatusHazard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewState()
			ing := newTestIngestor(state, timeutil.NewMockClock(time.Unix(0, 0)))
			ing.Ingest(Reading{Distances: tt.d})
			if got := state.Snapshot().Status; got != tt.want {
				t.Errorf("status for %v = %s, want %s", tt.d, got, tt.want)
			}
		})
	}
}

func TestIngestAllSentinelsIsNoGround(t *testing.T) {
	state := NewState()
	ing := newTestIngestor(state, timeutil.NewMockClock(time.Unix(0, 0)))

	ing.Ingest(Reading{Distances: Distances{NoReading, NoReading, NoReading, NoReading, NoReading}})

	snap := state.Snapshot()
	if snap.Status != StatusNoGround {
		t.Fatalf("status = %s, want NO_GROUND", snap.Status)
	}
	if snap.SampleCount != 1 {
		t.Errorf("sample count = %d, want 1: lost cycles must still count", snap.SampleCount)
	}
}

func TestIngestIsolatedSentinelCarriesLastValue(t *testing.T) {
	state := NewState()
	ing := newTestIngestor(state, timeutil.NewMockClock(time.Unix(0, 0)))

	ing.Ingest(Reading{Distances: Distances{50, 60, 70, 80, 90}})
	ing.Ingest(Reading{Distances: Distances{50, NoReading, 70, 80, 90}})

	snap := state.Snapshot()
	if snap.Distances[1] != 60 {
		t.Errorf("dropout sensor = %.0f, want previous value 60", snap.Distances[1])
	}
}

func TestIngestSentinelBeforeFirstSampleUsesDefault(t *testing.T) {
	state := NewState()
	ing := newTestIngestor(state, timeutil.NewMockClock(time.Unix(0, 0)))

	ing.Ingest(Reading{Distances: Distances{50, NoReading, 70, 80, 90}})

	if got := state.Snapshot().Distances[1]; got != DefaultDistance {
		t.Errorf("dropout sensor with no history = %.0f, want %.0f", got, DefaultDistance)
	}
}

func TestIngestIgnoresWireStatus(t *testing.T) {
	state := NewState()
	ing := newTestIngestor(state, timeutil.NewMockClock(time.Unix(0, 0)))

	// The firmware claims HAZARD! but the actual spread is 2.
	ing.Ingest(Reading{
		Distances: Distances{50, 51, 50, 52, 50},
		Status:    StatusHazard,
		HasStatus: true,
	})

	if got := state.Snapshot().Status; got != StatusFlatSafe {
		t.Errorf("status = %s, want locally classified FLAT-SAFE", got)
	}
}

func TestRunRetriesSourceErrors(t *testing.T) {
	state := NewState()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	src := &scriptedSource{
		errs:     []error{errors.New("port unplugged"), errors.New("still unplugged")},
		readings: []Reading{{}, {}, {Distances: Distances{50, 50, 50, 50, 50}}},
	}
	ing := NewIngestor(IngestorConfig{
		Source:  src,
		State:   state,
		Backoff: 250 * time.Millisecond,
		Clock:   clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ing.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for state.Snapshot().SampleCount < 1 {
		select {
		case <-deadline:
			t.Fatal("ingestor never recovered from source errors")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 2 {
		t.Fatalf("recorded %d backoff sleeps, want 2", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 250*time.Millisecond {
			t.Errorf("backoff sleep = %s, want 250ms", d)
		}
	}
}
