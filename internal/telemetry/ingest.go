package telemetry

import (
	"context"
	"time"

	"github.com/cansat-data/terrain.report/internal/monitoring"
	"github.com/cansat-data/terrain.report/internal/timeutil"
)

// Reading is one record delivered by a Source: five distances, plus the
// firmware's own classification when the source carries one.
type Reading struct {
	Distances Distances
	// Status is the classification precomputed by the source, if any.
	// The ingestion loop reclassifies locally so a firmware with stale
	// thresholds cannot disagree with the configured ones; the wire value
	// is only surfaced at debug level.
	Status    Status
	HasStatus bool
}

// Source supplies readings to the ingestion loop. Next blocks until a
// well-formed reading is available, the source fails, or the context is
// cancelled. Malformed frames are the source's problem; they never surface
// here. A returned error is always retryable from the loop's point of view.
type Source interface {
	Next(ctx context.Context) (Reading, error)
}

// IngestorConfig configures an Ingestor. Zero values fall back to the
// design defaults.
type IngestorConfig struct {
	Source           Source
	State            *State
	MinValidDistance float64
	MaxValidDistance float64
	Thresholds       Thresholds
	Backoff          time.Duration
	Clock            timeutil.Clock
}

// Ingestor drives the producer side of the pipeline: it pulls readings at
// whatever cadence the source delivers, clamps and classifies them, and
// publishes atomically into shared state. Ingestion is never fatal: source
// faults back off and retry forever.
type Ingestor struct {
	src        Source
	state      *State
	minValid   float64
	maxValid   float64
	thresholds Thresholds
	backoff    time.Duration
	clock      timeutil.Clock

	lastGood Distances
	haveGood bool
}

// NewIngestor creates an Ingestor from the given configuration.
func NewIngestor(cfg IngestorConfig) *Ingestor {
	if cfg.MinValidDistance == 0 && cfg.MaxValidDistance == 0 {
		cfg.MinValidDistance, cfg.MaxValidDistance = 2, 400
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Ingestor{
		src:        cfg.Source,
		state:      cfg.State,
		minValid:   cfg.MinValidDistance,
		maxValid:   cfg.MaxValidDistance,
		thresholds: cfg.Thresholds,
		backoff:    cfg.Backoff,
		clock:      cfg.Clock,
	}
}

// Run pulls readings until the context is cancelled. Source errors are
// logged and retried after a fixed backoff.
func (i *Ingestor) Run(ctx context.Context) error {
	for {
		r, err := i.src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			monitoring.Logf("reading source unavailable, retrying in %s: %v", i.backoff, err)
			i.clock.Sleep(i.backoff)
			continue
		}
		i.Ingest(r)
	}
}

// Ingest processes one reading: sentinel substitution, clamping, summary
// statistics, classification, and an atomic publish. Exported so offline
// tools can push readings without running the loop.
func (i *Ingestor) Ingest(r Reading) {
	if r.HasStatus && r.Status != StatusInit {
		monitoring.Debugf("source-reported status %s", r.Status)
	}

	if r.Distances.AllNoReading() {
		i.state.Publish(r.Distances, NoReading, NoReading, 0, StatusNoGround, i.clock.Now())
		return
	}

	d := r.Distances
	for k, v := range d {
		if v == NoReading {
			// Isolated dropout: carry the previous known value so the
			// surface stays continuous rather than tearing at one corner.
			if i.haveGood {
				d[k] = i.lastGood[k]
			} else {
				d[k] = DefaultDistance
			}
			continue
		}
		d[k] = i.clamp(v)
	}

	min, max, spread := SummaryStats(d)
	status := Classify(d, spread, i.thresholds)

	i.state.Publish(d, min, max, spread, status, i.clock.Now())
	i.lastGood = d
	i.haveGood = true
}

// clamp folds out-of-range wire values onto the nearest boundary. They are
// treated as sensor fault, not discarded.
func (i *Ingestor) clamp(v float64) float64 {
	if v < i.minValid {
		return i.minValid
	}
	if v > i.maxValid {
		return i.maxValid
	}
	return v
}
