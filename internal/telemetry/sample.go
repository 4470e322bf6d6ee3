// Package telemetry implements the sensor-to-surface pipeline core: the
// shared telemetry state, the ingestion loop that classifies incoming
// samples, and the snapshot consumer that drives surface reconstruction.
package telemetry

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// NumSensors is the size of the sensor constellation: one centre sensor
// plus four corner sensors.
const NumSensors = 5

// NoReading is the sentinel distance for a sensor that produced no usable
// reading this cycle. It sits below the minimum valid distance so it can
// never be confused with a real measurement.
const NoReading = -1.0

// Distances is one reading cycle: exactly one distance per sensor index.
// The fixed-size array guarantees consumers never index out of range and
// makes copies deep by value semantics.
type Distances [NumSensors]float64

// AllNoReading reports whether every sensor produced the sentinel.
func (d Distances) AllNoReading() bool {
	for _, v := range d {
		if v != NoReading {
			return false
		}
	}
	return true
}

// Status classifies the terrain under the sensor constellation.
type Status int

const (
	// StatusInit is the startup status before the first sample arrives.
	StatusInit Status = iota
	// StatusFlatSafe indicates spread within the uneven threshold.
	StatusFlatSafe
	// StatusUneven indicates spread above the uneven threshold.
	StatusUneven
	// StatusHazard indicates spread above the hazard threshold.
	StatusHazard
	// StatusNoGround indicates every sensor reported no reading.
	StatusNoGround
)

// String returns the wire spelling of the status, matching the firmware's
// vocabulary so logs and the dashboard agree with the sensor output.
func (s Status) String() string {
	switch s {
	case StatusFlatSafe:
		return "FLAT-SAFE"
	case StatusUneven:
		return "UNEVEN"
	case StatusHazard:
		return "HAZARD!"
	case StatusNoGround:
		return "NO_GROUND"
	default:
		return "INIT"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON responses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus maps a wire status token back to a Status. Unknown tokens map
// to StatusInit, mirroring how the viewer treats unrecognised payloads.
func ParseStatus(s string) Status {
	switch s {
	case "FLAT-SAFE", "FLAT_SAFE":
		return StatusFlatSafe
	case "UNEVEN":
		return StatusUneven
	case "HAZARD!", "HAZARD":
		return StatusHazard
	case "NO_GROUND":
		return StatusNoGround
	default:
		return StatusInit
	}
}

// Snapshot is an immutable copy of the shared telemetry state: the latest
// sample plus its derived summary statistics. Consumers only ever hold
// copies, so interpolation always operates on a set consistent at a single
// instant.
type Snapshot struct {
	Distances   Distances `json:"distances"`
	MinDistance float64   `json:"min_distance"`
	MaxDistance float64   `json:"max_distance"`
	Spread      float64   `json:"spread"`
	Status      Status    `json:"status"`
	SampleCount uint64    `json:"sample_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// SummaryStats computes min, max and spread over one reading cycle.
func SummaryStats(d Distances) (min, max, spread float64) {
	min = floats.Min(d[:])
	max = floats.Max(d[:])
	return min, max, max - min
}
