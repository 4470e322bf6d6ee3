package telemetry

// Thresholds holds the spread thresholds used for terrain classification.
// The defaults (50/20 distance units) are firmware tuning constants carried
// as configuration, not invariants.
type Thresholds struct {
	Hazard float64
	Uneven float64
}

// DefaultThresholds returns the firmware's classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Hazard: 50, Uneven: 20}
}

// Classify derives the terrain status for one reading cycle. The no-ground
// check takes priority over the spread rules: a cycle where every sensor
// reported the sentinel is NO_GROUND regardless of spread.
func Classify(d Distances, spread float64, t Thresholds) Status {
	if d.AllNoReading() {
		return StatusNoGround
	}
	switch {
	case spread > t.Hazard:
		return StatusHazard
	case spread > t.Uneven:
		return StatusUneven
	default:
		return StatusFlatSafe
	}
}
