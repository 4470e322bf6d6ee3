package telemetry

import "testing"

func TestSummaryStats(t *testing.T) {
	tests := []struct {
		name             string
		d                Distances
		min, max, spread float64
	}{
		{"uniform", Distances{50, 50, 50, 50, 50}, 50, 50, 0},
		{"mixed", Distances{50, 38, 58, 42, 65}, 38, 65, 27},
		{"wide", Distances{50, 10, 90, 5, 95}, 5, 95, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, spread := SummaryStats(tt.d)
			if min != tt.min || max != tt.max || spread != tt.spread {
				t.Errorf("SummaryStats(%v) = (%.0f, %.0f, %.0f), want (%.0f, %.0f, %.0f)",
					tt.d, min, max, spread, tt.min, tt.max, tt.spread)
			}
		})
	}
}

func TestStatusStringRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusInit, StatusFlatSafe, StatusUneven, StatusHazard, StatusNoGround} {
		if got := ParseStatus(s.String()); got != s {
			t.Errorf("ParseStatus(%q) = %v, want %v", s.String(), got, s)
		}
	}
}

func TestParseStatusAliases(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"FLAT_SAFE", StatusFlatSafe},
		{"HAZARD", StatusHazard},
		{"garbage", StatusInit},
		{"", StatusInit},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAllNoReading(t *testing.T) {
	all := Distances{NoReading, NoReading, NoReading, NoReading, NoReading}
	if !all.AllNoReading() {
		t.Error("expected all-sentinel cycle to report AllNoReading")
	}

	partial := all
	partial[2] = 42
	if partial.AllNoReading() {
		t.Error("one live sensor must not report AllNoReading")
	}
}
