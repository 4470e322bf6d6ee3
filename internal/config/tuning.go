package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cansat-data/terrain.report/internal/telemetry"
)

// DefaultTuningPath is the path to the canonical tuning defaults file.
const DefaultTuningPath = "config/tuning.defaults.json"

// TuningConfig holds the terrain pipeline tuning parameters. All fields are
// pointers so a partial JSON file only overrides what it mentions; the Get*
// accessors supply defaults for everything else. The hazard/uneven thresholds
// and the IDW power are tuning constants inherited from the flight firmware
// with no documented derivation, so they are configuration, not invariants.
type TuningConfig struct {
	// Sensor geometry
	SensorCount *int      `json:"sensor_count,omitempty"`
	SensorX     []float64 `json:"sensor_x,omitempty"`
	SensorY     []float64 `json:"sensor_y,omitempty"`

	// Valid sensing range (distance units, cm for the ultrasonic array)
	MinValidDistance *float64 `json:"min_valid_distance,omitempty"`
	MaxValidDistance *float64 `json:"max_valid_distance,omitempty"`

	// Classification thresholds on spread = max - min
	HazardThreshold *float64 `json:"hazard_threshold,omitempty"`
	UnevenThreshold *float64 `json:"uneven_threshold,omitempty"`

	// Surface reconstruction params
	GridSize           *int     `json:"grid_size,omitempty"`
	DomainExtent       *float64 `json:"domain_extent,omitempty"`
	IDWPower           *float64 `json:"idw_power,omitempty"`
	CoincidenceEpsilon *float64 `json:"coincidence_epsilon,omitempty"`

	// Cadence params (duration strings like "500ms")
	RenderInterval *string `json:"render_interval,omitempty"`
	SimInterval    *string `json:"sim_interval,omitempty"`
	SourceBackoff  *string `json:"source_backoff,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted from
// the file retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for the faults that make the pipeline
// unable to produce meaningful output. These are the only fatal errors in
// the system; everything downstream recovers locally.
func (c *TuningConfig) Validate() error {
	// The distance record is a fixed-size array, so a count that disagrees
	// with it can never produce a frame; it must abort here, not surface as
	// a reconstruction error on every tick.
	n := c.GetSensorCount()
	if n != telemetry.NumSensors {
		return fmt.Errorf("sensor_count must be %d to match the sensor array, got %d", telemetry.NumSensors, n)
	}
	if c.SensorX != nil && len(c.SensorX) != n {
		return fmt.Errorf("sensor_x has %d entries, want %d", len(c.SensorX), n)
	}
	if c.SensorY != nil && len(c.SensorY) != n {
		return fmt.Errorf("sensor_y has %d entries, want %d", len(c.SensorY), n)
	}

	if c.GridSize != nil && *c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", *c.GridSize)
	}

	if c.GetMinValidDistance() >= c.GetMaxValidDistance() {
		return fmt.Errorf("min_valid_distance %.1f must be below max_valid_distance %.1f",
			c.GetMinValidDistance(), c.GetMaxValidDistance())
	}

	if c.GetUnevenThreshold() > c.GetHazardThreshold() {
		return fmt.Errorf("uneven_threshold %.1f must not exceed hazard_threshold %.1f",
			c.GetUnevenThreshold(), c.GetHazardThreshold())
	}

	if c.IDWPower != nil && *c.IDWPower <= 0 {
		return fmt.Errorf("idw_power must be positive, got %f", *c.IDWPower)
	}

	for _, d := range []struct {
		name  string
		value *string
	}{
		{"render_interval", c.RenderInterval},
		{"sim_interval", c.SimInterval},
		{"source_backoff", c.SourceBackoff},
	} {
		if d.value != nil && *d.value != "" {
			if _, err := time.ParseDuration(*d.value); err != nil {
				return fmt.Errorf("invalid %s %q: %w", d.name, *d.value, err)
			}
		}
	}

	return nil
}

// GetSensorCount returns the sensor count or the default of five.
func (c *TuningConfig) GetSensorCount() int {
	if c.SensorCount == nil {
		return 5
	}
	return *c.SensorCount
}

// GetSensorX returns the sensor X coordinates. The default layout puts the
// centre sensor at the origin and the four corner sensors at (±1, ±1).
func (c *TuningConfig) GetSensorX() []float64 {
	if c.SensorX == nil {
		return []float64{0.0, -1.0, 1.0, -1.0, 1.0}
	}
	return c.SensorX
}

// GetSensorY returns the sensor Y coordinates.
func (c *TuningConfig) GetSensorY() []float64 {
	if c.SensorY == nil {
		return []float64{0.0, 1.0, 1.0, -1.0, -1.0}
	}
	return c.SensorY
}

// GetMinValidDistance returns the lower clamp bound or the default.
func (c *TuningConfig) GetMinValidDistance() float64 {
	if c.MinValidDistance == nil {
		return 2.0
	}
	return *c.MinValidDistance
}

// GetMaxValidDistance returns the upper clamp bound or the default.
func (c *TuningConfig) GetMaxValidDistance() float64 {
	if c.MaxValidDistance == nil {
		return 400.0
	}
	return *c.MaxValidDistance
}

// GetHazardThreshold returns the hazard spread threshold or the default.
func (c *TuningConfig) GetHazardThreshold() float64 {
	if c.HazardThreshold == nil {
		return 50.0
	}
	return *c.HazardThreshold
}

// GetUnevenThreshold returns the uneven spread threshold or the default.
func (c *TuningConfig) GetUnevenThreshold() float64 {
	if c.UnevenThreshold == nil {
		return 20.0
	}
	return *c.UnevenThreshold
}

// GetGridSize returns the interpolation grid resolution or the default.
func (c *TuningConfig) GetGridSize() int {
	if c.GridSize == nil {
		return 25
	}
	return *c.GridSize
}

// GetDomainExtent returns the half-width of the square interpolation domain.
// The default of 1.5 leaves a margin around corner sensors at ±1.
func (c *TuningConfig) GetDomainExtent() float64 {
	if c.DomainExtent == nil {
		return 1.5
	}
	return *c.DomainExtent
}

// GetIDWPower returns the inverse-distance weighting exponent or the default.
func (c *TuningConfig) GetIDWPower() float64 {
	if c.IDWPower == nil {
		return 2.5
	}
	return *c.IDWPower
}

// GetCoincidenceEpsilon returns the distance below which a grid cell is
// treated as coincident with a sensor.
func (c *TuningConfig) GetCoincidenceEpsilon() float64 {
	if c.CoincidenceEpsilon == nil {
		return 0.01
	}
	return *c.CoincidenceEpsilon
}

// GetRenderInterval parses and returns the snapshot consumer cadence.
func (c *TuningConfig) GetRenderInterval() time.Duration {
	return c.duration(c.RenderInterval, 500*time.Millisecond)
}

// GetSimInterval parses and returns the simulated source sample interval.
func (c *TuningConfig) GetSimInterval() time.Duration {
	return c.duration(c.SimInterval, 800*time.Millisecond)
}

// GetSourceBackoff parses and returns the retry delay after a source fault.
func (c *TuningConfig) GetSourceBackoff() time.Duration {
	return c.duration(c.SourceBackoff, time.Second)
}

func (c *TuningConfig) duration(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return def
	}
	return d
}
