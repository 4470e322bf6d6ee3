package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StationConfig is the root structure loaded from config/station.yml. It
// describes how this ground station instance is wired: where readings come
// from, where the monitor listens, and where rendered output goes. Tuning
// parameters live separately in the tuning JSON so the same station file
// works across calibration runs.
type StationConfig struct {
	Listen     string       `yaml:"listen"`      // monitor listen address (e.g. ":8080")
	Mode       string       `yaml:"mode"`        // "serial" or "sim"
	Serial     SerialConfig `yaml:"serial"`      // live source settings
	RenderDir  string       `yaml:"render_dir"`  // heatmap output directory ("" disables)
	TuningPath string       `yaml:"tuning_path"` // tuning JSON path ("" uses defaults)
}

// SerialConfig defines the serial connection to the sensor microcontroller.
type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

// DefaultStationConfig returns the configuration used when no station file
// is supplied: simulated source, monitor on :8080, no heatmap output.
func DefaultStationConfig() *StationConfig {
	return &StationConfig{
		Listen: ":8080",
		Mode:   "sim",
	}
}

// LoadStationConfig reads and validates a station YAML file.
func LoadStationConfig(path string) (*StationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read station config: %w", err)
	}

	cfg := DefaultStationConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse station config: %w", err)
	}

	switch cfg.Mode {
	case "serial":
		if cfg.Serial.Device == "" {
			return nil, fmt.Errorf("mode is %q but serial.device is empty", cfg.Mode)
		}
	case "sim":
	default:
		return nil, fmt.Errorf("unknown mode %q: expected serial or sim", cfg.Mode)
	}

	return cfg, nil
}
