package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuning(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTuningDefaults(t *testing.T) {
	c := EmptyTuningConfig()

	assert.Equal(t, 5, c.GetSensorCount())
	assert.Equal(t, []float64{0.0, -1.0, 1.0, -1.0, 1.0}, c.GetSensorX())
	assert.Equal(t, []float64{0.0, 1.0, 1.0, -1.0, -1.0}, c.GetSensorY())
	assert.Equal(t, 2.0, c.GetMinValidDistance())
	assert.Equal(t, 400.0, c.GetMaxValidDistance())
	assert.Equal(t, 50.0, c.GetHazardThreshold())
	assert.Equal(t, 20.0, c.GetUnevenThreshold())
	assert.Equal(t, 25, c.GetGridSize())
	assert.Equal(t, 1.5, c.GetDomainExtent())
	assert.Equal(t, 2.5, c.GetIDWPower())
	assert.Equal(t, 0.01, c.GetCoincidenceEpsilon())
	assert.Equal(t, 500*time.Millisecond, c.GetRenderInterval())
	assert.Equal(t, 800*time.Millisecond, c.GetSimInterval())
	assert.Equal(t, time.Second, c.GetSourceBackoff())
}

func TestTuningValidate(t *testing.T) {
	intp := func(v int) *int { return &v }
	floatp := func(v float64) *float64 { return &v }
	strp := func(v string) *string { return &v }

	tests := []struct {
		name string
		cfg  TuningConfig
	}{
		{"zero sensors", TuningConfig{SensorCount: intp(0)}},
		{
			// A four-sensor config with internally consistent coordinates
			// still cannot feed the five-wide distance array; it has to die
			// at startup rather than fail every reconstruction.
			"sensor count disagrees with the distance array",
			TuningConfig{
				SensorCount: intp(4),
				SensorX:     []float64{-1, 1, -1, 1},
				SensorY:     []float64{1, 1, -1, -1},
			},
		},
		{"coordinate length mismatch", TuningConfig{SensorX: []float64{0, 1}}},
		{"negative grid", TuningConfig{GridSize: intp(-1)}},
		{"inverted distance range", TuningConfig{MinValidDistance: floatp(400), MaxValidDistance: floatp(2)}},
		{"uneven above hazard", TuningConfig{UnevenThreshold: floatp(60)}},
		{"negative power", TuningConfig{IDWPower: floatp(-2.5)}},
		{"unparseable interval", TuningConfig{RenderInterval: strp("half a second")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}

	assert.NoError(t, EmptyTuningConfig().Validate(), "empty config must validate via defaults")
}

func TestLoadTuningConfigPartialOverride(t *testing.T) {
	path := writeTuning(t, "tuning.json", `{"hazard_threshold": 35, "render_interval": "250ms"}`)

	c, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 35.0, c.GetHazardThreshold())
	assert.Equal(t, 250*time.Millisecond, c.GetRenderInterval())
	// untouched fields keep their defaults
	assert.Equal(t, 20.0, c.GetUnevenThreshold())
	assert.Equal(t, 25, c.GetGridSize())
}

func TestLoadTuningConfigRejectsBadInput(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		path := writeTuning(t, "tuning.yaml", `{}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("corrupt JSON", func(t *testing.T) {
		path := writeTuning(t, "tuning.json", `{"hazard_threshold": `)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeTuning(t, "tuning.json", `{"sensor_count": 0}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
