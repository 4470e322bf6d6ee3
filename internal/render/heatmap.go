package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HeatmapRenderer writes each frame as a PNG heatmap of the reconstructed
// surface. Every run gets its own output directory named by a fresh run ID
// so consecutive missions never overwrite each other.
type HeatmapRenderer struct {
	dir   string
	runID string
}

// NewHeatmapRenderer creates the per-run output directory under baseDir.
func NewHeatmapRenderer(baseDir string) (*HeatmapRenderer, error) {
	runID := uuid.NewString()
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create heatmap output dir: %w", err)
	}
	return &HeatmapRenderer{dir: dir, runID: runID}, nil
}

// RunID returns the run identifier used for the output directory.
func (h *HeatmapRenderer) RunID() string { return h.runID }

// Dir returns the per-run output directory.
func (h *HeatmapRenderer) Dir() string { return h.dir }

// Render implements telemetry.Renderer. Frames without a grid (NO_GROUND)
// are skipped without error.
func (h *HeatmapRenderer) Render(f telemetry.Frame) error {
	if f.Grid == nil {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Terrain Surface, Scan #%d (%s)", f.SampleCount, f.Status)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	hm := plotter.NewHeatMap(frameGrid{f}, terrainPalette(64))
	p.Add(hm)

	// Mark sensor positions on the surface.
	pts := make(plotter.XYs, len(f.SensorX))
	for i := range pts {
		pts[i] = plotter.XY{X: f.SensorX[i], Y: f.SensorY[i]}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("sensor marker plot: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	out := filepath.Join(h.dir, fmt.Sprintf("surface_%06d.png", f.SampleCount))
	if err := p.Save(6*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}

// frameGrid adapts a telemetry frame to plotter.GridXYZ.
type frameGrid struct {
	f telemetry.Frame
}

func (g frameGrid) Dims() (int, int)   { return len(g.f.XAxis), len(g.f.YAxis) }
func (g frameGrid) Z(c, r int) float64 { return g.f.Grid[r][c] }
func (g frameGrid) X(c int) float64    { return g.f.XAxis[c] }
func (g frameGrid) Y(r int) float64    { return g.f.YAxis[r] }

// terrainPalette builds a green-to-red palette: near readings render green
// (safe), far readings red, matching the dashboard's colour language.
func terrainPalette(n int) palette.Palette {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		// hue runs 1/3 (green) down to 0 (red) as height increases
		hue := (1.0 - float64(i)/float64(n-1)) / 3.0
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return sliceColors(colors)
}

type sliceColors []color.Color

func (s sliceColors) Colors() []color.Color { return s }

// hslToRGB converts HSL to RGB (0-255 range).
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
