package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleChart renders a quick heatmap (HTML) of the current surface using
// go-echarts. This is a debugging-only endpoint to eyeball the grid without
// the dashboard; the PNG renderer is the real output path.
func (ws *WebServer) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snap := ws.state.Snapshot()
	if snap.Status == telemetry.StatusNoGround {
		ws.writeJSONError(w, http.StatusNotFound, "no ground under constellation, no surface to draw")
		return
	}

	surface, err := ws.recon.Reconstruct(snap.Distances[:])
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("reconstruct: %v", err))
		return
	}

	xLabels := make([]string, len(surface.XAxis))
	for i, v := range surface.XAxis {
		xLabels[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	yLabels := make([]string, len(surface.YAxis))
	for i, v := range surface.YAxis {
		yLabels[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}

	data := make([]opts.HeatMapData, 0, len(surface.Z)*len(surface.Z[0]))
	for yi, row := range surface.Z {
		for xi, z := range row {
			data = append(data, opts.HeatMapData{Value: []interface{}{xi, yi, z}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Terrain Surface", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Terrain Surface Heatmap",
			Subtitle: fmt.Sprintf("scan=%d status=%s spread=%.0f", snap.SampleCount, snap.Status, snap.Spread),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(snap.MinDistance),
			Max:        float32(snap.MaxDistance),
			InRange:    &opts.VisualMapInRange{Color: []string{"#00d474", "#a3d977", "#ffd166", "#ffa500", "#ff4500", "#ff0000"}},
		}),
	)

	hm.SetXAxis(xLabels).AddSeries("height", data)

	var buf bytes.Buffer
	if err := hm.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
