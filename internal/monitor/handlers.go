package monitor

import (
	"net/http"

	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/cansat-data/terrain.report/internal/terrain"
)

// handleSnapshot returns the latest telemetry snapshot as JSON.
func (ws *WebServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ws.writeJSON(w, ws.state.Snapshot())
}

// surfaceResponse is the payload of /api/terrain/surface: the snapshot plus
// the interpolated grid derived from it. Surface is null for NO_GROUND.
type surfaceResponse struct {
	Snapshot telemetry.Snapshot `json:"snapshot"`
	Surface  *terrain.Surface   `json:"surface"`
	SensorX  []float64          `json:"sensor_x"`
	SensorY  []float64          `json:"sensor_y"`
}

// handleSurface reconstructs the surface from the current snapshot and
// returns grid plus axes. Reconstruction runs on the request goroutine over
// copied data, so it never contends with the pipeline.
func (ws *WebServer) handleSurface(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snap := ws.state.Snapshot()
	resp := surfaceResponse{Snapshot: snap}

	positions := ws.recon.Positions()
	resp.SensorX = make([]float64, len(positions))
	resp.SensorY = make([]float64, len(positions))
	for i, p := range positions {
		resp.SensorX[i] = p.X
		resp.SensorY[i] = p.Y
	}

	if snap.Status != telemetry.StatusNoGround {
		surface, err := ws.recon.Reconstruct(snap.Distances[:])
		if err != nil {
			ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Surface = surface
	}

	ws.writeJSON(w, resp)
}
