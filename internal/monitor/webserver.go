// Package monitor serves the ground-station HTTP interface: health and
// status pages, JSON telemetry endpoints, a debug chart, and the websocket
// frame feed. The server only ever reads snapshots; it has no way to
// mutate pipeline state.
package monitor

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/cansat-data/terrain.report/internal/terrain"
	"github.com/cansat-data/terrain.report/internal/version"
	"github.com/google/uuid"
)

//go:embed status.html
var statusFS embed.FS

var statusTemplate = template.Must(template.ParseFS(statusFS, "status.html"))

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address       string
	State         *telemetry.State
	Reconstructor *terrain.Reconstructor
	StartTime     time.Time
}

// WebServer handles the HTTP interface for monitoring the terrain pipeline.
type WebServer struct {
	address   string
	state     *telemetry.State
	recon     *terrain.Reconstructor
	hub       *Hub
	runID     string
	startTime time.Time
	server    *http.Server
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	if config.StartTime.IsZero() {
		config.StartTime = time.Now()
	}
	ws := &WebServer{
		address:   config.Address,
		state:     config.State,
		recon:     config.Reconstructor,
		hub:       NewHub(),
		runID:     uuid.NewString(),
		startTime: config.StartTime,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Hub returns the websocket hub, used to build the broadcast renderer.
func (ws *WebServer) Hub() *Hub { return ws.hub }

// RunID returns the identifier assigned to this station run.
func (ws *WebServer) RunID() string { return ws.runID }

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/terrain/snapshot", ws.handleSnapshot)
	mux.HandleFunc("/api/terrain/surface", ws.handleSurface)
	mux.HandleFunc("/api/terrain/chart", ws.handleChart)
	mux.HandleFunc("/ws", ws.hub.HandleWS)

	return mux
}

// Start begins the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully with a bounded timeout.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleHealth reports liveness plus build and run identity.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := ws.state.Snapshot()
	ws.writeJSON(w, map[string]interface{}{
		"status":       "ok",
		"run_id":       ws.runID,
		"version":      version.Version,
		"git_sha":      version.GitSHA,
		"uptime":       time.Since(ws.startTime).Round(time.Second).String(),
		"sample_count": snap.SampleCount,
	})
}

// handleStatus renders the embedded dashboard page.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := map[string]interface{}{
		"RunID":   ws.runID,
		"Version": version.Version,
	}
	if err := statusTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
