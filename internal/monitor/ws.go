package monitor

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/cansat-data/terrain.report/internal/monitoring"
	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Hub tracks connected websocket clients and broadcasts frames to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// HandleWS upgrades the connection and registers the client. The read loop
// only exists to detect disconnects; clients never send anything we use.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func(c *websocket.Conn) {
		defer h.drop(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}(conn)
}

// Broadcast sends the payload to every connected client, dropping clients
// whose writes fail.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}

// BroadcastRenderer pushes each rendered frame to websocket dashboard
// clients. It implements telemetry.Renderer.
type BroadcastRenderer struct {
	hub *Hub
}

// NewBroadcastRenderer creates a renderer feeding the given hub.
func NewBroadcastRenderer(hub *Hub) *BroadcastRenderer {
	return &BroadcastRenderer{hub: hub}
}

// Render implements telemetry.Renderer.
func (b *BroadcastRenderer) Render(f telemetry.Frame) error {
	if b.hub.ClientCount() == 0 {
		return nil
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	b.hub.Broadcast(payload)
	return nil
}
