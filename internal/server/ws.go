package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/avashisht/fretcoach/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotHandler broadcasts per-frame pipeline snapshots via WebSocket.
// It is pushed to by the pipeline observer rather than polling the camera,
// so every connected client sees exactly what the coaching loop saw.
type SnapshotHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewSnapshotHandler creates a SnapshotHandler with no connected clients.
func NewSnapshotHandler() *SnapshotHandler {
	return &SnapshotHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish sends one snapshot to all connected clients. It matches the
// pipeline.Observer signature and drops the frame when nobody is listening.
func (h *SnapshotHandler) Publish(snap *pipeline.FrameSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(snap)
	if err != nil {
		log.Printf("failed to encode snapshot: %v", err)
		return
	}

	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *SnapshotHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
