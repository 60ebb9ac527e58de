package events

import (
	"encoding/json"
	"sync"

	"teacher-gallery-backend/internal/directory"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub manages WebSocket connections and broadcasts directory change events
// to every connected client. It satisfies directory.Notifier.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewHub creates a new event hub
func NewHub() *Hub {
	return &Hub{connections: make(map[string]*websocket.Conn)}
}

// Register registers a new WebSocket connection under a connection id
func (h *Hub) Register(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.connections[connID]; exists {
		existing.Close()
	}
	h.connections[connID] = conn

	log.Info().Str("conn_id", connID).Msg("Event feed connection registered")
}

// Unregister removes a WebSocket connection
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
		log.Info().Str("conn_id", connID).Msg("Event feed connection unregistered")
	}
}

// Notify broadcasts a directory change event to all connected clients.
// Connections that fail to take the write are dropped.
func (h *Hub) Notify(event directory.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for connID, conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Str("conn_id", connID).Msg("Dropping dead event feed connection")
			conn.Close()
			delete(h.connections, connID)
		}
	}
}

// Count reports the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
