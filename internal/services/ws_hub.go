package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"memory-map-backend/internal/carousel"
	"memory-map-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	MsgMarkerActivated  = "marker_activated"
	MsgCarouselNext     = "carousel_next"
	MsgCarouselPrevious = "carousel_previous"
	MsgCarouselClose    = "carousel_close"
	MsgLocationUpdate   = "location_update"

	MsgCarouselState  = "carousel_state"
	MsgCarouselClosed = "carousel_closed"
	MsgNearby         = "nearby"
	MsgMemoryAdded    = "memory_added"
	MsgError          = "error"
)

// WSMessage represents a WebSocket message in either direction
type WSMessage struct {
	Type      string          `json:"type"`
	MemoryIDs []int64         `json:"memory_ids,omitempty"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`
	Memory    *models.Memory  `json:"memory,omitempty"`
	Carousel  *carousel.State `json:"carousel,omitempty"`
	Nearby    []NearbyMemory  `json:"nearby,omitempty"`
	Count     *int            `json:"count,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// WSClient is one registered connection. Writes are serialized so the hub's
// broadcasts and the connection's own replies never interleave.
type WSClient struct {
	hub     *WSHub
	userID  string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Send writes message to this connection only. A failed write unregisters it.
func (c *WSClient) Send(message WSMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.hub.Unregister(c.userID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*WSClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*WSClient),
	}
}

// Register registers a new WebSocket connection for a user, replacing any older one
func (h *WSHub) Register(userID string, conn *websocket.Conn) *WSClient {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}
	c := &WSClient{hub: h, userID: userID, conn: conn}
	h.connections[userID] = c

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
	return c
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.connections[userID]; exists && c.conn == conn {
		c.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to the user's current connection
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}
	return c.Send(message)
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// MemoryAdded pushes the new memory to every online recipient
func (h *WSHub) MemoryAdded(_ context.Context, memory models.Memory, recipientIDs []string) {
	for _, userID := range recipientIDs {
		if !h.IsOnline(userID) {
			continue
		}
		m := memory
		m.OwnedByViewer = userID == memory.OwnerID
		if err := h.SendToUser(userID, WSMessage{Type: MsgMemoryAdded, Memory: &m}); err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Int64("memory_id", memory.ID).
				Msg("Failed to notify memory added")
		}
	}
}
