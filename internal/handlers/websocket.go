package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"memory-map-backend/internal/carousel"
	"memory-map-backend/internal/geo"
	"memory-map-backend/internal/middleware"
	"memory-map-backend/internal/models"
	"memory-map-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the map client is served from another origin
	},
}

var errNoCarousel = errors.New("no carousel is open")

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub           *services.WSHub
	validator     middleware.TokenValidator
	memoryService *services.MemoryService
	nearbyRadius  float64
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	validator middleware.TokenValidator,
	memoryService *services.MemoryService,
	nearbyRadius float64,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		validator:     validator,
		memoryService: memoryService,
		nearbyRadius:  nearbyRadius,
	}
}

// session is one connection's view: at most one open carousel
type session struct {
	userID   string
	carousel *carousel.Carousel
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.validator.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	ctx := r.Context()
	s := &session{userID: userID}
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			sendError(client, "Invalid message format")
			continue
		}

		reply, err := h.handleMessage(ctx, s, msg)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			sendError(client, err.Error())
			continue
		}
		if err := client.Send(reply); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send WebSocket reply")
			return
		}
	}
}

// handleMessage applies one client message to the session and returns the reply
func (h *WebSocketHandler) handleMessage(ctx context.Context, s *session, msg services.WSMessage) (services.WSMessage, error) {
	switch msg.Type {
	case services.MsgMarkerActivated:
		return h.openCarousel(ctx, s, msg.MemoryIDs)
	case services.MsgCarouselNext, services.MsgCarouselPrevious:
		if s.carousel == nil {
			return services.WSMessage{}, errNoCarousel
		}
		if msg.Type == services.MsgCarouselNext {
			s.carousel.Next()
		} else {
			s.carousel.Previous()
		}
		return carouselMessage(s.carousel), nil
	case services.MsgCarouselClose:
		if s.carousel == nil {
			return services.WSMessage{}, errNoCarousel
		}
		s.carousel.Close()
		state := s.carousel.State()
		s.carousel = nil
		return services.WSMessage{Type: services.MsgCarouselClosed, Carousel: &state}, nil
	case services.MsgLocationUpdate:
		return h.nearby(ctx, s, msg)
	default:
		return services.WSMessage{}, errors.New("unknown message type")
	}
}

// openCarousel replaces any open carousel with one over the activated marker's memories
func (h *WebSocketHandler) openCarousel(ctx context.Context, s *session, ids []int64) (services.WSMessage, error) {
	state, err := h.memoryService.ViewState(ctx, s.userID, models.FilterAll)
	if err != nil {
		return services.WSMessage{}, err
	}
	members, err := h.memoryService.Members(ctx, state, ids)
	if err != nil {
		return services.WSMessage{}, err
	}
	c, err := carousel.New(members)
	if err != nil {
		return services.WSMessage{}, err
	}
	s.carousel = c

	log.Debug().
		Str("user_id", s.userID).
		Int("size", c.Size()).
		Msg("Carousel opened")

	return carouselMessage(c), nil
}

func (h *WebSocketHandler) nearby(ctx context.Context, s *session, msg services.WSMessage) (services.WSMessage, error) {
	if msg.Latitude == nil || msg.Longitude == nil {
		return services.WSMessage{}, errors.New("latitude and longitude are required")
	}
	state, err := h.memoryService.ViewState(ctx, s.userID, models.FilterAll)
	if err != nil {
		return services.WSMessage{}, err
	}
	nearby, err := h.memoryService.Nearby(ctx, state, geo.Point{Lat: *msg.Latitude, Lng: *msg.Longitude}, h.nearbyRadius)
	if err != nil {
		return services.WSMessage{}, err
	}
	count := len(nearby)
	return services.WSMessage{Type: services.MsgNearby, Nearby: nearby, Count: &count}, nil
}

func carouselMessage(c *carousel.Carousel) services.WSMessage {
	state := c.State()
	return services.WSMessage{Type: services.MsgCarouselState, Carousel: &state}
}

// sendError sends an error message on the connection that caused it
func sendError(client *services.WSClient, message string) {
	msg := services.WSMessage{
		Type:    services.MsgError,
		Message: message,
	}
	if err := client.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send WebSocket error")
	}
}
