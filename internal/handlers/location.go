package handlers

import (
	"context"
	"net/http"
	"time"

	"memory-map-backend/internal/middleware"
	"memory-map-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const locateTimeout = 10 * time.Second

// LocationHandler reports the configured geolocation provider's position
type LocationHandler struct {
	provider services.GeolocationProvider
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(provider services.GeolocationProvider) *LocationHandler {
	return &LocationHandler{provider: provider}
}

// GetLocation handles GET /api/v1/location
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), locateTimeout)
	defer cancel()

	res := <-services.LocateAsync(ctx, h.provider)
	if res.Err != nil {
		log.Warn().
			Err(res.Err).
			Str("user_id", middleware.GetUserID(ctx)).
			Msg("Failed to locate user")
		respondServiceError(w, res.Err)
		return
	}

	respondJSON(w, http.StatusOK, res.Position)
}
