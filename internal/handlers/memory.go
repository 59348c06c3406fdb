package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"memory-map-backend/internal/cluster"
	"memory-map-backend/internal/config"
	"memory-map-backend/internal/geo"
	"memory-map-backend/internal/middleware"
	"memory-map-backend/internal/models"
	"memory-map-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	memoryService *services.MemoryService
	defaults      config.ClusterConfig
}

// NewMemoryHandler creates a new memory handler; defaults fill in omitted query parameters
func NewMemoryHandler(memoryService *services.MemoryService, defaults config.ClusterConfig) *MemoryHandler {
	return &MemoryHandler{
		memoryService: memoryService,
		defaults:      defaults,
	}
}

// viewState builds the caller's view from the filter query parameter
func (h *MemoryHandler) viewState(r *http.Request) (models.ViewState, error) {
	filter, err := models.ParseViewFilter(r.URL.Query().Get("filter"))
	if err != nil {
		return models.ViewState{}, err
	}
	return h.memoryService.ViewState(r.Context(), middleware.GetUserID(r.Context()), filter)
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", services.ErrValidation, name)
	}
	return v, nil
}

// ListMemories handles GET /api/v1/memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	state, err := h.viewState(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	memories, err := h.memoryService.List(r.Context(), state)
	if err != nil {
		log.Error().Err(err).Str("user_id", state.ViewerID).Msg("Failed to list memories")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"memories": memories,
		"total":    len(memories),
	})
}

// CreateMemory handles POST /api/v1/memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memory, err := h.memoryService.Create(ctx, userID, req)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to create memory")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, memory)
}

// Timeline handles GET /api/v1/memories/timeline
func (h *MemoryHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	state, err := h.viewState(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	memories, err := h.memoryService.Timeline(r.Context(), state)
	if err != nil {
		log.Error().Err(err).Str("user_id", state.ViewerID).Msg("Failed to build timeline")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"memories": memories})
}

// Clusters handles GET /api/v1/memories/clusters
func (h *MemoryHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	state, err := h.viewState(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	threshold, err := queryFloat(r, "threshold", h.defaults.ThresholdMeters)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	clusters, err := h.memoryService.Clusters(r.Context(), state, cluster.Options{ThresholdMeters: threshold})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Debug().
		Str("user_id", state.ViewerID).
		Float64("threshold", threshold).
		Int("clusters", len(clusters)).
		Msg("Clusters computed")

	respondJSON(w, http.StatusOK, map[string]any{
		"threshold_meters": threshold,
		"clusters":         clusters,
	})
}

// Nearby handles GET /api/v1/memories/nearby
func (h *MemoryHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	state, err := h.viewState(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lng") == "" {
		respondError(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	lat, err := queryFloat(r, "lat", 0)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	lng, err := queryFloat(r, "lng", 0)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	point := geo.Point{Lat: lat, Lng: lng}

	var nearby []services.NearbyMemory
	if coarse, _ := strconv.ParseBool(q.Get("coarse")); coarse {
		nearby, err = h.memoryService.NearbyCoarse(r.Context(), state, point)
	} else {
		var radius float64
		radius, err = queryFloat(r, "radius", h.defaults.NearbyRadiusMeters)
		if err == nil {
			nearby, err = h.memoryService.Nearby(r.Context(), state, point, radius)
		}
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"nearby": nearby,
		"count":  len(nearby),
	})
}

// Areas handles GET /api/v1/memories/areas
func (h *MemoryHandler) Areas(w http.ResponseWriter, r *http.Request) {
	state, err := h.viewState(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	res := h.defaults.AreaResolution
	if s := r.URL.Query().Get("res"); s != "" {
		res, err = strconv.Atoi(s)
		if err != nil {
			respondError(w, "res must be an integer", http.StatusBadRequest)
			return
		}
	}

	areas, err := h.memoryService.Areas(r.Context(), state, res)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"resolution": res,
		"areas":      areas,
	})
}
