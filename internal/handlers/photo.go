package handlers

import (
	"encoding/json"
	"net/http"

	"memory-map-backend/internal/middleware"
	"memory-map-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const maxPhotoBytes = 32 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadPhoto handles POST /api/v1/photos/upload
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Filename == "" {
		respondError(w, "filename is required", http.StatusBadRequest)
		return
	}

	response, err := h.photoService.GetPreSignedURL(ctx, userID, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("filename", req.Filename).
			Msg("Failed to generate pre-signed URL")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("key", response.Key).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}

// InspectPhoto handles POST /api/v1/memories/exif. The photo is read, never stored.
func (h *PhotoHandler) InspectPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	meta, err := h.photoService.InspectEXIF(file)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Photo has no usable EXIF data")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, meta)
}
