package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"memory-map-backend/internal/models"
	"memory-map-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, models.ErrUnknownFilter),
		errors.Is(err, services.ErrNoEXIFLocation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMemoryNotFound),
		errors.Is(err, services.ErrNotFriends):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSelfFriend),
		errors.Is(err, services.ErrAlreadyFriends):
		return http.StatusConflict
	case errors.Is(err, services.ErrPhotoStorageDisabled),
		errors.Is(err, services.ErrPositionUnavailable),
		errors.Is(err, services.ErrNotSupported):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrLocationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status; internal errors are not echoed
func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, "Internal server error", status)
		return
	}
	respondError(w, err.Error(), status)
}
