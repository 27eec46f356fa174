package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"arcade/service"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// successResponse is the envelope for all successful responses
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorResponse is the envelope for all failed responses
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successResponse{Success: true, Data: data}); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Success: false, Error: message}); err != nil {
		log.WithError(err).Error("Failed to encode error response")
	}
}

// respondServiceError maps domain errors onto HTTP status codes. Unknown
// errors become a 500 with a generic message so internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var insufficientErr *service.InsufficientBalanceError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrOutOfRange):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficientErr):
		respondError(w, http.StatusBadRequest, insufficientErr.Error())
	case errors.As(err, &validationErrs):
		respondError(w, http.StatusBadRequest, validationErrs.Error())
	default:
		log.WithError(err).Error("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
