package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jcourtner/taskdeck-be/internal/services"
	"github.com/rs/zerolog/log"
)

// errorBody is the uniform error envelope for the whole API.
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Status: status, Message: message})
}

// handleServiceError maps domain errors onto HTTP status codes. Anything
// outside the taxonomy is logged and reported as a 500 without leaking the
// underlying error.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case services.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
