package handlers

import (
	"net/http"
	"strconv"

	"github.com/jcourtner/taskdeck-be/internal/auth"
	"github.com/jcourtner/taskdeck-be/internal/models"
	"github.com/jcourtner/taskdeck-be/internal/services"
)

// EventHandler serves the caller's recent activity feed.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent returns the most recent events for the authenticated user.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid or missing auth token")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	events, err := h.service.GetRecentEvents(claims.UserID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}
