package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jcourtner/taskdeck-be/internal/models"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for activity-log services.
type EventServiceProvider interface {
	Record(userID, eventType, level, message string, todoID *string) error
	GetRecentEvents(userID string, limit int) ([]models.Event, error)
}

// EventService persists a per-user activity feed.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new event for a user. A failed write is logged but must not
// fail the operation that produced the event.
func (s *EventService) Record(userID, eventType, level, message string, todoID *string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		UserID:  userID,
		Type:    eventType,
		Level:   level,
		Message: message,
		TodoID:  todoID,
	}

	_, err := s.db.Exec("INSERT INTO events (id, user_id, type, level, message, todo_id) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.UserID, event.Type, event.Level, event.Message, event.TodoID)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Str("user_id", userID).Msg("Failed to record event")
	}
	return err
}

// GetRecentEvents retrieves the most recent events for a user.
func (s *EventService) GetRecentEvents(userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, type, level, message, todo_id, created_at FROM events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.Type, &event.Level, &event.Message, &event.TodoID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
