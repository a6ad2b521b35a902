package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewEventMessage marshals an action with its payload for the wire.
func NewEventMessage(action string, payload interface{}) []byte {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to marshal websocket message")
		return nil
	}
	return data
}

// NewErrorMessage builds an error message for a single client.
func NewErrorMessage(message string) []byte {
	return NewEventMessage("error", map[string]string{"message": message})
}
