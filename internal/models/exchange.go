package models

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is one confirmed round trip through the relay.
type Exchange struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	UserText  string    `json:"user_text"`
	BotText   string    `json:"bot_text"`
	CreatedAt time.Time `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const WSTypeExchange = "exchange"

// ErrorResponse is the body of every non-2xx relay response. Clients only
// rely on Error; Code and RequestID are for diagnostics.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
