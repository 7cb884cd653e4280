package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventAlert Event = "alert"
	EventPong  Event = "pong"
)

// AlertMessage carries one live assessment event to the clinician dashboard.
// Payload is the domain event exactly as the notification worker published it.
type AlertMessage struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
