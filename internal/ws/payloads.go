package ws

import "encoding/json"

// client → server
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// server → client
type ReadyPayload struct {
	Type   string `json:"type"`
	UserID int64  `json:"user_id"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
