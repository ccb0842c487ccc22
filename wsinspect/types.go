package wsinspect

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionID identifies one transport session owned by a Manager.
type SessionID string

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Message is a decoded JSON payload received from the endpoint.
type Message struct {
	Seq        uint64          `json:"seq"`
	Session    SessionID       `json:"session"`
	ReceivedAt time.Time       `json:"received_at"`
	Raw        json.RawMessage `json:"raw"`
	Value      any             `json:"-"`
}

// decodeMessage parses data as an arbitrary JSON value.
func decodeMessage(data []byte) (json.RawMessage, any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, nil, WrapError(ErrorDecode, "payload is not JSON", err)
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return raw, v, nil
}
