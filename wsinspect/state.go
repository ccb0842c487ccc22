package wsinspect

// ConnectionState represents the current state of the WebSocket connection.
type ConnectionState int

const (
	// StateDisconnected means no transport session is owned.
	StateDisconnected ConnectionState = iota

	// StateConnecting means a session was requested but has not confirmed establishment.
	StateConnecting

	// StateConnected means the session is open and may receive data.
	StateConnected
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Label returns the operator-facing status text.
func (s ConnectionState) Label() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting..."
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// StateEvent represents a state change event.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Session  SessionID
	Error    error // Optional error that caused the state change
}
