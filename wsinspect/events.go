package wsinspect

import "time"

// EventKind tags a transport lifecycle or data notification.
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventError
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// Event is emitted by a Session.
type Event struct {
	Kind EventKind
	Data []byte    // frame payload, EventMessage only
	Err  error     // EventError, and EventClose when the close was abnormal
	At   time.Time // when the transport observed the event
}

// SessionEvent is an Event tagged with the session that emitted it.
type SessionEvent struct {
	Session SessionID
	Event
}

// OpenEvent returns an EventOpen stamped now.
func OpenEvent() Event { return Event{Kind: EventOpen, At: time.Now()} }

// MessageEvent returns an EventMessage carrying data, stamped now.
func MessageEvent(data []byte) Event {
	return Event{Kind: EventMessage, Data: data, At: time.Now()}
}

// ErrorEvent returns an EventError carrying err, stamped now.
func ErrorEvent(err error) Event { return Event{Kind: EventError, Err: err, At: time.Now()} }

// CloseEvent returns an EventClose with an optional cause, stamped now.
func CloseEvent(cause error) Event { return Event{Kind: EventClose, Err: cause, At: time.Now()} }
