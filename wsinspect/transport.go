package wsinspect

import (
	"context"
	"fmt"
	"sync"
)

// Transport opens sessions to endpoints. Open must not block: establishment
// is reported asynchronously through the session's events.
type Transport interface {
	Open(ctx context.Context, endpoint string) Session
}

// Session is one transport connection.
//
// Events are delivered in emission order. Every session emits exactly one
// EventClose, as its last event, and then closes the channel; a failed
// attempt emits EventError before it. Consumers must drain Events until it
// is closed.
type Session interface {
	Events() <-chan Event
	Close() error
}

// NewTransport returns the transport named by cfg.Transport.
func NewTransport(cfg Config) (Transport, error) {
	switch cfg.Transport {
	case "", TransportCoder:
		return &WebSocketTransport{
			ConnectTimeout: cfg.ConnectTimeout,
			ReadLimit:      cfg.ReadLimit,
			Header:         cfg.Header,
		}, nil
	case TransportGorilla:
		return &GorillaTransport{
			ConnectTimeout: cfg.ConnectTimeout,
			ReadLimit:      cfg.ReadLimit,
			Header:         cfg.Header,
		}, nil
	default:
		return nil, NewError(ErrorInvalidConfig, fmt.Sprintf("unknown transport %q", cfg.Transport))
	}
}

// sessionBase carries the event channel and the close bookkeeping shared by
// the WebSocket sessions. Only the session's run goroutine emits.
type sessionBase struct {
	events chan Event
	cancel context.CancelFunc

	mu      sync.Mutex
	closing bool
}

func (s *sessionBase) init(cancel context.CancelFunc) {
	s.events = make(chan Event, 16)
	s.cancel = cancel
}

func (s *sessionBase) Events() <-chan Event { return s.events }

func (s *sessionBase) emit(ev Event) { s.events <- ev }

// finish emits the terminal close event and closes the channel.
func (s *sessionBase) finish(cause error) {
	s.events <- CloseEvent(cause)
	close(s.events)
}

// fail reports err, unless the session is being closed locally, and finishes.
func (s *sessionBase) fail(err error) {
	if s.isClosing() {
		s.finish(nil)
		return
	}
	s.emit(ErrorEvent(err))
	s.finish(err)
}

func (s *sessionBase) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}
