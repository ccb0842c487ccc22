package wsinspect

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/wsinspect/wsinspect/internal"
)

// WebSocketTransport opens sessions with github.com/coder/websocket.
type WebSocketTransport struct {
	ConnectTimeout time.Duration // 0 disables the handshake timeout
	ReadLimit      int64
	Header         http.Header
}

// Open starts dialing endpoint in the background.
func (t *WebSocketTransport) Open(ctx context.Context, endpoint string) Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &coderSession{}
	s.init(cancel)
	go s.run(ctx, t, endpoint)
	return s
}

type coderSession struct {
	sessionBase
	conn *internal.Conn // guarded by mu
}

func (s *coderSession) run(ctx context.Context, t *WebSocketTransport, endpoint string) {
	defer s.cancel()

	conn, err := internal.Dial(ctx, endpoint, t.Header, t.ConnectTimeout)
	if err != nil {
		s.fail(dialError(err))
		return
	}
	conn.SetReadLimit(t.ReadLimit)

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "client close")
		s.finish(nil)
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.emit(OpenEvent())
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if s.isClosing() || isExpectedDisconnect(ctx, err) {
				s.finish(nil)
				return
			}
			s.fail(WrapError(ErrorConnection, "read failed", err))
			return
		}
		s.emit(MessageEvent(data))
	}
}

// Close sends a normal closure and stops the session.
func (s *coderSession) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	conn := s.conn
	s.mu.Unlock()

	defer s.cancel()
	if conn == nil {
		return nil
	}
	err := conn.Close(websocket.StatusNormalClosure, "client close")
	if err != nil && isExpectedDisconnect(context.Background(), err) {
		return nil
	}
	return err
}

func dialError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return WrapError(ErrorTimeout, "connect timed out", err)
	}
	return WrapError(ErrorConnection, "dial failed", err)
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
