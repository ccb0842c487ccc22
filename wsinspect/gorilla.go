package wsinspect

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Time allowed to write the close frame to the peer.
const closeWait = 5 * time.Second

// GorillaTransport opens sessions with github.com/gorilla/websocket.
type GorillaTransport struct {
	ConnectTimeout time.Duration // 0 disables the handshake timeout
	ReadLimit      int64
	Header         http.Header
}

// Open starts dialing endpoint in the background.
func (t *GorillaTransport) Open(ctx context.Context, endpoint string) Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &gorillaSession{}
	s.init(cancel)
	go s.run(ctx, t, endpoint)
	return s
}

type gorillaSession struct {
	sessionBase
	conn *websocket.Conn // guarded by mu
}

func (s *gorillaSession) run(ctx context.Context, t *GorillaTransport, endpoint string) {
	defer s.cancel()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: t.ConnectTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, endpoint, t.Header)
	if err != nil {
		s.fail(dialError(err))
		return
	}
	if t.ReadLimit > 0 {
		conn.SetReadLimit(t.ReadLimit)
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = conn.Close()
		s.finish(nil)
		return
	}
	s.conn = conn
	s.mu.Unlock()

	// ReadMessage does not observe ctx.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s.emit(OpenEvent())
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.isClosing() || ctx.Err() != nil ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.finish(nil)
				return
			}
			s.fail(WrapError(ErrorConnection, "read failed", err))
			return
		}
		s.emit(MessageEvent(data))
	}
}

// Close sends a normal closure and releases the connection.
func (s *gorillaSession) Close() error {
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
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client close")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	return conn.Close()
}
