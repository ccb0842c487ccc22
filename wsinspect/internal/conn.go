package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// Conn wraps websocket.Conn for a receive-only session.
type Conn struct {
	ws *websocket.Conn
}

// Dial opens a WebSocket to endpoint. A zero timeout leaves the handshake
// bounded only by ctx.
func Dial(ctx context.Context, endpoint string, header http.Header, timeout time.Duration) (*Conn, error) {
	dialCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, endpoint, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, err
	}
	return &Conn{ws: ws}, nil
}

// SetReadLimit bounds the size of a single frame. Non-positive values keep
// the library default.
func (c *Conn) SetReadLimit(n int64) {
	if n > 0 {
		c.ws.SetReadLimit(n)
	}
}

// Read returns the payload of the next text or binary frame.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.ws.Read(ctx)
	return data, err
}

func (c *Conn) Close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}
