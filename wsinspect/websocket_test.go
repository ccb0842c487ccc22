package wsinspect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transportNames = []string{TransportCoder, TransportGorilla}

// newWSServer serves handler on every accepted WebSocket and returns the
// ws:// URL of the server.
func newWSServer(t *testing.T, handler func(ctx context.Context, c *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		handler(r.Context(), c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newWSManager(t *testing.T, transport, endpoint string, mutate func(*Config)) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Transport = transport
	cfg.Endpoint = endpoint
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestNewTransport(t *testing.T) {
	cfg := DefaultConfig()
	tr, err := NewTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &WebSocketTransport{}, tr)

	cfg.Transport = TransportGorilla
	tr, err = NewTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &GorillaTransport{}, tr)

	cfg.Transport = "carrier-pigeon"
	_, err = NewTransport(cfg)
	assert.Equal(t, ErrorInvalidConfig, CodeOf(err))
}

func TestTransportReceivesUntilRemoteClose(t *testing.T) {
	for _, name := range transportNames {
		t.Run(name, func(t *testing.T) {
			release := make(chan struct{})
			url := newWSServer(t, func(ctx context.Context, c *websocket.Conn) {
				<-release
				for _, p := range []string{`{"a":1}`, `not json`, `{"a":2}`} {
					if err := c.Write(ctx, websocket.MessageText, []byte(p)); err != nil {
						return
					}
				}
				_ = c.Close(websocket.StatusNormalClosure, "done")
			})

			m := newWSManager(t, name, url, nil)
			require.NoError(t, m.ToggleConnection())
			waitState(t, m, StateConnected)
			close(release)

			waitState(t, m, StateDisconnected)
			msgs := m.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, map[string]any{"a": float64(2)}, msgs[0].Value)
			assert.Equal(t, map[string]any{"a": float64(1)}, msgs[1].Value)
			assert.False(t, msgs[0].ReceivedAt.IsZero())
			assert.Equal(t, uint64(1), m.Stats().Dropped)
		})
	}
}

func TestTransportUserDisconnect(t *testing.T) {
	for _, name := range transportNames {
		t.Run(name, func(t *testing.T) {
			status := make(chan websocket.StatusCode, 1)
			url := newWSServer(t, func(ctx context.Context, c *websocket.Conn) {
				_ = c.Write(ctx, websocket.MessageText, []byte(`{"hello":"world"}`))
				_, _, err := c.Read(ctx)
				status <- websocket.CloseStatus(err)
			})

			m := newWSManager(t, name, url, nil)
			require.NoError(t, m.ToggleConnection())
			waitBuffered(t, m, 1)

			require.NoError(t, m.ToggleConnection())
			assert.Equal(t, StateDisconnected, m.State())
			assert.Empty(t, m.Messages())

			select {
			case code := <-status:
				assert.Equal(t, websocket.StatusNormalClosure, code)
			case <-time.After(waitFor):
				t.Fatal("server never saw the close")
			}
		})
	}
}

func TestTransportDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	for _, name := range transportNames {
		t.Run(name, func(t *testing.T) {
			m := newWSManager(t, name, url, nil)

			var mu sync.Mutex
			var got error
			m.OnError(func(err error) {
				mu.Lock()
				got = err
				mu.Unlock()
			})

			require.NoError(t, m.ToggleConnection())
			waitState(t, m, StateDisconnected)

			require.Eventually(t, func() bool {
				mu.Lock()
				defer mu.Unlock()
				return got != nil
			}, waitFor, tick)
			mu.Lock()
			assert.Equal(t, ErrorConnection, CodeOf(got))
			mu.Unlock()
		})
	}
}

func TestTransportConnectTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	for _, name := range transportNames {
		t.Run(name, func(t *testing.T) {
			m := newWSManager(t, name, url, func(cfg *Config) {
				cfg.ConnectTimeout = 100 * time.Millisecond
			})

			errs := make(chan error, 1)
			m.OnError(func(err error) { errs <- err })

			require.NoError(t, m.ToggleConnection())
			select {
			case err := <-errs:
				assert.Equal(t, ErrorTimeout, CodeOf(err))
			case <-time.After(waitFor):
				t.Fatal("connect never timed out")
			}
			waitState(t, m, StateDisconnected)
		})
	}
}

func TestTransportCancelWhileConnecting(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	for _, name := range transportNames {
		t.Run(name, func(t *testing.T) {
			tr, err := NewTransport(Config{Transport: name})
			require.NoError(t, err)

			sess := tr.Open(context.Background(), url)
			require.NoError(t, sess.Close())

			var kinds []EventKind
			for ev := range sess.Events() {
				kinds = append(kinds, ev.Kind)
				assert.NoError(t, ev.Err)
			}
			assert.Equal(t, []EventKind{EventClose}, kinds)
		})
	}
}
