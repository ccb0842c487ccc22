package wsinspect

import (
	"net/http"
	"time"
)

// Transport names accepted by Config.Transport.
const (
	TransportCoder   = "coder"
	TransportGorilla = "gorilla"
)

// Config controls how the inspector connects.
type Config struct {
	Endpoint  string // initial endpoint, editable while disconnected
	Transport string // TransportCoder or TransportGorilla

	// ConnectTimeout bounds the opening handshake. Zero leaves a connecting
	// session waiting indefinitely.
	ConnectTimeout time.Duration

	ReadLimit int64       // maximum frame size in bytes
	Header    http.Header // extra handshake headers
}

// DefaultConfig returns sensible defaults.
// ConnectTimeout is 0: a connection attempt never times out unless asked to.
func DefaultConfig() Config {
	return Config{
		Transport: TransportCoder,
		ReadLimit: 1 << 20,
	}
}
