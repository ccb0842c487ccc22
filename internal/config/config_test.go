package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wsinspect/wsinspect"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Endpoint, cfg.Endpoint)
	assert.Equal(t, wsinspect.TransportCoder, cfg.Transport)
	assert.Zero(t, cfg.ConnectTimeout)
	assert.Equal(t, d.Presets, cfg.Presets)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.File())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `
endpoint: ws://localhost:9000/feed
transport: gorilla
connect_timeout: 3s
read_limit: 4096
headers:
  Authorization: Bearer abc
presets:
  - label: local
    url: ws://localhost:9000/feed
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:9000/feed", cfg.Endpoint)
	assert.Equal(t, wsinspect.TransportGorilla, cfg.Transport)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, int64(4096), cfg.ReadLimit)
	assert.Equal(t, []Preset{{Label: "local", URL: "ws://localhost:9000/feed"}}, cfg.Presets)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File())

	ic := cfg.Inspector()
	assert.Equal(t, "Bearer abc", ic.Header.Get("Authorization"))
	assert.Equal(t, 3*time.Second, ic.ConnectTimeout)
	assert.Equal(t, int64(4096), ic.ReadLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WSINSPECT_ENDPOINT", "ws://env/")
	t.Setenv("WSINSPECT_CONNECT_TIMEOUT", "250ms")
	t.Setenv("WSINSPECT_LOG_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://env/", cfg.Endpoint)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: smoke-signals\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, wsinspect.NewError(wsinspect.ErrorInvalidConfig, ""))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.ConnectTimeout = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Presets = append(cfg.Presets, Preset{Label: "airport", URL: "ws://dup/"})
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Presets = []Preset{{URL: "ws://x/"}}
	assert.Error(t, cfg.Validate())
}

func TestLookupAndResolve(t *testing.T) {
	cfg := Default()

	u, ok := cfg.Lookup("airport-device")
	require.True(t, ok)
	assert.Equal(t, "wss://aot-dev.sitearound.com/ws/airport-device/BKK/", u)

	_, ok = cfg.Lookup("nope")
	assert.False(t, ok)

	assert.Equal(t, u, cfg.Resolve("airport-device"))
	assert.Equal(t, "ws://other/", cfg.Resolve("ws://other/"))
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Default()
	want.ConnectTimeout = 5 * time.Second

	require.NoError(t, Write(path, want))
	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, want.Endpoint, got.Endpoint)
	assert.Equal(t, want.ConnectTimeout, got.ConnectTimeout)
	assert.Equal(t, want.Presets, got.Presets)
	assert.Equal(t, want.Log, got.Log)
}
