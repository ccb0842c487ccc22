package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, closeFn, err := newLogger(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	l.Info().Msg("hidden")
	l.Warn().Str("session", "s1").Msg("transport error")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "transport error", entry["message"])
	assert.Equal(t, "s1", entry["session"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsinspect.log")
	var buf bytes.Buffer
	l, closeFn, err := newLogger(Config{Level: "info", Format: "json", File: path}, &buf)
	require.NoError(t, err)

	l.Info().Msg("connected")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"connected"`)
	assert.Equal(t, buf.String(), string(data))
}

func TestNewFileError(t *testing.T) {
	_, _, err := newLogger(Config{File: filepath.Join(t.TempDir(), "missing", "x.log")}, &bytes.Buffer{})
	assert.Error(t, err)
}
