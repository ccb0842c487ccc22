// Package logging builds the zerolog logger used by the wsinspect commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console, json
	File   string `mapstructure:"file" yaml:"file"`     // log file path, empty means stderr only
}

// ParseLevel converts string level to zerolog.Level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger writing to stderr, and to cfg.File when set. The
// returned close function releases the log file.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, stderr io.Writer) (zerolog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	var out io.Writer = stderr
	if strings.ToLower(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		out = io.MultiWriter(out, f)
		closeFn = f.Close
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return l, closeFn, nil
}
