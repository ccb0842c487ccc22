// Package config loads the operator configuration for the wsinspect commands.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/wsinspect/internal/logging"
	"github.com/vovakirdan/wsinspect/wsinspect"
)

// FileName is the config file name searched for when no path is given.
const FileName = "wsinspect.yaml"

// Config is the root of the configuration file.
type Config struct {
	Endpoint       string            `mapstructure:"endpoint" yaml:"endpoint"`
	Transport      string            `mapstructure:"transport" yaml:"transport"`
	ConnectTimeout time.Duration     `mapstructure:"connect_timeout" yaml:"connect_timeout"` // 0 waits forever
	ReadLimit      int64             `mapstructure:"read_limit" yaml:"read_limit"`
	Headers        map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`
	Presets        []Preset          `mapstructure:"presets" yaml:"presets"`
	Log            logging.Config    `mapstructure:"log" yaml:"log"`

	file string
}

// Preset is a named endpoint offered to the operator.
type Preset struct {
	Label string `mapstructure:"label" yaml:"label"`
	URL   string `mapstructure:"url" yaml:"url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:  "wss://aot-dev.sitearound.com/ws/airport/BKK/",
		Transport: wsinspect.TransportCoder,
		ReadLimit: wsinspect.DefaultConfig().ReadLimit,
		Presets: []Preset{
			{Label: "rest-room", URL: "wss://aot-dev.sitearound.com/ws/rest-room/fmonrwp0uujqtnh5/"},
			{Label: "airport", URL: "wss://aot-dev.sitearound.com/ws/airport/BKK/"},
			{Label: "airport-device", URL: "wss://aot-dev.sitearound.com/ws/airport-device/BKK/"},
		},
		Log: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration from path. With an empty path it looks for
// wsinspect.yaml in the working directory and in ~/.wsinspect, falling back
// to the defaults when none exists. WSINSPECT_* environment variables
// override file values (WSINSPECT_LOG_LEVEL for log.level).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WSINSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.file = v.ConfigFileUsed()
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("transport", d.Transport)
	v.SetDefault("connect_timeout", d.ConnectTimeout)
	v.SetDefault("read_limit", d.ReadLimit)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("presets", d.Presets)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

// DefaultDir returns ~/.wsinspect.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".wsinspect"), nil
}

// File returns the path the configuration was read from, empty for defaults.
func (c *Config) File() string { return c.file }

// Validate checks values the inspector cannot work with.
func (c *Config) Validate() error {
	switch c.Transport {
	case wsinspect.TransportCoder, wsinspect.TransportGorilla:
	default:
		return wsinspect.NewError(wsinspect.ErrorInvalidConfig, fmt.Sprintf("unknown transport %q", c.Transport))
	}
	if c.ConnectTimeout < 0 {
		return wsinspect.NewError(wsinspect.ErrorInvalidConfig, "connect_timeout must not be negative")
	}
	if c.ReadLimit < 0 {
		return wsinspect.NewError(wsinspect.ErrorInvalidConfig, "read_limit must not be negative")
	}
	seen := make(map[string]bool, len(c.Presets))
	for i, p := range c.Presets {
		if p.Label == "" {
			return wsinspect.NewError(wsinspect.ErrorInvalidConfig, fmt.Sprintf("preset %d has no label", i))
		}
		if seen[p.Label] {
			return wsinspect.NewError(wsinspect.ErrorInvalidConfig, fmt.Sprintf("duplicate preset %q", p.Label))
		}
		seen[p.Label] = true
	}
	return nil
}

// Lookup returns the URL of the preset with the given label.
func (c *Config) Lookup(label string) (string, bool) {
	for _, p := range c.Presets {
		if p.Label == label {
			return p.URL, true
		}
	}
	return "", false
}

// Resolve maps a preset label to its URL and returns anything else as is.
func (c *Config) Resolve(endpointOrLabel string) string {
	if u, ok := c.Lookup(endpointOrLabel); ok {
		return u
	}
	return endpointOrLabel
}

// Inspector converts the file configuration to a wsinspect.Config.
func (c *Config) Inspector() wsinspect.Config {
	cfg := wsinspect.DefaultConfig()
	cfg.Endpoint = c.Endpoint
	cfg.Transport = c.Transport
	cfg.ConnectTimeout = c.ConnectTimeout
	if c.ReadLimit > 0 {
		cfg.ReadLimit = c.ReadLimit
	}
	if len(c.Headers) > 0 {
		cfg.Header = make(http.Header, len(c.Headers))
		for k, v := range c.Headers {
			cfg.Header.Set(k, v)
		}
	}
	return cfg
}

// Write stores cfg as YAML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
