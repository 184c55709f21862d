package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all toolz settings.
type Config struct {
	Log       LogConfig       `toml:"log" yaml:"log"`
	HTTP      HTTPConfig      `toml:"http" yaml:"http"`
	WebSocket WebSocketConfig `toml:"websocket" yaml:"websocket"`
	LSP       LSPConfig       `toml:"lsp" yaml:"lsp"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zerolog level name.
	Level string `toml:"level" yaml:"level"`
	// Console selects human-readable output instead of JSON.
	Console bool `toml:"console" yaml:"console"`
}

// HTTPConfig configures the REST client.
type HTTPConfig struct {
	Timeout   Duration `toml:"timeout" yaml:"timeout"`
	UserAgent string   `toml:"userAgent" yaml:"userAgent"`
	// RateLimit is the maximum requests per second; zero disables limiting.
	RateLimit float64 `toml:"rateLimit" yaml:"rateLimit"`
	RateBurst int     `toml:"rateBurst" yaml:"rateBurst"`
}

// WebSocketConfig configures WebSocket dialing.
type WebSocketConfig struct {
	// Origin overrides the Origin header; empty derives it from the URL.
	Origin string `toml:"origin" yaml:"origin"`
}

// LSPConfig configures the language server used by the symbols command.
type LSPConfig struct {
	Command        string            `toml:"command" yaml:"command"`
	Args           []string          `toml:"args" yaml:"args"`
	Env            map[string]string `toml:"env" yaml:"env"`
	RequestTimeout Duration          `toml:"requestTimeout" yaml:"requestTimeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Timeout:   Duration(30 * time.Second),
			UserAgent: "toolz",
			RateBurst: 1,
		},
		LSP: LSPConfig{
			Command:        "gopls",
			RequestTimeout: Duration(30 * time.Second),
		},
	}
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/toolz/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "toolz", "config.toml")
}

// Validate checks setting values.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: err.Error()}
	}
	if c.HTTP.Timeout < 0 {
		return &ValidationError{Path: "http.timeout", Value: c.HTTP.Timeout, Message: "must not be negative"}
	}
	if c.HTTP.RateLimit < 0 {
		return &ValidationError{Path: "http.rateLimit", Value: c.HTTP.RateLimit, Message: "must not be negative"}
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst < 1 {
		return &ValidationError{Path: "http.rateBurst", Value: c.HTTP.RateBurst, Message: "must be at least 1 when rateLimit is set"}
	}
	if c.LSP.RequestTimeout < 0 {
		return &ValidationError{Path: "lsp.requestTimeout", Value: c.LSP.RequestTimeout, Message: "must not be negative"}
	}
	return nil
}

// Duration is a time.Duration written as a string such as "1m30s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}
