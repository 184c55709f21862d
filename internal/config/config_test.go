package config

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFS is an in-memory file system for testing.
type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	l := NewLoaderWith(memFS{}, envOf(nil))

	cfg, err := l.Load("/missing/config.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "gopls", cfg.LSP.Command)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout.Std())
}

func TestLoad_TOML(t *testing.T) {
	fsys := memFS{"/etc/toolz.toml": `
[log]
level = "debug"
console = true

[http]
timeout = "5s"
userAgent = "toolz-test"
rateLimit = 2.5
rateBurst = 3

[lsp]
command = "clangd"
args = ["--log=error"]
requestTimeout = "1m"

[lsp.env]
CLANGD_FLAGS = "-j=2"
`}

	cfg, err := NewLoaderWith(fsys, envOf(nil)).Load("/etc/toolz.toml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout.Std())
	assert.Equal(t, "toolz-test", cfg.HTTP.UserAgent)
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimit, 1e-9)
	assert.Equal(t, 3, cfg.HTTP.RateBurst)
	assert.Equal(t, "clangd", cfg.LSP.Command)
	assert.Equal(t, []string{"--log=error"}, cfg.LSP.Args)
	assert.Equal(t, map[string]string{"CLANGD_FLAGS": "-j=2"}, cfg.LSP.Env)
	assert.Equal(t, time.Minute, cfg.LSP.RequestTimeout.Std())
}

func TestLoad_YAML(t *testing.T) {
	fsys := memFS{"/home/u/toolz.yml": `
http:
  timeout: 750ms
websocket:
  origin: https://example.com
`}

	cfg, err := NewLoaderWith(fsys, envOf(nil)).Load("/home/u/toolz.yml")
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.HTTP.Timeout.Std())
	assert.Equal(t, "https://example.com", cfg.WebSocket.Origin)
	// Untouched sections keep their defaults.
	assert.Equal(t, "toolz", cfg.HTTP.UserAgent)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	fsys := memFS{"/c.toml": "[lsp]\ncommand = \"clangd\"\n"}
	env := envOf(map[string]string{
		"TOOLZ_LOG_LEVEL":       "WARN",
		"TOOLZ_LOG_CONSOLE":     "yes",
		"TOOLZ_HTTP_TIMEOUT":    "2s",
		"TOOLZ_HTTP_RATE_LIMIT": "10",
		"TOOLZ_HTTP_RATE_BURST": "4",
		"TOOLZ_LSP_COMMAND":     "pyright-langserver",
		"TOOLZ_LSP_ARGS":        "--stdio  --verbose",
		"TOOLZ_WS_ORIGIN":       "http://localhost",
		"UNRELATED":             "x",
	})

	cfg, err := NewLoaderWith(fsys, env).Load("/c.toml")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.Equal(t, 2*time.Second, cfg.HTTP.Timeout.Std())
	assert.InDelta(t, 10.0, cfg.HTTP.RateLimit, 1e-9)
	assert.Equal(t, 4, cfg.HTTP.RateBurst)
	assert.Equal(t, "pyright-langserver", cfg.LSP.Command)
	assert.Equal(t, []string{"--stdio", "--verbose"}, cfg.LSP.Args)
	assert.Equal(t, "http://localhost", cfg.WebSocket.Origin)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fsys   memFS
		env    map[string]string
		path   string
		target error
	}{
		{
			name:   "unsupported extension",
			fsys:   memFS{"/c.json": "{}"},
			path:   "/c.json",
			target: ErrUnsupportedFormat,
		},
		{
			name:   "bad toml",
			fsys:   memFS{"/c.toml": "[http\n"},
			path:   "/c.toml",
			target: &ParseError{},
		},
		{
			name:   "unknown toml key",
			fsys:   memFS{"/c.toml": "[http]\nretries = 3\n"},
			path:   "/c.toml",
			target: &ParseError{},
		},
		{
			name:   "bad duration",
			fsys:   memFS{"/c.yaml": "http:\n  timeout: soon\n"},
			path:   "/c.yaml",
			target: &ParseError{},
		},
		{
			name:   "bad env value",
			env:    map[string]string{"TOOLZ_HTTP_RATE_BURST": "many"},
			target: &ParseError{},
		},
		{
			name:   "invalid level",
			env:    map[string]string{"TOOLZ_LOG_LEVEL": "loud"},
			target: ErrValidationFailed,
		},
		{
			name:   "rate limit without burst",
			env:    map[string]string{"TOOLZ_HTTP_RATE_LIMIT": "1", "TOOLZ_HTTP_RATE_BURST": "0"},
			target: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := tt.fsys
			if fsys == nil {
				fsys = memFS{}
			}
			_, err := NewLoaderWith(fsys, envOf(tt.env)).Load(tt.path)
			require.Error(t, err)

			switch target := tt.target.(type) {
			case *ParseError:
				var pe *ParseError
				assert.True(t, errors.As(err, &pe), "err = %v", err)
			default:
				assert.ErrorIs(t, err, target)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LSP.Args = []string{"serve"}
	cfg.HTTP.RateLimit = 1.5
	cfg.LSP.Env = map[string]string{"GOFLAGS": "-mod=mod"}

	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(cfg, format)
			require.NoError(t, err)

			back := Default()
			require.NoError(t, Decode(data, format, &back))
			assert.Equal(t, cfg, back)
		})
	}
}

func TestEnvNames(t *testing.T) {
	names := EnvNames()
	assert.Contains(t, names, "TOOLZ_LOG_LEVEL")
	assert.Contains(t, names, "TOOLZ_LSP_ARGS")
	assert.IsIncreasing(t, names)
}
