package config

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "TOOLZ_"

// envBinding applies one environment variable to a config.
type envBinding func(cfg *Config, value string) error

// envBindings maps variable names (without prefix) to settings.
var envBindings = map[string]envBinding{
	"LOG_LEVEL": func(cfg *Config, v string) error {
		cfg.Log.Level = strings.ToLower(v)
		return nil
	},
	"LOG_CONSOLE": boolSetting(func(cfg *Config, b bool) { cfg.Log.Console = b }),
	"HTTP_TIMEOUT": durationSetting(func(cfg *Config, d Duration) { cfg.HTTP.Timeout = d }),
	"HTTP_USER_AGENT": func(cfg *Config, v string) error {
		cfg.HTTP.UserAgent = v
		return nil
	},
	"HTTP_RATE_LIMIT": func(cfg *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		cfg.HTTP.RateLimit = f
		return nil
	},
	"HTTP_RATE_BURST": func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		cfg.HTTP.RateBurst = n
		return nil
	},
	"WS_ORIGIN": func(cfg *Config, v string) error {
		cfg.WebSocket.Origin = v
		return nil
	},
	"LSP_COMMAND": func(cfg *Config, v string) error {
		cfg.LSP.Command = v
		return nil
	},
	"LSP_ARGS": func(cfg *Config, v string) error {
		cfg.LSP.Args = strings.Fields(v)
		return nil
	},
	"LSP_TIMEOUT": durationSetting(func(cfg *Config, d Duration) { cfg.LSP.RequestTimeout = d }),
}

// EnvNames returns the environment variables Load reads, sorted.
func EnvNames() []string {
	names := make([]string, 0, len(envBindings))
	for name := range envBindings {
		names = append(names, EnvPrefix+name)
	}
	sort.Strings(names)
	return names
}

// applyEnv overrides cfg from the environment. Empty values are treated
// as valid values, not as unset.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, name := range EnvNames() {
		value, ok := lookup(name)
		if !ok {
			continue
		}
		bind := envBindings[strings.TrimPrefix(name, EnvPrefix)]
		if err := bind(cfg, value); err != nil {
			return &ParseError{Path: "$" + name, Err: err}
		}
	}
	return nil
}

func boolSetting(set func(*Config, bool)) envBinding {
	return func(cfg *Config, v string) error {
		switch strings.ToLower(v) {
		case "true", "yes", "on", "1":
			set(cfg, true)
		case "false", "no", "off", "0", "":
			set(cfg, false)
		default:
			return strconv.ErrSyntax
		}
		return nil
	}
}

func durationSetting(set func(*Config, Duration)) envBinding {
	return func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		set(cfg, Duration(d))
		return nil
	}
}
