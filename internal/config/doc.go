// Package config loads toolz settings.
//
// Settings come from three places, later ones winning:
//
//  1. built-in defaults (Default)
//  2. a config file, TOML or YAML by extension
//  3. TOOLZ_* environment variables
//
// A missing config file is not an error. Example TOML file:
//
//	[log]
//	level = "debug"
//
//	[http]
//	timeout = "10s"
//	userAgent = "toolz/1.0"
//	rateLimit = 5.0
//	rateBurst = 2
//
//	[lsp]
//	command = "gopls"
//	args = ["serve"]
//	requestTimeout = "30s"
package config
