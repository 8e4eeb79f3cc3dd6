// Package config handles loading and parsing peddler's configuration file.
//
// The Load function reads ~/.config/peddler/config.toml (or an explicit
// path) and falls back to defaults when the file or individual fields are
// missing. A missing config file is not an error: peddler should start
// against the default API origin without any setup.
//
// Example config.toml:
//
//	api_url = "https://api.emporia.example.com"
//	request_timeout_seconds = 10
//	poll_seconds = 30
//	log_path = "~/.local/state/peddler/peddler.log"
//	log_level = "info"
//
// Tilde expansion is performed for the config path itself and for log_path.
// The resulting Config is immutable; the package holds no global state.
package config
