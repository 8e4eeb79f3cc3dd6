package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields peddler reads from its config file.
type Config struct {
	APIURL         string
	RequestTimeout int // seconds
	PollSeconds    int
	LogPath        string
	LogLevel       string
}

const (
	defaultConfigPath  = "~/.config/peddler/config.toml"
	defaultAPIURL      = "https://api.emporia.example.com"
	defaultPollSeconds = 30
	defaultLogLevel    = "info"
)

// Load locates and parses the peddler config, falling back to defaults when
// missing. A missing config file is not an error; the client should work
// out of the box against the default API origin.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:      defaultAPIURL,
		PollSeconds: defaultPollSeconds,
		LogLevel:    defaultLogLevel,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var parsed struct {
		APIURL         string `toml:"api_url"`
		RequestTimeout int    `toml:"request_timeout_seconds"`
		PollSeconds    int    `toml:"poll_seconds"`
		LogPath        string `toml:"log_path"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(parsed.APIURL); v != "" {
		cfg.APIURL = v
	}
	if parsed.RequestTimeout > 0 {
		cfg.RequestTimeout = parsed.RequestTimeout
	}
	if parsed.PollSeconds > 0 {
		cfg.PollSeconds = parsed.PollSeconds
	}
	cfg.LogPath = strings.TrimSpace(parsed.LogPath)
	if v := strings.TrimSpace(parsed.LogLevel); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
