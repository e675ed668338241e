package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvAPIURL overrides the configured API base URL.
const EnvAPIURL = "CROPGUARD_API_URL"

// Config holds all configurable cropguard settings.
type Config struct {
	APIURL                string `json:"api_url"`
	TimeoutSeconds        int    `json:"timeout_seconds"`
	PredictTimeoutSeconds int    `json:"predict_timeout_seconds"` // uploads run longer than other calls
	HistoryLimit          int    `json:"history_limit"`
	DefaultFormat         string `json:"default_format"` // "markdown" | "json"
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		APIURL:                "http://localhost:8000",
		TimeoutSeconds:        30,
		PredictTimeoutSeconds: 60,
		HistoryLimit:          10,
		DefaultFormat:         "markdown",
	}
}

// Timeout is the per-request timeout for everything except uploads.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PredictTimeout is the timeout for image uploads.
func (c Config) PredictTimeout() time.Duration {
	return time.Duration(c.PredictTimeoutSeconds) * time.Second
}

// GlobalPath is the location of the user-wide config file.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cropguard", "config.json"), nil
}

// LoadGlobal reads ~/.config/cropguard/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .cropguardconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".cropguardconfig", false)
}

func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// SaveGlobal writes cfg to the global config file, creating its directory.
func SaveGlobal(cfg Config) (string, error) {
	path, err := GlobalPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, append(data, '\n'), 0o644)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.APIURL != "" {
			result.APIURL = layer.APIURL
		}
		if layer.TimeoutSeconds > 0 {
			result.TimeoutSeconds = layer.TimeoutSeconds
		}
		if layer.PredictTimeoutSeconds > 0 {
			result.PredictTimeoutSeconds = layer.PredictTimeoutSeconds
		}
		if layer.HistoryLimit > 0 {
			result.HistoryLimit = layer.HistoryLimit
		}
		if layer.DefaultFormat != "" {
			result.DefaultFormat = layer.DefaultFormat
		}
	}
	return result
}

// ApplyEnv loads envFile (if it exists) into the process environment without
// overriding variables that are already set, then applies CROPGUARD_API_URL.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &ParseError{Path: envFile, Err: err}
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
