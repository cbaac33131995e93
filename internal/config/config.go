// Package config loads studybuddy settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/studybuddy/internal/analysis"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/logging"
	"github.com/abhisek/studybuddy/internal/progress"
)

// MaxQuestions is the largest quiz size the service will produce.
const MaxQuestions = 20

// Config holds all application configuration.
type Config struct {
	Analysis analysis.Config `yaml:"analysis"`
	Progress progress.Config `yaml:"progress"`
	Log      logging.Config  `yaml:"log"`

	// DBPath is the attempt history database. Empty uses the default
	// data directory.
	DBPath string `yaml:"db"`

	// MaxUploadBytes rejects larger files before upload. Zero disables
	// the check.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Analysis:       analysis.DefaultConfig(),
		Progress:       progress.DefaultConfig(),
		Log:            logging.Config{Level: "info"},
		MaxUploadBytes: ingest.DefaultMaxBytes,
	}
}

// DefaultPath resolves the config file path:
// $XDG_CONFIG_HOME/studybuddy/config.yaml, falling back to
// ~/.config/studybuddy/config.yaml.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "studybuddy", "config.yaml"), nil
}

// Load reads the file at path over the defaults and then applies
// environment overrides. A missing file is not an error unless required is
// set, which callers use when the path was given explicitly.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides settings from STUDYBUDDY_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("STUDYBUDDY_ENDPOINT"); v != "" {
		c.Analysis.Endpoint = v
	}
	if v := os.Getenv("STUDYBUDDY_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("STUDYBUDDY_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("STUDYBUDDY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STUDYBUDDY_QUESTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STUDYBUDDY_QUESTIONS: %w", err)
		}
		c.Analysis.Questions = n
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.Analysis.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Analysis.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("endpoint must be an http(s) URL, got %q", c.Analysis.Endpoint)
	}

	if q := c.Analysis.Questions; q < 0 || q > MaxQuestions {
		return fmt.Errorf("questions must be between 0 and %d, got %d", MaxQuestions, q)
	}
	if c.Analysis.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}

	p := c.Progress
	if p.Interval <= 0 {
		return fmt.Errorf("progress interval must be positive")
	}
	if p.Step <= 0 {
		return fmt.Errorf("progress step must be positive")
	}
	if p.Ceiling < 0 || p.Ceiling >= 100 {
		return fmt.Errorf("progress ceiling must be in [0,100), got %d", p.Ceiling)
	}
	if p.HideDelay < 0 {
		return fmt.Errorf("progress hide_delay must not be negative")
	}

	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must not be negative")
	}
	return nil
}
