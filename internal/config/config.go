package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config carries the tunables for the capture daemon and its history.
type Config struct {
	DatabasePath string
	MaxItems     int
	PollInterval time.Duration
	CommitDelay  time.Duration
	LoadLimit    int
}

const (
	defaultConfigPath   = "~/.config/purepaste/config.yaml"
	defaultDatabasePath = "~/.local/share/purepaste/history.db"
	defaultMaxItems     = 80
	defaultPollMillis   = 900
	defaultCommitMillis = 500
	defaultLoadLimit    = 200
)

// Load locates and parses the config file, falling back to defaults
// when the file is missing. An empty path means the default location.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DatabasePath: mustExpand(defaultDatabasePath),
		MaxItems:     defaultMaxItems,
		PollInterval: defaultPollMillis * time.Millisecond,
		CommitDelay:  defaultCommitMillis * time.Millisecond,
		LoadLimit:    defaultLoadLimit,
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DatabasePath   string `yaml:"database_path"`
		MaxItems       *int   `yaml:"max_items"`
		PollIntervalMS *int   `yaml:"poll_interval_ms"`
		CommitDelayMS  *int   `yaml:"commit_delay_ms"`
		LoadLimit      *int   `yaml:"load_limit"`
	}
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if db := strings.TrimSpace(raw.DatabasePath); db != "" {
		cfg.DatabasePath = mustExpand(db)
	}
	if raw.MaxItems != nil {
		if *raw.MaxItems <= 0 {
			return Config{}, fmt.Errorf("max_items must be positive, got %d", *raw.MaxItems)
		}
		cfg.MaxItems = *raw.MaxItems
	}
	if raw.PollIntervalMS != nil {
		if *raw.PollIntervalMS <= 0 {
			return Config{}, fmt.Errorf("poll_interval_ms must be positive, got %d", *raw.PollIntervalMS)
		}
		cfg.PollInterval = time.Duration(*raw.PollIntervalMS) * time.Millisecond
	}
	if raw.CommitDelayMS != nil {
		if *raw.CommitDelayMS <= 0 {
			return Config{}, fmt.Errorf("commit_delay_ms must be positive, got %d", *raw.CommitDelayMS)
		}
		cfg.CommitDelay = time.Duration(*raw.CommitDelayMS) * time.Millisecond
	}
	if raw.LoadLimit != nil {
		if *raw.LoadLimit <= 0 {
			return Config{}, fmt.Errorf("load_limit must be positive, got %d", *raw.LoadLimit)
		}
		cfg.LoadLimit = *raw.LoadLimit
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
