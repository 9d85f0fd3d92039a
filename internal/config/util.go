package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	errMissingBackendURL = errors.New("backend url is required")
	errMissingCookieName = errors.New("session cookie name is required")
	errWatchInterval     = errors.New("session watch interval must be positive")
	errBackendTimeout    = errors.New("backend timeout must not be negative")
)

func configPath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	return defaultConfigPath
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	filename, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.validate()
	}
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Backend.URL == "" {
		return errMissingBackendURL
	}
	if _, err := url.Parse(c.Backend.URL); err != nil {
		return fmt.Errorf("backend url: %w", err)
	}
	if c.Backend.Timeout < 0 {
		return errBackendTimeout
	}
	if c.Session.CookieName == "" {
		return errMissingCookieName
	}
	if c.Session.WatchInterval <= 0 {
		return errWatchInterval
	}
	return nil
}
