// Package config resolves lsi's configuration from an optional YAML file
// and LSI_* environment variables, with env taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration.
type Config struct {
	CachePath      string   `yaml:"cache_path"`
	CacheDays      int      `yaml:"cache_days"`
	KnownHostsPath string   `yaml:"known_hosts_path"`
	ProfilePath    string   `yaml:"profile_path"`
	HistoryPath    string   `yaml:"history_path"`
	Region         string   `yaml:"region"`
	DefaultColumns []string `yaml:"default_columns,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		CachePath:      filepath.Join(home, ".lsi_cache.json"),
		CacheDays:      1,
		KnownHostsPath: filepath.Join(home, ".lsi-known-hosts"),
		ProfilePath:    filepath.Join(home, ".lsi"),
		HistoryPath:    filepath.Join(home, ".lsi_history.db"),
		Region:         "us-east-1",
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// it exists, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields from LSI_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("LSI_CACHE"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("LSI_CACHE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LSI_CACHE_DAYS %q: %w", v, err)
		}
		c.CacheDays = days
	}
	if v := os.Getenv("LSI_KNOWN_HOSTS"); v != "" {
		c.KnownHostsPath = v
	}
	if v := os.Getenv("LSI_PROFILE_FILE"); v != "" {
		c.ProfilePath = v
	}
	if v := os.Getenv("LSI_HISTORY"); v != "" {
		c.HistoryPath = v
	}
	if v := os.Getenv("LSI_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("LSI_DEFAULT_COLUMNS"); v != "" {
		c.DefaultColumns = splitColumns(v)
	}
	return nil
}

func splitColumns(s string) []string {
	var out []string
	for _, col := range strings.Split(s, ",") {
		if col = strings.TrimSpace(col); col != "" {
			out = append(out, col)
		}
	}
	return out
}

// Validate ensures the config has usable values.
func (c *Config) Validate() error {
	if c.CachePath == "" {
		return fmt.Errorf("cache_path is required")
	}
	if c.CacheDays <= 0 {
		return fmt.Errorf("cache_days must be positive")
	}
	if c.KnownHostsPath == "" {
		return fmt.Errorf("known_hosts_path is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	return nil
}
