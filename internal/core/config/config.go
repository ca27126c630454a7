// Package config handles configuration loading and validation for tempo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. Notification settings
// live in the data store, not here: this file only configures the
// machinery around them.
type Config struct {
	// EvalIntervalSeconds is how often the notification rule engine
	// re-evaluates the task collection.
	EvalIntervalSeconds int `yaml:"eval_interval_seconds"`

	// PushCommand overrides the auto-detected platform notification
	// command (notify-send on Linux, osascript on macOS).
	PushCommand string `yaml:"push_command"`

	DataDir string `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EvalIntervalSeconds: 60,
	}
}

// Load reads configuration from the given path and sets the data
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.EvalIntervalSeconds == 0 {
		c.EvalIntervalSeconds = defaults.EvalIntervalSeconds
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.EvalIntervalSeconds < 5 {
		return fmt.Errorf("eval_interval_seconds must be at least 5")
	}
	return nil
}

// EvalInterval returns the rule engine evaluation interval.
func (c *Config) EvalInterval() time.Duration {
	return time.Duration(c.EvalIntervalSeconds) * time.Second
}

// BlobDir returns the directory holding the JSON data files.
func (c *Config) BlobDir() string {
	return filepath.Join(c.DataDir, "data")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tempo.log")
}
