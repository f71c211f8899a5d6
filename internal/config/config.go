// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDirName  = ".taskdesk"
	DefaultDataName = "projects.json"
	DefaultLogName  = "taskdesk.log"
	DefaultLogLevel = "info"
)

// Config holds the full configuration for taskdesk.
type Config struct {
	// DataFile is the JSON document holding all projects, tasks,
	// subtasks and labels.
	DataFile string `toml:"data_file"`

	// LogFile receives application logs. The TUI owns the terminal,
	// so logs never go to stdout while it runs.
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"` // debug, info, warn, error
}

// Load builds the configuration from, in priority order: defaults,
// the config file, then environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := setDefaults(cfg); err != nil {
		return nil, err
	}

	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, DefaultDirName)
	cfg.DataFile = filepath.Join(dir, DefaultDataName)
	cfg.LogFile = filepath.Join(dir, DefaultLogName)
	cfg.LogLevel = DefaultLogLevel
	return nil
}

// findConfigFile looks for a config file under the app directory, then
// in the current directory.
func findConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultDirName, "config.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if _, err := os.Stat("taskdesk.toml"); err == nil {
		return "taskdesk.toml"
	}
	return ""
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKDESK_DATA"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("TASKDESK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TASKDESK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
