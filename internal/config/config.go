/*
Package config handles loading, saving, and validating replay configuration.

Configuration is stored in ~/.replay.json:

	{
	  "storage": {
	    "backend": "sqlite",
	    "databasePath": "/home/user/.replay/automations.db"
	  },
	  "settings": {
	    "searchIndex": true
	  }
	}

The storage backend is an explicit choice, never auto-detected: "sqlite" is
the durable store, "memory" keeps automations only for the life of the
process.
*/
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted in storage.backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the root configuration structure.
type Config struct {
	// Storage selects and parameterizes the persistence backend.
	Storage *StorageConfig `json:"storage"`

	// Settings contains global options.
	Settings *Settings `json:"settings,omitempty"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `json:"backend"`

	// DatabasePath overrides the default ~/.replay/automations.db.
	// Ignored by the memory backend.
	DatabasePath string `json:"databasePath,omitempty"`
}

// Settings contains global options.
type Settings struct {
	// SearchIndex enables the in-memory full-text index over automations.
	SearchIndex bool `json:"searchIndex,omitempty"`
}

// NewConfig creates a configuration with defaults: durable storage at the
// default path, search index on.
func NewConfig() *Config {
	return &Config{
		Storage:  &StorageConfig{Backend: BackendSQLite},
		Settings: &Settings{SearchIndex: true},
	}
}

// GetDefaultConfigPath returns the path to ~/.replay.json.
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".replay.json"), nil
}

// GetDefaultDatabasePath returns the path to ~/.replay/automations.db.
func GetDefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".replay", "automations.db"), nil
}

// DatabasePath resolves the configured database path, falling back to the
// default location.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage != nil && c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	return GetDefaultDatabasePath()
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{
				Path: path,
				Hint: "Run 'replay' once to create a default config, or create the file by hand.",
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &InvalidError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Check the file for JSON syntax errors.",
		}
	}

	if err := cfg.Validate(path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrCreate reads the default config, writing a fresh default one if
// none exists yet.
func LoadOrCreate() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	cfg = NewConfig()
	if saveErr := Save(cfg); saveErr != nil {
		return nil, saveErr
	}
	return cfg, nil
}

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, configPath)
}

// SaveTo writes the configuration to a specific path.
func SaveTo(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks structural invariants after a load.
func (c *Config) Validate(path string) error {
	if c.Storage == nil {
		c.Storage = &StorageConfig{Backend: BackendSQLite}
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}

	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return &InvalidError{
			Path:    path,
			Message: fmt.Sprintf("unknown storage backend %q", c.Storage.Backend),
			Hint:    `storage.backend must be "sqlite" or "memory"`,
		}
	}

	if c.Settings == nil {
		c.Settings = &Settings{}
	}

	return nil
}
