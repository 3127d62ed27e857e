/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/cloudrecord/pkg/logger"
	"github.com/ssargent/cloudrecord/pkg/record"
)

// Config represents the cloudrecord configuration
type Config struct {
	CacheDir string        `yaml:"cache_dir"`
	Codec    Codec         `yaml:"codec"`
	Records  Records       `yaml:"records"`
	Logging  logger.Config `yaml:"logging"`
}

// Codec contains record decoding options
type Codec struct {
	AllowPartialRecords bool `yaml:"allow_partial_records"`
}

// Records controls how new records are named and placed
type Records struct {
	NameScheme   string `yaml:"name_scheme"` // ksuid or uuid
	DefaultZone  string `yaml:"default_zone"`
	DefaultOwner string `yaml:"default_owner"`
}

// Zone returns the configured default zone.
func (r Records) Zone() record.ZoneID {
	z := record.DefaultZone
	if r.DefaultZone != "" {
		z.Name = r.DefaultZone
	}
	if r.DefaultOwner != "" {
		z.Owner = r.DefaultOwner
	}
	return z
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheDir: DefaultCacheDir(),
		Records: Records{
			NameScheme:   "ksuid",
			DefaultZone:  record.DefaultZoneName,
			DefaultOwner: record.DefaultZoneOwner,
		},
		Logging: logger.DefaultConfig(),
	}
}

// DefaultCacheDir returns the per-user cache location.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "./cache"
	}
	return filepath.Join(dir, "cloudrecord")
}

// Validate checks values that would otherwise fail later at use.
func (c *Config) Validate() error {
	var errs []error
	if c.CacheDir == "" {
		errs = append(errs, errors.New("cache_dir must not be empty"))
	}
	if _, err := record.GeneratorFor(c.Records.NameScheme); err != nil {
		errs = append(errs, fmt.Errorf("records.name_scheme: %w", err))
	}
	if _, err := logger.New(c.Logging); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration, optionally pointing at
// cacheDir, and returns it.
func BootstrapConfig(configPath string, cacheDir string) (*Config, error) {
	config := DefaultConfig()
	if cacheDir != "" {
		config.CacheDir = cacheDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./cloudrecord.yaml"
	}

	// ~/.config/cloudrecord/config.yaml on Linux and macOS
	return filepath.Join(homeDir, ".config", "cloudrecord", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
