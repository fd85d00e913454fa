// Package config manages ~/.config/livebind/config.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yaml"

	// DefaultConfigDir is relative to the user's home directory.
	DefaultConfigDir = ".config/livebind"

	currentVersion = "1.0"
)

// Config holds the render defaults of the livebind CLI.
type Config struct {
	// Format is the output of render when --format is absent.
	Format string `yaml:"format,omitempty" validate:"oneof=html text"`

	Minify bool `yaml:"minify,omitempty"`

	// Version tracks the file layout for future migrations.
	Version string `yaml:"version,omitempty"`
}

var validate = validator.New()

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{Format: "html", Version: currentVersion}
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, ConfigFileName), nil
}

// LoadConfig reads the config file, falling back to DefaultConfig when it
// does not exist. Unknown keys are rejected.
func LoadConfig() (*Config, error) {
	p, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return cfg, nil
}

// SaveConfig validates cfg and writes it, creating the directory.
func SaveConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = currentVersion
	}

	p, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(p, out, 0644)
}

// Validate checks the configured values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := verrs[0]
		return fmt.Errorf("invalid %s %q: must be one of %s", fe.Field(), fe.Value(), fe.Param())
	}
	return err
}
