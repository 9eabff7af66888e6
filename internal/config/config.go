// Package config provides application configuration management with support for
// TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/unpdf/pkg/logging"
)

const (
	// BaseConfigFile is the default configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvUnpdfEnv specifies the environment name for configuration overlays.
	EnvUnpdfEnv = "UNPDF_ENV"
)

var loggingEnv = &logging.Env{
	Level:  "LOG_LEVEL",
	Format: "LOG_FORMAT",
	File:   "LOG_FILE",
}

// Config represents the root configuration shared by the CLI and the server.
type Config struct {
	Extract ExtractConfig  `toml:"extract"`
	Server  ServerConfig   `toml:"server"`
	Logging logging.Config `toml:"logging"`
}

// Load reads the configuration file at path and applies any environment-specific
// overlay found next to it. An empty path reads BaseConfigFile if it exists and
// otherwise starts from an empty configuration. The result is not finalized.
func Load(path string) (*Config, error) {
	cfg, err := loadBase(path)
	if err != nil {
		return nil, err
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	if err := c.Extract.Finalize(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Apply merges overlay into a finalized configuration and validates the result.
// Unlike Finalize it does not reload environment overrides, so overlay values
// such as command line flags take precedence over them.
func (c *Config) Apply(overlay *Config) error {
	c.Merge(overlay)

	if err := c.Extract.validate(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(nil); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Extract.Merge(&overlay.Extract)
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
}

func loadBase(path string) (*Config, error) {
	if path != "" {
		return load(path)
	}

	cfg, err := load(BaseConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvUnpdfEnv); env != "" {
		overlayPath := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(overlayPath); err == nil {
			return overlayPath
		}
	}
	return ""
}
