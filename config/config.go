// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package config loads the application configuration with layered
// precedence: environment variables override the config file, which
// overrides struct defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/bmeredith/couchwise/logging"
	"github.com/bmeredith/couchwise/recommend"
)

// ConfigPathEnvVar names the environment variable that points at an
// explicit config file, bypassing the default search paths.
const ConfigPathEnvVar = "COUCHWISE_CONFIG"

// envPrefix is stripped from environment variables before they are
// mapped to koanf paths. Double underscores separate nesting levels:
// COUCHWISE_ENGINE__MEMORY_SIZE -> engine.memory_size.
const envPrefix = "COUCHWISE_"

// DefaultConfigPaths are searched in order when no explicit path is set.
var DefaultConfigPaths = []string{
	"couchwise.yaml",
	"config/couchwise.yaml",
	"/etc/couchwise/couchwise.yaml",
}

// Config is the top-level application configuration.
type Config struct {
	Logging logging.Config   `koanf:"logging" json:"logging"`
	Engine  recommend.Config `koanf:"engine" json:"engine"`

	// CatalogPath points at a JSON content catalog to load at startup.
	// Empty means the host registers content programmatically.
	CatalogPath string `koanf:"catalog_path" json:"catalog_path"`

	// StorePath is the on-disk location for persisted model snapshots.
	// Empty disables persistence.
	StorePath string `koanf:"store_path" json:"store_path"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Engine:  *recommend.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional config file,
// and COUCHWISE_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path
// skips the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// findConfigFile returns the first config file that exists, preferring
// the path named by COUCHWISE_CONFIG. Empty string means none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
