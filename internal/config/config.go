// Package config handles engine configuration loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region types

// Config is the root configuration structure.
type Config struct {
	Database DatabaseConfig   `yaml:"database"`
	Logging  LoggingConfig    `yaml:"logging"`
	Access   AccessConfig     `yaml:"access"`
	Domains  []ModifierConfig `yaml:"domains"`
}

// DatabaseConfig holds durable-state settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds structured-log settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AccessConfig lists the principals allowed to train or administer.
// AllowAll bypasses both lists, for local development only.
type AccessConfig struct {
	Trainers []string `yaml:"trainers"`
	Admins   []string `yaml:"admins"`
	AllowAll bool     `yaml:"allow_all"`
}

// ModifierConfig seeds one domain's score adjustment at startup.
type ModifierConfig struct {
	Domain    int                     `yaml:"domain"`
	Bias      [vocab.NumClasses]int32 `yaml:"bias"`
	Intensity int32                   `yaml:"intensity"`
}

// #endregion types

// #region load

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "sentiment.db"},
		Logging:  LoggingConfig{Level: "info"},
		Access:   AccessConfig{AllowAll: true},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the defaults when
// the path is empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks cross-field constraints the YAML schema cannot.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: must be debug, info, warn, or error", c.Logging.Level)
	}
	for _, m := range c.Domains {
		if m.Domain <= 0 || m.Domain >= domain.NumDomains {
			return fmt.Errorf("domains: id %d outside [1, %d)", m.Domain, domain.NumDomains)
		}
	}
	return nil
}

// #endregion load

// #region save

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// #endregion save
