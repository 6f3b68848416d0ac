// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Source types
const (
	SourceTypeGitHub = "github"
	SourceTypeLocal  = "local"
)

// Config represents the application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Frontend  string          `yaml:"frontend" default:"stepwise" validate:"oneof=stepwise batch collector"`
	Presenter PresenterConfig `yaml:"presenter"`
	Remote    RemoteConfig    `yaml:"remote"`
	Sources   []SourceConfig  `yaml:"sources" validate:"required,min=1,dive"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stderr"` // "stdout", "stderr", or file path
}

// PresenterConfig represents terminal rendering configuration.
type PresenterConfig struct {
	Style    string `yaml:"style" default:"auto" validate:"oneof=auto dark light notty ascii"`
	WordWrap int    `yaml:"word_wrap" default:"80" validate:"gte=0,lte=400"`
}

// RemoteConfig represents the remote-control server configuration.
type RemoteConfig struct {
	Addr  string `yaml:"addr" default:"127.0.0.1:8765" validate:"required"`
	Token string `yaml:"token"`
}

// SourceConfig represents a single source provider configuration.
// Providers are consulted in order; the last one that can handle an
// identifier wins.
type SourceConfig struct {
	Type     string         `yaml:"type" validate:"required,oneof=github local"`
	Settings map[string]any `yaml:"settings"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{
		Sources: []SourceConfig{
			{
				Type: SourceTypeGitHub,
				Settings: map[string]any{
					"projects": map[string]any{
						"matplotlib": map[string]any{
							"owner": "matplotlib",
							"repo":  "matplotlib",
							"path":  "examples",
						},
					},
				},
			},
			{
				Type:     SourceTypeLocal,
				Settings: map[string]any{"root": "."},
			},
		},
	}
	cfg.overrideFromEnv()
	// Defaults on a literal config cannot fail.
	_ = defaults.Set(cfg)
	return cfg
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return Parse(data)
}

// LoadOrDefault loads the file at path, falling back to Default when it does
// not exist. The boolean reports whether the file was found.
func LoadOrDefault(path string) (*Config, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Parse parses, defaults and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		for i := range c.Sources {
			if c.Sources[i].Type != SourceTypeGitHub {
				continue
			}
			if c.Sources[i].Settings == nil {
				c.Sources[i].Settings = make(map[string]any)
			}
			c.Sources[i].Settings["token"] = v
		}
	}
	if v := os.Getenv("DEMOBOX_REMOTE_TOKEN"); v != "" {
		c.Remote.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
