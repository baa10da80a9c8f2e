// Package config holds the prdgate configuration and its loading rules.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getlawrence/prdgate/internal/prd"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by the output setting
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents the prdgate configuration
type Config struct {
	// Items with fewer points than this may skip the PRD
	PointsThreshold int `koanf:"points_threshold" yaml:"points_threshold"`

	// Items scoring at least this may skip the PRD
	ScoreThreshold float64 `koanf:"score_threshold" yaml:"score_threshold"`

	// Default output format (text, json, yaml)
	Output string `koanf:"output" yaml:"output"`

	// Whether to colorize text output
	Color bool `koanf:"color" yaml:"color"`

	// Listen address for serve
	Addr string `koanf:"addr" yaml:"addr"`

	// Per-client request rate for serve, 0 disables limiting
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`

	// Burst allowance on top of rate_limit
	RateBurst int `koanf:"rate_burst" yaml:"rate_burst"`

	// Directory generated PRD drafts are written to
	PRDDir string `koanf:"prd_dir" yaml:"prd_dir"`

	// Log level: debug, info, warn, error
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// File the configuration was loaded from, empty for defaults only
	Path string `koanf:"-" yaml:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PointsThreshold: prd.DefaultPointsThreshold,
		ScoreThreshold:  prd.DefaultScoreThreshold,
		Output:          FormatText,
		Color:           true,
		Addr:            ":8085",
		RateLimit:       20,
		RateBurst:       40,
		PRDDir:          "docs/prd",
		LogLevel:        "warn",
	}
}

// Policy returns the decision policy described by the thresholds
func (c *Config) Policy() prd.Policy {
	return prd.Policy{
		PointsBelow:  c.PointsThreshold,
		ScoreAtLeast: c.ScoreThreshold,
	}
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Output) {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: unsupported output format %q", ErrInvalidConfig, c.Output)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: rate_limit and rate_burst must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		return fmt.Errorf("%w: rate_burst must be positive when rate_limit is set", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig writes the configuration as YAML
func SaveConfig(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var configFileNames = []string{
	".prdgate.yaml",
	".prdgate.yml",
}

// findConfigFile looks for config files in the given directories, in order
func findConfigFile(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// defaultSearchDirs returns the current directory followed by the home directory
func defaultSearchDirs() []string {
	dirs := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, homeDir)
	}
	return dirs
}
