// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the cvlens configuration, loadable from a JSON file. All fields
// are optional; missing values use defaults or must come from CLI flags or
// the environment.
type Config struct {
	// Behavior
	APIKey   string `json:"api_key,omitempty"`  // Gemini API key
	Language string `json:"language,omitempty"` // Language for phrased messages, e.g. "English"
	Verbose  bool   `json:"verbose,omitempty"`  // Print detailed debug information

	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Analysis overrides. Zero values keep the built-in thresholds.
	MaxObservations int     `json:"max_observations,omitempty"`
	MinConfidence   float64 `json:"min_confidence,omitempty"`
	OutdatedMonths  int     `json:"outdated_months,omitempty"`
	GapMonths       int     `json:"gap_months,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxObservations < 0 {
		return fmt.Errorf("config error: 'max_observations' must be non-negative")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("config error: 'min_confidence' must be between 0 and 1")
	}
	if c.OutdatedMonths < 0 {
		return fmt.Errorf("config error: 'outdated_months' must be non-negative")
	}
	if c.GapMonths < 0 {
		return fmt.Errorf("config error: 'gap_months' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. CLI flags always win for booleans.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Language == "" {
		result.Language = defaults.Language
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxObservations == 0 {
		result.MaxObservations = defaults.MaxObservations
	}
	if result.MinConfidence == 0 {
		result.MinConfidence = defaults.MinConfidence
	}
	if result.OutdatedMonths == 0 {
		result.OutdatedMonths = defaults.OutdatedMonths
	}
	if result.GapMonths == 0 {
		result.GapMonths = defaults.GapMonths
	}

	return result
}
