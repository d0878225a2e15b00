// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"mrz-scan/internal/mrz"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format  string `yaml:"format"`
		Verbose bool   `yaml:"verbose"`
		Debug   bool   `yaml:"debug"`
		NoColor bool   `yaml:"no_color"`
		ShowMRZ bool   `yaml:"show_mrz"`
	} `yaml:"defaults"`

	// Engine policy knobs
	Engine EngineConfig `yaml:"engine"`

	// Profiles for different decoding scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// EngineConfig holds the decode engine policy settings.
type EngineConfig struct {
	PivotYear        int      `yaml:"pivot_year"`
	CorrectionBudget int      `yaml:"correction_budget"`
	MaxAttempts      int      `yaml:"max_attempts"`
	FormatPriority   []string `yaml:"format_priority"`
}

// Profile represents a decoding profile with specific settings
type Profile struct {
	Format      string        `yaml:"format"`
	Verbose     bool          `yaml:"verbose"`
	Debug       bool          `yaml:"debug"`
	NoColor     bool          `yaml:"no_color"`
	ShowMRZ     bool          `yaml:"show_mrz"`
	Description string        `yaml:"description"`
	Engine      *EngineConfig `yaml:"engine,omitempty"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	// Default configuration
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false
	config.Defaults.ShowMRZ = false

	defaults := mrz.DefaultOptions()
	config.Engine.PivotYear = defaults.PivotYear
	config.Engine.CorrectionBudget = defaults.CorrectionBudget
	config.Engine.MaxAttempts = defaults.MaxAttempts
	for _, f := range defaults.FormatPriority {
		config.Engine.FormatPriority = append(config.Engine.FormatPriority, f.String())
	}

	// Add default strict profile: single-substitution repairs only. Pair
	// repairs are never attempted regardless of OCR confidence annotations.
	config.Profiles["strict"] = Profile{
		Format:      "text",
		NoColor:     true,
		Description: "Conservative decoding: at most one character substitution per field",
		Engine: &EngineConfig{
			PivotYear:        defaults.PivotYear,
			CorrectionBudget: 1,
			MaxAttempts:      defaults.MaxAttempts,
			FormatPriority:   []string{"TD3", "TD2", "TD1"},
		},
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	// Read config file
	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Validate the configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first - prioritize config.yaml
	if fileExists("config.yaml") {
		return "config.yaml"
	}
	if fileExists("mrz-scan.yaml") {
		return "mrz-scan.yaml"
	}
	if fileExists("mrz-scan.yml") {
		return "mrz-scan.yml"
	}

	// Project-specific config
	if fileExists(".mrz-scan.yaml") {
		return ".mrz-scan.yaml"
	}
	if fileExists(".mrz-scan.yml") {
		return ".mrz-scan.yml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// Legacy location in the home directory
	homeConfig := filepath.Join(home, ".mrz-scan.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	// XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "mrz-scan", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}
	xdgConfigFile = filepath.Join(xdgConfig, "mrz-scan", "config.yml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && !info.IsDir()
}

// ListProfiles returns a list of available profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// EngineOptions converts the engine section into mrz.Options, falling back to
// the engine defaults for unset or invalid entries.
func (c *Config) EngineOptions() mrz.Options {
	return engineOptions(c.Engine)
}

// EngineOptionsForProfile resolves the effective engine options when a profile
// is active: the profile's engine section wins over the global one.
func (c *Config) EngineOptionsForProfile(name string) mrz.Options {
	if p := c.GetProfile(name); p != nil && p.Engine != nil {
		return engineOptions(*p.Engine)
	}
	return c.EngineOptions()
}

func engineOptions(ec EngineConfig) mrz.Options {
	opts := mrz.Options{
		PivotYear:        ec.PivotYear,
		CorrectionBudget: ec.CorrectionBudget,
		MaxAttempts:      ec.MaxAttempts,
	}
	for _, name := range ec.FormatPriority {
		if f, ok := mrz.ParseFormat(name); ok {
			opts.FormatPriority = append(opts.FormatPriority, f)
		}
	}
	return opts
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := validateEngineConfig(config.Engine); err != nil {
		return err
	}
	for name, profile := range config.Profiles {
		if profile.Engine == nil {
			continue
		}
		if err := validateEngineConfig(*profile.Engine); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}

	return nil
}

// validateEngineConfig rejects engine settings that are out of range rather
// than merely unset. Zero values mean "use the default" and pass.
func validateEngineConfig(ec EngineConfig) error {
	if ec.PivotYear < 0 || ec.PivotYear > 99 {
		return fmt.Errorf("engine pivot_year %d out of range 0-99", ec.PivotYear)
	}
	if ec.CorrectionBudget < 0 {
		return fmt.Errorf("engine correction_budget %d cannot be negative", ec.CorrectionBudget)
	}
	if ec.MaxAttempts < 0 {
		return fmt.Errorf("engine max_attempts %d cannot be negative", ec.MaxAttempts)
	}
	for _, name := range ec.FormatPriority {
		if _, ok := mrz.ParseFormat(name); !ok {
			return fmt.Errorf("engine format_priority entry %q is not a known format", name)
		}
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; callers should not crash on a bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}
