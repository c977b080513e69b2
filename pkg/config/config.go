// Package config provides configuration loading and management for octopusstream.
// It handles loading configuration from YAML files, applies environment
// overrides and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings
const (
	EnvFrameCap  = "OCTOPUS_FRAME_CAP"
	EnvLogLevel  = "OCTOPUS_LOG_LEVEL"
	EnvLogFormat = "OCTOPUS_LOG_FORMAT"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Import parameters
	Import struct {
		// FrameCap bounds the number of frames held in memory by one import
		FrameCap int `yaml:"frameCap"`

		// IncludeHeaders attaches per-frame metadata to the imported stack
		IncludeHeaders bool `yaml:"includeHeaders"`

		// Start and End select 1-based positions in the sorted chunk list.
		// Zero means the first and last chunk.
		Start int `yaml:"start"`
		End   int `yaml:"end"`
	} `yaml:"import"`

	// Memory guard parameters
	Memory struct {
		// WarnPixels is the sample count above which an import asks for confirmation
		WarnPixels int64 `yaml:"warnPixels"`
	} `yaml:"memory"`

	// Output parameters
	Output struct {
		// LogLevel is one of debug, info, warn, error
		LogLevel string `yaml:"logLevel"`

		// LogFormat is text or json
		LogFormat string `yaml:"logFormat"`

		// TableStyle selects the metadata table rendering: table, csv or none
		TableStyle string `yaml:"tableStyle"`

		// FramesDir is where exported frames are written, empty to skip
		FramesDir string `yaml:"framesDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Import.FrameCap = 1000
	cfg.Import.IncludeHeaders = true

	// 1000 frames of 512x512, the limit the acquisition software was tuned for
	cfg.Memory.WarnPixels = 1000 * 512 * 512

	cfg.Output.LogLevel = "info"
	cfg.Output.LogFormat = "text"
	cfg.Output.TableStyle = "table"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// LoadEnv reads .env style files into the process environment. Missing files
// are ignored; with no paths, ".env" in the working directory is tried.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("error loading env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from the environment
func (c *Config) ApplyEnv() error {
	if s := os.Getenv(EnvFrameCap); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvFrameCap, s, err)
		}
		c.Import.FrameCap = n
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		c.Output.LogLevel = s
	}
	if s := os.Getenv(EnvLogFormat); s != "" {
		c.Output.LogFormat = s
	}
	return nil
}

// Validate checks for values the importer cannot work with
func (c *Config) Validate() error {
	if c.Import.FrameCap < 0 {
		return fmt.Errorf("import.frameCap must not be negative, got %d", c.Import.FrameCap)
	}
	if c.Memory.WarnPixels < 0 {
		return fmt.Errorf("memory.warnPixels must not be negative, got %d", c.Memory.WarnPixels)
	}
	switch c.Output.TableStyle {
	case "table", "csv", "none":
	default:
		return fmt.Errorf("output.tableStyle must be table, csv or none, got %q", c.Output.TableStyle)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
