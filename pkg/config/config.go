// Package config provides configuration loading and management for colabbtr.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kakikik/ColabBTR/pkg/surface"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Stage defines the AFM sampling grid used when rendering images from
	// molecular structures.
	Stage surface.StageConfig `yaml:"stage"`

	// Optimization parameters for blind tip reconstruction
	Optimization struct {
		// Epochs is the number of passes over the image stack
		Epochs int `yaml:"epochs"`

		// LearningRate is the AdamW step size
		LearningRate float64 `yaml:"learningRate"`

		// WeightDecay is the decoupled weight decay coefficient
		WeightDecay float64 `yaml:"weightDecay"`

		// TipRows and TipCols give the estimated tip grid size
		TipRows int `yaml:"tipRows"`
		TipCols int `yaml:"tipCols"`
	} `yaml:"optimization"`

	// Filter controls the optional low-pass denoising of acquired images
	// before reconstruction
	Filter struct {
		// Enabled turns the pre-filter on
		Enabled bool `yaml:"enabled"`

		// Cutoff is the normalized radial frequency cutoff, Nyquist is 0.5
		// per axis
		Cutoff float64 `yaml:"cutoff"`
	} `yaml:"filter"`

	// Output parameters
	Output struct {
		// Directory receives all written artifacts
		Directory string `yaml:"directory"`

		// SavePNG writes grayscale renderings of tip and reconstructions
		SavePNG bool `yaml:"savePNG"`

		// SaveSTL writes a triangulated mesh of the estimated tip
		SaveSTL bool `yaml:"saveSTL"`

		// Verbose controls per-epoch progress output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Stage defaults cover a 10x10 nm scan at 0.25 nm per pixel
	cfg.Stage = surface.StageConfig{
		MinX:        -5.0,
		MaxX:        5.0,
		ResolutionX: 0.25,
		MinY:        -5.0,
		MaxY:        5.0,
		ResolutionY: 0.25,
	}

	cfg.Optimization.Epochs = 100
	cfg.Optimization.LearningRate = 0.1
	cfg.Optimization.WeightDecay = 0.0
	cfg.Optimization.TipRows = 15
	cfg.Optimization.TipCols = 15

	cfg.Filter.Enabled = false
	cfg.Filter.Cutoff = 0.25

	cfg.Output.Directory = "output"
	cfg.Output.SavePNG = true
	cfg.Output.SaveSTL = false
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks the configuration for values the pipeline cannot run with.
func (cfg *Config) Validate() error {
	if err := cfg.Stage.Validate(); err != nil {
		return err
	}
	if cfg.Optimization.Epochs < 0 {
		return fmt.Errorf("config: epochs must be non-negative, got %d", cfg.Optimization.Epochs)
	}
	if cfg.Optimization.LearningRate <= 0 {
		return fmt.Errorf("config: learning rate must be positive, got %v", cfg.Optimization.LearningRate)
	}
	if cfg.Optimization.TipRows < 1 || cfg.Optimization.TipCols < 1 {
		return fmt.Errorf("config: tip size must be at least 1x1, got %dx%d", cfg.Optimization.TipRows, cfg.Optimization.TipCols)
	}
	if cfg.Filter.Enabled && cfg.Filter.Cutoff <= 0 {
		return fmt.Errorf("config: filter cutoff must be positive, got %v", cfg.Filter.Cutoff)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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
