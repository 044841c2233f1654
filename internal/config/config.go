package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/visionfit/visionfit/pkg/types"
)

// Config holds the application configuration.
type Config struct {
	Backend string        `json:"backend"`
	Model   string        `json:"model"`
	URL     string        `json:"url"`
	View    ViewConfig    `json:"view"`
	Send    SendConfig    `json:"send"`
	Overlay OverlayConfig `json:"overlay"`
	Output  OutputConfig  `json:"output"`
}

// ViewConfig is the dimensions of the display surface detections are
// mapped into.
type ViewConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size returns the view dimensions as a types.Size.
func (v ViewConfig) Size() types.Size {
	return types.Size{Width: float64(v.Width), Height: float64(v.Height)}
}

// SendConfig controls how images are encoded before submission to a
// detection backend.
type SendConfig struct {
	Format  string `json:"format"`
	MaxDim  int    `json:"max_dim"`
	Quality int    `json:"quality"`
}

// OverlayConfig holds drawing parameters for the highlight renderer.
type OverlayConfig struct {
	StrokeRatio float64 `json:"stroke_ratio"`
	CrossRatio  float64 `json:"cross_ratio"`
}

// OutputConfig holds configuration for output generation.
type OutputConfig struct {
	Dir      string `json:"dir"`
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Backend: "saliency",
		Model:   "",
		URL:     "",
		View: ViewConfig{
			Width:  390,
			Height: 844,
		},
		Send: SendConfig{
			Format:  "jpg",
			MaxDim:  1536,
			Quality: 85,
		},
		Overlay: OverlayConfig{
			StrokeRatio: 0.004,
			CrossRatio:  0.01,
		},
		Output: OutputConfig{
			Dir:     "./out",
			Format:  "png",
			Quality: 92,
		},
	}
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// SaveToFile saves configuration to a JSON file.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case "gcv", "ollama", "llamacpp", "saliency":
	default:
		return fmt.Errorf("backend must be one of gcv, ollama, llamacpp, saliency")
	}

	if c.View.Width <= 0 || c.View.Height <= 0 {
		return fmt.Errorf("view dimensions must be positive")
	}

	if c.Send.Quality < 1 || c.Send.Quality > 100 {
		return fmt.Errorf("send.quality must be between 1 and 100")
	}
	if c.Send.MaxDim < 0 {
		return fmt.Errorf("send.max_dim must not be negative")
	}

	if c.Overlay.StrokeRatio <= 0 || c.Overlay.StrokeRatio > 0.5 {
		return fmt.Errorf("overlay.stroke_ratio must be in (0, 0.5]")
	}
	if c.Overlay.CrossRatio <= 0 || c.Overlay.CrossRatio > 0.5 {
		return fmt.Errorf("overlay.cross_ratio must be in (0, 0.5]")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	return nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "visionfit", "config.json")
}
