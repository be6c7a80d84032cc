package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds everything one analysis run needs. Values come from the
// optional YAML config file, then CLI flags override.
type Config struct {
	Classifier     string  `yaml:"classifier"`      // heuristic, vision
	Workers        int     `yaml:"workers"`         // parallel batch items
	TimeoutSeconds float64 `yaml:"timeout_seconds"` // per-image, 0 = none
	MinWidth       int     `yaml:"min_width"`       // advisory resolution floor
	MinHeight      int     `yaml:"min_height"`
	OutputPath     string  `yaml:"output"`
	Format         string  `yaml:"format"` // json, csv
	QRLabelDir     string  `yaml:"qr_label_dir"`
	PDFRenderDPI   int     `yaml:"pdf_render_dpi"`

	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures the vision classifier backend.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"` // OPENAI_API_KEY overrides
	Model  string `yaml:"model"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Classifier:   "heuristic",
		Workers:      runtime.NumCPU(),
		MinWidth:     1024,
		MinHeight:    768,
		OutputPath:   "results.json",
		Format:       "json",
		PDFRenderDPI: 150,
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// Load reads a YAML config file over the defaults. The environment variable
// OPENAI_API_KEY always wins over the file value so keys stay out of configs.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
