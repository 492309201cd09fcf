// Package config handles pipeline configuration loading and management.
package config

import (
	"github.com/forgeworks/assetforge/internal/normalize"
)

// Config holds all pipeline settings.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Detection DetectionConfig `yaml:"detection"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RenderConfig holds silhouette rendering settings.
type RenderConfig struct {
	Size           int     `yaml:"size"`
	Supersample    int     `yaml:"supersample"`
	Margin         float64 `yaml:"margin"`
	TriangleBudget int     `yaml:"triangle_budget"`
}

// DetectionConfig holds handle detection tunables.
type DetectionConfig struct {
	BrightnessThreshold   uint8   `yaml:"brightness_threshold"`
	GuardContractionRatio float64 `yaml:"guard_contraction_ratio"`
	GuardSpan             int     `yaml:"guard_span"`
	SearchBand            float64 `yaml:"search_band"`
	HandleStartOffset     int     `yaml:"handle_start_offset"`
	HandleGrowthRatio     float64 `yaml:"handle_growth_ratio"`
	MaxHandleRows         int     `yaml:"max_handle_rows"`
	BrightnessFloor       uint8   `yaml:"brightness_floor"`
	FlipBrightnessRatio   float64 `yaml:"flip_brightness_ratio"`
}

// NormalizeConfig holds normalization settings. Conventions entries
// override the built-in per-category table.
type NormalizeConfig struct {
	TargetHeight float64                         `yaml:"target_height"`
	Conventions  map[string]normalize.Convention `yaml:"conventions"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Size:           512,
			Supersample:    2,
			Margin:         0.05,
			TriangleBudget: 100000,
		},
		Detection: DetectionConfig{
			BrightnessThreshold:   40,
			GuardContractionRatio: 0.5,
			GuardSpan:             5,
			SearchBand:            0.6,
			HandleStartOffset:     10,
			HandleGrowthRatio:     0.3,
			MaxHandleRows:         120,
			BrightnessFloor:       10,
			FlipBrightnessRatio:   0.3,
		},
		Normalize: NormalizeConfig{
			TargetHeight: 1.83,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ConventionTable merges the configured convention overrides over the
// built-in defaults.
func (c *Config) ConventionTable() normalize.ConventionTable {
	table := normalize.DefaultConventions()
	for name, conv := range c.Normalize.Conventions {
		table[normalize.ParseCategory(name)] = conv
	}
	return table
}
