// Package config loads mediakit conversion job files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/e7canasta/orion-mediakit/modules/pixelregion"
)

// Config represents a mediakit job file
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)
	Jobs     []Job  `yaml:"jobs"`
}

// Job describes one raw-volume conversion
type Job struct {
	Name        string            `yaml:"name"`
	Source      SourceConfig      `yaml:"source"`
	Destination DestinationConfig `yaml:"destination"`
	Filter      string            `yaml:"filter"`    // e.g. "triangle|dither" (default: "default")
	ColorKey    uint32            `yaml:"color_key"` // 0xAARRGGBB, 0 disables
	Output      string            `yaml:"output"`    // PNG path
	Slice       int               `yaml:"slice"`     // destination slice written to Output

	// Resolved by Validate
	ResolvedFilter pixelregion.Filter `yaml:"-"`
}

// SourceConfig describes a headerless pixel file
type SourceConfig struct {
	Path       string           `yaml:"path"`
	Format     string           `yaml:"format"`
	Width      int              `yaml:"width"`
	Height     int              `yaml:"height"`
	Depth      int              `yaml:"depth"`       // default: 1
	RowPitch   int              `yaml:"row_pitch"`   // default: tightly packed
	SlicePitch int              `yaml:"slice_pitch"` // default: RowPitch * block rows
	Box        *pixelregion.Box `yaml:"box,omitempty"`
	Palette    []uint32         `yaml:"palette,omitempty"` // 0xAARRGGBB entries for P8

	// Resolved by Validate
	ResolvedFormat pixelregion.Format `yaml:"-"`
}

// DestinationConfig describes the in-memory volume a job fills
type DestinationConfig struct {
	Format string           `yaml:"format"`
	Width  int              `yaml:"width"`
	Height int              `yaml:"height"`
	Depth  int              `yaml:"depth"` // default: 1
	Box    *pixelregion.Box `yaml:"box,omitempty"`

	// Resolved by Validate
	ResolvedFormat pixelregion.Format `yaml:"-"`
}

// Load reads and parses a YAML job file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML job data
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Job returns the job called name.
func (c *Config) Job(name string) (*Job, bool) {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i], true
		}
	}
	return nil, false
}

// Colors converts the configured palette.
func (s *SourceConfig) Colors() []pixelregion.Color {
	if len(s.Palette) == 0 {
		return nil
	}
	out := make([]pixelregion.Color, len(s.Palette))
	for i, c := range s.Palette {
		out[i] = pixelregion.Color{
			A: uint8(c >> 24),
			R: uint8(c >> 16),
			G: uint8(c >> 8),
			B: uint8(c),
		}
	}
	return out
}
