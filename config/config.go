// Package config holds the post-processing settings, read from a YAML file
// and command line overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kennylevinsen/gospiral/gcode"
	"github.com/kennylevinsen/gospiral/spiral"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config uses the key names of the slicer settings it mirrors.
type Config struct {
	SpiralVase         bool    `mapstructure:"spiral_vase" yaml:"spiral_vase"`
	SmoothSpiral       bool    `mapstructure:"smooth_spiral" yaml:"smooth_spiral"`
	MaxXYSmoothing     float64 `mapstructure:"max_xy_smoothing" yaml:"max_xy_smoothing"`
	RelativeExtrusion  bool    `mapstructure:"use_relative_e_distances" yaml:"use_relative_e_distances"`
	BottomLayers       int     `mapstructure:"bottom_layers" yaml:"bottom_layers"`
	TransitionLayer    bool    `mapstructure:"transition_layer" yaml:"transition_layer"`
	Precision          int     `mapstructure:"precision" yaml:"precision"`
	ExtrusionPrecision int     `mapstructure:"extrusion_precision" yaml:"extrusion_precision"`
}

func Defaults() Config {
	return Config{
		SpiralVase:         true,
		MaxXYSmoothing:     spiral.DefaultMaxXYSmoothing,
		RelativeExtrusion:  true,
		BottomLayers:       1,
		TransitionLayer:    true,
		Precision:          gcode.DefaultPrecision.Axes,
		ExtrusionPrecision: gcode.DefaultPrecision.Extrusion,
	}
}

// Load reads the YAML file at path, if any, and applies the key=value
// overrides on top. Keys missing from both keep their defaults; unknown keys
// are an error.
func Load(path string, overrides []string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return Config{}, fmt.Errorf("invalid override %q, expected key=value", o)
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	cfg := Defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.MaxXYSmoothing < 0:
		return fmt.Errorf("max_xy_smoothing must not be negative, got %v", c.MaxXYSmoothing)
	case c.BottomLayers < 0:
		return fmt.Errorf("bottom_layers must not be negative, got %d", c.BottomLayers)
	case c.Precision < 0 || c.Precision > 10:
		return fmt.Errorf("precision must be between 0 and 10, got %d", c.Precision)
	case c.ExtrusionPrecision < 0 || c.ExtrusionPrecision > 10:
		return fmt.Errorf("extrusion_precision must be between 0 and 10, got %d", c.ExtrusionPrecision)
	}
	return nil
}

// Spiral returns the processor settings. The processor starts disabled, the
// caller enables it per layer.
func (c Config) Spiral() spiral.Config {
	return spiral.Config{
		SmoothSpiral:      c.SmoothSpiral,
		MaxXYSmoothing:    c.MaxXYSmoothing,
		RelativeExtrusion: c.RelativeExtrusion,
		Precision: gcode.Precision{
			Axes:      c.Precision,
			Extrusion: c.ExtrusionPrecision,
		},
	}
}
