// Package config loads editor settings from ~/.linkedit.yaml and builds the
// logger.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/linkage-toolkit/pkg/edit"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/optimize"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

// FileName is the config file looked up in the home directory.
const FileName = ".linkedit.yaml"

// Config is the on-disk configuration.
type Config struct {
	Demo      string          `yaml:"demo"`
	Editor    EditorConfig    `yaml:"editor"`
	Linkage   LinkageConfig   `yaml:"linkage"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Render    RenderConfig    `yaml:"render"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EditorConfig tunes interaction.
type EditorConfig struct {
	Tolerance       float64 `yaml:"tolerance"`
	HitRadius       float64 `yaml:"hit_radius"`
	TraceCapacity   int     `yaml:"trace_capacity"`
	SpeedScale      float64 `yaml:"speed_scale"`
	RotarySpeedStep float64 `yaml:"rotary_speed_step"`
	BarScale        float64 `yaml:"bar_scale"`
	FrameInterval   string  `yaml:"frame_interval"`
}

// LinkageConfig sets new-element geometry and path resolution.
type LinkageConfig struct {
	RotaryLength    float64 `yaml:"rotary_length"`
	RotaryRefOffset float64 `yaml:"rotary_ref_offset"`
	PathSteps       int     `yaml:"path_steps"`
}

// OptimizerConfig tunes the path fitter.
type OptimizerConfig struct {
	Candidates int     `yaml:"candidates"`
	Spread     float64 `yaml:"spread"`
	Seed       int64   `yaml:"seed"`
	Interval   string  `yaml:"interval"`
}

// RenderConfig sizes exported images.
type RenderConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Labels bool `yaml:"labels"`
}

// LoggingConfig selects the log level and destination.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty discards
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	s := edit.DefaultSettings()
	lo := linkage.DefaultOptions()
	f := optimize.DefaultFitter()
	p := render.DefaultPNGOptions()
	return &Config{
		Demo: "fourbar",
		Editor: EditorConfig{
			Tolerance:       s.Tolerance,
			HitRadius:       s.HitRadius,
			TraceCapacity:   s.TraceCapacity,
			SpeedScale:      s.SpeedScale,
			RotarySpeedStep: s.RotarySpeedStep,
			BarScale:        s.BarScale,
			FrameInterval:   "50ms",
		},
		Linkage: LinkageConfig{
			RotaryLength:    lo.RotaryLength,
			RotaryRefOffset: lo.RotaryRefOffset,
			PathSteps:       lo.PathSteps,
		},
		Optimizer: OptimizerConfig{
			Candidates: f.Candidates,
			Spread:     f.Spread,
			Seed:       f.Seed,
			Interval:   s.OptimizeInterval.String(),
		},
		Render: RenderConfig{
			Width:  p.Width,
			Height: p.Height,
			Labels: p.Labels,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.linkedit.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.clamp()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LINKEDIT_DEMO"); v != "" {
		c.Demo = v
	}
	if v := os.Getenv("LINKEDIT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("LINKEDIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// clamp puts out-of-range values back to their defaults.
func (c *Config) clamp() {
	d := DefaultConfig()
	positive := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	positive(&c.Editor.Tolerance, d.Editor.Tolerance)
	positive(&c.Editor.HitRadius, d.Editor.HitRadius)
	positive(&c.Editor.RotarySpeedStep, d.Editor.RotarySpeedStep)
	positive(&c.Linkage.RotaryLength, d.Linkage.RotaryLength)
	positive(&c.Linkage.RotaryRefOffset, d.Linkage.RotaryRefOffset)
	positive(&c.Optimizer.Spread, d.Optimizer.Spread)
	if c.Editor.SpeedScale <= 0 || c.Editor.SpeedScale >= 1 {
		c.Editor.SpeedScale = d.Editor.SpeedScale
	}
	if c.Editor.BarScale <= 0 || c.Editor.BarScale >= 1 {
		c.Editor.BarScale = d.Editor.BarScale
	}
	if c.Editor.TraceCapacity < 1 {
		c.Editor.TraceCapacity = d.Editor.TraceCapacity
	}
	if c.Linkage.PathSteps < 3 {
		c.Linkage.PathSteps = d.Linkage.PathSteps
	}
	if c.Optimizer.Candidates < 1 {
		c.Optimizer.Candidates = d.Optimizer.Candidates
	}
	if c.Render.Width < 16 || c.Render.Height < 16 {
		c.Render.Width, c.Render.Height = d.Render.Width, d.Render.Height
	}
}

// GetFrameInterval returns the animation frame interval.
func (c *Config) GetFrameInterval() time.Duration {
	d, err := time.ParseDuration(c.Editor.FrameInterval)
	if err != nil || d <= 0 {
		return 50 * time.Millisecond
	}
	return d
}

// GetOptimizeInterval returns the pause between optimizer steps.
func (c *Config) GetOptimizeInterval() time.Duration {
	d, err := time.ParseDuration(c.Optimizer.Interval)
	if err != nil || d < 0 {
		return edit.DefaultSettings().OptimizeInterval
	}
	return d
}

// Settings maps the configuration onto editor settings.
func (c *Config) Settings() edit.Settings {
	return edit.Settings{
		Tolerance:        c.Editor.Tolerance,
		HitRadius:        c.Editor.HitRadius,
		TraceCapacity:    c.Editor.TraceCapacity,
		SpeedScale:       c.Editor.SpeedScale,
		RotarySpeedStep:  c.Editor.RotarySpeedStep,
		BarScale:         c.Editor.BarScale,
		RotaryLength:     c.Linkage.RotaryLength,
		RotaryRefOffset:  c.Linkage.RotaryRefOffset,
		OptimizeInterval: c.GetOptimizeInterval(),
	}
}

// LinkageOptions maps the configuration onto model options.
func (c *Config) LinkageOptions() linkage.Options {
	return linkage.Options{
		RotaryLength:    c.Linkage.RotaryLength,
		RotaryRefOffset: c.Linkage.RotaryRefOffset,
		PathSteps:       c.Linkage.PathSteps,
	}
}

// Fitter builds the configured optimizer.
func (c *Config) Fitter() optimize.Fitter {
	return optimize.Fitter{
		Candidates: c.Optimizer.Candidates,
		Spread:     c.Optimizer.Spread,
		Seed:       c.Optimizer.Seed,
	}
}

// PNGOptions returns export options sized by the configuration.
func (c *Config) PNGOptions() render.PNGOptions {
	o := render.DefaultPNGOptions()
	o.Width, o.Height, o.Labels = c.Render.Width, c.Render.Height, c.Render.Labels
	return o
}

// SVGOptions returns export options sized by the configuration.
func (c *Config) SVGOptions() render.SVGOptions {
	o := render.DefaultSVGOptions()
	o.Width, o.Height = c.Render.Width, c.Render.Height
	if !c.Render.Labels {
		o.FontSize = 0
	}
	return o
}
