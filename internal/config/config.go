// Package config loads the fieldwave runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds every FIELDWAVE_* setting.
type Config struct {
	FPS    int     `env:"FIELDWAVE_FPS" envDefault:"60"`
	Frames uint64  `env:"FIELDWAVE_FRAMES" envDefault:"0"` // 0 runs until interrupted
	Speed  float64 `env:"FIELDWAVE_SPEED" envDefault:"1"`

	Seed  int64  `env:"FIELDWAVE_SEED" envDefault:"0"`
	Name  string `env:"FIELDWAVE_NAME" envDefault:"receiver"`
	State string `env:"FIELDWAVE_STATE"` // persona query, e.g. "phase=growing&energy=0.70"

	Script string `env:"FIELDWAVE_SCRIPT"` // e.g. "120:burst,240:silence"
	Stdin  bool   `env:"FIELDWAVE_STDIN" envDefault:"true"`

	RootHz      float64 `env:"FIELDWAVE_ROOT_HZ" envDefault:"245"`
	Morph       float64 `env:"FIELDWAVE_MORPH" envDefault:"0"` // wavetable position, sine 0 .. bright saw 1
	Render      bool    `env:"FIELDWAVE_RENDER" envDefault:"false"`
	RenderWidth int     `env:"FIELDWAVE_RENDER_WIDTH" envDefault:"64"`
	SampleEvery uint64  `env:"FIELDWAVE_SAMPLE_EVERY" envDefault:"30"` // frames between journal samples

	LogLevel slog.Level `env:"FIELDWAVE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the frame loop cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.FPS <= 0 || c.FPS > 1000 {
		errs = append(errs, fmt.Errorf("FIELDWAVE_FPS must be in 1..1000, got %d", c.FPS))
	}
	if c.Speed < 0 {
		errs = append(errs, fmt.Errorf("FIELDWAVE_SPEED must not be negative, got %v", c.Speed))
	}
	if c.Morph < 0 || c.Morph > 1 {
		errs = append(errs, fmt.Errorf("FIELDWAVE_MORPH must be in 0..1, got %v", c.Morph))
	}
	if c.RenderWidth <= 0 {
		errs = append(errs, fmt.Errorf("FIELDWAVE_RENDER_WIDTH must be positive, got %d", c.RenderWidth))
	}
	if c.SampleEvery == 0 {
		errs = append(errs, errors.New("FIELDWAVE_SAMPLE_EVERY must be positive"))
	}
	return errors.Join(errs...)
}
