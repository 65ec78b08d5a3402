// Package config loads the runtime settings for the TinkerVR app from a
// YAML file. Every field has a sensible default; a missing file is not an
// error, a malformed one is.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the tunables the app applies to the assembly engine.
type Settings struct {
	// MoveSpeed is the explode/implode travel speed in scene units/sec.
	MoveSpeed float64 `yaml:"move_speed"`
	// ReturnRate is the grab-return asymptotic approach rate, per second.
	ReturnRate float64 `yaml:"return_rate"`
	// ScaleRate is the grab-return scale approach rate, per second.
	ScaleRate float64 `yaml:"scale_rate"`
	// AudioVolume scales all cues, 0-1.
	AudioVolume float64 `yaml:"audio_volume"`
	// AudioEnabled turns the cue player on or off entirely.
	AudioEnabled bool `yaml:"audio_enabled"`
	// TickRate is the scheduling loop frequency in Hz.
	TickRate int `yaml:"tick_rate"`
}

// Default returns the settings used when no file overrides them.
func Default() Settings {
	return Settings{
		MoveSpeed:    250,
		ReturnRate:   6,
		ScaleRate:    6,
		AudioVolume:  0.8,
		AudioEnabled: true,
		TickRate:     60,
	}
}

// Load reads settings from path, layered over the defaults. A missing file
// returns the defaults with no error.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.MoveSpeed <= 0 {
		return fmt.Errorf("move_speed must be positive, got %v", s.MoveSpeed)
	}
	if s.ReturnRate <= 0 || s.ScaleRate <= 0 {
		return fmt.Errorf("return rates must be positive, got %v/%v", s.ReturnRate, s.ScaleRate)
	}
	if s.AudioVolume < 0 || s.AudioVolume > 1 {
		return fmt.Errorf("audio_volume must be in [0,1], got %v", s.AudioVolume)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", s.TickRate)
	}
	return nil
}
