// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FOVDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	ClearColor [3]float32 `yaml:"clear_color,flow"`
}

// CameraConfig holds the initial camera placement and control speeds.
type CameraConfig struct {
	Position      [3]float32 `yaml:"position,flow"`
	Target        [3]float32 `yaml:"target,flow"`
	LookSpeed     float32    `yaml:"look_speed"`
	MoveSpeed     float32    `yaml:"move_speed"`
	MoveSpeedFast float32    `yaml:"move_speed_fast"`
}

// SceneConfig selects the model and lighting.
type SceneConfig struct {
	Asset          string     `yaml:"asset"` // OBJ file; empty opens a file dialog
	LightDirection [3]float32 `yaml:"light_direction,flow"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOVDegrees: 45,
			Near:       0.1,
			Far:        100,
			ClearColor: [3]float32{0.1, 0.1, 0.15},
		},
		Camera: CameraConfig{
			Position:      [3]float32{4, 3, 3},
			Target:        [3]float32{0, 0, 0},
			LookSpeed:     0.05,
			MoveSpeed:     6,
			MoveSpeedFast: 15,
		},
		Scene: SceneConfig{
			LightDirection: [3]float32{-0.4, -1, -0.6},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Validate checks values the viewer cannot run with.
func (c *Config) Validate() error {
	g := c.Graphics
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, g.Width, g.Height)
	case g.FOVDegrees <= 0 || g.FOVDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %v must be in (0, 180)", ErrInvalid, g.FOVDegrees)
	case g.Near <= 0 || g.Far <= g.Near:
		return fmt.Errorf("%w: clip planes near=%v far=%v", ErrInvalid, g.Near, g.Far)
	case c.Camera.MoveSpeed < 0 || c.Camera.MoveSpeedFast < 0:
		return fmt.Errorf("%w: negative move speed", ErrInvalid)
	case c.Scene.LightDirection == [3]float32{}:
		return fmt.Errorf("%w: light_direction is zero", ErrInvalid)
	}
	return nil
}
