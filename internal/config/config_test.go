package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.FOVDegrees != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Graphics.FOVDegrees)
	}
	if cfg.Graphics.Near != 0.1 || cfg.Graphics.Far != 100 {
		t.Errorf("expected clip planes 0.1/100, got %f/%f", cfg.Graphics.Near, cfg.Graphics.Far)
	}

	// Test camera defaults
	if cfg.Camera.Position != [3]float32{4, 3, 3} {
		t.Errorf("expected camera at (4,3,3), got %v", cfg.Camera.Position)
	}
	if cfg.Camera.Target != [3]float32{} {
		t.Errorf("expected camera target at origin, got %v", cfg.Camera.Target)
	}
	if cfg.Camera.LookSpeed != 0.05 {
		t.Errorf("expected look speed 0.05, got %f", cfg.Camera.LookSpeed)
	}
	if cfg.Camera.MoveSpeed != 6 || cfg.Camera.MoveSpeedFast != 15 {
		t.Errorf("expected move speeds 6/15, got %f/%f", cfg.Camera.MoveSpeed, cfg.Camera.MoveSpeedFast)
	}

	// Test scene defaults
	if cfg.Scene.Asset != "" {
		t.Errorf("expected no asset by default, got %s", cfg.Scene.Asset)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov_degrees: 60
  clear_color: [0, 0, 0]

camera:
  position: [0, 1, 10]
  move_speed: 2

scene:
  asset: models/teapot.obj
  light_direction: [0, -1, 0]

logging:
  level: "debug"
  log_file: "meshview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FOVDegrees != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Graphics.FOVDegrees)
	}
	if cfg.Graphics.ClearColor != [3]float32{} {
		t.Errorf("expected black clear color, got %v", cfg.Graphics.ClearColor)
	}
	// Unset keys keep their defaults.
	if cfg.Graphics.Far != 100 {
		t.Errorf("expected default far plane 100, got %f", cfg.Graphics.Far)
	}

	if cfg.Camera.Position != [3]float32{0, 1, 10} {
		t.Errorf("expected camera at (0,1,10), got %v", cfg.Camera.Position)
	}
	if cfg.Camera.MoveSpeed != 2 {
		t.Errorf("expected move speed 2, got %f", cfg.Camera.MoveSpeed)
	}
	if cfg.Camera.MoveSpeedFast != 15 {
		t.Errorf("expected default fast speed 15, got %f", cfg.Camera.MoveSpeedFast)
	}

	if cfg.Scene.Asset != "models/teapot.obj" {
		t.Errorf("expected asset models/teapot.obj, got %s", cfg.Scene.Asset)
	}
	if cfg.Scene.LightDirection != [3]float32{0, -1, 0} {
		t.Errorf("expected light (0,-1,0), got %v", cfg.Scene.LightDirection)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshview.log" {
		t.Errorf("expected log file 'meshview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Graphics.FOVDegrees = 180 }},
		{"near behind far", func(c *Config) { c.Graphics.Near = 200 }},
		{"zero near", func(c *Config) { c.Graphics.Near = 0 }},
		{"negative speed", func(c *Config) { c.Camera.MoveSpeed = -1 }},
		{"zero light", func(c *Config) { c.Scene.LightDirection = [3]float32{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scene.Asset = "crate.obj"
	cfg.Camera.Target = [3]float32{1, 2, 3}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Scene.Asset != "crate.obj" {
		t.Errorf("expected asset crate.obj, got %s", loaded.Scene.Asset)
	}
	if loaded.Camera.Target != [3]float32{1, 2, 3} {
		t.Errorf("expected target (1,2,3), got %v", loaded.Camera.Target)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "asset flag",
			setup: func() { *flagAsset = "models/cube.obj" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Asset != "models/cube.obj" {
					t.Errorf("expected asset models/cube.obj, got %s", cfg.Scene.Asset)
				}
			},
			teardown: func() { *flagAsset = "" },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
scene:
  asset: from-file.obj
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	*flagAsset = "from-flag.obj"
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
		*flagAsset = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if cfg.Scene.Asset != "from-flag.obj" {
		t.Errorf("expected asset from flag, got %s", cfg.Scene.Asset)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  near: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
