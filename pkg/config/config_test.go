package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Glitch.Interval != 7.0 || cfg.Glitch.Threshold != 0.7 || cfg.Glitch.RGBDiff != 0.001 {
		t.Errorf("glitch constants drifted: %+v", cfg.Glitch)
	}
	if cfg.Trigger.Interval != 100*time.Millisecond {
		t.Errorf("trigger interval = %v", cfg.Trigger.Interval)
	}
	if cfg.Trigger.Escalated.Contrast != 10 || cfg.Trigger.Normal.Contrast != 1.2 {
		t.Errorf("preset contrast drifted: %+v / %+v", cfg.Trigger.Escalated, cfg.Trigger.Normal)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if cfg == nil || cfg.Graphics.Width != 800 {
		t.Errorf("missing file must still return defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
graphics:
  width: 1920
  height: 1080
  display_mode: headless
trigger:
  interval: 250ms
  values: [1, 2, 3, 4, 5, 6]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("resolution = %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.DisplayMode != DisplayHeadless {
		t.Errorf("display mode = %q", cfg.Graphics.DisplayMode)
	}
	if cfg.Trigger.Interval != 250*time.Millisecond {
		t.Errorf("trigger interval = %v", cfg.Trigger.Interval)
	}
	if cfg.Glitch.Interval != 7.0 {
		t.Errorf("unset fields must keep defaults, interval = %v", cfg.Glitch.Interval)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GLITCHFX_GRAPHICS_WIDTH", "1280")
	t.Setenv("GLITCHFX_LOG_LEVEL", "debug")
	t.Setenv("GLITCHFX_TRIGGER_INTERVAL", "50ms")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("width = %d", cfg.Graphics.Width)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Trigger.Interval != 50*time.Millisecond {
		t.Errorf("trigger interval = %v", cfg.Trigger.Interval)
	}
	if cfg.Graphics.Height != 600 {
		t.Errorf("unset env must keep value, height = %d", cfg.Graphics.Height)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.Graphics.DisplayMode = DisplayTerminal
	cfg.Trigger.Values = []int{10, 20, 30, 40, 50, 60}

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Graphics.DisplayMode != DisplayTerminal {
		t.Errorf("display mode = %q", loaded.Graphics.DisplayMode)
	}
	if len(loaded.Trigger.Values) != 6 || loaded.Trigger.Values[5] != 60 {
		t.Errorf("trigger values = %v", loaded.Trigger.Values)
	}
	if loaded.Trigger.Interval != cfg.Trigger.Interval {
		t.Errorf("interval = %v, want %v", loaded.Trigger.Interval, cfg.Trigger.Interval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, "resolution"},
		{"bad mode", func(c *Config) { c.Graphics.DisplayMode = "vr" }, "display_mode"},
		{"bad glyphs", func(c *Config) { c.Graphics.TerminalGlyphs = "emoji" }, "terminal_glyphs"},
		{"bad time source", func(c *Config) { c.Glitch.TimeSource = "tape" }, "time_source"},
		{"interval", func(c *Config) { c.Glitch.Interval = 0 }, "interval"},
		{"threshold", func(c *Config) { c.Glitch.Threshold = 1 }, "threshold"},
		{"layers", func(c *Config) { c.Glitch.BlockLayers = nil }, "block layers"},
		{"trigger size", func(c *Config) { c.Trigger.Values = []int{1, 2} }, "6 values"},
		{"trigger range", func(c *Config) { c.Trigger.Values = []int{1, 2, 3, 4, 5, 256} }, "outside"},
		{"trigger dup", func(c *Config) { c.Trigger.Values = []int{1, 2, 3, 4, 5, 5} }, "duplicate"},
		{"trigger interval", func(c *Config) { c.Trigger.Interval = 0 }, "trigger interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
