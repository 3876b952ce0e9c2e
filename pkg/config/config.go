package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "GLITCHFX_"

// Display modes
const (
	DisplayOpenGL   = "opengl"
	DisplayTerminal = "terminal"
	DisplayHeadless = "headless"
)

// Terminal glyph sets
const (
	GlyphsBlocks = "blocks" // half blocks, two true-colour pixels per cell
	GlyphsASCII  = "ascii"  // one luminance character per cell
)

// Time sources for the shader's time uniform
const (
	TimeFrames = "frames" // frame id divided by frame rate
	TimeWall   = "wall"   // seconds since start
)

// Config represents the main configuration
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" envPrefix:"GRAPHICS_"`
	Glitch   GlitchConfig   `yaml:"glitch" envPrefix:"GLITCH_"`
	Trigger  TriggerConfig  `yaml:"trigger" envPrefix:"TRIGGER_"`
	Pipeline PipelineConfig `yaml:"pipeline" envPrefix:"PIPELINE_"`
	Audio    AudioConfig    `yaml:"audio" envPrefix:"AUDIO_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// GraphicsConfig contains window and frame output configuration
type GraphicsConfig struct {
	Width           int     `yaml:"width" env:"WIDTH"`
	Height          int     `yaml:"height" env:"HEIGHT"`
	Fullscreen      bool    `yaml:"fullscreen" env:"FULLSCREEN"`
	VSync           bool    `yaml:"vsync" env:"VSYNC"`
	FrameRate       int     `yaml:"framerate" env:"FRAMERATE"`
	DisplayMode     string  `yaml:"display_mode" env:"DISPLAY_MODE"` // opengl, terminal, headless
	ResolutionScale float64 `yaml:"resolution_scale" env:"RESOLUTION_SCALE"`
	SourceImage     string  `yaml:"source_image" env:"SOURCE_IMAGE"` // empty uses the test pattern
	Workers         int     `yaml:"workers" env:"WORKERS"`
	TerminalGlyphs  string  `yaml:"terminal_glyphs" env:"TERMINAL_GLYPHS"` // blocks, ascii

	// Headless output
	OutputDir     string  `yaml:"output_dir" env:"OUTPUT_DIR"`
	Frames        int     `yaml:"frames" env:"FRAMES"`
	StartTime     float64 `yaml:"start_time" env:"START_TIME"`
	FrameInterval float64 `yaml:"frame_interval" env:"FRAME_INTERVAL"`
}

// BlockLayerConfig parameterises one block-noise layer
type BlockLayerConfig struct {
	FreqX          float64 `yaml:"freq_x"`
	FreqY          float64 `yaml:"freq_y"`
	TimeStepScale  float64 `yaml:"time_step_scale"`
	TimeStepPeriod float64 `yaml:"time_step_period"`
	Threshold      float64 `yaml:"threshold"`
	GainX          float64 `yaml:"gain_x"`
	GainY          float64 `yaml:"gain_y"`
}

// GlitchConfig holds the shader constants
type GlitchConfig struct {
	Interval       float64            `yaml:"interval" env:"INTERVAL"`
	Threshold      float64            `yaml:"threshold" env:"THRESHOLD"`
	RGBDiff        float64            `yaml:"rgb_diff" env:"RGB_DIFF"`
	ShakeAmplitude float64            `yaml:"shake_amplitude" env:"SHAKE_AMPLITUDE"`
	ShakeFloor     float64            `yaml:"shake_floor" env:"SHAKE_FLOOR"`
	BlockGain      float64            `yaml:"block_gain" env:"BLOCK_GAIN"`
	BlockLayers    []BlockLayerConfig `yaml:"block_layers"`
	TimeSource     string             `yaml:"time_source" env:"TIME_SOURCE"`
}

// PresetConfig is a set of pipeline values applied on a state change
type PresetConfig struct {
	Contrast                 float64 `yaml:"contrast"`
	GrainEnabled             bool    `yaml:"grain_enabled"`
	GrainIntensity           float64 `yaml:"grain_intensity"`
	GrainAnimated            bool    `yaml:"grain_animated"`
	ChromaticEnabled         bool    `yaml:"chromatic_enabled"`
	ChromaticAmount          float64 `yaml:"chromatic_amount"`
	ChromaticRadialIntensity float64 `yaml:"chromatic_radial_intensity"`
}

// TriggerConfig configures the periodic escalation sampler
type TriggerConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED"`
	Interval       time.Duration `yaml:"interval" env:"INTERVAL"`
	Values         []int         `yaml:"values" env:"VALUES"`
	TextureSize    int           `yaml:"texture_size" env:"TEXTURE_SIZE"`
	Brightness     float64       `yaml:"brightness" env:"BRIGHTNESS"`
	Persistence    float64       `yaml:"persistence" env:"PERSISTENCE"`
	Octaves        int           `yaml:"octaves" env:"OCTAVES"`
	AnimationSpeed float64       `yaml:"animation_speed" env:"ANIMATION_SPEED"`
	Escalated      PresetConfig  `yaml:"escalated"`
	Normal         PresetConfig  `yaml:"normal"`
}

// PipelineConfig mirrors the host image pipeline's initial values
type PipelineConfig struct {
	Samples          int     `yaml:"samples" env:"SAMPLES"`
	BloomEnabled     bool    `yaml:"bloom_enabled" env:"BLOOM_ENABLED"`
	BloomThreshold   float64 `yaml:"bloom_threshold" env:"BLOOM_THRESHOLD"`
	BloomWeight      float64 `yaml:"bloom_weight" env:"BLOOM_WEIGHT"`
	BloomScale       float64 `yaml:"bloom_scale" env:"BLOOM_SCALE"`
	BloomKernel      int     `yaml:"bloom_kernel" env:"BLOOM_KERNEL"`
	ToneMapping      bool    `yaml:"tone_mapping" env:"TONE_MAPPING"`
	ColorCurves      bool    `yaml:"color_curves" env:"COLOR_CURVES"`
	GlobalSaturation float64 `yaml:"global_saturation" env:"GLOBAL_SATURATION"`
	Contrast         float64 `yaml:"contrast" env:"CONTRAST"`
	VignetteEnabled  bool    `yaml:"vignette_enabled" env:"VIGNETTE_ENABLED"`
	VignetteWeight   float64 `yaml:"vignette_weight" env:"VIGNETTE_WEIGHT"`
	GrainIntensity   float64 `yaml:"grain_intensity" env:"GRAIN_INTENSITY"`
	ChromaticAmount  float64 `yaml:"chromatic_amount" env:"CHROMATIC_AMOUNT"`
}

// AudioConfig contains audio-related configuration
type AudioConfig struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	Volume  float64 `yaml:"volume" env:"VOLUME"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	File  string `yaml:"file" env:"FILE"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:           800,
			Height:          600,
			Fullscreen:      false,
			VSync:           true,
			FrameRate:       60,
			DisplayMode:     DisplayOpenGL,
			ResolutionScale: 1.0,
			Workers:         4,
			TerminalGlyphs:  GlyphsBlocks,
			OutputDir:       "frames",
			Frames:          60,
			StartTime:       4.5,
			FrameInterval:   1.0 / 30.0,
		},
		Glitch: GlitchConfig{
			Interval:       7.0,
			Threshold:      0.7,
			RGBDiff:        0.001,
			ShakeAmplitude: 8.0,
			ShakeFloor:     0.5,
			BlockGain:      5.0,
			BlockLayers: []BlockLayerConfig{
				{FreqX: 3, FreqY: 3, TimeStepScale: 20, TimeStepPeriod: 200, Threshold: 0.12, GainX: 0.3, GainY: 0.3},
				{FreqX: 2, FreqY: 8, TimeStepScale: 25, TimeStepPeriod: 300, Threshold: 0.12, GainX: 0.5, GainY: 0.3},
			},
			TimeSource: TimeFrames,
		},
		Trigger: TriggerConfig{
			Enabled:        true,
			Interval:       100 * time.Millisecond,
			Values:         []int{48, 80, 104, 128, 176, 200},
			TextureSize:    256,
			Brightness:     0.5,
			Persistence:    1.0,
			Octaves:        2,
			AnimationSpeed: 1.0,
			Escalated: PresetConfig{
				Contrast:                 10,
				GrainEnabled:             true,
				GrainIntensity:           200,
				GrainAnimated:            true,
				ChromaticEnabled:         true,
				ChromaticAmount:          500,
				ChromaticRadialIntensity: 2,
			},
			Normal: PresetConfig{
				Contrast:         1.2,
				GrainEnabled:     false,
				ChromaticEnabled: false,
			},
		},
		Pipeline: PipelineConfig{
			Samples:          16,
			BloomEnabled:     true,
			BloomThreshold:   0.7,
			BloomWeight:      0.7,
			BloomScale:       0.7,
			BloomKernel:      64,
			ToneMapping:      true,
			ColorCurves:      true,
			GlobalSaturation: 70,
			Contrast:         1.2,
			VignetteEnabled:  true,
			VignetteWeight:   13,
			GrainIntensity:   30,
			ChromaticAmount:  30,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  0.3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from a file, then applies environment
// overrides. A missing file yields the defaults together with an error so
// callers can decide whether to continue.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if envErr := ApplyEnv(config); envErr != nil {
			return config, envErr
		}
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, fmt.Errorf("error parsing config: %w", err)
	}

	if err := ApplyEnv(config); err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// ApplyEnv overrides configuration values from GLITCHFX_* environment variables
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	return nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise break the render or trigger loops
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.ResolutionScale <= 0 {
		return fmt.Errorf("resolution_scale must be positive, got %v", c.Graphics.ResolutionScale)
	}
	switch c.Graphics.DisplayMode {
	case DisplayOpenGL, DisplayTerminal, DisplayHeadless:
	default:
		return fmt.Errorf("unknown display_mode %q", c.Graphics.DisplayMode)
	}
	switch c.Graphics.TerminalGlyphs {
	case GlyphsBlocks, GlyphsASCII:
	default:
		return fmt.Errorf("unknown terminal_glyphs %q", c.Graphics.TerminalGlyphs)
	}
	switch c.Glitch.TimeSource {
	case TimeFrames, TimeWall:
	default:
		return fmt.Errorf("unknown time_source %q", c.Glitch.TimeSource)
	}
	if c.Glitch.Interval <= 0 {
		return fmt.Errorf("glitch interval must be positive, got %v", c.Glitch.Interval)
	}
	if c.Glitch.Threshold < 0 || c.Glitch.Threshold >= 1 {
		return fmt.Errorf("glitch threshold must be in [0,1), got %v", c.Glitch.Threshold)
	}
	if len(c.Glitch.BlockLayers) != 2 {
		return fmt.Errorf("expected 2 block layers, got %d", len(c.Glitch.BlockLayers))
	}
	if c.Trigger.Interval <= 0 {
		return fmt.Errorf("trigger interval must be positive, got %v", c.Trigger.Interval)
	}
	if len(c.Trigger.Values) != 6 {
		return fmt.Errorf("trigger set must hold 6 values, got %d", len(c.Trigger.Values))
	}
	seen := make(map[int]bool, len(c.Trigger.Values))
	for _, v := range c.Trigger.Values {
		if v < 0 || v > 255 {
			return fmt.Errorf("trigger value %d outside [0,255]", v)
		}
		if seen[v] {
			return fmt.Errorf("duplicate trigger value %d", v)
		}
		seen[v] = true
	}
	if c.Trigger.TextureSize <= 0 {
		return fmt.Errorf("trigger texture_size must be positive, got %d", c.Trigger.TextureSize)
	}
	return nil
}
