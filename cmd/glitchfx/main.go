package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"runtime"

	"glitchfx/internal/logger"
	"glitchfx/pkg/audio"
	"glitchfx/pkg/config"
	"glitchfx/pkg/engine"
	"glitchfx/pkg/engine/opengl"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	mode := flag.String("mode", "", "Display mode: opengl, terminal or headless")
	source := flag.String("source", "", "Source image (PNG, JPEG, BMP, TIFF or WebP); empty uses the test pattern")
	frames := flag.Int("frames", 0, "Headless: number of frames to write")
	outputDir := flag.String("out", "", "Headless: output directory")
	level := flag.String("log-level", "", "Log level: debug, info, warn, error")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")
	flag.Parse()

	cfg, loadErr := config.LoadConfig(*configPath)
	if loadErr != nil && !errors.Is(loadErr, fs.ErrNotExist) {
		log.Fatalf("Failed to load configuration: %v", loadErr)
	}

	if *mode != "" {
		cfg.Graphics.DisplayMode = *mode
	}
	if *source != "" {
		cfg.Graphics.SourceImage = *source
	}
	if *frames > 0 {
		cfg.Graphics.Frames = *frames
	}
	if *outputDir != "" {
		cfg.Graphics.OutputDir = *outputDir
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if loadErr != nil {
		logger.Warnf("%v", loadErr)
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		logger.Infof("Configuration written to %s", *writeConfig)
		return
	}

	logger.Infof("Starting glitchfx (%s display)...", cfg.Graphics.DisplayMode)

	out := newAudio(cfg, logger)
	display, err := newDisplay(cfg, logger, out)
	if err != nil {
		if out != nil {
			out.Close()
		}
		log.Fatalf("Failed to initialize display: %v", err)
	}

	logger.Info("Display initialized, starting render loop...")
	if err := display.Run(); err != nil {
		log.Fatalf("Render loop failed: %v", err)
	}
}

// newLogger writes to stdout, and to the configured file if any. The
// terminal preview owns stdout, so in that mode logs only go to a file.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.Graphics.DisplayMode == config.DisplayTerminal {
		file := cfg.Log.File
		if file == "" {
			file = "glitchfx.log"
		}
		return logger.NewFileLogger(cfg.Log.Level, file)
	}
	if cfg.Log.File != "" {
		return logger.NewMultiLogger(cfg.Log.Level, cfg.Log.File)
	}
	return logger.NewLogger(cfg.Log.Level), nil
}

// newAudio opens the static player for the interactive displays. A missing
// audio device only disables sound.
func newAudio(cfg *config.Config, log *logger.Logger) engine.AudioOutput {
	if !cfg.Audio.Enabled || cfg.Graphics.DisplayMode == config.DisplayHeadless {
		return nil
	}
	player, err := audio.NewPlayer(cfg.Audio, log.Named("audio"))
	if err != nil {
		log.Warnf("audio disabled: %v", err)
		return nil
	}
	return player
}

func newDisplay(cfg *config.Config, log *logger.Logger, out engine.AudioOutput) (engine.Display, error) {
	switch cfg.Graphics.DisplayMode {
	case config.DisplayOpenGL:
		return opengl.NewEngine(cfg, log, out)
	case config.DisplayTerminal:
		return engine.NewTerminalView(cfg, log, out)
	case config.DisplayHeadless:
		return engine.NewHeadless(cfg, log)
	default:
		return nil, fmt.Errorf("unknown display mode %q", cfg.Graphics.DisplayMode)
	}
}
