// Package pipeline holds the image-processing settings that follow the
// glitch pass: bloom, tone mapping, contrast, vignette, grain and
// chromatic aberration.
package pipeline

import (
	"sync"

	"glitchfx/pkg/config"
)

// Grain is the film grain stage
type Grain struct {
	Enabled   bool
	Intensity float64
	Animated  bool
}

// ChromaticAberration is the radial colour fringe stage
type ChromaticAberration struct {
	Enabled         bool
	Amount          float64
	RadialIntensity float64
}

// Bloom is the highlight glow stage
type Bloom struct {
	Enabled   bool
	Threshold float64
	Weight    float64
	Scale     float64
	Kernel    int
}

// Settings is a plain value; copying it yields a consistent snapshot
type Settings struct {
	Samples             int
	Bloom               Bloom
	ToneMapping         bool
	ColorCurves         bool
	GlobalSaturation    float64
	Contrast            float64
	VignetteEnabled     bool
	VignetteWeight      float64
	Grain               Grain
	ChromaticAberration ChromaticAberration
}

// SettingsFromConfig builds the initial settings
func SettingsFromConfig(cfg config.PipelineConfig) Settings {
	return Settings{
		Samples: cfg.Samples,
		Bloom: Bloom{
			Enabled:   cfg.BloomEnabled,
			Threshold: cfg.BloomThreshold,
			Weight:    cfg.BloomWeight,
			Scale:     cfg.BloomScale,
			Kernel:    cfg.BloomKernel,
		},
		ToneMapping:      cfg.ToneMapping,
		ColorCurves:      cfg.ColorCurves,
		GlobalSaturation: cfg.GlobalSaturation,
		Contrast:         cfg.Contrast,
		VignetteEnabled:  cfg.VignetteEnabled,
		VignetteWeight:   cfg.VignetteWeight,
		Grain: Grain{
			Intensity: cfg.GrainIntensity,
		},
		ChromaticAberration: ChromaticAberration{
			Amount: cfg.ChromaticAmount,
		},
	}
}

// Pipeline guards Settings shared between the trigger task (writer) and
// the render task (reader). Readers always see a whole update.
type Pipeline struct {
	mu       sync.RWMutex
	settings Settings
}

// New creates a pipeline with initial settings
func New(s Settings) *Pipeline {
	return &Pipeline{settings: s}
}

// Snapshot returns a copy of the current settings
func (p *Pipeline) Snapshot() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Update applies fn to the settings under the write lock
func (p *Pipeline) Update(fn func(*Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.settings)
}
