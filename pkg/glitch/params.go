package glitch

import "glitchfx/pkg/config"

// Scanline wave constants. The wave works in pixel units and is divided
// by the horizontal resolution before use.
const (
	waveFreqY1      = 0.01
	waveTimeFreq1   = 400.0
	waveBase1       = 2.0
	waveGain1       = 32.0
	waveFreqY2      = 0.02
	waveTimeFreq2   = 200.0
	waveBase2       = 1.0
	waveGain2       = 4.0
	bandFreqY       = 0.005
	bandTimeFreq1   = 1.6
	bandTimeFreq2   = 2.0
	bandEdge1       = 0.9995
	bandEdge2       = 0.9999
	bandAmplitude1  = 12.0
	bandAmplitude2  = -18.0
	blockSwayAmount = 0.2
)

// BlockLayer parameterises one block-noise mask
type BlockLayer struct {
	FreqX          float64
	FreqY          float64
	TimeStepScale  float64
	TimeStepPeriod float64
	Threshold      float64
	GainX          float64
	GainY          float64
}

// Params holds the numeric constants of the glitch shader
type Params struct {
	Interval       float64 // burst period in seconds
	Threshold      float64 // fraction of the period with zero strength
	RGBDiff        float64 // horizontal channel offset in UV
	ShakeAmplitude float64 // pixels added at full strength
	ShakeFloor     float64 // pixels of jitter at zero strength
	BlockGain      float64
	Layers         [2]BlockLayer
}

// DefaultParams returns the stock shader constants
func DefaultParams() Params {
	return ParamsFromConfig(config.DefaultConfig().Glitch)
}

// ParamsFromConfig copies the glitch section of the configuration
func ParamsFromConfig(cfg config.GlitchConfig) Params {
	p := Params{
		Interval:       cfg.Interval,
		Threshold:      cfg.Threshold,
		RGBDiff:        cfg.RGBDiff,
		ShakeAmplitude: cfg.ShakeAmplitude,
		ShakeFloor:     cfg.ShakeFloor,
		BlockGain:      cfg.BlockGain,
	}
	for i := 0; i < len(p.Layers) && i < len(cfg.BlockLayers); i++ {
		l := cfg.BlockLayers[i]
		p.Layers[i] = BlockLayer{
			FreqX:          l.FreqX,
			FreqY:          l.FreqY,
			TimeStepScale:  l.TimeStepScale,
			TimeStepPeriod: l.TimeStepPeriod,
			Threshold:      l.Threshold,
			GainX:          l.GainX,
			GainY:          l.GainY,
		}
	}
	return p
}

// FrameUniforms are the per-frame shader inputs
type FrameUniforms struct {
	Time   float64
	Width  int
	Height int
}

// Resolution returns the render target size as a vector
func (u FrameUniforms) Resolution() Vec2 {
	return Vec2{float64(u.Width), float64(u.Height)}
}
