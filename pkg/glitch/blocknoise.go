package glitch

import (
	"math"

	"glitchfx/internal/noise"
	"glitchfx/internal/util"
)

// StepTime quantises t so the mask holds still between coarse steps
func (l BlockLayer) StepTime(t float64) float64 {
	return math.Floor(t*l.TimeStepScale) * l.TimeStepPeriod
}

// Mask returns 1 where both axis noises fall under their thresholds and 0
// elsewhere. Thresholds rise with strength, so blocks grow denser during a burst.
func (l BlockLayer) Mask(uv Vec2, t, strength float64) float64 {
	stepTime := l.StepTime(t)

	nx := (noise.Simplex3(0, uv.X*l.FreqX, stepTime) + 1) / 2
	ny := (noise.Simplex3(0, uv.Y*l.FreqY, stepTime) + 1) / 2

	mx := util.Step(nx, l.Threshold+strength*l.GainX)
	my := util.Step(ny, l.Threshold+strength*l.GainY)
	return mx * my
}

// Sample returns the masked, horizontally displaced colour of this layer.
// wave is the scanline offset from RGBWave.
func (l BlockLayer) Sample(src Sampler, uv Vec2, t, strength, wave, rgbDiff float64) RGBA {
	mask := l.Mask(uv, t, strength)
	if mask == 0 {
		return RGBA{}
	}

	x := uv.X + math.Sin(l.StepTime(t))*blockSwayAmount + wave

	return RGBA{
		R: src.Sample(x+rgbDiff, uv.Y).R * mask,
		G: src.Sample(x, uv.Y).G * mask,
		B: src.Sample(x-rgbDiff, uv.Y).B * mask,
	}
}
