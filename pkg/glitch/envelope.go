package glitch

import (
	"glitchfx/internal/noise"
	"glitchfx/internal/util"
)

// Strength maps elapsed time to the burst strength in [0,1]. Each period
// is silent for the first Threshold fraction, then ramps smoothly to 1
// and drops back to 0 at the period boundary.
func (p Params) Strength(t float64) float64 {
	return util.Smoothstep(p.Threshold*p.Interval, p.Interval, util.Mod(t, p.Interval))
}

// Strength evaluates the burst envelope with the default constants
func Strength(t float64) float64 {
	return defaultParams.Strength(t)
}

var defaultParams = DefaultParams()

// Shake returns the per-frame UV jitter. Its magnitude is
// ShakeAmplitude*strength + ShakeFloor pixels on each axis.
func (p Params) Shake(t float64, u FrameUniforms) Vec2 {
	amp := p.Strength(t)*p.ShakeAmplitude + p.ShakeFloor
	res := u.Resolution()
	return Vec2{
		X: amp * (2*noise.Rand2(t, t) - 1) / res.X,
		Y: amp * (2*noise.Rand2(2*t, 2*t) - 1) / res.Y,
	}
}
