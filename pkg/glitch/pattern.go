package glitch

import (
	"math"

	"glitchfx/internal/util"
)

// arc is one emissive ring segment of the test pattern
type arc struct {
	inner, outer float64 // radii relative to half the frame height
	sweep        float64 // fraction of a full turn
	speed        float64 // radians per second
}

var patternArcs = []arc{
	{inner: 0.79, outer: 0.82, sweep: 0.5, speed: 0.12},
	{inner: 0.84, outer: 0.90, sweep: 0.2, speed: -0.36},
	{inner: 0.92, outer: 0.93, sweep: 0.95, speed: 0.048},
	{inner: 1.01, outer: 1.06, sweep: 0.3, speed: 0.18},
}

var clearColor = RGBA{0.014, 0.017, 0.021, 1}

// TestPattern draws the stand-in scene used when no source image is
// configured: a near-black background with rotating white arcs.
func TestPattern(width, height int, t float64) *Frame {
	f := NewFrame(width, height)
	cx := float64(width) / 2
	cy := float64(height) / 2
	scale := float64(height) / 2 * 0.85

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := (float64(x) + 0.5 - cx) / scale
			dy := (float64(y) + 0.5 - cy) / scale
			r := math.Hypot(dx, dy)
			angle := math.Atan2(dy, dx)

			c := clearColor
			for _, a := range patternArcs {
				if r < a.inner || r > a.outer {
					continue
				}
				start := util.Mod(angle-a.speed*t, 2*math.Pi)
				if start <= a.sweep*2*math.Pi {
					c = RGBA{1, 1, 1, 1}
					break
				}
			}
			f.Set(x, y, c)
		}
	}
	return f
}
