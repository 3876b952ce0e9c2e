// Package util holds the scalar helpers shared by the CPU shader code.
// The functions follow GLSL semantics so CPU and GPU paths agree.
package util

import "math"

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Smoothstep is GLSL smoothstep: Hermite interpolation of x between edge0 and edge1
func Smoothstep(edge0, edge1, x float64) float64 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Step is GLSL step: 0 when x < edge, 1 otherwise
func Step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// Fract returns x - floor(x)
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Mod is GLSL mod: x - y*floor(x/y), result has the sign of y
func Mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}
