// Package noise provides the deterministic noise primitives used by the
// glitch shader and the trigger texture. Everything here is pure.
package noise

import (
	"math"

	"glitchfx/internal/util"
)

// Simplex3 generates classic 3D simplex noise in roughly [-1, 1].
// Lattice hashing uses the mod-289 permutation polynomial so the GLSL
// twin in the glitch shader produces the same field.
func Simplex3(x, y, z float64) float64 {
	const (
		c1 = 1.0 / 6.0
		c2 = 1.0 / 3.0
	)

	// Skew to the simplex lattice
	s := (x + y + z) * c2
	ix := math.Floor(x + s)
	iy := math.Floor(y + s)
	iz := math.Floor(z + s)

	t := (ix + iy + iz) * c1
	x0 := x - ix + t
	y0 := y - iy + t
	z0 := z - iz + t

	// Rank the offsets to pick the simplex we are in
	gx := util.Step(y0, x0)
	gy := util.Step(z0, y0)
	gz := util.Step(x0, z0)
	lx, ly, lz := 1-gx, 1-gy, 1-gz

	i1x, i1y, i1z := math.Min(gx, lz), math.Min(gy, lx), math.Min(gz, ly)
	i2x, i2y, i2z := math.Max(gx, lz), math.Max(gy, lx), math.Max(gz, ly)

	corners := [4][3]float64{
		{x0, y0, z0},
		{x0 - i1x + c1, y0 - i1y + c1, z0 - i1z + c1},
		{x0 - i2x + c2, y0 - i2y + c2, z0 - i2z + c2},
		{x0 - 0.5, y0 - 0.5, z0 - 0.5},
	}
	offsets := [4][3]float64{
		{0, 0, 0},
		{i1x, i1y, i1z},
		{i2x, i2y, i2z},
		{1, 1, 1},
	}

	ix, iy, iz = mod289(ix), mod289(iy), mod289(iz)

	sum := 0.0
	for k := 0; k < 4; k++ {
		p := permute(permute(permute(iz+offsets[k][2])+iy+offsets[k][1]) + ix + offsets[k][0])
		g := gradient(p)

		d := corners[k]
		m := math.Max(0.6-(d[0]*d[0]+d[1]*d[1]+d[2]*d[2]), 0)
		m *= m
		sum += m * m * (g[0]*d[0] + g[1]*d[1] + g[2]*d[2])
	}

	return 42.0 * sum
}

// gradient maps a permuted hash onto one of 49 points of an octahedron
// and normalises it.
func gradient(p float64) [3]float64 {
	const (
		n  = 1.0 / 7.0
		nx = 2.0 * n
		ny = 0.5*n - 1.0
	)

	j := p - 49.0*math.Floor(p*n*n)
	xq := math.Floor(j * n)
	yq := math.Floor(j - 7.0*xq)

	gx := xq*nx + ny
	gy := yq*nx + ny
	h := 1.0 - math.Abs(gx) - math.Abs(gy)

	if h <= 0 {
		gx -= math.Floor(gx)*2.0 + 1.0
		gy -= math.Floor(gy)*2.0 + 1.0
	}

	norm := 1.79284291400159 - 0.85373472095314*(gx*gx+gy*gy+h*h)
	return [3]float64{gx * norm, gy * norm, h * norm}
}

func mod289(x float64) float64 {
	return x - math.Floor(x*(1.0/289.0))*289.0
}

func permute(x float64) float64 {
	return mod289((x*34.0 + 1.0) * x)
}

// Rand2 is the sine-fract hash used by the shader for per-frame jitter.
// Output is in [0, 1).
func Rand2(x, y float64) float64 {
	return util.Fract(math.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// FBM3 sums octaves of Simplex3. Each octave doubles frequency and scales
// amplitude by persistence; the sum is normalised back to roughly [-1, 1].
func FBM3(x, y, z float64, octaves int, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}

	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxValue := 0.0

	for i := 0; i < octaves; i++ {
		total += Simplex3(x*frequency, y*frequency, z*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}
