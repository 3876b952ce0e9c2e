package pipeline

import (
	"image"
	"image/color"
	"math"

	"glitchfx/internal/noise"
	"glitchfx/internal/util"
	"glitchfx/pkg/glitch"
)

const (
	toneMappingCalibration = 1.590579
	vignetteScale          = 0.5
	aberrationPixelScale   = 0.1 // pixels of fringe per unit of Amount
	bloomKernelDivisor     = 16
)

// Luminance returns the Rec. 709 luma of c
func Luminance(c glitch.RGBA) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Grade runs the image-processing stages over src and returns a
// displayable 8-bit image. src may hold values above 1.
func Grade(src *glitch.Frame, s Settings, t float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))

	var glow *glitch.Frame
	if s.Bloom.Enabled && s.Bloom.Weight > 0 {
		glow = extractBloom(src, s.Bloom)
	}

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			uv := src.UV(x, y)
			c := s.aberrate(src, uv, x, y)

			if glow != nil {
				c = c.Add(glow.Sample(uv.X, uv.Y).Scale(s.Bloom.Weight))
			}
			c = s.tone(c)
			c = s.vignette(c, uv)
			c = s.grain(c, uv, src.Width, src.Height, t)

			out.SetRGBA(x, y, color.RGBA{
				R: toByte(c.R),
				G: toByte(c.G),
				B: toByte(c.B),
				A: 255,
			})
		}
	}
	return out
}

func (s Settings) aberrate(src *glitch.Frame, uv glitch.Vec2, x, y int) glitch.RGBA {
	c := src.At(x, y)
	ca := s.ChromaticAberration
	if !ca.Enabled || ca.Amount == 0 {
		return c
	}

	dx, dy := uv.X-0.5, uv.Y-0.5
	r := math.Hypot(dx, dy)
	if r == 0 {
		return c
	}

	weight := 1.0
	if ca.RadialIntensity > 0 {
		weight = r * ca.RadialIntensity
	}
	offset := ca.Amount * aberrationPixelScale * weight / float64(src.Width)
	nx, ny := dx/r*offset, dy/r*offset

	c.R = src.Sample(uv.X+nx, uv.Y+ny).R
	c.B = src.Sample(uv.X-nx, uv.Y-ny).B
	return c
}

// tone applies tone mapping, colour curves and contrast
func (s Settings) tone(c glitch.RGBA) glitch.RGBA {
	if s.ToneMapping {
		c.R = 1 - math.Exp2(-toneMappingCalibration*c.R)
		c.G = 1 - math.Exp2(-toneMappingCalibration*c.G)
		c.B = 1 - math.Exp2(-toneMappingCalibration*c.B)
	}

	if s.ColorCurves && s.GlobalSaturation != 0 {
		lum := Luminance(c)
		k := 1 + s.GlobalSaturation/100
		c.R = util.Lerp(lum, c.R, k)
		c.G = util.Lerp(lum, c.G, k)
		c.B = util.Lerp(lum, c.B, k)
	}

	c.R = contrast(c.R, s.Contrast)
	c.G = contrast(c.G, s.Contrast)
	c.B = contrast(c.B, s.Contrast)
	return c
}

// contrast pulls v towards 0.5 below 1 and towards an S-curve above 1
func contrast(v, k float64) float64 {
	v = util.Clamp(v, 0, 1)
	if k < 1 {
		return util.Lerp(0.5, v, k)
	}
	high := v * v * (3 - 2*v)
	return util.Lerp(v, high, k-1)
}

func (s Settings) vignette(c glitch.RGBA, uv glitch.Vec2) glitch.RGBA {
	if !s.VignetteEnabled || s.VignetteWeight == 0 {
		return c
	}
	x := (uv.X*2 - 1) * vignetteScale
	y := (uv.Y*2 - 1) * vignetteScale
	v := math.Pow(1+x*x+y*y, -s.VignetteWeight)
	c.R *= v
	c.G *= v
	c.B *= v
	return c
}

func (s Settings) grain(c glitch.RGBA, uv glitch.Vec2, width, height int, t float64) glitch.RGBA {
	g := s.Grain
	if !g.Enabled || g.Intensity == 0 {
		return c
	}
	seed := 1.0
	if g.Animated {
		seed += util.Fract(t)
	}
	n := (noise.Rand2(uv.X*float64(width)*seed, uv.Y*float64(height)*seed) - 0.5) * g.Intensity / 255
	lum := util.Clamp(Luminance(c), 0, 1)
	amount := (math.Cos(-math.Pi+lum*math.Pi*2) + 1) / 2

	c.R = math.Max(c.R+n*amount, 0)
	c.G = math.Max(c.G+n*amount, 0)
	c.B = math.Max(c.B+n*amount, 0)
	return c
}

// extractBloom keeps pixels brighter than the threshold at reduced scale
// and box-blurs them
func extractBloom(src *glitch.Frame, b Bloom) *glitch.Frame {
	w := int(math.Max(1, float64(src.Width)*b.Scale))
	h := int(math.Max(1, float64(src.Height)*b.Scale))

	bright := glitch.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			uv := bright.UV(x, y)
			c := src.Sample(uv.X, uv.Y)
			if Luminance(c) < b.Threshold {
				c = glitch.RGBA{A: 1}
			}
			bright.Set(x, y, c)
		}
	}

	radius := b.Kernel / bloomKernelDivisor
	if radius < 1 {
		radius = 1
	}
	return boxBlur(boxBlur(bright, radius, 1, 0), radius, 0, 1)
}

// boxBlur averages 2*radius+1 pixels along (dx, dy)
func boxBlur(src *glitch.Frame, radius, dx, dy int) *glitch.Frame {
	dst := glitch.NewFrame(src.Width, src.Height)
	n := float64(2*radius + 1)

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum glitch.RGBA
			for k := -radius; k <= radius; k++ {
				sx := clampInt(x+k*dx, 0, src.Width-1)
				sy := clampInt(y+k*dy, 0, src.Height-1)
				sum = sum.Add(src.At(sx, sy))
			}
			avg := sum.Scale(1 / n)
			avg.A = 1
			dst.Set(x, y, avg)
		}
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toByte(v float64) uint8 {
	return uint8(util.Clamp(v, 0, 1)*255 + 0.5)
}
