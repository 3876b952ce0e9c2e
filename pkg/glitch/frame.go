package glitch

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"glitchfx/internal/util"
)

// RGBA is a linear colour whose channels are not clamped; the compositor
// produces values above 1 that the downstream pipeline compresses.
type RGBA struct {
	R, G, B, A float64
}

// Add returns c + o per channel
func (c RGBA) Add(o RGBA) RGBA {
	return RGBA{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Scale returns c * k per channel
func (c RGBA) Scale(k float64) RGBA {
	return RGBA{c.R * k, c.G * k, c.B * k, c.A * k}
}

// Vec2 is a 2D vector in UV or pixel space
type Vec2 struct {
	X, Y float64
}

// Sampler is the colour-buffer input of the shader. UVs are in [0,1]²
// with v = 0 at the bottom row, as in GL texture space.
type Sampler interface {
	Sample(u, v float64) RGBA
}

// Frame is a float RGBA image, row 0 at the top
type Frame struct {
	Width  int
	Height int
	Pix    []float64
}

// NewFrame allocates a black, opaque frame
func NewFrame(width, height int) *Frame {
	f := &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*4),
	}
	for i := 3; i < len(f.Pix); i += 4 {
		f.Pix[i] = 1
	}
	return f
}

// At returns the pixel at (x, y)
func (f *Frame) At(x, y int) RGBA {
	i := (y*f.Width + x) * 4
	return RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

// Set stores c at (x, y)
func (f *Frame) Set(x, y int, c RGBA) {
	i := (y*f.Width + x) * 4
	f.Pix[i] = c.R
	f.Pix[i+1] = c.G
	f.Pix[i+2] = c.B
	f.Pix[i+3] = c.A
}

// UV returns the texture coordinate of the centre of pixel (x, y)
func (f *Frame) UV(x, y int) Vec2 {
	return Vec2{
		X: (float64(x) + 0.5) / float64(f.Width),
		Y: 1 - (float64(y)+0.5)/float64(f.Height),
	}
}

// Sample reads the frame with bilinear filtering and clamp-to-edge wrapping
func (f *Frame) Sample(u, v float64) RGBA {
	if f.Width == 0 || f.Height == 0 {
		return RGBA{}
	}

	px := u*float64(f.Width) - 0.5
	py := (1-v)*float64(f.Height) - 0.5

	x0 := math.Floor(px)
	y0 := math.Floor(py)
	fx := px - x0
	fy := py - y0

	c00 := f.clampedAt(int(x0), int(y0))
	c10 := f.clampedAt(int(x0)+1, int(y0))
	c01 := f.clampedAt(int(x0), int(y0)+1)
	c11 := f.clampedAt(int(x0)+1, int(y0)+1)

	top := mix(c00, c10, fx)
	bottom := mix(c01, c11, fx)
	return mix(top, bottom, fy)
}

func (f *Frame) clampedAt(x, y int) RGBA {
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return f.At(x, y)
}

func mix(a, b RGBA, t float64) RGBA {
	return RGBA{
		R: util.Lerp(a.R, b.R, t),
		G: util.Lerp(a.G, b.G, t),
		B: util.Lerp(a.B, b.B, t),
		A: util.Lerp(a.A, b.A, t),
	}
}

// FrameFromImage scales img to width×height and converts it to a Frame
func FrameFromImage(img image.Image, width, height int) *Frame {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		xdraw.Draw(scaled, scaled.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
	}

	f := NewFrame(width, height)
	for i := 0; i < len(scaled.Pix); i++ {
		f.Pix[i] = float64(scaled.Pix[i]) / 255.0
	}
	return f
}

// ToImage clamps the frame to [0,1] and converts it to 8-bit RGBA
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.R),
				G: toByte(c.G),
				B: toByte(c.B),
				A: toByte(c.A),
			})
		}
	}
	return img
}

func toByte(v float64) uint8 {
	return uint8(util.Clamp(v, 0, 1)*255 + 0.5)
}
