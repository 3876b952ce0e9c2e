package engine

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"glitchfx/pkg/glitch"
)

// Source supplies the colour buffer the glitch pass reads
type Source interface {
	Frame(width, height int, t float64) *glitch.Frame
}

// NewSource loads path as a still image, or returns the animated test
// pattern when path is empty
func NewSource(path string) (Source, error) {
	if path == "" {
		return patternSource{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image %s: %w", path, err)
	}
	return &imageSource{img: img, format: format}, nil
}

type patternSource struct{}

func (patternSource) Frame(width, height int, t float64) *glitch.Frame {
	return glitch.TestPattern(width, height, t)
}

// imageSource rescales its image only when the render target changes
type imageSource struct {
	img    image.Image
	format string
	cached *glitch.Frame
}

func (s *imageSource) Frame(width, height int, _ float64) *glitch.Frame {
	if s.cached == nil || s.cached.Width != width || s.cached.Height != height {
		s.cached = glitch.FrameFromImage(s.img, width, height)
	}
	return s.cached
}
