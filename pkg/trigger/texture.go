package trigger

import (
	"fmt"
	"sync"

	"glitchfx/internal/noise"
	"glitchfx/internal/util"
	"glitchfx/pkg/config"
)

const (
	// animationRate is the noise-space distance travelled per second at speed 1
	animationRate = 1.8
	// featureCells is the number of noise features across the texture
	featureCells = 8.0
)

// TextureOptions configures a NoiseTexture
type TextureOptions struct {
	Size           int
	Brightness     float64
	Persistence    float64
	Octaves        int
	AnimationSpeed float64
}

// TextureOptionsFromConfig extracts the texture settings from the trigger config
func TextureOptionsFromConfig(cfg config.TriggerConfig) TextureOptions {
	return TextureOptions{
		Size:           cfg.TextureSize,
		Brightness:     cfg.Brightness,
		Persistence:    cfg.Persistence,
		Octaves:        cfg.Octaves,
		AnimationSpeed: cfg.AnimationSpeed,
	}
}

// fbm evaluates one texel's noise
var fbm = noise.FBM3

// NoiseTexture is a coarse grey-scale FBM texture that animates on its own
// clock. Texels are evaluated on readback and only for the requested
// region; nothing is available until the first Advance.
type NoiseTexture struct {
	mu      sync.Mutex
	opts    TextureOptions
	elapsed float64
	ready   bool
}

// NewNoiseTexture creates a texture that is not yet ready
func NewNoiseTexture(opts TextureOptions) *NoiseTexture {
	if opts.Size < 1 {
		opts.Size = 1
	}
	return &NoiseTexture{opts: opts}
}

// Advance moves the animation clock forward by dt seconds
func (t *NoiseTexture) Advance(dt float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.elapsed += dt
	t.ready = true
}

// Ready reports whether the texture has been advanced at least once
func (t *NoiseTexture) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// ReadPixels returns the RGBA8 texels of the w×h region at (x, y) for the
// current animation time, row y first
func (t *NoiseTexture) ReadPixels(x, y, w, h int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		return nil, ErrNotReady
	}
	size := t.opts.Size
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > size || y+h > size {
		return nil, fmt.Errorf("region %dx%d at (%d,%d) outside %dx%d texture", w, h, x, y, size, size)
	}

	scale := featureCells / float64(size)
	z := t.elapsed * animationRate * t.opts.AnimationSpeed

	out := make([]byte, w*h*4)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			n := fbm(float64(x+col)*scale, float64(y+row)*scale, z, t.opts.Octaves, t.opts.Persistence)
			v := util.Clamp(t.opts.Brightness+n*0.5, 0, 1)
			b := byte(v*255 + 0.5)

			i := (row*w + col) * 4
			out[i] = b
			out[i+1] = b
			out[i+2] = b
			out[i+3] = 255
		}
	}
	return out, nil
}
