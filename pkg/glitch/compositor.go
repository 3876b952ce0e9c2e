package glitch

import (
	"runtime"
	"sync"
)

// Shader is the CPU implementation of the glitch pass. It evaluates the
// same function as FragmentSource, one pixel at a time.
type Shader struct {
	Params Params
}

// NewShader creates a shader with the given constants
func NewShader(p Params) *Shader {
	return &Shader{Params: p}
}

// Shade computes the output colour for one UV. The result is deliberately
// left unclamped: the block layers push values well above 1 and the
// downstream tone mapping compresses them.
func (s *Shader) Shade(src Sampler, uv Vec2, u FrameUniforms) RGBA {
	p := s.Params
	strength := p.Strength(u.Time)
	shake := p.Shake(u.Time, u)
	wave := p.RGBWave(uv.Y, u.Time, u)

	out := p.SplitSample(src, uv, shake)

	var blocks RGBA
	for _, layer := range p.Layers {
		blocks = blocks.Add(layer.Sample(src, uv, u.Time, strength, wave, p.RGBDiff))
	}

	return out.Add(blocks.Scale(p.BlockGain))
}

// Render shades every pixel of dst from src, splitting rows across workers.
// dst's size is used as the resolution uniform.
func (s *Shader) Render(dst *Frame, src Sampler, t float64, workers int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > dst.Height {
		workers = dst.Height
	}
	if workers < 1 {
		return
	}

	u := FrameUniforms{Time: t, Width: dst.Width, Height: dst.Height}

	var wg sync.WaitGroup
	rowsPerWorker := (dst.Height + workers - 1) / workers

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > dst.Height {
			endRow = dst.Height
		}
		if startRow >= endRow {
			break
		}

		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			for y := startRow; y < endRow; y++ {
				for x := 0; x < dst.Width; x++ {
					dst.Set(x, y, s.Shade(src, dst.UV(x, y), u))
				}
			}
		}(startRow, endRow)
	}

	wg.Wait()
}
