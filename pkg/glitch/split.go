package glitch

import (
	"math"

	"glitchfx/internal/noise"
	"glitchfx/internal/util"
)

// RGBWave returns the horizontal scanline displacement in UV for the row at
// uv.y. It is the product of two noise fields scaled by strength, plus two
// thin bright bands where a slow sine almost reaches its peak.
func (p Params) RGBWave(v float64, t float64, u FrameUniforms) float64 {
	strength := p.Strength(t)
	y := v * float64(u.Height)

	wave := noise.Simplex3(0, y*waveFreqY1, t*waveTimeFreq1)*(waveBase1+strength*waveGain1)*
		noise.Simplex3(0, y*waveFreqY2, t*waveTimeFreq2)*(waveBase2+strength*waveGain2) +
		util.Step(bandEdge1, math.Sin(y*bandFreqY+t*bandTimeFreq1))*bandAmplitude1 +
		util.Step(bandEdge2, math.Sin(y*bandFreqY+t*bandTimeFreq2))*bandAmplitude2

	return wave / float64(u.Width)
}

// SplitSample reads the source with red and blue pulled apart horizontally.
// Red and blue also carry half of the shake; green stays on uv.
func (p Params) SplitSample(src Sampler, uv Vec2, shake Vec2) RGBA {
	half := Vec2{shake.X * 0.5, shake.Y * 0.5}

	r := src.Sample(uv.X+p.RGBDiff+half.X, uv.Y+half.Y).R
	g := src.Sample(uv.X, uv.Y).G
	b := src.Sample(uv.X-p.RGBDiff+half.X, uv.Y+half.Y).B

	return RGBA{r, g, b, 1}
}
