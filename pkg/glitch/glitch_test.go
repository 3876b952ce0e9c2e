package glitch

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

// flatSampler returns one colour everywhere
type flatSampler struct{ c RGBA }

func (f flatSampler) Sample(u, v float64) RGBA { return f.c }

// gradientSampler encodes the sample position in the colour
type gradientSampler struct{}

func (gradientSampler) Sample(u, v float64) RGBA { return RGBA{u, v, 1 - u, 1} }

func TestStrengthRange(t *testing.T) {
	for i := 0; i <= 10000; i++ {
		tm := float64(i) * 0.0137
		s := Strength(tm)
		if s < 0 || s > 1 || math.IsNaN(s) {
			t.Fatalf("Strength(%v) = %v outside [0,1]", tm, s)
		}
	}
}

func TestStrengthPeriodic(t *testing.T) {
	for _, tm := range []float64{0.3, 1.1, 3.3, 4.95, 5.5, 6.2, 6.9, 12.25, 100.6} {
		a := Strength(tm)
		b := Strength(tm + 7.0)
		if math.Abs(a-b) > 1e-6 {
			t.Errorf("Strength(%v) = %v, Strength(%v) = %v", tm, a, tm+7, b)
		}
	}
}

func TestStrengthSilentThenRamps(t *testing.T) {
	if Strength(0) != 0 {
		t.Errorf("Strength(0) = %v, want 0", Strength(0))
	}
	for i := 0; i < 98; i++ {
		tm := float64(i) * 0.05
		if s := Strength(tm); s != 0 {
			t.Fatalf("Strength(%v) = %v, want 0 during the silent phase", tm, s)
		}
	}

	prev := Strength(4.9)
	for i := 1; i < 105; i++ {
		tm := 4.9 + float64(i)*0.02
		s := Strength(tm)
		if s <= prev {
			t.Fatalf("Strength not strictly increasing at %v: %v <= %v", tm, s, prev)
		}
		prev = s
	}
	if prev < 0.99 {
		t.Errorf("ramp should approach 1 near the period end, got %v", prev)
	}
	if s := Strength(7.0); s != 0 {
		t.Errorf("Strength must reset at the period boundary, got %v", s)
	}
}

func TestShakeNeverZeroAndScales(t *testing.T) {
	p := DefaultParams()
	u := FrameUniforms{Width: 800, Height: 600}

	for _, tm := range []float64{0.5, 2.0, 6.99} {
		u.Time = tm
		s := p.Shake(tm, u)
		amp := p.Strength(tm)*p.ShakeAmplitude + p.ShakeFloor
		if math.Abs(s.X) > amp/800+eps || math.Abs(s.Y) > amp/600+eps {
			t.Errorf("shake %+v exceeds amplitude %v px at t=%v", s, amp, tm)
		}
	}

	// Same time, bigger target: same pixel jitter, smaller UV jitter
	a := p.Shake(1.5, FrameUniforms{Width: 800, Height: 600})
	b := p.Shake(1.5, FrameUniforms{Width: 1600, Height: 1200})
	if math.Abs(a.X-2*b.X) > eps || math.Abs(a.Y-2*b.Y) > eps {
		t.Errorf("shake must be divided by resolution: %+v vs %+v", a, b)
	}
}

func TestSplitSampleOffsets(t *testing.T) {
	p := DefaultParams()
	uv := Vec2{0.5, 0.5}
	shake := Vec2{0.002, -0.004}

	c := p.SplitSample(gradientSampler{}, uv, shake)

	if want := 0.5 + p.RGBDiff + 0.001; math.Abs(c.R-want) > eps {
		t.Errorf("red u = %v, want %v", c.R, want)
	}
	if math.Abs(c.G-0.5) > eps {
		t.Errorf("green v = %v, want 0.5", c.G)
	}
	if want := 1 - (0.5 - p.RGBDiff + 0.001); math.Abs(c.B-want) > eps {
		t.Errorf("blue = %v, want %v", c.B, want)
	}
	if c.A != 1 {
		t.Errorf("alpha = %v", c.A)
	}
}

func TestRGBWaveGrowsWithStrength(t *testing.T) {
	p := DefaultParams()
	u := FrameUniforms{Width: 800, Height: 600}

	calm, burst := 0.0, 0.0
	for i := 0; i < 200; i++ {
		v := float64(i) / 200
		calm += math.Abs(p.RGBWave(v, 1.0, u))
		burst += math.Abs(p.RGBWave(v, 6.9, u))
	}
	if burst <= calm {
		t.Errorf("wave energy at burst %v should exceed calm %v", burst, calm)
	}
}

func TestBlockMaskIsBinary(t *testing.T) {
	p := DefaultParams()
	for _, layer := range p.Layers {
		for xi := 0; xi < 16; xi++ {
			for yi := 0; yi < 16; yi++ {
				for ti := 0; ti < 12; ti++ {
					tm := float64(ti) * 0.61
					m := layer.Mask(Vec2{float64(xi) / 16, float64(yi) / 16}, tm, p.Strength(tm))
					if m != 0 && m != 1 {
						t.Fatalf("mask = %v, want 0 or 1", m)
					}
				}
			}
		}
	}
}

func TestBlockMaskDensityRisesWithStrength(t *testing.T) {
	p := DefaultParams()
	for li, layer := range p.Layers {
		low, high := 0, 0
		for ti := 0; ti < 8; ti++ {
			tm := float64(ti) * 0.37
			for xi := 0; xi < 32; xi++ {
				for yi := 0; yi < 32; yi++ {
					uv := Vec2{float64(xi) / 32, float64(yi) / 32}
					low += int(layer.Mask(uv, tm, 0))
					high += int(layer.Mask(uv, tm, 1))
				}
			}
		}
		if high < low {
			t.Errorf("layer %d: full strength mask %d smaller than idle %d", li, high, low)
		}
		if high == 0 {
			t.Errorf("layer %d: no blocks at full strength", li)
		}
	}
}

func TestStepTimeQuantises(t *testing.T) {
	l := DefaultParams().Layers[0]
	if l.StepTime(0.01) != l.StepTime(0.04) {
		t.Error("times inside one 1/20 s step must share a step time")
	}
	if got := l.StepTime(0.05); got != 200 {
		t.Errorf("StepTime(0.05) = %v, want 200", got)
	}
	l2 := DefaultParams().Layers[1]
	if got := l2.StepTime(0.08); got != 600 {
		t.Errorf("layer 2 StepTime(0.08) = %v, want 600", got)
	}
}

func TestShadeAtTimeZero(t *testing.T) {
	s := NewShader(DefaultParams())
	p := s.Params
	src := gradientSampler{}
	u := FrameUniforms{Time: 0, Width: 800, Height: 600}

	if p.Strength(0) != 0 {
		t.Fatal("strength at t=0 must be 0")
	}

	for _, uv := range []Vec2{{0.1, 0.2}, {0.5, 0.5}, {0.77, 0.9}} {
		got := s.Shade(src, uv, u)

		want := p.SplitSample(src, uv, p.Shake(0, u))
		wave := p.RGBWave(uv.Y, 0, u)
		var blocks RGBA
		for _, l := range p.Layers {
			blocks = blocks.Add(l.Sample(src, uv, 0, 0, wave, p.RGBDiff))
		}
		want = want.Add(blocks.Scale(5))

		if math.Abs(got.R-want.R) > eps || math.Abs(got.G-want.G) > eps ||
			math.Abs(got.B-want.B) > eps || got.A != 1 {
			t.Errorf("Shade(%v) = %+v, want %+v", uv, got, want)
		}
	}
}

func TestShadeIsUnclamped(t *testing.T) {
	s := NewShader(DefaultParams())
	src := flatSampler{RGBA{1, 1, 1, 1}}

	maxR := 0.0
	for ti := 0; ti < 40; ti++ {
		tm := 6.0 + float64(ti)*0.02
		u := FrameUniforms{Time: tm, Width: 64, Height: 64}
		for xi := 0; xi < 16; xi++ {
			for yi := 0; yi < 16; yi++ {
				c := s.Shade(src, Vec2{float64(xi) / 16, float64(yi) / 16}, u)
				maxR = math.Max(maxR, c.R)
				// every output is 1 + 5*k for k blocks hit
				k := (c.R - 1) / 5
				if math.Abs(k-math.Round(k)) > 1e-9 {
					t.Fatalf("unexpected red %v", c.R)
				}
			}
		}
	}
	if maxR <= 1 {
		t.Errorf("block layers never exceeded 1 during a burst (max %v)", maxR)
	}
}

func TestRenderUsesTargetResolution(t *testing.T) {
	s := NewShader(DefaultParams())
	src := TestPattern(32, 24, 0)

	small := NewFrame(8, 6)
	s.Render(small, src, 5.5, 3)

	u := FrameUniforms{Time: 5.5, Width: 8, Height: 6}
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			want := s.Shade(src, small.UV(x, y), u)
			if got := small.At(x, y); got != want {
				t.Fatalf("pixel %d,%d = %+v, want %+v", x, y, got, want)
			}
		}
	}

	big := NewFrame(12, 9)
	s.Render(big, src, 5.5, 0)
	u = FrameUniforms{Time: 5.5, Width: 12, Height: 9}
	if got, want := big.At(4, 4), s.Shade(src, big.UV(4, 4), u); got != want {
		t.Errorf("resized render pixel = %+v, want %+v", got, want)
	}
}

func TestFrameSample(t *testing.T) {
	f := NewFrame(2, 2)
	f.Set(0, 0, RGBA{1, 0, 0, 1}) // top-left
	f.Set(1, 0, RGBA{0, 1, 0, 1})
	f.Set(0, 1, RGBA{0, 0, 1, 1}) // bottom-left
	f.Set(1, 1, RGBA{1, 1, 1, 1})

	if c := f.Sample(0.25, 0.75); c != (RGBA{1, 0, 0, 1}) {
		t.Errorf("top-left centre = %+v", c)
	}
	if c := f.Sample(0.25, 0.25); c != (RGBA{0, 0, 1, 1}) {
		t.Errorf("bottom-left centre = %+v", c)
	}
	if c := f.Sample(-5, 10); c != (RGBA{1, 0, 0, 1}) {
		t.Errorf("clamp-to-edge failed: %+v", c)
	}
	mid := f.Sample(0.5, 0.5)
	if math.Abs(mid.R-0.5) > eps || math.Abs(mid.G-0.5) > eps || math.Abs(mid.B-0.5) > eps {
		t.Errorf("centre bilinear = %+v", mid)
	}
}

func TestFrameImageRoundTrip(t *testing.T) {
	f := NewFrame(4, 4)
	f.Set(1, 2, RGBA{3, 0.5, -1, 1})

	img := f.ToImage()
	if c := img.RGBAAt(1, 2); c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("clamped pixel = %+v", c)
	}

	back := FrameFromImage(img, 4, 4)
	if c := back.At(1, 2); c.R != 1 || c.B != 0 {
		t.Errorf("reloaded pixel = %+v", c)
	}
}

func TestTestPatternColours(t *testing.T) {
	f := TestPattern(64, 64, 0)
	bright := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := f.At(x, y)
			if c == (RGBA{1, 1, 1, 1}) {
				bright++
			} else if c != clearColor {
				t.Fatalf("unexpected colour %+v", c)
			}
		}
	}
	if bright == 0 {
		t.Error("pattern has no arcs")
	}
}

func TestFragmentSourceBakesParams(t *testing.T) {
	p := DefaultParams()
	src := FragmentSource(p)

	for _, want := range []string{
		"#version 410 core",
		"#define INTERVAL 7.0",
		"#define THRESHOLD 0.7",
		"#define RGB_DIFF 0.001",
		"#define BLOCK_GAIN 5.0",
		"#define LAYER1_SCALE 20.0",
		"#define LAYER2_PERIOD 300.0",
		"#define LAYER2_GAIN vec2(0.5, 0.3)",
		"uniform float " + UniformTime,
		"uniform vec2 " + UniformResolution,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("fragment source missing %q", want)
		}
	}
	if strings.Index(src, "#version") != 0 {
		t.Error("#version must be the first line")
	}
}
