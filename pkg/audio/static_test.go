package audio

import (
	"math"
	"testing"
)

func rms(buf []float32) float64 {
	sum := 0.0
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func render(strength float64, escalated bool) []float32 {
	buf := make([]float32, 4096*numChannels)
	NewStatic(sampleRate, numChannels, 0.3, 7).Fill(buf, strength, escalated)
	return buf
}

func TestStaticInRange(t *testing.T) {
	s := NewStatic(sampleRate, numChannels, 5, 1)
	buf := make([]float32, 2048)
	s.Fill(buf, 1, true)

	for i, v := range buf {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d = %v outside [-1,1]", i, v)
		}
	}
}

func TestStaticDeterministic(t *testing.T) {
	a := render(0.5, false)
	b := render(0.5, false)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStaticSwellsWithStrength(t *testing.T) {
	quiet := rms(render(0, false))
	loud := rms(render(1, false))
	if quiet == 0 {
		t.Error("noise bed should be audible at strength 0")
	}
	if loud <= quiet*5 {
		t.Errorf("rms at full strength %v not well above %v", loud, quiet)
	}
}

func TestStaticEscalatedIsLouder(t *testing.T) {
	normal := rms(render(0.5, false))
	escalated := rms(render(0.5, true))
	if escalated <= normal {
		t.Errorf("escalated rms %v <= normal %v", escalated, normal)
	}
}

func TestStaticChannelsMatch(t *testing.T) {
	buf := render(0.7, true)
	for i := 0; i < len(buf); i += numChannels {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: left %v right %v", i/numChannels, buf[i], buf[i+1])
		}
	}
}

func TestStaticCrushHoldsSamples(t *testing.T) {
	buf := render(0, true)
	// The first crushHold frames share one value
	for i := 1; i < crushHold; i++ {
		if buf[i*numChannels] != buf[0] {
			t.Fatalf("frame %d = %v, want held %v", i, buf[i*numChannels], buf[0])
		}
	}
}
