// Package audio plays a static noise bed that follows the glitch burst.
package audio

import (
	"math"
	"math/rand"
)

const (
	staticFloor    = 0.02 // gain while the envelope is silent
	staticSwell    = 0.5  // gain added at full burst strength
	escalatedBoost = 2.0
	crushLevels    = 16   // quantisation steps while escalated
	crushHold      = 24   // samples held per step while escalated
	humFrequency   = 1000 // Hz
	humLevel       = 0.15
)

// Static generates interleaved float32 noise. It is not safe for
// concurrent use; the player calls Fill from the audio callback only.
type Static struct {
	rng        *rand.Rand
	sampleRate float64
	channels   int
	volume     float64

	phase    float64
	held     float64
	holdLeft int
}

// NewStatic creates a generator; equal seeds produce equal output
func NewStatic(sampleRate, channels int, volume float64, seed int64) *Static {
	if channels < 1 {
		channels = 1
	}
	return &Static{
		rng:        rand.New(rand.NewSource(seed)),
		sampleRate: float64(sampleRate),
		channels:   channels,
		volume:     volume,
	}
}

// Fill writes len(out)/channels frames. Gain swells with strength; while
// escalated the signal is louder, sample-and-held and bit crushed.
func (s *Static) Fill(out []float32, strength float64, escalated bool) {
	gain := s.volume * (staticFloor + strength*staticSwell)
	if escalated {
		gain *= escalatedBoost
	}
	step := 2 * math.Pi * humFrequency / s.sampleRate

	for i := 0; i+s.channels <= len(out); i += s.channels {
		n := s.rng.Float64()*2 - 1

		if escalated {
			if s.holdLeft == 0 {
				s.held = math.Floor(n*crushLevels) / crushLevels
				s.holdLeft = crushHold
			}
			s.holdLeft--
			n = s.held
		} else {
			s.holdLeft = 0
		}

		v := n + math.Sin(s.phase)*humLevel*strength
		s.phase = math.Mod(s.phase+step, 2*math.Pi)

		sample := float32(limit(v * gain))
		for c := 0; c < s.channels; c++ {
			out[i+c] = sample
		}
	}
}

// limit hard-clips to the valid sample range
func limit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
