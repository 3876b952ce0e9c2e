// Package trigger samples a coarse animated noise texture on a wall-clock
// cadence and toggles the image pipeline between its normal and escalated
// presets.
package trigger

import (
	"errors"

	"glitchfx/internal/logger"
)

var (
	// ErrNotReady is returned by a source that has not produced pixels yet
	ErrNotReady = errors.New("noise texture not ready")
	// ErrEmptyReadback is reported when a readback succeeds with no data
	ErrEmptyReadback = errors.New("readback returned no data")
)

// Source is a texture that supports a synchronous readback of a region
type Source interface {
	ReadPixels(x, y, width, height int) ([]byte, error)
}

// NoiseSample is the scalar reduced from one readback
type NoiseSample struct {
	Value uint8
}

// Sampler reads back the first texel and keeps its first byte
type Sampler struct {
	src Source
	log *logger.Logger
}

// NewSampler creates a sampler reading from src
func NewSampler(src Source, log *logger.Logger) *Sampler {
	return &Sampler{src: src, log: log}
}

// Sample reads the source once. ok is false when the read failed or
// returned nothing; the failure is only logged at debug level.
func (s *Sampler) Sample() (sample NoiseSample, ok bool) {
	data, err := s.src.ReadPixels(0, 0, 1, 1)
	if err == nil && len(data) == 0 {
		err = ErrEmptyReadback
	}
	if err != nil {
		s.log.Debugf("no sample: %v", err)
		return NoiseSample{}, false
	}
	return NoiseSample{Value: data[0]}, true
}
