package trigger

import (
	"fmt"
	"sync/atomic"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
	"glitchfx/pkg/pipeline"
)

// State is the escalation state of the pipeline
type State int32

const (
	Normal State = iota
	Escalated
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Escalated:
		return "escalated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// TriggerSet is the set of sample values that escalate the pipeline
type TriggerSet [256]bool

// NewTriggerSet builds a set from byte values; duplicates and values
// outside [0,255] are rejected
func NewTriggerSet(values []int) (TriggerSet, error) {
	var set TriggerSet
	for _, v := range values {
		if v < 0 || v > 255 {
			return set, fmt.Errorf("trigger value %d outside [0,255]", v)
		}
		if set[v] {
			return set, fmt.Errorf("duplicate trigger value %d", v)
		}
		set[v] = true
	}
	return set, nil
}

// Contains reports whether v is a member of the set
func (s *TriggerSet) Contains(v uint8) bool {
	return s[v]
}

// PipelineState is the escalation state together with the pipeline fields
// the controller owns
type PipelineState struct {
	State               State
	Contrast            float64
	Grain               pipeline.Grain
	ChromaticAberration pipeline.ChromaticAberration
}

// Target is the pipeline the controller writes to
type Target interface {
	Snapshot() pipeline.Settings
	Update(fn func(*pipeline.Settings))
}

// Controller switches the pipeline between the normal and escalated presets
// after every successful sample. There is no hysteresis; the state may flip
// on consecutive ticks.
type Controller struct {
	sampler   *Sampler
	set       TriggerSet
	escalated config.PresetConfig
	normal    config.PresetConfig
	target    Target
	log       *logger.Logger

	state atomic.Int32
}

// NewController creates a controller in the Normal state. It does not touch
// the target until the first successful tick.
func NewController(sampler *Sampler, set TriggerSet, escalated, normal config.PresetConfig, target Target, log *logger.Logger) *Controller {
	c := &Controller{
		sampler:   sampler,
		set:       set,
		escalated: escalated,
		normal:    normal,
		target:    target,
		log:       log,
	}
	c.state.Store(int32(Normal))
	return c
}

// State returns the current escalation state
func (c *Controller) State() State {
	return State(c.state.Load())
}

// PipelineState returns the state and the controlled fields as currently
// held by the target
func (c *Controller) PipelineState() PipelineState {
	s := c.target.Snapshot()
	return PipelineState{
		State:               c.State(),
		Contrast:            s.Contrast,
		Grain:               s.Grain,
		ChromaticAberration: s.ChromaticAberration,
	}
}

// Poll takes one sample and applies it
func (c *Controller) Poll() State {
	return c.Tick(c.sampler.Sample())
}

// Tick applies one sampler result. A missing sample leaves the state and
// the pipeline untouched.
func (c *Controller) Tick(sample NoiseSample, ok bool) State {
	prev := c.State()
	if !ok {
		return prev
	}

	next := Normal
	if c.set.Contains(sample.Value) {
		next = Escalated
	}

	c.target.Update(func(s *pipeline.Settings) {
		c.apply(next, s)
	})
	c.state.Store(int32(next))

	if next != prev {
		c.log.Infof("pipeline %s -> %s (sample %d)", prev, next, sample.Value)
	}
	return next
}

// apply writes the preset for state. Escalation overwrites every controlled
// field; returning to Normal only resets contrast and the enable flags.
func (c *Controller) apply(state State, s *pipeline.Settings) {
	if state == Escalated {
		p := c.escalated
		s.Contrast = p.Contrast
		s.Grain = pipeline.Grain{
			Enabled:   p.GrainEnabled,
			Intensity: p.GrainIntensity,
			Animated:  p.GrainAnimated,
		}
		s.ChromaticAberration = pipeline.ChromaticAberration{
			Enabled:         p.ChromaticEnabled,
			Amount:          p.ChromaticAmount,
			RadialIntensity: p.ChromaticRadialIntensity,
		}
		return
	}

	p := c.normal
	s.Contrast = p.Contrast
	s.Grain.Enabled = p.GrainEnabled
	s.ChromaticAberration.Enabled = p.ChromaticEnabled
}
