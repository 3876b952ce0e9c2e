package engine

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"time"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
	"glitchfx/pkg/glitch"
	"glitchfx/pkg/pipeline"
	"glitchfx/pkg/trigger"
)

// Task names
const (
	RenderTaskName  = "render"
	TriggerTaskName = "trigger"
)

// LevelSink receives the burst level once per rendered frame
type LevelSink interface {
	SetLevel(strength float64, escalated bool)
}

// AudioOutput is a LevelSink backed by a device the display releases on exit
type AudioOutput interface {
	LevelSink
	io.Closer
}

// Context owns everything the two periodic tasks share: the pipeline
// settings, the glitch constants, the trigger texture and controller, and
// the render target size. Each display creates one and drives it through
// RenderTick and TriggerTick.
type Context struct {
	cfg        *config.Config
	log        *logger.Logger
	params     glitch.Params
	shader     *glitch.Shader
	pipeline   *pipeline.Pipeline
	texture    *trigger.NoiseTexture
	controller *trigger.Controller
	clock      *FrameClock
	source     Source
	audio      LevelSink

	mu     sync.Mutex
	width  int
	height int
	scale  float64

	lastRender time.Time
	frame      *glitch.Frame
}

// NewContext builds the shared state from cfg
func NewContext(cfg *config.Config, log *logger.Logger) (*Context, error) {
	set, err := trigger.NewTriggerSet(cfg.Trigger.Values)
	if err != nil {
		return nil, fmt.Errorf("invalid trigger set: %w", err)
	}

	source, err := NewSource(cfg.Graphics.SourceImage)
	if err != nil {
		return nil, err
	}

	clock := NewFrameClock(cfg.Glitch.TimeSource, cfg.Graphics.FrameRate)
	if cfg.Graphics.DisplayMode == config.DisplayHeadless {
		clock = NewVirtualClock(cfg.Graphics.StartTime, cfg.Graphics.FrameInterval)
	}

	params := glitch.ParamsFromConfig(cfg.Glitch)
	pipe := pipeline.New(pipeline.SettingsFromConfig(cfg.Pipeline))
	texture := trigger.NewNoiseTexture(trigger.TextureOptionsFromConfig(cfg.Trigger))
	sampler := trigger.NewSampler(texture, log.Named("sampler"))
	controller := trigger.NewController(sampler, set, cfg.Trigger.Escalated, cfg.Trigger.Normal, pipe, log.Named("trigger"))

	scale := cfg.Graphics.ResolutionScale
	if scale <= 0 {
		scale = 1
	}

	return &Context{
		cfg:        cfg,
		log:        log,
		params:     params,
		shader:     glitch.NewShader(params),
		pipeline:   pipe,
		texture:    texture,
		controller: controller,
		clock:      clock,
		source:     source,
		width:      cfg.Graphics.Width,
		height:     cfg.Graphics.Height,
		scale:      scale,
	}, nil
}

// SetAudio attaches a sink that follows the burst level
func (c *Context) SetAudio(sink LevelSink) {
	c.audio = sink
}

// Params returns the glitch constants
func (c *Context) Params() glitch.Params {
	return c.params
}

// Pipeline returns the shared pipeline settings
func (c *Context) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// State returns the escalation state
func (c *Context) State() trigger.State {
	return c.controller.State()
}

// Resize records a new output size in pixels
func (c *Context) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width == c.width && height == c.height {
		return
	}
	c.log.Debugf("render target %dx%d -> %dx%d", c.width, c.height, width, height)
	c.width = width
	c.height = height
}

// RenderTarget returns the glitch pass size: the output size times the
// resolution scale, at least one pixel each way
func (c *Context) RenderTarget() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ScaledSize(c.width, c.height, c.scale)
}

// ScaledSize multiplies a size by scale, rounding and keeping at least one
// pixel each way
func ScaledSize(width, height int, scale float64) (int, int) {
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// RenderTick advances the frame clock and the trigger texture by dt
// seconds and returns this frame's uniforms
func (c *Context) RenderTick(dt float64) glitch.FrameUniforms {
	t := c.clock.Tick()
	c.texture.Advance(dt)

	w, h := c.RenderTarget()
	if c.audio != nil {
		c.audio.SetLevel(c.params.Strength(t), c.State() == trigger.Escalated)
	}
	return glitch.FrameUniforms{Time: t, Width: w, Height: h}
}

// TriggerTick samples the trigger texture once and updates the pipeline
func (c *Context) TriggerTick() trigger.State {
	return c.controller.Poll()
}

// Tasks returns the render task and, when enabled, the trigger task.
// draw receives the uniforms of every rendered frame.
func (c *Context) Tasks(draw func(glitch.FrameUniforms)) []Task {
	tasks := []Task{{
		Name: RenderTaskName,
		Run: func(now time.Time) {
			dt := 0.0
			if !c.lastRender.IsZero() {
				dt = now.Sub(c.lastRender).Seconds()
			}
			c.lastRender = now
			draw(c.RenderTick(dt))
		},
	}}

	if c.cfg.Trigger.Enabled {
		tasks = append(tasks, Task{
			Name:     TriggerTaskName,
			Interval: c.cfg.Trigger.Interval,
			Run: func(time.Time) {
				c.TriggerTick()
			},
		})
	}
	return tasks
}

// RenderCPU runs the glitch pass and the image-processing stages on the
// CPU for one frame
func (c *Context) RenderCPU(u glitch.FrameUniforms) *image.RGBA {
	src := c.source.Frame(u.Width, u.Height, u.Time)
	if c.frame == nil || c.frame.Width != u.Width || c.frame.Height != u.Height {
		c.frame = glitch.NewFrame(u.Width, u.Height)
	}
	c.shader.Render(c.frame, src, u.Time, c.cfg.Graphics.Workers)
	return pipeline.Grade(c.frame, c.pipeline.Snapshot(), u.Time)
}

// SourceFrame returns the colour buffer for the GL glitch pass
func (c *Context) SourceFrame(u glitch.FrameUniforms) *glitch.Frame {
	return c.source.Frame(u.Width, u.Height, u.Time)
}
