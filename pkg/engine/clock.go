package engine

import (
	"time"

	"glitchfx/pkg/config"
)

// FrameClock produces the time uniform. In frame mode time is the number
// of frames rendered so far divided by the nominal frame rate, so a slow
// frame slows the effect down instead of skipping it. In wall mode it is
// the elapsed real time since the first tick.
type FrameClock struct {
	source string
	fps    float64
	offset float64
	frame  uint64
	start  time.Time
	now    func() time.Time
}

// NewFrameClock creates a clock for the given time source
func NewFrameClock(source string, frameRate int) *FrameClock {
	fps := float64(frameRate)
	if fps <= 0 {
		fps = 60
	}
	return &FrameClock{
		source: source,
		fps:    fps,
		now:    time.Now,
	}
}

// NewVirtualClock creates a frame clock starting at start seconds and
// advancing interval seconds per frame
func NewVirtualClock(start, interval float64) *FrameClock {
	c := NewFrameClock(config.TimeFrames, 60)
	if interval > 0 {
		c.fps = 1 / interval
	}
	c.offset = start
	return c
}

// Tick returns the time for the frame about to be rendered and advances
// the frame counter
func (c *FrameClock) Tick() float64 {
	if c.frame == 0 {
		c.start = c.now()
	}
	t := c.Time()
	c.frame++
	return t
}

// Time returns the time of the next frame without advancing
func (c *FrameClock) Time() float64 {
	if c.source == config.TimeWall {
		if c.frame == 0 {
			return c.offset
		}
		return c.offset + c.now().Sub(c.start).Seconds()
	}
	return c.offset + float64(c.frame)/c.fps
}
