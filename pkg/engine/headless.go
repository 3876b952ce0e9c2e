package engine

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
	"glitchfx/pkg/glitch"
)

// Headless renders a fixed number of frames on the CPU and writes them as
// PNG files. Time is virtual: frame i is rendered at StartTime plus i
// frame intervals and the trigger task runs on the same virtual clock.
type Headless struct {
	config    *config.Config
	logger    *logger.Logger
	ctx       *Context
	scheduler *Scheduler
	outputDir string
	written   []string
	err       error
}

// NewHeadless prepares the output directory
func NewHeadless(cfg *config.Config, log *logger.Logger) (*Headless, error) {
	ctx, err := NewContext(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Graphics.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Headless{
		config:    cfg,
		logger:    log,
		ctx:       ctx,
		scheduler: NewScheduler(log.Named("scheduler")),
		outputDir: cfg.Graphics.OutputDir,
	}, nil
}

// Run renders every frame and stops at the first write error
func (h *Headless) Run() error {
	g := h.config.Graphics
	step := time.Duration(g.FrameInterval * float64(time.Second))
	epoch := time.Unix(0, 0)

	for _, task := range h.ctx.Tasks(h.write) {
		h.scheduler.Add(task, epoch)
	}

	start := time.Now()
	for i := 0; i < g.Frames && h.err == nil; i++ {
		h.scheduler.RunDue(epoch.Add(time.Duration(i) * step))
	}
	if h.err != nil {
		return h.err
	}

	h.logger.Infof("wrote %d frames to %s in %v (%d trigger ticks, final state %s)",
		len(h.written), h.outputDir, time.Since(start).Round(time.Millisecond),
		h.scheduler.Runs(TriggerTaskName), h.ctx.State())
	return nil
}

// Written returns the paths of the frames written so far
func (h *Headless) Written() []string {
	return h.written
}

func (h *Headless) write(u glitch.FrameUniforms) {
	if h.err != nil {
		return
	}
	path := filepath.Join(h.outputDir, fmt.Sprintf("frame_%04d.png", len(h.written)))
	if err := writePNG(path, h.ctx.RenderCPU(u)); err != nil {
		h.err = err
		return
	}
	h.written = append(h.written, path)
	h.logger.Debugf("frame %s t=%.3f strength=%.3f", path, u.Time, h.ctx.Params().Strength(u.Time))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
