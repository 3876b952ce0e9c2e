package engine

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
	"glitchfx/pkg/glitch"
)

// halfBlock draws the upper pixel as foreground and the lower as background
const halfBlock = '▀'

// asciiRamp runs from dark to light
var asciiRamp = []rune{' ', '.', '\'', '`', ',', ':', ';', '"', '-', '+', '=', '*', '#', '%', '@', '$'}

// asciiGamma lifts mid tones so dark frames keep some texture
const asciiGamma = 1.2

// glyphFor picks the ramp character for a pixel's luminance
func glyphFor(c color.RGBA) rune {
	l := (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
	l = math.Pow(l, 1/asciiGamma)
	i := int(l * float64(len(asciiRamp)))
	return asciiRamp[min(max(i, 0), len(asciiRamp)-1)]
}

// cell is one terminal character covering two vertically stacked pixels
type cell struct {
	top    color.RGBA
	bottom color.RGBA
}

// halfBlocks folds img into cols×rows cells, two pixel rows per cell row
func halfBlocks(img *image.RGBA, cols, rows int) [][]cell {
	out := make([][]cell, rows)
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		out[y] = make([]cell, cols)
		for x := 0; x < cols; x++ {
			if x >= b.Dx() {
				continue
			}
			if 2*y < b.Dy() {
				out[y][x].top = img.RGBAAt(b.Min.X+x, b.Min.Y+2*y)
			}
			if 2*y+1 < b.Dy() {
				out[y][x].bottom = img.RGBAAt(b.Min.X+x, b.Min.Y+2*y+1)
			}
		}
	}
	return out
}

// TerminalView renders CPU frames into a true-colour terminal
type TerminalView struct {
	screen    tcell.Screen
	config    *config.Config
	logger    *logger.Logger
	ctx       *Context
	scheduler *Scheduler
	audio     AudioOutput

	ascii  bool
	cols   int
	rows   int
	events chan tcell.Event
	quit   chan struct{}
}

// NewTerminalView initialises the terminal screen. out may be nil.
func NewTerminalView(cfg *config.Config, log *logger.Logger, out AudioOutput) (*TerminalView, error) {
	ctx, err := NewContext(cfg, log)
	if err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	screen.HideCursor()

	v := &TerminalView{
		screen:    screen,
		config:    cfg,
		logger:    log,
		ctx:       ctx,
		scheduler: NewScheduler(log.Named("scheduler")),
		ascii:     cfg.Graphics.TerminalGlyphs == config.GlyphsASCII,
		events:    make(chan tcell.Event, 16),
		quit:      make(chan struct{}),
	}
	v.resize(screen.Size())

	if out != nil {
		v.audio = out
		ctx.SetAudio(out)
	}
	return v, nil
}

// resize maps the terminal grid onto the render target: cols×(2*rows)
// pixels for half blocks, one pixel per cell for ascii
func (v *TerminalView) resize(cols, rows int) {
	v.cols = cols
	v.rows = rows
	v.ctx.Resize(cols, v.pixelRows())
}

func (v *TerminalView) pixelRows() int {
	if v.ascii {
		return v.rows
	}
	return v.rows * 2
}

// Run drives the scheduler until Escape, q or Ctrl-C
func (v *TerminalView) Run() error {
	defer v.cleanup()

	go v.pollEvents()

	frameRate := v.config.Graphics.FrameRate
	if frameRate <= 0 {
		frameRate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	now := time.Now()
	for _, task := range v.ctx.Tasks(v.draw) {
		v.scheduler.Add(task, now)
	}

	for {
		select {
		case ev := <-v.events:
			if v.handleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			v.scheduler.RunDue(now)
		}
	}
}

func (v *TerminalView) pollEvents() {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			// Screen finalised
			return
		}
		select {
		case v.events <- ev:
		case <-v.quit:
			return
		}
	}
}

// handleEvent returns true when the view should exit
func (v *TerminalView) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.resize(v.screen.Size())
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return true
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' {
			return true
		}
	}
	return false
}

func (v *TerminalView) draw(u glitch.FrameUniforms) {
	img := v.ctx.RenderCPU(u)
	// The render target may be scaled; sample it back to the grid
	if img.Bounds().Dx() != v.cols || img.Bounds().Dy() != v.pixelRows() {
		img = glitch.FrameFromImage(img, v.cols, v.pixelRows()).ToImage()
	}

	if v.ascii {
		v.drawASCII(img)
		v.screen.Show()
		return
	}

	for y, row := range halfBlocks(img, v.cols, v.rows) {
		for x, c := range row {
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(c.top.R), int32(c.top.G), int32(c.top.B))).
				Background(tcell.NewRGBColor(int32(c.bottom.R), int32(c.bottom.G), int32(c.bottom.B)))
			v.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	v.screen.Show()
}

func (v *TerminalView) drawASCII(img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < v.rows && y < b.Dy(); y++ {
		for x := 0; x < v.cols && x < b.Dx(); x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))).
				Background(tcell.ColorBlack)
			v.screen.SetContent(x, y, glyphFor(c), nil, style)
		}
	}
}

func (v *TerminalView) cleanup() {
	close(v.quit)
	v.scheduler.Remove(TriggerTaskName)
	v.scheduler.Remove(RenderTaskName)
	if v.audio != nil {
		if err := v.audio.Close(); err != nil {
			v.logger.Warnf("%v", err)
		}
	}
	v.screen.Fini()
}
