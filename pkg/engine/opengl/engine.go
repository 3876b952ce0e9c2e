// Package opengl is the GPU display: a glfw window running the glitch pass
// and the image-processing pass as full-screen shader passes.
package opengl

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
	"glitchfx/pkg/engine"
	"glitchfx/pkg/glitch"
	"glitchfx/pkg/pipeline"
)

var _ engine.Display = (*Engine)(nil)

// Engine is the OpenGL display
type Engine struct {
	window    *glfw.Window
	config    *config.Config
	logger    *logger.Logger
	ctx       *engine.Context
	scheduler *engine.Scheduler
	audio     engine.AudioOutput

	quad       *screenQuad
	sourceTex  uint32
	glitchPass *PostProcess
	gradePass  *PostProcess
	uniforms   glitch.FrameUniforms

	fbWidth   int
	fbHeight  int
	isRunning bool
	frameRate int
}

// NewEngine opens the window and compiles both passes. A shader that fails
// to compile is returned as an error wrapping ErrShaderCompile. out may be nil.
func NewEngine(cfg *config.Config, log *logger.Logger, out engine.AudioOutput) (*Engine, error) {
	ctx, err := engine.NewContext(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Graphics.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, "glitchfx", monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	log.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	e := &Engine{
		window:    window,
		config:    cfg,
		logger:    log,
		ctx:       ctx,
		scheduler: engine.NewScheduler(log.Named("scheduler")),
		frameRate: cfg.Graphics.FrameRate,
	}

	if err := e.initPasses(); err != nil {
		e.cleanup()
		return nil, err
	}

	e.fbWidth, e.fbHeight = window.GetFramebufferSize()
	e.resizeCallback(window, e.fbWidth, e.fbHeight)
	window.SetFramebufferSizeCallback(e.resizeCallback)

	if out != nil {
		e.audio = out
		ctx.SetAudio(out)
	}

	return e, nil
}

// initPasses compiles the glitch pass and the image-processing pass
func (e *Engine) initPasses() error {
	e.quad = newScreenQuad()
	gl.GenTextures(1, &e.sourceTex)

	var err error
	e.glitchPass, err = NewPostProcess(
		"glitch",
		glitch.VertexSource,
		glitch.FragmentSource(e.ctx.Params()),
		glitch.UniformSampler,
		[]string{glitch.UniformTime, glitch.UniformResolution},
		e.config.Graphics.ResolutionScale,
	)
	if err != nil {
		return err
	}
	e.glitchPass.OnApply = func(pp *PostProcess) {
		pp.SetFloat(glitch.UniformTime, float32(e.uniforms.Time))
		pp.SetFloat(glitch.UniformResolution, float32(e.uniforms.Width), float32(e.uniforms.Height))
	}

	e.gradePass, err = NewPostProcess(
		"image-processing",
		glitch.VertexSource,
		pipeline.FragmentSource,
		pipeline.UniformSampler,
		pipeline.UniformNames(),
		1.0,
	)
	if err != nil {
		return err
	}
	e.gradePass.OnApply = func(pp *PostProcess) {
		settings := e.ctx.Pipeline().Snapshot()
		for _, u := range pipeline.Uniforms(settings, e.uniforms.Time, e.fbWidth, e.fbHeight) {
			pp.SetFloat(u.Name, u.Values...)
		}
	}

	return nil
}

// Run starts the main loop and returns when the window closes
func (e *Engine) Run() error {
	e.isRunning = true
	now := time.Now()
	for _, task := range e.ctx.Tasks(e.render) {
		e.scheduler.Add(task, now)
	}

	for e.isRunning && !e.window.ShouldClose() {
		currentTime := time.Now()

		e.processInput()
		e.scheduler.RunDue(currentTime)

		e.window.SwapBuffers()
		glfw.PollEvents()

		// Cap the frame rate
		if e.frameRate > 0 && !e.config.Graphics.VSync {
			frameTime := time.Since(currentTime)
			targetFrameTime := time.Second / time.Duration(e.frameRate)
			if frameTime < targetFrameTime {
				time.Sleep(targetFrameTime - frameTime)
			}
		}
	}

	e.scheduler.Remove(engine.TriggerTaskName)
	e.scheduler.Remove(engine.RenderTaskName)
	e.cleanup()
	return nil
}

// processInput handles user input
func (e *Engine) processInput() {
	if e.window.GetKey(glfw.KeyEscape) == glfw.Press || e.window.GetKey(glfw.KeyQ) == glfw.Press {
		e.isRunning = false
	}
}

// render draws one frame: source upload, glitch pass, image-processing pass
func (e *Engine) render(u glitch.FrameUniforms) {
	e.uniforms = u

	src := e.ctx.SourceFrame(u)
	uploadImage(e.sourceTex, src.ToImage())

	e.glitchPass.Apply(e.sourceTex, e.quad)
	e.gradePass.Present(e.glitchPass.Output(), e.quad, e.fbWidth, e.fbHeight)
}

func (e *Engine) resizeCallback(_ *glfw.Window, width int, height int) {
	if width == 0 || height == 0 {
		// Minimised
		return
	}
	e.logger.Infof("Window resized to %dx%d", width, height)
	e.fbWidth = width
	e.fbHeight = height

	e.ctx.Resize(width, height)
	if err := e.glitchPass.Resize(width, height); err != nil {
		e.logger.Errorf("%v", err)
	}
}

// cleanup performs necessary cleanup before exiting
func (e *Engine) cleanup() {
	e.logger.Info("Shutting down engine...")
	if e.audio != nil {
		if err := e.audio.Close(); err != nil {
			e.logger.Warnf("%v", err)
		}
	}
	if e.glitchPass != nil {
		e.glitchPass.Delete()
	}
	if e.gradePass != nil {
		e.gradePass.Delete()
	}
	if e.quad != nil {
		e.quad.delete()
		gl.DeleteTextures(1, &e.sourceTex)
	}
	glfw.Terminate()
}
