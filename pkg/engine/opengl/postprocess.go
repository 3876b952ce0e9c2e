package opengl

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"glitchfx/pkg/engine"
)

// ErrShaderCompile is wrapped by every shader compile or link failure
var ErrShaderCompile = errors.New("shader compilation failed")

// PostProcess is one full-screen pass: a linked program, its uniform
// locations and, once Resize is called, an offscreen float target sized
// Scale times the viewport.
// OnApply runs after the program is bound and before the quad is drawn.
type PostProcess struct {
	Name    string
	Scale   float64
	OnApply func(pp *PostProcess)

	program  uint32
	sampler  int32
	uniforms map[string]int32

	fbo     uint32
	texture uint32
	width   int
	height  int
}

// NewPostProcess compiles the pass and resolves the declared uniforms
func NewPostProcess(name, vertexSource, fragmentSource, samplerName string, uniformNames []string, scale float64) (*PostProcess, error) {
	program, err := createShaderProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("post-process %s: %w", name, err)
	}

	pp := &PostProcess{
		Name:     name,
		Scale:    scale,
		program:  program,
		uniforms: make(map[string]int32, len(uniformNames)),
	}

	gl.UseProgram(program)
	pp.sampler = gl.GetUniformLocation(program, gl.Str(samplerName+"\x00"))
	for _, u := range uniformNames {
		pp.uniforms[u] = gl.GetUniformLocation(program, gl.Str(u+"\x00"))
	}

	return pp, nil
}

// Resize sizes the offscreen target for a viewport of width×height. The
// target is created on first use; passes that only Present never get one.
func (pp *PostProcess) Resize(width, height int) error {
	w, h := engine.ScaledSize(width, height, pp.Scale)
	if w == pp.width && h == pp.height {
		return nil
	}
	if pp.fbo == 0 {
		gl.GenFramebuffers(1, &pp.fbo)
		gl.GenTextures(1, &pp.texture)
	}
	pp.width = w
	pp.height = h

	gl.BindTexture(gl.TEXTURE_2D, pp.texture)
	// Float storage keeps the unclamped glitch output for the next pass
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(w), int32(h), 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, pp.texture, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("post-process %s: framebuffer not complete (0x%x)", pp.Name, status)
	}
	return nil
}

// Output is the texture the pass renders into
func (pp *PostProcess) Output() uint32 {
	return pp.texture
}

// SetFloat sets a float, vec2, vec3 or vec4 uniform. Unknown names and
// uniforms the compiler optimised away are ignored.
func (pp *PostProcess) SetFloat(name string, v ...float32) {
	loc, ok := pp.uniforms[name]
	if !ok || loc < 0 {
		return
	}
	switch len(v) {
	case 1:
		gl.Uniform1f(loc, v[0])
	case 2:
		gl.Uniform2f(loc, v[0], v[1])
	case 3:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case 4:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

// Apply draws the pass from input into its offscreen target
func (pp *PostProcess) Apply(input uint32, quad *screenQuad) {
	pp.draw(input, quad, pp.fbo, pp.width, pp.height)
}

// Present draws the pass from input straight to the default framebuffer
func (pp *PostProcess) Present(input uint32, quad *screenQuad, width, height int) {
	pp.draw(input, quad, 0, width, height)
}

func (pp *PostProcess) draw(input uint32, quad *screenQuad, fbo uint32, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(pp.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, input)
	gl.Uniform1i(pp.sampler, 0)

	if pp.OnApply != nil {
		pp.OnApply(pp)
	}

	quad.draw()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Delete releases the program and the offscreen target
func (pp *PostProcess) Delete() {
	if pp.fbo != 0 {
		gl.DeleteFramebuffers(1, &pp.fbo)
		gl.DeleteTextures(1, &pp.texture)
	}
	gl.DeleteProgram(pp.program)
}

// screenQuad is a full-screen triangle fan with UV (0,0) at the bottom left
type screenQuad struct {
	vao uint32
	vbo uint32
}

func newScreenQuad() *screenQuad {
	vertices := []float32{
		// Positions      // Texture coords
		-1.0, -1.0, 0.0, 0.0, 0.0,
		1.0, -1.0, 0.0, 1.0, 0.0,
		1.0, 1.0, 0.0, 1.0, 1.0,
		-1.0, 1.0, 0.0, 0.0, 1.0,
	}

	q := &screenQuad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindVertexArray(q.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	// Position attribute
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	// Texture coord attribute
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return q
}

func (q *screenQuad) draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
	gl.BindVertexArray(0)
}

func (q *screenQuad) delete() {
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
}

// uploadImage copies img into tex, flipping rows so that v = 0 is the
// bottom of the image
func uploadImage(tex uint32, img *image.RGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	flipped := make([]uint8, len(img.Pix))
	rowBytes := w * 4
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		copy(flipped[(h-1-y)*rowBytes:], src)
	}

	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(flipped))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

// createShaderProgram compiles and links a shader program from source
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

		gl.DeleteProgram(program)
		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)

		return 0, fmt.Errorf("%w: link: %s", ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}

	// Shaders are no longer needed once linked
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

// compileShader compiles a shader from source
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		gl.DeleteShader(shader)

		return 0, fmt.Errorf("%w: %s", ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}
