package graphics

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLDevice implements Device on top of an OpenGL 4.1 core context.
// gl.Init must have been called on the current context before use.
type GLDevice struct{}

// NewGLDevice returns a device bound to the current OpenGL context.
func NewGLDevice() *GLDevice {
	return &GLDevice{}
}

// ConfigureState applies the fixed pipeline state the region renderer expects.
func (d *GLDevice) ConfigureState() {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
}

// Clear clears color and depth with the given sky color.
func (d *GLDevice) Clear(r, g, b float32) {
	gl.ClearColor(r, g, b, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport resizes the GL viewport.
func (d *GLDevice) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func glError(label string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	// drain any queued errors so the next check starts clean
	for gl.GetError() != gl.NO_ERROR {
	}
	if code == gl.OUT_OF_MEMORY {
		return fmt.Errorf("%s: %w", label, ErrOutOfMemory)
	}
	return fmt.Errorf("%s: gl error 0x%x", label, code)
}

func (d *GLDevice) NewVertexBuffer(layout VertexLayout) (VertexBuffer, error) {
	var vb VertexBuffer
	gl.GenVertexArrays(1, &vb.VAO)
	gl.GenBuffers(1, &vb.VBO)
	if vb.VAO == 0 || vb.VBO == 0 {
		d.DeleteVertexBuffer(vb)
		return VertexBuffer{}, fmt.Errorf("gen vertex array: %w", ErrOutOfMemory)
	}

	gl.BindVertexArray(vb.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	for _, a := range layout.Attributes {
		gl.VertexAttribPointer(a.Location, a.Size, gl.FLOAT, false, layout.Stride, gl.PtrOffset(a.Offset))
		gl.EnableVertexAttribArray(a.Location)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := glError("new vertex buffer"); err != nil {
		d.DeleteVertexBuffer(vb)
		return VertexBuffer{}, err
	}
	return vb, nil
}

func (d *GLDevice) BufferData(vb VertexBuffer, data []float32) error {
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.VBO)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return glError("buffer data")
}

func (d *GLDevice) DeleteVertexBuffer(vb VertexBuffer) {
	if vb.VBO != 0 {
		gl.DeleteBuffers(1, &vb.VBO)
	}
	if vb.VAO != 0 {
		gl.DeleteVertexArrays(1, &vb.VAO)
	}
}

// DrawTriangles issues glDrawArrays; a zero count is a valid empty draw.
func (d *GLDevice) DrawTriangles(vb VertexBuffer, first, count int32) {
	gl.BindVertexArray(vb.VAO)
	gl.DrawArrays(gl.TRIANGLES, first, count)
	gl.BindVertexArray(0)
}

func (d *GLDevice) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(msg, "\x00"))
	}
	return program, nil
}

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

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(msg, "\x00"))
	}
	return shader, nil
}

func (d *GLDevice) UniformLocation(program uint32, name string) int32 {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		log.Printf("uniform %q not found in program %d", name, program)
	}
	return loc
}

func (d *GLDevice) DeleteProgram(program uint32) {
	if program != 0 {
		gl.DeleteProgram(program)
	}
}

func (d *GLDevice) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *GLDevice) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}
