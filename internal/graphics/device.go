package graphics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrOutOfMemory is reported by a Device when the driver could not satisfy an allocation.
var ErrOutOfMemory = errors.New("graphics: out of memory")

// Attribute describes one float vertex attribute inside an interleaved buffer.
type Attribute struct {
	Location uint32
	Size     int32 // number of float32 components
	Offset   int   // byte offset inside a vertex
}

// VertexLayout is the attribute layout shared by every vertex of a buffer.
type VertexLayout struct {
	Stride     int32 // bytes per vertex
	Attributes []Attribute
}

// FloatsPerVertex returns the stride expressed in float32 values.
func (l VertexLayout) FloatsPerVertex() int {
	return int(l.Stride) / 4
}

// VertexBuffer is a vertex array object paired with its backing buffer.
// The zero value means "not allocated".
type VertexBuffer struct {
	VAO uint32
	VBO uint32
}

// Valid reports whether the buffer refers to allocated GPU objects.
func (vb VertexBuffer) Valid() bool {
	return vb.VAO != 0 && vb.VBO != 0
}

// Device is the set of GPU operations used by the renderer.
// All methods must be called from the goroutine that owns the GL context.
type Device interface {
	NewVertexBuffer(layout VertexLayout) (VertexBuffer, error)
	BufferData(vb VertexBuffer, data []float32) error
	DeleteVertexBuffer(vb VertexBuffer)
	DrawTriangles(vb VertexBuffer, first, count int32)

	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UniformLocation(program uint32, name string) int32
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformMatrix4(location int32, m mgl32.Mat4)
}
