package regions

import (
	"fmt"

	"voxelview/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatsPerVertex is the interleaved vertex stride: position xyz, uv, rgba, tint factor.
const FloatsPerVertex = 10

// ChunkLayout is the attribute layout of every chunk and region buffer.
var ChunkLayout = graphics.VertexLayout{
	Stride: FloatsPerVertex * 4,
	Attributes: []graphics.Attribute{
		{Location: 0, Size: 3, Offset: 0},  // position
		{Location: 1, Size: 2, Offset: 12}, // texture coordinate
		{Location: 2, Size: 4, Offset: 20}, // color
		{Location: 3, Size: 1, Offset: 36}, // tint blend factor
	},
}

// Unit is the meshed payload of one chunk, ready for upload.
//
// A Unit is built by a producer goroutine and is read-only from then on. Its
// GPU state is touched only by the render goroutine: it may own one standalone
// buffer until it is retired by Release, which happens when its Region merges
// it or unloads.
type Unit struct {
	coord   ChunkCoord
	payload []float32

	dev     graphics.Device
	buf     graphics.VertexBuffer
	retired bool
}

// NewUnit wraps payload for the chunk at coord. The payload is positioned in
// region-local space and must hold whole vertices.
func NewUnit(coord ChunkCoord, payload []float32) *Unit {
	if len(payload)%FloatsPerVertex != 0 {
		panic(fmt.Sprintf("regions: %v payload of %d floats is not a multiple of %d", coord, len(payload), FloatsPerVertex))
	}
	return &Unit{coord: coord, payload: payload}
}

// Coord returns the chunk coordinate of the unit.
func (u *Unit) Coord() ChunkCoord { return u.coord }

// Payload returns the vertex data. Callers must not modify it.
func (u *Unit) Payload() []float32 { return u.payload }

// VertexCount returns the number of vertices in the payload.
func (u *Unit) VertexCount() int32 { return int32(len(u.payload) / FloatsPerVertex) }

// Uploaded reports whether the unit currently owns a standalone buffer.
func (u *Unit) Uploaded() bool { return u.buf.Valid() }

// Retired reports whether Release has been called.
func (u *Unit) Retired() bool { return u.retired }

// Upload allocates the standalone buffer and uploads the payload. It is a
// no-op if the buffer already exists or the unit has been retired.
func (u *Unit) Upload(dev graphics.Device) error {
	if u.retired || u.buf.Valid() {
		return nil
	}
	buf, err := dev.NewVertexBuffer(ChunkLayout)
	if err != nil {
		return u.allocErr("allocate chunk", err)
	}
	if err := dev.BufferData(buf, u.payload); err != nil {
		dev.DeleteVertexBuffer(buf)
		return u.allocErr("upload chunk", err)
	}
	u.dev = dev
	u.buf = buf
	return nil
}

func (u *Unit) allocErr(op string, err error) error {
	c := u.coord
	return &AllocationError{Op: op, Chunk: &c, Err: err}
}

// DrawStandalone issues one draw call for the unit. It does nothing if the
// unit has no buffer, which is the case after it was merged or unloaded.
func (u *Unit) DrawStandalone(prog *graphics.Program, transform mgl32.Mat4) {
	if u.retired || !u.buf.Valid() || prog == nil {
		return
	}
	u.dev.UseProgram(prog.ID)
	u.dev.UniformMatrix4(prog.Uniform(graphics.TransformUniform), transform)
	u.dev.DrawTriangles(u.buf, 0, u.VertexCount())
}

// Release frees the standalone buffer, if any, and retires the unit. Calling
// it again is a no-op. The payload is kept so a Region can still fold it into
// later merges.
func (u *Unit) Release() {
	u.retired = true
	if !u.buf.Valid() {
		return
	}
	u.dev.DeleteVertexBuffer(u.buf)
	u.buf = graphics.VertexBuffer{}
	u.dev = nil
}
