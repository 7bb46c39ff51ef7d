package graphics

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawCall is one recorded DrawTriangles invocation.
type DrawCall struct {
	Buffer    VertexBuffer
	Program   uint32
	Transform mgl32.Mat4
	First     int32
	Count     int32
}

// RecordingDevice is a headless Device. It hands out fake handles, keeps the
// uploaded data of every live buffer and records draw calls, so that the
// region renderer can run without a GL context (simulation and tests).
//
// It panics on double deletes and on draws against deleted buffers; both are
// ownership bugs in the caller.
type RecordingDevice struct {
	mu sync.Mutex

	nextHandle uint32
	live       map[uint32][]float32 // VBO -> uploaded data
	vaos       map[uint32]uint32    // VAO -> VBO
	programs   map[uint32]string

	program   uint32
	transform mgl32.Mat4

	draws     []DrawCall
	uploads   int
	allocs    int
	deletes   int
	failAlloc int
	failData  int
}

// NewRecordingDevice returns an empty recording device.
func NewRecordingDevice() *RecordingDevice {
	return &RecordingDevice{
		live:     make(map[uint32][]float32),
		vaos:     make(map[uint32]uint32),
		programs: make(map[uint32]string),
	}
}

// FailAllocations makes the next n NewVertexBuffer calls fail with ErrOutOfMemory.
func (d *RecordingDevice) FailAllocations(n int) {
	d.mu.Lock()
	d.failAlloc = n
	d.mu.Unlock()
}

// FailUploads makes the next n BufferData calls fail with ErrOutOfMemory.
func (d *RecordingDevice) FailUploads(n int) {
	d.mu.Lock()
	d.failData = n
	d.mu.Unlock()
}

func (d *RecordingDevice) handle() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *RecordingDevice) NewVertexBuffer(layout VertexLayout) (VertexBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAlloc > 0 {
		d.failAlloc--
		return VertexBuffer{}, fmt.Errorf("new vertex buffer: %w", ErrOutOfMemory)
	}
	if layout.Stride <= 0 {
		panic("graphics: vertex layout without stride")
	}
	vb := VertexBuffer{VAO: d.handle(), VBO: d.handle()}
	d.vaos[vb.VAO] = vb.VBO
	d.live[vb.VBO] = nil
	d.allocs++
	return vb, nil
}

func (d *RecordingDevice) BufferData(vb VertexBuffer, data []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[vb.VBO]; !ok {
		panic(fmt.Sprintf("graphics: upload to unknown buffer %d", vb.VBO))
	}
	if d.failData > 0 {
		d.failData--
		return fmt.Errorf("buffer data: %w", ErrOutOfMemory)
	}
	d.live[vb.VBO] = append([]float32(nil), data...)
	d.uploads++
	return nil
}

func (d *RecordingDevice) DeleteVertexBuffer(vb VertexBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[vb.VBO]; !ok {
		panic(fmt.Sprintf("graphics: double delete of buffer %d", vb.VBO))
	}
	if _, ok := d.vaos[vb.VAO]; !ok {
		panic(fmt.Sprintf("graphics: double delete of vertex array %d", vb.VAO))
	}
	delete(d.live, vb.VBO)
	delete(d.vaos, vb.VAO)
	d.deletes++
}

func (d *RecordingDevice) DrawTriangles(vb VertexBuffer, first, count int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if vbo, ok := d.vaos[vb.VAO]; !ok || vbo != vb.VBO {
		panic(fmt.Sprintf("graphics: draw with stale vertex array %d", vb.VAO))
	}
	d.draws = append(d.draws, DrawCall{
		Buffer:    vb,
		Program:   d.program,
		Transform: d.transform,
		First:     first,
		Count:     count,
	})
}

func (d *RecordingDevice) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if vertexSrc == "" || fragmentSrc == "" {
		return 0, fmt.Errorf("failed to compile shader: empty source")
	}
	id := d.handle()
	d.programs[id] = vertexSrc
	return id, nil
}

func (d *RecordingDevice) UniformLocation(program uint32, name string) int32 {
	return 0
}

func (d *RecordingDevice) DeleteProgram(program uint32) {
	d.mu.Lock()
	delete(d.programs, program)
	d.mu.Unlock()
}

func (d *RecordingDevice) UseProgram(program uint32) {
	d.mu.Lock()
	d.program = program
	d.mu.Unlock()
}

func (d *RecordingDevice) UniformMatrix4(location int32, m mgl32.Mat4) {
	d.mu.Lock()
	d.transform = m
	d.mu.Unlock()
}

// Draws returns a copy of the draw calls recorded since the last Reset.
func (d *RecordingDevice) Draws() []DrawCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DrawCall(nil), d.draws...)
}

// ResetDraws forgets the recorded draw calls, typically once per frame.
func (d *RecordingDevice) ResetDraws() {
	d.mu.Lock()
	d.draws = d.draws[:0]
	d.mu.Unlock()
}

// Uploads returns the number of successful BufferData calls.
func (d *RecordingDevice) Uploads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploads
}

// Allocations returns the number of successful NewVertexBuffer calls.
func (d *RecordingDevice) Allocations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocs
}

// Deletes returns the number of DeleteVertexBuffer calls.
func (d *RecordingDevice) Deletes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deletes
}

// LiveBuffers returns the number of allocated, not yet deleted buffers.
func (d *RecordingDevice) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// BufferContents returns a copy of the data last uploaded to vb.
func (d *RecordingDevice) BufferContents(vb VertexBuffer) ([]float32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.live[vb.VBO]
	if !ok {
		return nil, false
	}
	return append([]float32(nil), data...), true
}
