package regions

import (
	"errors"
	"fmt"
	"slices"

	"voxelview/internal/graphics"
	"voxelview/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkShader is the program name regions request from their ShaderProvider.
const ChunkShader = "render_chunk"

// RegionStats is a point-in-time summary of one region.
type RegionStats struct {
	Coord          RegionCoord
	Chunks         int
	Pending        int
	MergedVertices int32
	Allocated      bool
}

// Region groups the chunks of a chunksPerRegion × chunksPerRegion square so
// they can be drawn with a single call.
//
// Chunks added since the last Merge are pending: they stay in their own
// buffers and are drawn one by one until the next Merge folds them in. All
// methods must be called from the render goroutine.
type Region struct {
	coord           RegionCoord
	chunksPerRegion int
	identifier      string
	offset          mgl32.Mat4

	dev     graphics.Device
	shaders graphics.ShaderProvider

	chunks  map[ChunkCoord]*Unit
	pending map[ChunkCoord]*Unit

	prog      *graphics.Program
	buf       graphics.VertexBuffer
	drawCount int32
	scratch   []float32
	unloaded  bool
}

// NewRegion creates an empty region. No GPU state is allocated until the first Merge or Draw.
func NewRegion(coord RegionCoord, chunksPerRegion int, identifier string, dev graphics.Device, shaders graphics.ShaderProvider) *Region {
	origin := RegionOrigin(coord, chunksPerRegion)
	return &Region{
		coord:           coord,
		chunksPerRegion: chunksPerRegion,
		identifier:      identifier,
		offset:          mgl32.Translate3D(origin.X(), origin.Y(), origin.Z()),
		dev:             dev,
		shaders:         shaders,
		chunks:          make(map[ChunkCoord]*Unit),
		pending:         make(map[ChunkCoord]*Unit),
	}
}

func (r *Region) String() string { return r.coord.String() }

// Coord returns the region coordinate.
func (r *Region) Coord() RegionCoord { return r.coord }

// Offset returns the region's world translation, applied before the external transform.
func (r *Region) Offset() mgl32.Mat4 { return r.offset }

// Contains reports whether the region owns a unit for c.
func (r *Region) Contains(c ChunkCoord) bool {
	_, ok := r.chunks[c]
	return ok
}

// Len returns the number of owned chunks, merged or pending.
func (r *Region) Len() int { return len(r.chunks) }

// PendingLen returns the number of chunks waiting for the next merge.
func (r *Region) PendingLen() int { return len(r.pending) }

// MergedVertices returns the vertex count of the merged buffer.
func (r *Region) MergedVertices() int32 { return r.drawCount }

// Allocated reports whether the merged buffer exists.
func (r *Region) Allocated() bool { return r.buf.Valid() }

// Unloaded reports whether Unload has been called.
func (r *Region) Unloaded() bool { return r.unloaded }

// Chunks returns the owned chunk coordinates in a stable order.
func (r *Region) Chunks() []ChunkCoord {
	coords := make([]ChunkCoord, 0, len(r.chunks))
	for c := range r.chunks {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareChunks)
	return coords
}

// Stats summarizes the region.
func (r *Region) Stats() RegionStats {
	return RegionStats{
		Coord:          r.coord,
		Chunks:         len(r.chunks),
		Pending:        len(r.pending),
		MergedVertices: r.drawCount,
		Allocated:      r.buf.Valid(),
	}
}

func compareChunks(a, b ChunkCoord) int {
	if a.X != b.X {
		return a.X - b.X
	}
	return a.Z - b.Z
}

func (r *Region) mustBeLive(op string) {
	if r.unloaded {
		panic(fmt.Sprintf("regions: %s on unloaded %v", op, r.coord))
	}
}

// AddUnit takes ownership of u and marks it pending. A unit already held for
// the same chunk is released and replaced; if the old one was merged, its
// vertices stay in the merged buffer next to the new pending unit until the
// next Merge. Adding a unit of another region panics.
func (r *Region) AddUnit(u *Unit) {
	r.mustBeLive("add unit")
	c := u.Coord()
	if owner := RegionOf(c, r.chunksPerRegion); owner != r.coord {
		panic(fmt.Sprintf("regions: %v belongs to %v, not %v", c, owner, r.coord))
	}
	if old, ok := r.chunks[c]; ok && old != u {
		old.Release()
	}
	r.chunks[c] = u
	r.pending[c] = u
}

// setup allocates the merged buffer and resolves the shader on first use.
func (r *Region) setup() error {
	if r.buf.Valid() {
		return nil
	}
	prog, err := r.shaders.Program(r.identifier, ChunkShader)
	if err != nil {
		return &AllocationError{Op: "load shader", Region: r.coord, Err: err}
	}
	buf, err := r.dev.NewVertexBuffer(ChunkLayout)
	if err != nil {
		return &AllocationError{Op: "allocate region", Region: r.coord, Err: err}
	}
	r.prog = prog
	r.buf = buf
	r.drawCount = 0
	return nil
}

// Merge rebuilds the merged buffer from every owned chunk if any chunk is
// pending, then releases the pending chunks' own buffers. Without pending
// chunks it uploads nothing. On failure the region keeps its previous merged
// buffer and pending set.
func (r *Region) Merge() error {
	r.mustBeLive("merge")
	if err := r.setup(); err != nil {
		return err
	}
	if len(r.pending) == 0 {
		return nil
	}
	defer profiling.Track("regions.Merge")()

	r.scratch = r.scratch[:0]
	for _, c := range r.Chunks() {
		r.scratch = append(r.scratch, r.chunks[c].Payload()...)
	}
	if err := r.dev.BufferData(r.buf, r.scratch); err != nil {
		return &AllocationError{Op: "merge", Region: r.coord, Err: err}
	}
	profiling.Count("regions.uploads", 1)
	r.drawCount = int32(len(r.scratch) / FloatsPerVertex)

	for c, u := range r.pending {
		u.Release()
		delete(r.pending, c)
	}
	return nil
}

// Draw renders the merged buffer with external × offset, then every pending
// chunk on its own. A region that was never merged draws an empty buffer.
// Pending chunks whose upload fails are skipped this frame and reported.
func (r *Region) Draw(external mgl32.Mat4) error {
	r.mustBeLive("draw")
	if err := r.setup(); err != nil {
		return err
	}
	transform := external.Mul4(r.offset)

	r.dev.UseProgram(r.prog.ID)
	r.dev.UniformMatrix4(r.prog.Uniform(graphics.TransformUniform), transform)
	r.dev.DrawTriangles(r.buf, 0, r.drawCount)
	draws := 1

	var errs []error
	for _, u := range r.pending {
		if err := u.Upload(r.dev); err != nil {
			var aerr *AllocationError
			if errors.As(err, &aerr) {
				aerr.Region = r.coord
			}
			errs = append(errs, err)
			continue
		}
		u.DrawStandalone(r.prog, transform)
		draws++
	}
	profiling.Count("regions.drawCalls", draws)
	return errors.Join(errs...)
}

// Unload frees the merged buffer and releases every owned chunk. The region
// cannot be used afterwards; calling Unload again does nothing.
func (r *Region) Unload() {
	if r.unloaded {
		return
	}
	if r.buf.Valid() {
		r.dev.DeleteVertexBuffer(r.buf)
		r.buf = graphics.VertexBuffer{}
	}
	for c, u := range r.chunks {
		u.Release()
		delete(r.chunks, c)
	}
	clear(r.pending)
	r.drawCount = 0
	r.scratch = nil
	r.prog = nil
	r.unloaded = true
}
