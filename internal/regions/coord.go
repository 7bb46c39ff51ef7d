// Package regions batches per-chunk vertex payloads into per-region GPU buffers.
//
// Producers hand finished chunk meshes to a Space from any goroutine; the
// render goroutine drains them into Regions once per frame and draws each
// Region with one call for its merged buffer plus one call per chunk that has
// arrived since the last merge.
package regions

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BlocksPerChunk is the edge length of a chunk in blocks along X and Z.
const BlocksPerChunk = 16

// DefaultChunksPerRegion is the region edge length used when none is configured.
const DefaultChunksPerRegion = 16

// ChunkCoord identifies a chunk column on the XZ plane.
type ChunkCoord struct {
	X, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("chunk(%d,%d)", c.X, c.Z)
}

// RegionCoord identifies a square group of chunks.
type RegionCoord struct {
	X, Z int
}

func (r RegionCoord) String() string {
	return fmt.Sprintf("region(%d,%d)", r.X, r.Z)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// RegionOf returns the region owning c.
func RegionOf(c ChunkCoord, chunksPerRegion int) RegionCoord {
	return RegionCoord{X: floorDiv(c.X, chunksPerRegion), Z: floorDiv(c.Z, chunksPerRegion)}
}

// ChunkAt returns the chunk containing the world-space block position (x, z).
func ChunkAt(x, z float64) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(x)), BlocksPerChunk),
		Z: floorDiv(int(math.Floor(z)), BlocksPerChunk),
	}
}

// RegionOrigin returns the world-space position of the region's minimum corner.
// Vertex payloads are expressed relative to this point.
func RegionOrigin(r RegionCoord, chunksPerRegion int) mgl32.Vec3 {
	edge := float32(chunksPerRegion * BlocksPerChunk)
	return mgl32.Vec3{float32(r.X) * edge, 0, float32(r.Z) * edge}
}

// Area is an inclusive world-space rectangle in block units on the XZ plane.
type Area struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// AreaAround returns the square area extending radiusChunks chunks from (x, z).
func AreaAround(x, z float64, radiusChunks int) Area {
	r := float64(radiusChunks * BlocksPerChunk)
	return Area{MinX: x - r, MinZ: z - r, MaxX: x + r, MaxZ: z + r}
}

// RegionBounds returns the inclusive region-coordinate box containing the area.
func (a Area) RegionBounds(chunksPerRegion int) (min, max RegionCoord) {
	lo := RegionOf(ChunkAt(math.Min(a.MinX, a.MaxX), math.Min(a.MinZ, a.MaxZ)), chunksPerRegion)
	hi := RegionOf(ChunkAt(math.Max(a.MinX, a.MaxX), math.Max(a.MinZ, a.MaxZ)), chunksPerRegion)
	return lo, hi
}

func inBounds(r, min, max RegionCoord) bool {
	return min.X <= r.X && r.X <= max.X && min.Z <= r.Z && r.Z <= max.Z
}
