// Package meshing produces chunk payloads for the region renderer: a terrain
// column mesher, a worker pool that runs it off the render goroutine, and a
// streamer that decides which chunks to request.
package meshing

import (
	"voxelview/internal/profiling"
	"voxelview/internal/regions"
	"voxelview/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// VerticesPerQuad is the vertex count of one emitted face (two triangles).
const VerticesPerQuad = 6

const border = regions.BlocksPerChunk + 2

// ColumnMesher meshes terrain as one top face per column plus the side walls
// exposed by lower neighbours. Output vertices are in region-local space.
type ColumnMesher struct {
	source          *terrain.Source
	palette         *Palette
	chunksPerRegion int
}

// NewColumnMesher returns a mesher for regions of chunksPerRegion chunks.
// A nil palette selects DefaultPalette.
func NewColumnMesher(source *terrain.Source, palette *Palette, chunksPerRegion int) *ColumnMesher {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &ColumnMesher{source: source, palette: palette, chunksPerRegion: chunksPerRegion}
}

// LocalOrigin returns the block offset of chunk c inside its region.
func (m *ColumnMesher) LocalOrigin(c regions.ChunkCoord) (x, z int) {
	rc := regions.RegionOf(c, m.chunksPerRegion)
	return (c.X - rc.X*m.chunksPerRegion) * regions.BlocksPerChunk,
		(c.Z - rc.Z*m.chunksPerRegion) * regions.BlocksPerChunk
}

// Mesh builds the payload of chunk c.
func (m *ColumnMesher) Mesh(c regions.ChunkCoord) []float32 {
	defer profiling.Track("meshing.Mesh")()

	baseX := c.X * regions.BlocksPerChunk
	baseZ := c.Z * regions.BlocksPerChunk

	// Raw heights with a one column border so walls on chunk edges see their neighbours.
	var raw [border][border]int
	for i := 0; i < border; i++ {
		for j := 0; j < border; j++ {
			raw[i][j] = m.source.HeightAt(baseX+i-1, baseZ+j-1)
		}
	}
	sea := m.source.SeaLevel
	surface := func(i, j int) int { return max(raw[i][j], sea) }

	lx, lz := m.LocalOrigin(c)
	verts := make([]float32, 0, regions.BlocksPerChunk*regions.BlocksPerChunk*VerticesPerQuad*regions.FloatsPerVertex*2)

	for bx := 0; bx < regions.BlocksPerChunk; bx++ {
		for bz := 0; bz < regions.BlocksPerChunk; bz++ {
			i, j := bx+1, bz+1
			h := surface(i, j)
			sw := m.palette.Swatch(m.source.Classify(raw[i][j]))

			x0 := float32(lx + bx)
			z0 := float32(lz + bz)
			x1, z1 := x0+1, z0+1
			y := float32(h)

			verts = appendQuad(verts, [4]mgl32.Vec3{
				{x0, y, z0}, {x0, y, z1}, {x1, y, z1}, {x1, y, z0},
			}, mgl32.Vec3{0, 1, 0}, sw.Top, sw.Tint)

			if n := surface(i+1, j); n < h {
				lo := float32(n)
				verts = appendQuad(verts, [4]mgl32.Vec3{
					{x1, lo, z0}, {x1, lo, z1}, {x1, y, z1}, {x1, y, z0},
				}, mgl32.Vec3{1, 0, 0}, sw.Side, 0)
			}
			if n := surface(i-1, j); n < h {
				lo := float32(n)
				verts = appendQuad(verts, [4]mgl32.Vec3{
					{x0, lo, z0}, {x0, lo, z1}, {x0, y, z1}, {x0, y, z0},
				}, mgl32.Vec3{-1, 0, 0}, sw.Side, 0)
			}
			if n := surface(i, j+1); n < h {
				lo := float32(n)
				verts = appendQuad(verts, [4]mgl32.Vec3{
					{x0, lo, z1}, {x1, lo, z1}, {x1, y, z1}, {x0, y, z1},
				}, mgl32.Vec3{0, 0, 1}, sw.Side, 0)
			}
			if n := surface(i, j-1); n < h {
				lo := float32(n)
				verts = appendQuad(verts, [4]mgl32.Vec3{
					{x0, lo, z0}, {x1, lo, z0}, {x1, y, z0}, {x0, y, z0},
				}, mgl32.Vec3{0, 0, -1}, sw.Side, 0)
			}
		}
	}
	return verts
}

// MeshUnit meshes chunk c and wraps it as a renderable unit.
func (m *ColumnMesher) MeshUnit(c regions.ChunkCoord) *regions.Unit {
	return regions.NewUnit(c, m.Mesh(c))
}

var quadUV = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// appendQuad emits two triangles for the corner loop p, wound counter-clockwise
// when seen from the side normal points to.
func appendQuad(dst []float32, p [4]mgl32.Vec3, normal mgl32.Vec3, rgba [4]float32, tint float32) []float32 {
	order := [6]int{0, 1, 2, 0, 2, 3}
	if p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Dot(normal) < 0 {
		order = [6]int{0, 2, 1, 0, 3, 2}
	}
	for _, k := range order {
		v := p[k]
		dst = append(dst,
			v[0], v[1], v[2],
			quadUV[k][0], quadUV[k][1],
			rgba[0], rgba[1], rgba[2], rgba[3],
			tint,
		)
	}
	return dst
}
