// Package debugmap renders region occupancy as a PNG: one cell per region,
// shaded by how many of its chunks are loaded.
package debugmap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"voxelview/internal/regions"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HeaderHeight is the height of the caption strip above the grid.
const HeaderHeight = 16

var (
	Background  = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	Unallocated = color.RGBA{R: 90, G: 90, B: 90, A: 255}

	sparse = colorful.Color{R: 0.15, G: 0.25, B: 0.55}
	full   = colorful.Color{R: 0.35, G: 0.85, B: 0.45}
	busy   = colorful.Color{R: 0.95, G: 0.55, B: 0.15}
)

// CellColor returns the cell color of one region. Fill blends from sparse to
// full in Lab space; pending chunks pull the color towards orange.
func CellColor(st regions.RegionStats, chunksPerRegion int) color.Color {
	if !st.Allocated && st.Chunks == 0 {
		return Unallocated
	}
	capacity := max(chunksPerRegion*chunksPerRegion, 1)
	fill := min(float64(st.Chunks)/float64(capacity), 1)
	c := sparse.BlendLab(full, fill)
	if st.Chunks > 0 && st.Pending > 0 {
		c = c.BlendLab(busy, float64(st.Pending)/float64(st.Chunks))
	}
	return c.Clamped()
}

// Render draws stats as a grid with cellSize pixels per region, north up.
func Render(stats []regions.RegionStats, chunksPerRegion, cellSize int) *image.RGBA {
	cellSize = max(cellSize, 1)

	minX, minZ, maxX, maxZ := 0, 0, 0, 0
	for i, st := range stats {
		if i == 0 {
			minX, maxX, minZ, maxZ = st.Coord.X, st.Coord.X, st.Coord.Z, st.Coord.Z
			continue
		}
		minX, maxX = min(minX, st.Coord.X), max(maxX, st.Coord.X)
		minZ, maxZ = min(minZ, st.Coord.Z), max(maxZ, st.Coord.Z)
	}
	w, h := maxX-minX+1, maxZ-minZ+1

	grid := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(grid, grid.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	chunks := 0
	for _, st := range stats {
		grid.Set(st.Coord.X-minX, st.Coord.Z-minZ, CellColor(st, chunksPerRegion))
		chunks += st.Chunks
	}

	out := image.NewRGBA(image.Rect(0, 0, w*cellSize, h*cellSize+HeaderHeight))
	draw.Draw(out, out.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	xdraw.NearestNeighbor.Scale(out, image.Rect(0, HeaderHeight, w*cellSize, h*cellSize+HeaderHeight), grid, grid.Bounds(), xdraw.Src, nil)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, HeaderHeight-4),
	}
	d.DrawString(fmt.Sprintf("%d regions %d chunks", len(stats), chunks))
	return out
}

// Encode writes the rendered map to w as PNG.
func Encode(w io.Writer, stats []regions.RegionStats, chunksPerRegion, cellSize int) error {
	return png.Encode(w, Render(stats, chunksPerRegion, cellSize))
}

// Save writes the rendered map to path.
func Save(path string, stats []regions.RegionStats, chunksPerRegion, cellSize int) error {
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(fd, stats, chunksPerRegion, cellSize); err != nil {
		fd.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fd.Close()
}
