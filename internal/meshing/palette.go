package meshing

import (
	"fmt"
	"image/color"

	"voxelview/internal/config"
	"voxelview/internal/terrain"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

// Swatch holds the vertex colors of one material.
type Swatch struct {
	Top  [4]float32
	Side [4]float32
	// Tint is the blend factor towards the shader's foliage tint on top faces.
	Tint float32
}

// Palette maps terrain materials to swatches.
type Palette struct {
	swatches [terrain.NumMaterials]Swatch
}

var materialHex = [terrain.NumMaterials]string{
	terrain.Water: "#3f76e4",
	terrain.Sand:  "#dbd3a0",
	terrain.Grass: "#c6d9a8",
	terrain.Stone: "#7d7d7d",
	terrain.Snow:  "#f0fbfb",
}

// sideShade is how much darker side walls are than top faces.
const sideShade = 0.3

// DefaultPalette returns the built-in material colors.
func DefaultPalette() *Palette {
	colors := make([]color.Color, 0, terrain.NumMaterials)
	for _, hex := range materialHex {
		colors = append(colors, gamut.Hex(hex))
	}
	p := newPalette(colors)
	p.swatches[terrain.Grass].Tint = 1
	return p
}

// PastelPalette returns a generated pastel palette, one color per material.
// The result differs between calls.
func PastelPalette() (*Palette, error) {
	colors, err := gamut.Generate(terrain.NumMaterials, gamut.PastelGenerator{})
	if err != nil {
		return nil, fmt.Errorf("generate palette: %w", err)
	}
	if len(colors) < terrain.NumMaterials {
		return nil, fmt.Errorf("generate palette: got %d colors, want %d", len(colors), terrain.NumMaterials)
	}
	return newPalette(colors), nil
}

// NamedPalette returns the palette selected by a settings palette key.
func NamedPalette(name string) (*Palette, error) {
	switch name {
	case config.PaletteDefault:
		return DefaultPalette(), nil
	case config.PalettePastel:
		return PastelPalette()
	}
	return nil, fmt.Errorf("unknown palette %q", name)
}

func newPalette(colors []color.Color) *Palette {
	p := &Palette{}
	for m := range p.swatches {
		top := colors[m]
		p.swatches[m] = Swatch{
			Top:  rgba(top),
			Side: rgba(gamut.Darker(top, sideShade)),
		}
	}
	return p
}

// Swatch returns the colors of m. Unknown materials fall back to stone.
func (p *Palette) Swatch(m terrain.Material) Swatch {
	if int(m) >= len(p.swatches) {
		return p.swatches[terrain.Stone]
	}
	return p.swatches[m]
}

func rgba(c color.Color) [4]float32 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return [4]float32{0, 0, 0, 1}
	}
	cf = cf.Clamped()
	return [4]float32{float32(cf.R), float32(cf.G), float32(cf.B), 1}
}
