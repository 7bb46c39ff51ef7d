// Package terrain is a deterministic height field used to feed the demo mesher.
package terrain

import "voxelview/internal/config"

// Material is the surface material of a terrain column.
type Material uint8

const (
	Water Material = iota
	Sand
	Grass
	Stone
	Snow
	numMaterials
)

// NumMaterials is the number of distinct materials.
const NumMaterials = int(numMaterials)

func (m Material) String() string {
	switch m {
	case Water:
		return "water"
	case Sand:
		return "sand"
	case Grass:
		return "grass"
	case Stone:
		return "stone"
	case Snow:
		return "snow"
	}
	return "unknown"
}

// Source generates column heights from a seed. It is safe for concurrent use.
type Source struct {
	Seed      int64
	SeaLevel  int
	Amplitude int

	// Scale is the horizontal size of one noise cell in blocks.
	Scale float64
}

// New returns a source with the default horizontal scale.
func New(seed int64, seaLevel, amplitude int) *Source {
	return &Source{Seed: seed, SeaLevel: seaLevel, Amplitude: amplitude, Scale: 96}
}

// FromConfig returns a source using the seed, sea level and amplitude in package config.
func FromConfig() *Source {
	return New(config.GetSeed(), config.GetSeaLevel(), config.GetAmplitude())
}

// HeightAt returns the surface height of the column at world block (x, z).
func (s *Source) HeightAt(x, z int) int {
	scale := s.Scale
	if scale <= 0 {
		scale = 96
	}
	n := octaveNoise2D(float64(x)/scale, float64(z)/scale, s.Seed, 4, 0.5, 2.0)
	h := s.SeaLevel + int((n-0.5)*2*float64(s.Amplitude))
	return max(h, 1)
}

// SurfaceHeight returns the drawn height of a column: water is flattened to sea level.
func (s *Source) SurfaceHeight(x, z int) int {
	return max(s.HeightAt(x, z), s.SeaLevel)
}

// MaterialAt classifies the surface of column (x, z).
func (s *Source) MaterialAt(x, z int) Material {
	return s.Classify(s.HeightAt(x, z))
}

// Classify maps a raw column height to its surface material.
func (s *Source) Classify(h int) Material {
	switch {
	case h < s.SeaLevel:
		return Water
	case h <= s.SeaLevel+2:
		return Sand
	case h >= s.SeaLevel+s.Amplitude*3/4:
		return Snow
	case h >= s.SeaLevel+s.Amplitude/2:
		return Stone
	}
	return Grass
}
