package terrain

import (
	"math"
	"math/rand"
	"testing"

	"voxelview/internal/config"
)

func TestHash2Deterministic(t *testing.T) {
	first := hash2(10, 20, 42)
	for i := 0; i < 100; i++ {
		if h := hash2(10, 20, 42); h != first {
			t.Fatalf("hash2 not deterministic: %d != %d", h, first)
		}
	}
	if hash2(1, 2, 42) == hash2(2, 1, 42) {
		t.Error("hash2 should differ for axis swap")
	}
	if hash2(1, 1, 100) == hash2(1, 1, 200) {
		t.Error("hash2 should differ for different seeds")
	}
}

func TestValueNoise2DRange(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	for i := 0; i < 1000; i++ {
		x := rng.Float64()*200 - 100
		z := rng.Float64()*200 - 100
		if v := valueNoise2D(x, z, 42); v < 0 || v > 1 {
			t.Fatalf("valueNoise2D(%f, %f) = %f, expected in [0,1]", x, z, v)
		}
		if v := octaveNoise2D(x, z, 42, 4, 0.5, 2); v < 0 || v > 1 {
			t.Fatalf("octaveNoise2D(%f, %f) = %f, expected in [0,1]", x, z, v)
		}
	}
}

func TestValueNoise2DContinuity(t *testing.T) {
	const eps = 1e-4
	for _, p := range [][2]float64{{0.5, 0.5}, {10.99, -3.2}, {-7.01, 4.4}} {
		a := valueNoise2D(p[0], p[1], 7)
		b := valueNoise2D(p[0]+eps, p[1]+eps, 7)
		if math.Abs(a-b) > 0.01 {
			t.Fatalf("noise jumps at %v: %f vs %f", p, a, b)
		}
	}
}

func TestHeightsWithinAmplitude(t *testing.T) {
	s := New(3, 48, 40)
	for x := -300; x < 300; x += 7 {
		for z := -300; z < 300; z += 11 {
			h := s.HeightAt(x, z)
			if h < 8 || h > 88 {
				t.Fatalf("height(%d,%d) = %d outside sea level ± amplitude", x, z, h)
			}
			if s.SurfaceHeight(x, z) < 48 {
				t.Fatalf("surface below sea level at (%d,%d)", x, z)
			}
			m := s.MaterialAt(x, z)
			if (m == Water) != (h < 48) {
				t.Fatalf("material %v at height %d", m, h)
			}
		}
	}
}

func TestSourceDeterministic(t *testing.T) {
	a, b := New(9, 48, 40), New(9, 48, 40)
	for i := 0; i < 100; i++ {
		if a.HeightAt(i*13, -i*7) != b.HeightAt(i*13, -i*7) {
			t.Fatal("same seed produced different heights")
		}
	}
}

func TestFromConfig(t *testing.T) {
	defer config.Default().Apply()

	s := config.Default()
	s.Terrain = config.Terrain{Seed: 5, SeaLevel: 30, Amplitude: 10}
	s.Apply()

	src := FromConfig()
	if src.Seed != 5 || src.SeaLevel != 30 || src.Amplitude != 10 {
		t.Fatalf("FromConfig = %+v", src)
	}
	if got, want := src.HeightAt(12, 34), New(5, 30, 10).HeightAt(12, 34); got != want {
		t.Fatalf("HeightAt = %d, want %d", got, want)
	}
}
