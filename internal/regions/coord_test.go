package regions

import "testing"

func TestRegionOf(t *testing.T) {
	tests := []struct {
		chunk ChunkCoord
		want  RegionCoord
	}{
		{ChunkCoord{0, 0}, RegionCoord{0, 0}},
		{ChunkCoord{15, 15}, RegionCoord{0, 0}},
		{ChunkCoord{16, 0}, RegionCoord{1, 0}},
		{ChunkCoord{20, 0}, RegionCoord{1, 0}},
		{ChunkCoord{-1, 0}, RegionCoord{-1, 0}},
		{ChunkCoord{-16, -17}, RegionCoord{-1, -2}},
		{ChunkCoord{-17, 31}, RegionCoord{-2, 1}},
	}
	for _, tt := range tests {
		if got := RegionOf(tt.chunk, 16); got != tt.want {
			t.Errorf("RegionOf(%v) = %v, want %v", tt.chunk, got, tt.want)
		}
	}
}

func TestRegionOfIsExclusive(t *testing.T) {
	// every chunk lies inside exactly the region box RegionOf names
	for x := -40; x <= 40; x++ {
		for z := -40; z <= 40; z++ {
			rc := RegionOf(ChunkCoord{x, z}, 16)
			minX, minZ := rc.X*16, rc.Z*16
			if x < minX || x >= minX+16 || z < minZ || z >= minZ+16 {
				t.Fatalf("chunk (%d,%d) outside its %v", x, z, rc)
			}
		}
	}
}

func TestChunkAt(t *testing.T) {
	tests := []struct {
		x, z float64
		want ChunkCoord
	}{
		{0, 0, ChunkCoord{0, 0}},
		{15.9, 16, ChunkCoord{0, 1}},
		{-0.1, -16, ChunkCoord{-1, -1}},
		{-16.5, 33, ChunkCoord{-2, 2}},
	}
	for _, tt := range tests {
		if got := ChunkAt(tt.x, tt.z); got != tt.want {
			t.Errorf("ChunkAt(%v,%v) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestAreaRegionBounds(t *testing.T) {
	// 256 blocks per region edge with 16 chunks per region
	a := Area{MinX: -10, MinZ: 0, MaxX: 300, MaxZ: 255}
	lo, hi := a.RegionBounds(16)
	if lo != (RegionCoord{-1, 0}) || hi != (RegionCoord{1, 0}) {
		t.Fatalf("bounds = %v..%v", lo, hi)
	}

	// swapped corners describe the same box
	b := Area{MinX: 300, MinZ: 255, MaxX: -10, MaxZ: 0}
	lo2, hi2 := b.RegionBounds(16)
	if lo2 != lo || hi2 != hi {
		t.Fatalf("swapped bounds = %v..%v", lo2, hi2)
	}
}

func TestAreaAround(t *testing.T) {
	a := AreaAround(8, -8, 2)
	if a.MinX != -24 || a.MaxX != 40 || a.MinZ != -40 || a.MaxZ != 24 {
		t.Fatalf("AreaAround = %+v", a)
	}
}
