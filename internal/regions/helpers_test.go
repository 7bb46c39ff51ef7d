package regions

import (
	"testing"

	"voxelview/internal/graphics"
)

// payload returns n vertices whose first component encodes tag, so merged
// buffers can be checked for the chunks they contain.
func payload(tag float32, n int) []float32 {
	out := make([]float32, 0, n*FloatsPerVertex)
	for i := 0; i < n; i++ {
		out = append(out, tag, float32(i), 0, 0, 0, 1, 1, 1, 1, 0)
	}
	return out
}

func newTestRegion(t *testing.T, rc RegionCoord) (*Region, *graphics.RecordingDevice) {
	t.Helper()
	dev := graphics.NewRecordingDevice()
	return NewRegion(rc, DefaultChunksPerRegion, "test", dev, graphics.NewShaderLibrary(dev)), dev
}

func newTestSpace(t *testing.T, opts ...Option) (*Space, *graphics.RecordingDevice) {
	t.Helper()
	dev := graphics.NewRecordingDevice()
	return NewSpace("test", DefaultChunksPerRegion, dev, graphics.NewShaderLibrary(dev), opts...), dev
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}
