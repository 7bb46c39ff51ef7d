package viewer

import (
	"context"
	"testing"
	"time"

	"voxelview/internal/config"
	"voxelview/internal/graphics"
	"voxelview/internal/meshing"
	"voxelview/internal/regions"
)

func testSettings() config.Settings {
	s := config.Default()
	s.RenderDistance = 2
	s.EvictDistance = 4
	s.EvictInterval = 100 * time.Millisecond
	s.MeshWorkers = 2
	return s
}

func TestSimulateSettlesIntoMergedRegions(t *testing.T) {
	defer config.Default().Apply()

	rep, err := Simulate(context.Background(), testSettings(), Flight{Frames: 4, FrameTime: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if rep.Frames != 4 {
		t.Fatalf("frames = %d, want 4", rep.Frames)
	}
	if len(rep.Regions) != 4 {
		t.Fatalf("regions = %d, want 4: %+v", len(rep.Regions), rep.Regions)
	}
	chunks := 0
	for _, st := range rep.Regions {
		chunks += st.Chunks
		if st.Pending != 0 {
			t.Errorf("%v still has %d pending chunks", st.Coord, st.Pending)
		}
		if !st.Allocated || st.MergedVertices == 0 {
			t.Errorf("%v not merged: %+v", st.Coord, st)
		}
	}
	if chunks != 25 {
		t.Fatalf("chunks = %d, want 25", chunks)
	}
	if rep.LastFrameDrawCalls != 4 {
		t.Fatalf("last frame draw calls = %d, want one per region", rep.LastFrameDrawCalls)
	}
	if rep.LeakedBuffers != 0 {
		t.Fatalf("%d buffers leaked after close", rep.LeakedBuffers)
	}
	if rep.FrameErrors != 0 {
		t.Fatalf("%d frames reported errors", rep.FrameErrors)
	}
}

func TestSimulateEvictsBehindCamera(t *testing.T) {
	defer config.Default().Apply()

	settings := testSettings()
	rep, err := Simulate(context.Background(), settings, Flight{Frames: 12, FrameTime: 50 * time.Millisecond, Speed: 48})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for _, st := range rep.Regions {
		if st.Coord.Z >= 0 {
			t.Fatalf("region %v behind the camera survived eviction", st.Coord)
		}
	}
	if rep.LeakedBuffers != 0 {
		t.Fatalf("%d buffers leaked after close", rep.LeakedBuffers)
	}
}

func TestSimulateHonoursCancel(t *testing.T) {
	defer config.Default().Apply()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := Simulate(ctx, testSettings(), Flight{Frames: 10})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if rep.Frames != 0 {
		t.Fatalf("frames = %d after cancel", rep.Frames)
	}
}

func TestSimulateRejectsBadSettings(t *testing.T) {
	s := testSettings()
	s.ChunksPerRegion = 0
	if _, err := Simulate(context.Background(), s, Flight{Frames: 1}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestViewerStreamsAsync(t *testing.T) {
	defer config.Default().Apply()
	settings := testSettings()
	settings.Apply()

	dev := graphics.NewRecordingDevice()
	v, err := New(settings, dev, 800, 600)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	center := regions.ChunkAt(float64(v.Camera.Position.X()), float64(v.Camera.Position.Z()))
	deadline := time.Now().Add(5 * time.Second)
	for v.Space.Len() == 0 || !v.Space.Contains(center) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for streamed chunks")
		}
		if err := v.Frame(); err != nil {
			t.Fatalf("frame: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	v.Close()
	if n := dev.LiveBuffers(); n != 0 {
		t.Fatalf("%d buffers alive after close", n)
	}
	if v.Space.Len() != 0 {
		t.Fatalf("%d regions left after close", v.Space.Len())
	}
}

func TestViewerUsesConfiguredPalette(t *testing.T) {
	defer config.Default().Apply()
	settings := testSettings()
	settings.Apply()

	v, err := New(settings, graphics.NewRecordingDevice(), 800, 600, WithSyncStreaming())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if *v.palette != *meshing.DefaultPalette() {
		t.Fatal("default setting did not select the built-in palette")
	}
	v.Close()

	settings.Palette = config.PalettePastel
	v, err = New(settings, graphics.NewRecordingDevice(), 800, 600, WithSyncStreaming())
	if err != nil {
		t.Fatalf("New pastel: %v", err)
	}
	defer v.Close()
	if *v.palette == *meshing.DefaultPalette() {
		t.Fatal("pastel setting kept the built-in palette")
	}
	if err := v.Frame(); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if v.Space.Len() == 0 {
		t.Fatal("pastel viewer streamed nothing")
	}
}

func TestEvictKeepsRegionsAroundCamera(t *testing.T) {
	defer config.Default().Apply()
	settings := testSettings()
	settings.Apply()

	dev := graphics.NewRecordingDevice()
	v, err := New(settings, dev, 800, 600, WithSyncStreaming(), WithClock(func() time.Time { return time.Unix(0, 0) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	for i := 0; i < 2; i++ {
		if err := v.Frame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	before := v.Space.Len()
	if err := v.Evict(); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if v.Space.Len() != before {
		t.Fatalf("evict around the camera dropped regions: %d -> %d", before, v.Space.Len())
	}
	for _, st := range v.Space.Stats() {
		if st.Pending != 0 {
			t.Fatalf("%v not merged by evict", st.Coord)
		}
	}

	v.Camera.Position[0] += 10_000
	if err := v.Evict(); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if v.Space.Len() != 0 {
		t.Fatalf("%d regions survived after the camera left", v.Space.Len())
	}
}

func TestFPSLimiter(t *testing.T) {
	defer config.Default().Apply()

	config.SetFPSLimit(0)
	f := NewFPSLimiter()
	start := time.Now()
	for i := 0; i < 100; i++ {
		f.Wait()
	}
	if d := time.Since(start); d > 50*time.Millisecond {
		t.Fatalf("unlimited waits took %v", d)
	}

	config.SetFPSLimit(200)
	f = NewFPSLimiter()
	start = time.Now()
	for i := 0; i < 4; i++ {
		f.Wait()
	}
	if d := time.Since(start); d < 15*time.Millisecond {
		t.Fatalf("4 frames at 200 fps took %v, want at least 15ms", d)
	}
}

// fakeClock advances only when the limiter sleeps.
type fakeClock struct {
	t     time.Time
	slept time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.t = c.t.Add(d)
	c.slept += d
}

func TestFPSLimiterSchedule(t *testing.T) {
	defer config.Default().Apply()
	config.SetFPSLimit(100)

	clock := &fakeClock{t: time.Unix(0, 0)}
	f := &FPSLimiter{now: clock.now, sleep: clock.sleep}

	f.Wait()
	if clock.slept != 10*time.Millisecond {
		t.Fatalf("first wait slept %v, want one period", clock.slept)
	}

	// a 4ms frame leaves 6ms of the next period
	clock.t = clock.t.Add(4 * time.Millisecond)
	clock.slept = 0
	f.Wait()
	if clock.slept != 6*time.Millisecond {
		t.Fatalf("slept %v, want the rest of the period", clock.slept)
	}

	// a 13ms frame overruns by 3ms and does not sleep; the next frame makes it up
	clock.t = clock.t.Add(13 * time.Millisecond)
	clock.slept = 0
	f.Wait()
	if clock.slept != 0 || f.Resyncs() != 0 {
		t.Fatalf("slept %v resyncs %d after an overrun, want neither", clock.slept, f.Resyncs())
	}
	clock.t = clock.t.Add(4 * time.Millisecond)
	f.Wait()
	if clock.slept != 3*time.Millisecond {
		t.Fatalf("slept %v, want 3ms back on the original schedule", clock.slept)
	}

	// a 50ms hitch restarts the schedule instead of bursting
	clock.t = clock.t.Add(50 * time.Millisecond)
	clock.slept = 0
	f.Wait()
	if f.Resyncs() != 1 || clock.slept != 10*time.Millisecond {
		t.Fatalf("resyncs %d slept %v, want 1 and a full period", f.Resyncs(), clock.slept)
	}

	config.SetFPSLimit(0)
	clock.slept = 0
	f.Wait()
	if clock.slept != 0 || !f.deadline.IsZero() {
		t.Fatal("unlimited wait slept or kept its schedule")
	}
}
