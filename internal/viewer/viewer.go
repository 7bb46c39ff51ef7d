// Package viewer drives the region renderer one frame at a time: it streams
// chunks around the camera, draws the space and periodically evicts regions
// that fell behind. It owns no window, so the same loop runs headless.
package viewer

import (
	"errors"
	"fmt"
	"log"
	"time"

	"voxelview/internal/config"
	"voxelview/internal/graphics"
	"voxelview/internal/meshing"
	"voxelview/internal/profiling"
	"voxelview/internal/regions"
	"voxelview/internal/terrain"
)

// SlowFrame is the frame time above which a frame is logged with its top tasks.
const SlowFrame = 16 * time.Millisecond

// Viewer ties a region space to its producers and a camera.
type Viewer struct {
	Space    *regions.Space
	Camera   *graphics.Camera
	Pool     *meshing.WorkerPool
	Streamer *meshing.Streamer
	Terrain  *terrain.Source

	shaders    *graphics.ShaderLibrary
	identifier string

	syncStreaming bool
	palette       *meshing.Palette
	now           func() time.Time

	evictInterval time.Duration
	lastEviction  time.Time

	frames int
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithSyncStreaming meshes chunks on the render goroutine instead of the pool.
// Frames become deterministic, which is what simulations want.
func WithSyncStreaming() Option {
	return func(v *Viewer) { v.syncStreaming = true }
}

// WithClock replaces time.Now for eviction scheduling.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) { v.now = now }
}

// New builds a viewer rendering through dev. Terrain parameters come from
// package config, so settings must have been applied; the render and eviction
// distances there are read again every frame.
func New(settings config.Settings, dev graphics.Device, width, height int, opts ...Option) (*Viewer, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	v := &Viewer{
		identifier:    settings.Identifier,
		evictInterval: settings.EvictInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	palette, err := meshing.NamedPalette(settings.Palette)
	if err != nil {
		return nil, err
	}
	v.palette = palette

	v.shaders = graphics.NewShaderLibrary(dev)
	v.Space = regions.NewSpace(settings.Identifier, settings.ChunksPerRegion, dev, v.shaders,
		regions.WithQueueCapacity(settings.IngestQueueSize))
	v.Terrain = terrain.FromConfig()

	mesher := meshing.NewColumnMesher(v.Terrain, v.palette, settings.ChunksPerRegion)
	v.Pool = meshing.NewWorkerPool(mesher, v.Space, settings.MeshWorkers, settings.IngestQueueSize)
	v.Streamer = meshing.NewStreamer(v.Pool, v.Space)

	v.Camera = graphics.NewCamera(width, height)
	v.Camera.Position[1] = float32(v.Terrain.SurfaceHeight(0, 0)) + 24
	v.lastEviction = v.now()

	return v, nil
}

// Frames returns the number of frames rendered so far.
func (v *Viewer) Frames() int { return v.frames }

// Frame renders one frame. Draw errors are already logged by the space and
// are returned so callers can count them; they never stop the loop.
func (v *Viewer) Frame() error {
	profiling.ResetFrame()
	start := time.Now()

	v.stream()

	var errs []error
	if err := v.Space.Draw(v.Camera.Transform()); err != nil {
		errs = append(errs, err)
	}
	if err := v.maybeEvict(); err != nil {
		errs = append(errs, err)
	}
	v.frames++

	if d := time.Since(start); d > SlowFrame {
		log.Printf("Slow frame in %s: %v, %d chunks waiting to mesh, %d to drain. Top tasks: %s",
			v.Space.Identifier(), d, v.Pool.GetQueueLength(), v.Space.QueueLen(), profiling.TopN(5))
	}
	return errors.Join(errs...)
}

func (v *Viewer) stream() {
	x, z := float64(v.Camera.Position.X()), float64(v.Camera.Position.Z())
	radius := config.GetRenderDistance()
	if !v.syncStreaming {
		v.Streamer.StreamAround(x, z, radius)
		return
	}
	if _, err := v.Streamer.StreamAroundSync(x, z, radius); err != nil && !errors.Is(err, regions.ErrQueueFull) {
		log.Printf("stream around %.0f,%.0f: %v", x, z, err)
	}
}

func (v *Viewer) maybeEvict() error {
	now := v.now()
	if now.Sub(v.lastEviction) < v.evictInterval {
		return nil
	}
	v.lastEviction = now
	return v.Evict()
}

// Evict merges the regions around the camera and unloads everything further
// than the eviction distance.
func (v *Viewer) Evict() error {
	area := regions.AreaAround(float64(v.Camera.Position.X()), float64(v.Camera.Position.Z()), config.GetEvictDistance())
	return v.Space.Unload(&area)
}

// Close stops the producers and releases every GPU resource. The viewer must
// not be used afterwards.
func (v *Viewer) Close() {
	v.Pool.Shutdown()
	if err := v.Space.Unload(nil); err != nil {
		log.Printf("unload: %v", err)
	}
	v.shaders.Release(v.identifier)
}
