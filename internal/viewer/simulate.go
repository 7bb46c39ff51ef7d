package viewer

import (
	"context"
	"time"

	"voxelview/internal/config"
	"voxelview/internal/graphics"
	"voxelview/internal/regions"
)

// Flight describes a headless run: the camera flies forward Speed blocks and
// turns Turn degrees every frame while the clock advances FrameTime.
type Flight struct {
	Frames    int
	FrameTime time.Duration
	Speed     float32
	Turn      float32
}

// Report summarizes a headless run.
type Report struct {
	Frames             int
	DrawCalls          int
	LastFrameDrawCalls int
	Uploads            int
	Allocations        int
	FrameErrors        int

	// Regions is the state of the space after the last frame.
	Regions []regions.RegionStats
	// LeakedBuffers counts device buffers still alive after Close.
	LeakedBuffers int
}

// Simulate runs the viewer against a RecordingDevice. Settings are applied to
// package config first. ctx is checked between frames.
func Simulate(ctx context.Context, settings config.Settings, flight Flight) (Report, error) {
	if flight.FrameTime <= 0 {
		flight.FrameTime = time.Second / 60
	}
	if err := settings.Validate(); err != nil {
		return Report{}, err
	}
	settings.Apply()

	clock := time.Unix(0, 0)
	dev := graphics.NewRecordingDevice()
	v, err := New(settings, dev, settings.Window.Width, settings.Window.Height,
		WithSyncStreaming(),
		WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for i := 0; i < flight.Frames; i++ {
		if err := ctx.Err(); err != nil {
			v.Close()
			return rep, err
		}
		clock = clock.Add(flight.FrameTime)
		v.Camera.Turn(flight.Turn, 0)
		v.Camera.Move(flight.Speed, 0, 0)

		if err := v.Frame(); err != nil {
			rep.FrameErrors++
		}
		rep.LastFrameDrawCalls = len(dev.Draws())
		rep.DrawCalls += rep.LastFrameDrawCalls
		dev.ResetDraws()
	}

	rep.Frames = v.Frames()
	rep.Regions = v.Space.Stats()
	rep.Uploads = dev.Uploads()
	rep.Allocations = dev.Allocations()

	v.Close()
	rep.LeakedBuffers = dev.LiveBuffers()
	return rep, nil
}
