package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"voxelview/internal/debugmap"
	"voxelview/internal/viewer"

	"github.com/urfave/cli/v2"
)

func commandSimulate(ctx *cli.Context) error {
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := viewer.Simulate(runCtx, settings, viewer.Flight{
		Frames: ctx.Int("frames"),
		Speed:  float32(ctx.Float64("speed")),
		Turn:   float32(ctx.Float64("turn")),
	})
	if err != nil {
		return err
	}

	chunks := 0
	for _, st := range rep.Regions {
		chunks += st.Chunks
	}
	log.Printf("simulated %d frames: %d regions, %d chunks", rep.Frames, len(rep.Regions), chunks)
	log.Printf("draw calls: %d total, %d last frame; uploads %d, allocations %d, frame errors %d",
		rep.DrawCalls, rep.LastFrameDrawCalls, rep.Uploads, rep.Allocations, rep.FrameErrors)
	if rep.LeakedBuffers > 0 {
		log.Printf("warning: %d buffers still alive after close", rep.LeakedBuffers)
	}

	if out := ctx.Path("out"); out != "" {
		if err := debugmap.Save(out, rep.Regions, settings.ChunksPerRegion, ctx.Int("cell")); err != nil {
			return err
		}
		log.Printf("wrote %s", out)
	}
	return nil
}
