package main

import (
	"log"
	"os"
	"runtime"

	"voxelview/internal/config"

	"github.com/urfave/cli/v2"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	settingsFlags := []cli.Flag{
		&cli.PathFlag{
			Name:  "config",
			Usage: "path to a YAML settings file",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "override the terrain seed",
		},
		&cli.IntFlag{
			Name:  "render-distance",
			Usage: "override the render distance in chunks",
		},
		&cli.StringFlag{
			Name:  "palette",
			Usage: "terrain colors: " + config.PaletteDefault + " or " + config.PalettePastel,
		},
	}

	return &cli.App{
		Name:        "voxelview",
		Usage:       "stream and draw voxel terrain in batched regions",
		Description: "voxelview meshes terrain chunks on background workers and draws them merged per region.",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "open a window and fly over the terrain",
				Action: commandRun,
				Flags:  settingsFlags,
			},
			{
				Name:   "simulate",
				Usage:  "run the frame loop headless and print a report",
				Action: commandSimulate,
				Flags: append(settingsFlags,
					&cli.IntFlag{
						Name:  "frames",
						Usage: "number of frames to simulate",
						Value: 300,
					},
					&cli.Float64Flag{
						Name:  "speed",
						Usage: "camera speed in blocks per frame",
						Value: 4,
					},
					&cli.Float64Flag{
						Name:  "turn",
						Usage: "camera turn in degrees per frame",
					},
					&cli.PathFlag{
						Name:  "out",
						Usage: "write a region occupancy PNG to this path",
					},
					&cli.IntFlag{
						Name:  "cell",
						Usage: "pixels per region in the occupancy PNG",
						Value: 8,
					},
				),
			},
		},
	}
}

// loadSettings reads --config and applies the command line overrides.
func loadSettings(ctx *cli.Context) (config.Settings, error) {
	settings, err := config.Load(ctx.Path("config"))
	if err != nil {
		return settings, err
	}
	if ctx.IsSet("seed") {
		settings.Terrain.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("render-distance") {
		settings.RenderDistance = ctx.Int("render-distance")
		settings.EvictDistance = max(settings.EvictDistance, settings.RenderDistance*2)
	}
	if ctx.IsSet("palette") {
		settings.Palette = ctx.String("palette")
	}
	return settings, settings.Validate()
}
