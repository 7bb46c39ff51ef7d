package main

import (
	"fmt"
	"log"
	"time"

	"voxelview/internal/config"
	"voxelview/internal/debugmap"
	"voxelview/internal/graphics"
	"voxelview/internal/input"
	"voxelview/internal/profiling"
	"voxelview/internal/viewer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/urfave/cli/v2"
	"github.com/xlab/closer"
)

const (
	moveSpeed = 32.0 // blocks per second
	turnSpeed = 90.0 // degrees per second
	snapshot  = "voxelview-map.png"
)

var skyColor = [3]float32{0.53, 0.72, 0.92}

func setupWindow(w config.Window) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(w.Width, w.Height, w.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}

	// Disable V-Sync; we'll use our own FPS limiter
	glfw.SwapInterval(0)
	return window, nil
}

func commandRun(ctx *cli.Context) error {
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	settings.Apply()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	window, err := setupWindow(settings.Window)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create window: %w", err)
	}

	dev := graphics.NewGLDevice()
	dev.ConfigureState()

	width, height := window.GetFramebufferSize()
	dev.Viewport(width, height)
	v, err := viewer.New(settings, dev, width, height)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return err
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		dev.Viewport(fbWidth, fbHeight)
		v.Camera.SetViewport(fbWidth, fbHeight)
	})
	im := input.NewInputManager()
	im.SetKeyCallback(window)

	// GL teardown has to happen on this thread, so the closer hook only asks
	// the loop to stop and waits for it.
	exitC := make(chan struct{}, 2)
	doneC := make(chan struct{}, 2)
	defer closer.Close()
	closer.Bind(func() {
		exitC <- struct{}{}
		<-doneC
		log.Println("bye")
	})

	limiter := viewer.NewFPSLimiter()
	lastTime := time.Now()
	for {
		select {
		case <-exitC:
			log.Printf("%d frames, pacing resynced %d times", v.Frames(), limiter.Resyncs())
			v.Close()
			window.Destroy()
			glfw.Terminate()
			doneC <- struct{}{}
			return nil
		default:
		}

		if window.ShouldClose() {
			exitC <- struct{}{}
			continue
		}

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		glfw.PollEvents()
		handleActions(im, v)
		steer(im, v.Camera, dt)

		dev.Clear(skyColor[0], skyColor[1], skyColor[2])
		_ = v.Frame() // already logged by the space
		window.SwapBuffers()

		if im.JustPressed(input.ActionQuit) {
			window.SetShouldClose(true)
		}
		im.PostUpdate()
		limiter.Wait()
	}
}

// handleActions runs the one-shot key actions.
func handleActions(im *input.InputManager, v *viewer.Viewer) {
	if im.JustPressed(input.ActionRenderDistanceUp) {
		config.SetRenderDistance(config.GetRenderDistance() + 2)
		log.Printf("render distance %d", config.GetRenderDistance())
	}
	if im.JustPressed(input.ActionRenderDistanceDown) {
		config.SetRenderDistance(config.GetRenderDistance() - 2)
		log.Printf("render distance %d", config.GetRenderDistance())
	}
	if im.JustPressed(input.ActionEvict) {
		if err := v.Evict(); err != nil {
			log.Printf("evict: %v", err)
		}
	}
	if im.JustPressed(input.ActionSnapshot) {
		if err := debugmap.Save(snapshot, v.Space.Stats(), v.Space.ChunksPerRegion(), 8); err != nil {
			log.Printf("snapshot: %v", err)
		} else {
			log.Printf("wrote %s", snapshot)
		}
	}
	if im.JustPressed(input.ActionDumpProfile) {
		log.Printf("last frame: %s", profiling.TopN(8))
	}
}

// steer applies held movement and look actions.
func steer(im *input.InputManager, cam *graphics.Camera, dt float32) {
	step := moveSpeed * dt
	cam.Move(
		im.Axis(input.ActionMoveForward, input.ActionMoveBackward)*step,
		im.Axis(input.ActionMoveRight, input.ActionMoveLeft)*step,
		im.Axis(input.ActionAscend, input.ActionDescend)*step,
	)
	turn := turnSpeed * dt
	cam.Turn(
		im.Axis(input.ActionTurnRight, input.ActionTurnLeft)*turn,
		im.Axis(input.ActionLookUp, input.ActionLookDown)*turn,
	)
}
