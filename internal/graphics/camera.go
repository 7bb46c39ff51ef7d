package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the view and projection matrices
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees, 0 looks down -Z
	Pitch    float32 // degrees

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Position:  mgl32.Vec3{0, 96, 0},
		Pitch:     -25,
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  2000.0,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Move translates the camera in its local frame; forward and right stay horizontal.
func (c *Camera) Move(forward, right, up float32) {
	f := c.Front()
	flat := mgl32.Vec3{f.X(), 0, f.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	side := flat.Cross(mgl32.Vec3{0, 1, 0})
	c.Position = c.Position.Add(flat.Mul(forward)).Add(side.Mul(right))
	c.Position[1] += up
}

// Turn rotates the camera, clamping pitch short of straight up/down.
func (c *Camera) Turn(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

// Transform returns projection * view, the external transform handed to the region renderer.
func (c *Camera) Transform() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}
