// Package camera provides the orbit camera used as the mesher's view point.
package camera

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/octomesh/pkg/geom"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
	YawSpeed        float32 // radians per second, used by Orbit
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        300.0,
		RotationX:       0.5,
		MinDistance:     1.0,
		MaxDistance:     5000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		YawSpeed:        0.2,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cosPitch := math32.Cos(c.RotationX)
	return c.Center.Add(mgl32.Vec3{
		c.Distance * cosPitch * math32.Sin(c.RotationY),
		c.Distance * math32.Sin(c.RotationX),
		c.Distance * cosPitch * math32.Cos(c.RotationY),
	})
}

// Forward returns the unit direction from the camera toward the center.
func (c *OrbitCamera) Forward() mgl32.Vec3 {
	d := c.Center.Sub(c.Position())
	if l := d.Len(); l > 0 {
		return d.Mul(1 / l)
	}
	return mgl32.Vec3{0, 0, -1}
}

// View returns the camera position and forward direction.
func (c *OrbitCamera) View() (mgl32.Vec3, mgl32.Vec3) {
	return c.Position(), c.Forward()
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// HandleDrag updates rotation based on a drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on a scroll delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Orbit advances the yaw by YawSpeed over dt, wrapping at a full turn.
func (c *OrbitCamera) Orbit(dt time.Duration) {
	c.RotationY = math32.Mod(c.RotationY+c.YawSpeed*float32(dt.Seconds()), 2*math32.Pi)
}

// FitToBounds centers the camera on b at a distance that keeps it in view.
func (c *OrbitCamera) FitToBounds(b geom.AABB) {
	c.Center = b.Center()
	s := b.Size()
	c.Distance = mgl32.Clamp(math32.Max(s.X(), s.Z())*1.2, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.6
	c.RotationY = 0
}
