package scene

import (
	"math"

	"github.com/bdwhst/altair/types"
)

// Camera movement directions.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// The camera type controls the scene camera. Primary rays are generated from
// the position and the view/right/up basis; PixelLength holds the angular
// step between two adjacent pixel centers along each axis.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Derived basis vectors; call Update after mutating the fields above.
	View  types.Vec3
	Right types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	// Incremental rotation applied by the next Update call.
	Pitch float32
	Yaw   float32

	FrameW uint32
	FrameH uint32

	PixelLength types.Vec2

	// Maximum number of path bounces per iteration.
	MaxDepth uint32
}

func NewCamera(fov float32, frameW, frameH, maxDepth uint32) *Camera {
	c := &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		FrameW:   frameW,
		FrameH:   frameH,
		MaxDepth: maxDepth,
	}
	c.Update()
	return c
}

// Update camera basis vectors and per-pixel angular steps after a position,
// orientation or field of view change. Pending pitch/yaw deltas are folded
// into the look-at point and reset.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()

	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up)
		pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

		dir = pitchQuat.Mul(yawQuat).Normalize().Rotate(dir).Normalize()
		c.LookAt = c.Position.Add(dir)
		c.Pitch = 0
		c.Yaw = 0
	}

	c.View = dir
	c.Right = dir.Cross(c.Up).Normalize()

	yScale := float32(2.0 * math.Tan(float64(c.FOV)*math.Pi/360.0))
	xScale := yScale * float32(c.FrameW) / float32(c.FrameH)
	c.PixelLength = types.XY(xScale/float32(c.FrameW), yScale/float32(c.FrameH))
}

// Move the camera along its basis vectors keeping the view direction.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	var delta types.Vec3
	switch dir {
	case Forward:
		delta = c.View.Mul(amount)
	case Backward:
		delta = c.View.Mul(-amount)
	case Left:
		delta = c.Right.Mul(-amount)
	case Right:
		delta = c.Right.Mul(amount)
	}

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.Update()
}
