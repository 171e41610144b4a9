// Package camera provides a free-flying camera for 3D rendering.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PoleMargin keeps the inclination away from the poles, where the view
// direction would be parallel to the zenith.
const PoleMargin float32 = 0.01

const twoPi = 2 * math32.Pi

// LookAxis selects the angle changed by Look.
type LookAxis int

const (
	LookHorizontal LookAxis = iota // Azimuth
	LookVertical                   // Inclination
)

// MoveAxis selects the vector Translate moves along.
type MoveAxis int

const (
	MoveForward  MoveAxis = iota // Along Direction
	MoveSide                     // Along Right
	MoveAltitude                 // Along Up
)

// Camera is a free-flying camera described by a position and two angles.
//
// Inclination is the polar angle from +Y: 0 looks straight up, π straight
// down. Azimuth rotates around +Y; azimuth 0 faces +Z and π/2 faces +X.
type Camera struct {
	Position mgl32.Vec3

	azimuth     float32
	inclination float32

	// Projection
	FOV  float32 // Vertical field of view, radians
	Near float32
	Far  float32
}

// New creates a camera at pos looking toward target.
func New(pos, target mgl32.Vec3) *Camera {
	c := &Camera{
		Position:    pos,
		inclination: math32.Pi / 2,
		FOV:         mgl32.DegToRad(45),
		Near:        0.1,
		Far:         100,
	}
	c.LookAt(target)
	return c
}

// Default returns the camera at (4,3,3) looking at the origin.
func Default() *Camera {
	return New(mgl32.Vec3{4, 3, 3}, mgl32.Vec3{})
}

// Azimuth returns the horizontal angle in [0, 2π).
func (c *Camera) Azimuth() float32 {
	return c.azimuth
}

// Inclination returns the polar angle in [PoleMargin, π-PoleMargin].
func (c *Camera) Inclination() float32 {
	return c.inclination
}

// SetAngles sets both angles, wrapping and clamping them like Look.
func (c *Camera) SetAngles(azimuth, inclination float32) {
	c.azimuth = wrapAngle(azimuth)
	c.inclination = clampInclination(inclination)
}

// Look rotates the view. Horizontal deltas wrap the azimuth; vertical deltas
// are added to the inclination and clamped short of the poles.
func (c *Camera) Look(axis LookAxis, delta float32) {
	switch axis {
	case LookHorizontal:
		c.azimuth = wrapAngle(c.azimuth + delta)
	case LookVertical:
		c.inclination = clampInclination(c.inclination + delta)
	}
}

// LookAt points the camera at target. It does nothing if target is the
// camera position.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	l := d.Len()
	if l == 0 {
		return
	}
	d = d.Mul(1 / l)

	c.inclination = clampInclination(math32.Acos(mgl32.Clamp(d.Y(), -1, 1)))
	c.azimuth = wrapAngle(math32.Atan2(d.X(), d.Z()))
}

// Direction returns the unit view vector.
func (c *Camera) Direction() mgl32.Vec3 {
	sinIncl, cosIncl := math32.Sincos(c.inclination)
	sinAz, cosAz := math32.Sincos(c.azimuth)
	return mgl32.Vec3{sinIncl * sinAz, cosIncl, sinIncl * cosAz}
}

// Right returns the horizontal unit vector to the right of the view.
func (c *Camera) Right() mgl32.Vec3 {
	a := c.azimuth - math32.Pi/2
	return mgl32.Vec3{math32.Sin(a), 0, math32.Cos(a)}
}

// Up returns Right × Direction, orthogonal to the view.
func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Direction())
}

// Translate moves the camera along one of its own axes.
func (c *Camera) Translate(axis MoveAxis, amount float32) {
	var v mgl32.Vec3
	switch axis {
	case MoveForward:
		v = c.Direction()
	case MoveSide:
		v = c.Right()
	case MoveAltitude:
		v = c.Up()
	default:
		return
	}
	c.Position = c.Position.Add(v.Mul(amount))
}

// ViewMatrix returns the look-at matrix for the current position and angles.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Direction()), c.Up())
}

// ProjectionMatrix returns the perspective matrix for the given aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection × view.
func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

func wrapAngle(a float32) float32 {
	a = math32.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

func clampInclination(v float32) float32 {
	return mgl32.Clamp(v, PoleMargin, math32.Pi-PoleMargin)
}
