package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
)

// KeyState reports held keys.
type KeyState interface {
	IsKeyDown(scancode sdl.Scancode) bool
}

// Controls maps mouse motion and held keys to camera motion.
type Controls struct {
	LookSpeed     float32 // Radians per pixel per second
	MoveSpeed     float32 // Units per second
	MoveSpeedFast float32 // Units per second with shift held
}

// ControlsFromConfig reads control speeds from the camera config.
func ControlsFromConfig(c config.CameraConfig) Controls {
	return Controls{
		LookSpeed:     c.LookSpeed,
		MoveSpeed:     c.MoveSpeed,
		MoveSpeedFast: c.MoveSpeedFast,
	}
}

type moveBinding struct {
	key  sdl.Scancode
	axis camera.MoveAxis
	sign float32
}

var moveBindings = []moveBinding{
	{sdl.SCANCODE_W, camera.MoveForward, 1},
	{sdl.SCANCODE_S, camera.MoveForward, -1},
	{sdl.SCANCODE_D, camera.MoveSide, 1},
	{sdl.SCANCODE_A, camera.MoveSide, -1},
	{sdl.SCANCODE_R, camera.MoveAltitude, 1},
	{sdl.SCANCODE_F, camera.MoveAltitude, -1},
}

// Apply updates cam for one frame. dx and dy are the relative mouse motion
// in pixels (dy grows downward) and dt is the frame time in seconds.
func (c Controls) Apply(cam *camera.Camera, keys KeyState, dx, dy, dt float32) {
	// Moving the mouse right lowers the azimuth; moving it down tilts the view down.
	cam.Look(camera.LookHorizontal, c.LookSpeed*dt*-dx)
	cam.Look(camera.LookVertical, c.LookSpeed*dt*dy)

	speed := c.MoveSpeed
	if keys.IsKeyDown(sdl.SCANCODE_LSHIFT) || keys.IsKeyDown(sdl.SCANCODE_RSHIFT) {
		speed = c.MoveSpeedFast
	}

	for _, b := range moveBindings {
		if keys.IsKeyDown(b.key) {
			cam.Translate(b.axis, b.sign*dt*speed)
		}
	}
}
