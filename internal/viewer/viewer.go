// Package viewer runs the interactive model viewer: window, camera controls
// and the render loop.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/input"
	"github.com/Faultbox/meshview/internal/engine/renderer"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/engine/window"
	"github.com/Faultbox/meshview/internal/logger"
)

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	backend  gpu.Backend
	program  *shader.Program
	model    *scene.Model
	camera   *camera.Camera
	controls Controls
	log      *zap.Logger
}

// New opens the window, links the mesh program, loads the configured asset
// and uploads it. Any failure closes what was opened so far.
func New(cfg *config.Config) (v *Viewer, err error) {
	v = &Viewer{
		config:   cfg,
		controls: ControlsFromConfig(cfg.Camera),
		log:      logger.Named("viewer"),
	}
	defer func() {
		if err != nil {
			v.Close()
			v = nil
		}
	}()

	v.log.Info("initializing viewer", zap.String("asset", cfg.Scene.Asset))

	// Parse before touching the GPU so a bad asset fails fast.
	v.model, err = scene.Load(cfg.Scene.Asset, scene.Options{})
	if err != nil {
		return v, err
	}

	v.window, err = window.New(window.Config{
		Title:        fmt.Sprintf("meshview - %s", filepath.Base(cfg.Scene.Asset)),
		Width:        cfg.Graphics.Width,
		Height:       cfg.Graphics.Height,
		Fullscreen:   cfg.Graphics.Fullscreen,
		VSync:        cfg.Graphics.VSync,
		CaptureMouse: true,
	})
	if err != nil {
		return v, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must come after the window, since the GL context must exist.
	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: mgl32.Vec3(cfg.Graphics.ClearColor),
	})
	if err != nil {
		return v, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.program, err = shader.Link(shader.MeshVertex, shader.MeshFragment, gpu.Attributes(), shader.MeshUniforms())
	if err != nil {
		return v, fmt.Errorf("mesh program: %w", err)
	}
	if missing := v.program.MissingUniforms(); len(missing) > 0 {
		v.log.Warn("uniforms not active in mesh program", zap.Strings("uniforms", missing))
	}

	v.backend = gpu.NewGL()
	if err = v.model.Upload(v.backend, v.program.Layout()); err != nil {
		return v, err
	}

	v.camera = camera.New(mgl32.Vec3(cfg.Camera.Position), mgl32.Vec3(cfg.Camera.Target))
	v.camera.FOV = mgl32.DegToRad(cfg.Graphics.FOVDegrees)
	v.camera.Near = cfg.Graphics.Near
	v.camera.Far = cfg.Graphics.Far

	v.input = input.New()

	st := v.model.Stats()
	v.log.Info("viewer initialized",
		zap.Int("chunks", st.Chunks),
		zap.Int("vertices", st.Vertices),
		zap.Int("triangles", st.Triangles),
		zap.Int("textures", st.Textures))
	return v, nil
}

// Run drives the render loop until the window closes or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				v.renderer.Resize(v.window.DrawableSize())
			case input.EventKeyDown:
				if event.Key == sdl.SCANCODE_ESCAPE {
					v.running = false
				}
			}
		}

		dx, dy := v.input.MouseDelta()
		v.controls.Apply(v.camera, v.input, dx, dy, dt)

		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Float32("azimuth", v.camera.Azimuth()),
				zap.Float32("inclination", v.camera.Inclination()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) render() error {
	v.renderer.Begin()

	w, h := v.renderer.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}

	v.program.Use()
	v.program.SetMat4(shader.UniformMVP, v.camera.ViewProjection(aspect))
	v.program.SetVec3(shader.UniformCameraPos, v.camera.Position)
	v.program.SetVec3(shader.UniformLightDir, mgl32.Vec3(v.config.Scene.LightDirection))
	v.program.SetInt(shader.UniformTexture, 0)

	if err := v.model.Draw(v.backend); err != nil {
		return err
	}

	return v.renderer.End()
}

// Close releases GPU resources, then the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.model != nil && v.model.Uploaded() {
		v.model.Release(v.backend)
	}
	if v.program != nil {
		v.program.Delete()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
