package app

import (
	"context"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/scene"
)

const (
	rotateSpeed = 0.01
	zoomSpeed   = 0.1
)

// handleInput processes user input
func (app *App) handleInput() {
	app.Interaction.lastMousePos = rl.GetMousePosition()

	app.handleKeys()

	if app.Sketch.active {
		app.handleSketchInput()
	} else {
		app.handleOrbitInput()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		app.session.Scene.Zoom(-float64(wheel) * zoomSpeed)
	}
}

func (app *App) handleKeys() {
	// Camera view preset shortcuts
	if rl.IsKeyPressed(rl.KeyHome) || rl.IsKeyPressed(rl.KeyR) {
		app.resetCameraView()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		app.setCameraTopView()
	}
	if rl.IsKeyPressed(rl.KeyOne) {
		app.setCameraFrontView()
	}
	if rl.IsKeyPressed(rl.KeyTwo) {
		app.setCameraBackView()
	}
	if rl.IsKeyPressed(rl.KeyThree) {
		app.setCameraLeftView()
	}
	if rl.IsKeyPressed(rl.KeyFour) {
		app.setCameraRightView()
	}

	if rl.IsKeyPressed(rl.KeyH) {
		app.UI.showHelp = !app.UI.showHelp
	}

	// Controller commands run off the frame loop
	if rl.IsKeyPressed(rl.KeyC) {
		app.async("clear", app.session.Clear)
	}
	if rl.IsKeyPressed(rl.KeyS) {
		app.async("start", func(ctx context.Context) error {
			return app.session.StartMachining(ctx, "")
		})
	}
	if rl.IsKeyPressed(rl.KeyX) {
		app.async("stop", app.session.StopMachining)
	}
	if rl.IsKeyPressed(rl.KeyP) {
		app.async("parse", func(ctx context.Context) error {
			_, err := app.session.ParseFile(ctx, "")
			return err
		})
	}

	if rl.IsKeyPressed(rl.KeyD) {
		app.Sketch.active = !app.Sketch.active
		if !app.Sketch.active {
			app.session.Sketch.Cancel()
			app.Sketch.drawing = false
		}
	}
	if rl.IsKeyPressed(rl.KeyEscape) && app.Sketch.drawing {
		app.session.Sketch.Cancel()
		app.Sketch.drawing = false
	}
}

func (app *App) handleOrbitInput() {
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		app.Interaction.mouseDownPos = rl.GetMousePosition()
		app.Interaction.mouseMoved = false
		// Pan if Shift is pressed
		shiftPressed := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
		app.Interaction.isPanning = shiftPressed
	}

	// Camera panning with Shift + mouse drag or middle mouse button drag
	if (rl.IsMouseButtonDown(rl.MouseLeftButton) && app.Interaction.isPanning) || rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			app.Interaction.mouseMoved = true
			app.session.Scene.Pan(float64(delta.X), float64(delta.Y))
		}
		return
	}

	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if math.Abs(float64(delta.X)) > 1.0 || math.Abs(float64(delta.Y)) > 1.0 {
			app.Interaction.mouseMoved = true
		}
		if delta.X != 0 || delta.Y != 0 {
			app.session.Scene.Rotate(-float64(delta.Y)*rotateSpeed, float64(delta.X)*rotateSpeed)
		}
	}

	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		app.Interaction.isPanning = false
	}
}

func (app *App) handleSketchInput() {
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		if p, ok := app.groundPoint(rl.GetMousePosition()); ok {
			if err := app.session.Sketch.Begin(p); err == nil {
				app.Sketch.drawing = true
			}
		}
	}

	if app.Sketch.drawing && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		if p, ok := app.groundPoint(rl.GetMousePosition()); ok {
			_ = app.session.Sketch.Add(p)
		}
	}

	if app.Sketch.drawing && rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		app.Sketch.drawing = false
		if _, err := app.session.SubmitSketch(); err != nil {
			app.log.Debug().Err(err).Msg("Sketch discarded")
		}
	}
}

// groundPoint returns where the screen position hits the y=0 work plane
func (app *App) groundPoint(pos rl.Vector2) (geometry.Vector3, bool) {
	cam := app.session.Scene.Camera()
	w, h := float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
	origin, dir := cam.Unproject(float64(pos.X), float64(pos.Y), w, h)
	return scene.IntersectGround(origin, dir)
}
