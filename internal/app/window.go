package app

import (
	"errors"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/scene"
)

var errWindowUnavailable = errors.New("window could not be created")

// Window is a native raylib surface. All methods must be called from the
// main thread.
type Window struct {
	title     string
	width     int32
	height    int32
	frameRate int32
	open      bool

	// Overlay is drawn in screen space after the 3D scene
	Overlay func(frame scene.Frame)
}

// NewWindow creates an unopened window
func NewWindow(title string, width, height, frameRate int) *Window {
	return &Window{
		title:     title,
		width:     int32(width),
		height:    int32(height),
		frameRate: int32(frameRate),
	}
}

// Open creates the OS window
func (w *Window) Open() error {
	if w.open {
		return nil
	}
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint) // Must be before InitWindow
	rl.InitWindow(w.width, w.height, w.title)
	if !rl.IsWindowReady() {
		return errWindowUnavailable
	}
	rl.SetTargetFPS(w.frameRate)
	w.open = true
	return nil
}

// Size returns the current drawable size
func (w *Window) Size() (int, int) {
	if !w.open {
		return 0, 0
	}
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// Draw renders one frame
func (w *Window) Draw(frame scene.Frame) {
	if !w.open {
		return
	}

	rl.BeginDrawing()
	rl.ClearBackground(rlColor(frame.Background))

	rl.BeginMode3D(toCamera3D(frame.Camera))
	drawGrid(frame.Grid)
	drawAxes(frame.Axes)
	drawLines(frame.Lines)
	rl.EndMode3D()

	if w.Overlay != nil {
		w.Overlay(frame)
	}

	rl.EndDrawing()
}

// Close destroys the OS window
func (w *Window) Close() error {
	if !w.open {
		return nil
	}
	w.open = false
	rl.CloseWindow()
	return nil
}

func vec(v geometry.Vector3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func rlColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func toCamera3D(c scene.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(c.Position),
		Target:     vec(c.Target),
		Up:         vec(c.Up),
		Fovy:       float32(c.FieldOfView),
		Projection: rl.CameraPerspective,
	}
}

// drawGrid draws the ground grid in the XZ plane centered at the origin
func drawGrid(g scene.Grid) {
	if g.Divisions <= 0 || g.Size <= 0 {
		return
	}
	half := float32(g.Size / 2)
	step := float32(g.Size / float64(g.Divisions))

	for i := 0; i <= g.Divisions; i++ {
		offset := -half + float32(i)*step
		c := rlColor(g.LineColor)
		if i*2 == g.Divisions {
			c = rlColor(g.CenterColor)
		}
		rl.DrawLine3D(rl.Vector3{X: offset, Z: -half}, rl.Vector3{X: offset, Z: half}, c)
		rl.DrawLine3D(rl.Vector3{X: -half, Z: offset}, rl.Vector3{X: half, Z: offset}, c)
	}
}

// drawAxes draws X (red), Y (green) and Z (blue) from the origin
func drawAxes(a scene.Axes) {
	l := float32(a.Length)
	if l <= 0 {
		return
	}
	rl.DrawLine3D(rl.Vector3{}, rl.Vector3{X: l}, rl.Red)
	rl.DrawLine3D(rl.Vector3{}, rl.Vector3{Y: l}, rl.Green)
	rl.DrawLine3D(rl.Vector3{}, rl.Vector3{Z: l}, rl.Blue)
}

func drawLines(lines []*scene.Line) {
	for _, line := range lines {
		c := rlColor(line.Color)
		for i := 1; i < len(line.Points); i++ {
			rl.DrawLine3D(vec(line.Points[i-1]), vec(line.Points[i]), c)
		}
	}
}
