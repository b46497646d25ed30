package app

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/philipparndt/cncview/version"
)

type lineKind int

const (
	kindText lineKind = iota
	kindHeading
	kindGood
	kindError
	kindHint
)

type hudLine struct {
	text string
	kind lineKind
}

// pathStats summarizes what is currently rendered
type pathStats struct {
	points     int
	segments   int
	generation uint64
	tracking   bool
	sketching  bool
}

// statusLines builds the status panel text
func statusLines(v status.View, st pathStats) []hudLine {
	lines := []hudLine{{text: "Machine:", kind: kindHeading}}
	for _, l := range v.Lines() {
		kind := kindText
		if v.LastError != "" && l == "Error: "+v.LastError {
			kind = kindError
		}
		lines = append(lines, hudLine{text: "  " + l, kind: kind})
	}

	lines = append(lines, hudLine{text: "Path:", kind: kindHeading})
	lines = append(lines, hudLine{text: fmt.Sprintf("  %d points, %d segments (gen %d)", st.points, st.segments, st.generation)})
	if st.tracking {
		lines = append(lines, hudLine{text: "  Tracking", kind: kindGood})
	}
	if st.sketching {
		lines = append(lines, hudLine{text: "  SKETCH MODE: drag on the grid to draw", kind: kindHint})
	}
	return lines
}

var helpLines = []hudLine{
	{text: "View:", kind: kindHeading},
	{text: "  Home/R: Fit path | T: Top"},
	{text: "  1: Front | 2: Back | 3: Left | 4: Right"},
	{text: "Navigate:", kind: kindHeading},
	{text: "  Left Drag: Rotate | Shift+Drag: Pan"},
	{text: "  Mouse Wheel: Zoom | Middle: Pan"},
	{text: "Machine:", kind: kindHeading},
	{text: "  S: Start | X: Stop | P: Parse | C: Clear"},
	{text: "  D: Sketch mode | H: Hide help"},
}

func kindColor(k lineKind) rl.Color {
	switch k {
	case kindHeading:
		return rl.Yellow
	case kindGood:
		return rl.Green
	case kindError:
		return rl.NewColor(255, 100, 100, 255)
	case kindHint:
		return rl.NewColor(255, 150, 255, 255)
	default:
		return rl.LightGray
	}
}

// drawUI draws the heads-up display over the scene
func (app *App) drawUI(frame scene.Frame) {
	y := float32(10)
	lineHeight := float32(20)
	fontSize16 := float32(16)
	fontSize14 := float32(14)
	fontSize12 := float32(12)

	screenWidth := float32(frame.Width)
	screenHeight := float32(frame.Height)

	stats := pathStats{
		points:     app.session.Renderer.PointCount(),
		segments:   len(frame.Lines),
		generation: app.session.Renderer.Generation(),
		tracking:   app.session.Tracking(),
		sketching:  app.Sketch.active,
	}

	for _, l := range statusLines(app.session.Display.View(), stats) {
		size := fontSize14
		if l.kind == kindHeading {
			size = fontSize16
		}
		rl.DrawTextEx(app.UI.font, l.text, rl.Vector2{X: 10, Y: y}, size, 1, kindColor(l.kind))
		y += lineHeight
	}

	if app.UI.showHelp {
		y += lineHeight
		for _, l := range helpLines {
			size := fontSize14
			if l.kind == kindHeading {
				size = fontSize16
			}
			rl.DrawTextEx(app.UI.font, l.text, rl.Vector2{X: 10, Y: y}, size, 1, kindColor(l.kind))
			y += lineHeight
		}
	}

	// Request indicator in the top-right corner
	if app.UI.busy.Load() > 0 {
		spinnerChars := []string{"|", "/", "-", "\\"}
		spinnerIdx := int(time.Now().UnixMilli()/100) % len(spinnerChars)
		text := fmt.Sprintf("%s Waiting for controller", spinnerChars[spinnerIdx])
		size := rl.MeasureTextEx(app.UI.font, text, fontSize14, 1)
		boxX := screenWidth - size.X - 40
		rl.DrawRectangle(int32(boxX), 10, int32(size.X+20), int32(size.Y+16), rl.NewColor(0, 0, 0, 200))
		rl.DrawTextEx(app.UI.font, text, rl.Vector2{X: boxX + 10, Y: 18}, fontSize14, 1, rl.Yellow)
	}

	// Version in the bottom-right corner
	versionText := version.GetFullVersion()
	versionSize := rl.MeasureTextEx(app.UI.font, versionText, fontSize12, 1)
	rl.DrawTextEx(app.UI.font, versionText, rl.Vector2{X: screenWidth - versionSize.X - 10, Y: screenHeight - versionSize.Y - 10}, fontSize12, 1, rl.Gray)
}
