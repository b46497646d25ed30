package viewer

import (
	"image/color"
	"testing"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontFrame() scene.Frame {
	cam := scene.NewCamera(90)
	cam.Position = geometry.NewVector3(0, 0, 10)
	cam.Target = geometry.Vector3{}
	return scene.Frame{Width: 200, Height: 200, Camera: cam}
}

func TestProjectFrame_PathLine(t *testing.T) {
	frame := frontFrame()
	red := color.RGBA{R: 255, A: 255}
	frame.Lines = []*scene.Line{{
		Points: []geometry.Vector3{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 0, Z: 0}},
		Color:  red,
	}}

	segs := ProjectFrame(frame, 200, 200)
	require.Len(t, segs, 1)
	assert.InDelta(t, 100, segs[0].X1, 1e-9)
	assert.InDelta(t, 100, segs[0].Y1, 1e-9)
	// fov 90 at distance 10 spans x in [-10, 10]
	assert.InDelta(t, 150, segs[0].X2, 1e-9)
	assert.Equal(t, red, segs[0].Color)
}

func TestProjectFrame_Order(t *testing.T) {
	frame := frontFrame()
	frame.Grid = scene.Grid{Size: 10, Divisions: 2, CenterColor: color.RGBA{A: 1}, LineColor: color.RGBA{A: 2}}
	frame.Axes = scene.Axes{Length: 1}
	frame.Lines = []*scene.Line{{Points: []geometry.Vector3{{}, {X: 1}}, Color: color.RGBA{A: 9}}}

	segs := ProjectFrame(frame, 200, 200)
	// 3 grid rows each way, 3 axes, 1 path segment
	require.Len(t, segs, 6+3+1)
	assert.Equal(t, uint8(2), segs[0].Color.A)
	assert.Equal(t, uint8(1), segs[2].Color.A)
	assert.Equal(t, axisX, segs[6].Color)
	assert.Equal(t, uint8(9), segs[9].Color.A)
}

func TestProjectFrame_BehindCamera(t *testing.T) {
	frame := frontFrame()
	frame.Lines = []*scene.Line{{Points: []geometry.Vector3{{Z: 20}, {Z: 30}}}}
	assert.Empty(t, ProjectFrame(frame, 200, 200))
}

func TestProjectFrame_ClipsNearPlane(t *testing.T) {
	frame := frontFrame()
	frame.Lines = []*scene.Line{{Points: []geometry.Vector3{{X: 1, Z: 0}, {X: 1, Z: 20}}}}

	segs := ProjectFrame(frame, 200, 200)
	require.Len(t, segs, 1)
	assert.InDelta(t, 110, segs[0].X1, 1e-9)
	// The clipped end sits on the near plane, far off to the right
	assert.Greater(t, segs[0].X2, 200.0)
}

func TestProjectFrame_NoSize(t *testing.T) {
	assert.Nil(t, ProjectFrame(frontFrame(), 0, 100))
}
