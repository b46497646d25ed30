package sketch

import (
	"math"
	"testing"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSketch_DrawAndEnd(t *testing.T) {
	s := New(0)
	assert.Equal(t, Idle, s.State())

	require.NoError(t, s.Begin(geometry.NewVector3(0, 0, 0)))
	assert.Equal(t, Drawing, s.State())
	require.NoError(t, s.Add(geometry.NewVector3(10, 0, 0)))
	require.NoError(t, s.Add(geometry.NewVector3(10, 10, 0)))

	path, err := s.End()
	require.NoError(t, err)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, []toolpath.MotionPoint{
		toolpath.NewPoint(0, 0, 0, toolpath.Rapid),
		toolpath.NewPoint(10, 0, 0, toolpath.Feed),
		toolpath.NewPoint(10, 10, 0, toolpath.Feed),
	}, path)
}

func TestSketch_StateErrors(t *testing.T) {
	s := New(0)
	assert.ErrorIs(t, s.Add(geometry.Vector3{}), ErrNotDrawing)
	_, err := s.End()
	assert.ErrorIs(t, err, ErrNotDrawing)

	require.NoError(t, s.Begin(geometry.Vector3{}))
	assert.ErrorIs(t, s.Begin(geometry.Vector3{}), ErrAlreadyDrawing)
}

func TestSketch_DropsCloseAndInvalidSamples(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Begin(geometry.NewVector3(0, 0, 0)))
	require.NoError(t, s.Add(geometry.NewVector3(0.2, 0, 0)))
	require.NoError(t, s.Add(geometry.NewVector3(math.NaN(), 0, 0)))
	require.NoError(t, s.Add(geometry.NewVector3(2, 0, 0)))

	assert.Equal(t, []geometry.Vector3{{}, {X: 2}}, s.Points())
}

func TestSketch_TooShort(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Begin(geometry.Vector3{}))
	_, err := s.End()
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Equal(t, Idle, s.State())
}

func TestSketch_CancelAndRestart(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Begin(geometry.Vector3{}))
	require.NoError(t, s.Add(geometry.NewVector3(5, 5, 0)))
	s.Cancel()
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, s.Points())

	require.NoError(t, s.Begin(geometry.NewVector3(1, 1, 0)))
	assert.Len(t, s.Points(), 1)
}

func TestGCode(t *testing.T) {
	got := GCode([]toolpath.MotionPoint{
		toolpath.NewPoint(0, 0, 5, toolpath.Rapid),
		toolpath.NewPoint(10, 0, 0, toolpath.Feed),
		toolpath.NewPoint(math.Inf(1), 0, 0, toolpath.Feed),
		toolpath.NewPoint(10, 2.5, 0, toolpath.Feed),
	})
	assert.Equal(t, "G21\nG90\n"+
		"G0 X0.000 Y0.000 Z5.000\n"+
		"G1 X10.000 Y0.000 Z0.000\n"+
		"G1 X10.000 Y2.500 Z0.000\n"+
		"M2\n", got)
}
