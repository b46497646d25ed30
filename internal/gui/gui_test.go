package gui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/philipparndt/cncview/pkg/viewer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_UpdateInfo(t *testing.T) {
	a := test.NewTempApp(t)
	view := viewer.NewPathView()

	s, err := session.New(session.Options{Surface: view.Surface(), Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	w := a.NewWindow("test")
	defer w.Close()
	g := New(w, view, s, time.Second, zerolog.Nop())

	s.Store.Replace([]toolpath.MotionPoint{
		toolpath.NewPoint(0, 0, 0, toolpath.Rapid),
		toolpath.NewPoint(10, 0, 0, toolpath.Feed),
	})
	p := 0.5
	s.Display.Apply(status.Snapshot{State: status.StateRunning, HasState: true, Progress: &p, CurrentFile: "part.gcode"})

	g.updateInfo(s.Scene.Frame())

	assert.Contains(t, g.statusLabel.Text, "State: running")
	assert.Contains(t, g.statusLabel.Text, "Progress: 50%")
	assert.Equal(t, "2 points, 1 segments (gen 1)", g.pathLabel.Text)
	assert.Equal(t, "part.gcode", g.fileEntry.Text)
	assert.False(t, g.trackCheck.Checked)
}
