// Package renderloop draws the scene once per frame, independently of data
// arrival.
package renderloop

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/philipparndt/cncview/internal/schedule"
	"github.com/philipparndt/cncview/pkg/scene"
)

// DefaultFrameRate is used when no frame rate is configured
const DefaultFrameRate = 60

// Loop advances camera damping and redraws the scene
type Loop struct {
	scene  *scene.Manager
	task   *schedule.Task
	frames atomic.Uint64
}

// New creates a loop for sm ticking at frameRate frames per second
func New(sm *scene.Manager, frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	l := &Loop{scene: sm}
	l.task = schedule.New(time.Second/time.Duration(frameRate), func(context.Context) { l.Tick() })
	return l
}

// Tick runs one frame: update the orbit controls and draw. It reports whether
// the camera is still moving.
func (l *Loop) Tick() bool {
	moving := l.scene.Update()
	surface := l.scene.Surface()
	if surface == nil {
		return moving
	}
	surface.Draw(l.scene.Frame())
	l.frames.Add(1)
	return moving
}

// Start schedules ticks for surfaces that have no frame loop of their own
func (l *Loop) Start(ctx context.Context) bool {
	return l.task.Start(ctx)
}

// Stop cancels scheduled ticks
func (l *Loop) Stop() {
	l.task.Stop()
}

// Running reports whether ticks are scheduled
func (l *Loop) Running() bool {
	return l.task.Running()
}

// Frames returns the number of frames drawn
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Interval returns the time between scheduled frames
func (l *Loop) Interval() time.Duration {
	return l.task.Interval()
}
