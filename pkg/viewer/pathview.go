// Package viewer is a fyne widget that displays scene frames.
package viewer

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/cncview/pkg/scene"
)

const (
	minWidth  = 400
	minHeight = 400
)

// Controls receives camera gestures from the widget
type Controls interface {
	Rotate(deltaX, deltaY float64)
	Pan(dx, dy float64)
	Zoom(delta float64)
}

// PathView draws the most recent frame handed to its surface and forwards
// drag and scroll gestures to the camera controls
type PathView struct {
	widget.BaseWidget

	mu       sync.Mutex
	frame    scene.Frame
	hasFrame bool
	open     bool
	width    float64
	height   float64

	controls  Controls
	dragStart *fyne.Position

	// OnResize is called on the fyne goroutine when the widget is laid out
	OnResize func(width, height int)
	// OnFrame is called on the fyne goroutine after a new frame is shown
	OnFrame func(frame scene.Frame)
}

// NewPathView creates an empty view
func NewPathView() *PathView {
	v := &PathView{}
	v.ExtendBaseWidget(v)
	return v
}

// SetControls sets the target for camera gestures
func (v *PathView) SetControls(c Controls) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.controls = c
}

// Surface returns the view as a scene drawing target
func (v *PathView) Surface() scene.Surface {
	return (*viewSurface)(v)
}

// Segments projects the current frame at the current widget size
func (v *PathView) Segments() []ScreenSegment {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.hasFrame {
		return nil
	}
	return ProjectFrame(v.frame, v.width, v.height)
}

func (v *PathView) background() (color.Color, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame.Background, v.hasFrame
}

func (v *PathView) setSize(width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
}

// Dragged rotates the camera, or pans with a secondary drag
func (v *PathView) Dragged(event *fyne.DragEvent) {
	v.mu.Lock()
	controls := v.controls
	v.mu.Unlock()

	if controls != nil && v.dragStart != nil {
		deltaX := float64(event.Position.X - v.dragStart.X)
		deltaY := float64(event.Position.Y - v.dragStart.Y)
		controls.Rotate(-deltaY*0.01, deltaX*0.01)
	}
	pos := event.Position
	v.dragStart = &pos
}

// DragEnd handles the end of a drag event
func (v *PathView) DragEnd() {
	v.dragStart = nil
}

// Scrolled zooms the camera
func (v *PathView) Scrolled(event *fyne.ScrollEvent) {
	v.mu.Lock()
	controls := v.controls
	v.mu.Unlock()

	if controls != nil {
		controls.Zoom(-float64(event.Scrolled.DY) * 0.001)
	}
}

// CreateRenderer creates the renderer for the widget
func (v *PathView) CreateRenderer() fyne.WidgetRenderer {
	return &pathViewRenderer{view: v, background: canvas.NewRectangle(color.Black)}
}

type pathViewRenderer struct {
	view       *PathView
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *pathViewRenderer) Layout(size fyne.Size) {
	r.view.setSize(float64(size.Width), float64(size.Height))
	r.background.Resize(size)
	if r.view.OnResize != nil {
		r.view.OnResize(int(size.Width), int(size.Height))
	}
	r.rebuild()
}

func (r *pathViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(minWidth, minHeight)
}

func (r *pathViewRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.view)
}

func (r *pathViewRenderer) rebuild() {
	if bg, ok := r.view.background(); ok {
		r.background.FillColor = bg
	}

	segments := r.view.Segments()
	objects := make([]fyne.CanvasObject, 0, len(segments)+1)
	objects = append(objects, r.background)
	for _, s := range segments {
		line := canvas.NewLine(s.Color)
		line.StrokeWidth = 1
		line.Position1 = fyne.NewPos(float32(s.X1), float32(s.Y1))
		line.Position2 = fyne.NewPos(float32(s.X2), float32(s.Y2))
		objects = append(objects, line)
	}
	r.objects = objects
}

func (r *pathViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *pathViewRenderer) Destroy() {}

// viewSurface adapts PathView to scene.Surface. Draw may be called from any
// goroutine; repaints are handed to the fyne goroutine.
type viewSurface PathView

func (s *viewSurface) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	return nil
}

// Size reports the laid out size, or the minimum size before the first layout
func (s *viewSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width <= 0 || s.height <= 0 {
		return minWidth, minHeight
	}
	return int(s.width), int(s.height)
}

func (s *viewSurface) Draw(frame scene.Frame) {
	v := (*PathView)(s)
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return
	}
	v.frame = frame
	v.hasFrame = true
	onFrame := v.OnFrame
	v.mu.Unlock()

	fyne.Do(func() {
		v.Refresh()
		if onFrame != nil {
			onFrame(frame)
		}
	})
}

func (s *viewSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}
