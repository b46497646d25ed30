package scene

import (
	"image/color"
	"sync"

	"github.com/google/uuid"
	"github.com/philipparndt/cncview/pkg/geometry"
)

// baseObjects is the number of static scene elements: grid, axes and two lights
const baseObjects = 4

// LineHandle identifies a polyline added to the scene
type LineHandle struct {
	id uuid.UUID
}

// String returns the handle's identifier
func (h LineHandle) String() string {
	return h.id.String()
}

// IsZero reports whether the handle was never issued
func (h LineHandle) IsZero() bool {
	return h.id == uuid.Nil
}

// Line is an immutable renderable polyline
type Line struct {
	Handle LineHandle
	Points []geometry.Vector3
	Color  color.RGBA
}

// Grid is the reference grid on the y=0 plane
type Grid struct {
	Size        float64
	Divisions   int
	CenterColor color.RGBA
	LineColor   color.RGBA
}

// Axes are the X/Y/Z indicators drawn from the origin
type Axes struct {
	Length float64
}

// LightKind distinguishes ambient from directional light
type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
)

// Light is a scene light
type Light struct {
	Kind      LightKind
	Color     color.RGBA
	Intensity float64
	Position  geometry.Vector3
}

// Frame is everything a surface needs to draw one frame
type Frame struct {
	Width      int
	Height     int
	Background color.RGBA
	Camera     Camera
	Grid       Grid
	Axes       Axes
	Lights     []Light
	Lines      []*Line
}

// Options configure a Manager
type Options struct {
	FieldOfView float64
	Damping     float64
	Background  color.RGBA
}

// DefaultOptions returns the stock scene settings
func DefaultOptions() Options {
	return Options{
		FieldOfView: 75,
		Damping:     0.25,
		Background:  color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff},
	}
}

// Manager owns the scene graph: static elements, camera, orbit controls and
// path lines. It is the only component that mutates them and is safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	opts     Options
	surface  Surface
	camera   Camera
	controls *OrbitControls
	grid     Grid
	axes     Axes
	lights   []Light
	lines    []*Line
	width    int
	height   int
}

// NewManager creates an uninitialized scene manager
func NewManager(opts Options) *Manager {
	if opts.FieldOfView <= 0 || opts.FieldOfView >= 180 {
		opts.FieldOfView = DefaultOptions().FieldOfView
	}
	return &Manager{opts: opts}
}

// Initialize builds the scene and binds it to surface
func (m *Manager) Initialize(surface Surface) error {
	if surface == nil {
		return &InitializationError{Reason: "no drawing surface"}
	}
	if err := surface.Open(); err != nil {
		return &InitializationError{Reason: "surface unavailable", Err: err}
	}
	width, height := surface.Size()
	if width <= 0 || height <= 0 {
		return &InitializationError{Reason: "surface has no drawable area"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.surface = surface
	m.camera = NewCamera(m.opts.FieldOfView)
	m.controls = NewOrbitControls(m.opts.Damping)
	m.controls.SetPose(m.camera.Position, m.camera.Target)
	m.grid = Grid{
		Size:        100,
		Divisions:   10,
		CenterColor: color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff},
		LineColor:   color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff},
	}
	m.axes = Axes{Length: 50}
	m.lights = []Light{
		{Kind: AmbientLight, Color: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Intensity: 0.5},
		{Kind: DirectionalLight, Color: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Intensity: 0.8, Position: geometry.NewVector3(50, 50, 50)},
	}
	m.lines = nil
	m.resizeLocked(width, height)
	return nil
}

// Resize updates the aspect ratio and viewport size
func (m *Manager) Resize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeLocked(width, height)
}

func (m *Manager) resizeLocked(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.camera.Aspect = float64(width) / float64(height)
}

// AddLine adds a polyline and returns its handle
func (m *Manager) AddLine(points []geometry.Vector3, c color.RGBA) LineHandle {
	pts := make([]geometry.Vector3, len(points))
	copy(pts, points)
	line := &Line{Handle: LineHandle{id: uuid.New()}, Points: pts, Color: c}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return line.Handle
}

// RemoveLine removes a line and reports whether it existed
func (m *Manager) RemoveLine(h LineHandle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, line := range m.lines {
		if line.Handle == h {
			copy(m.lines[i:], m.lines[i+1:])
			m.lines[len(m.lines)-1] = nil
			m.lines = m.lines[:len(m.lines)-1]
			return true
		}
	}
	return false
}

// RemoveLines removes every listed line in one pass and returns how many
// were found
func (m *Manager) RemoveLines(handles []LineHandle) int {
	if len(handles) == 0 {
		return 0
	}
	drop := make(map[LineHandle]struct{}, len(handles))
	for _, h := range handles {
		drop[h] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.lines[:0]
	for _, line := range m.lines {
		if _, ok := drop[line.Handle]; !ok {
			kept = append(kept, line)
		}
	}
	removed := len(m.lines) - len(kept)
	clear(m.lines[len(kept):])
	m.lines = kept
	return removed
}

// RemoveAllLines removes every line and returns how many were removed
func (m *Manager) RemoveAllLines() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.lines)
	// Drop the backing array so removed point buffers can be collected
	m.lines = nil
	return n
}

// SetCamera moves the camera and the orbit target
func (m *Manager) SetCamera(position, target geometry.Vector3) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.controls == nil {
		m.camera.Position, m.camera.Target = position, target
		return
	}
	m.controls.SetPose(position, target)
	m.camera.Position = m.controls.Position()
	m.camera.Target = m.controls.Target
}

// Rotate queues an orbit rotation
func (m *Manager) Rotate(deltaX, deltaY float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controls != nil {
		m.controls.Rotate(deltaX, deltaY)
	}
}

// Pan queues an orbit pan expressed in screen units, scaled by distance
func (m *Manager) Pan(dx, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controls == nil {
		return
	}
	_, right, up := m.camera.basis()
	speed := m.controls.Distance * 0.001
	m.controls.Pan(right.Mul(-dx * speed).Add(up.Mul(dy * speed)))
}

// Zoom scales the orbit distance
func (m *Manager) Zoom(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controls != nil {
		m.controls.Zoom(delta)
	}
}

// Update advances orbit damping and reports whether the camera is moving
func (m *Manager) Update() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controls == nil {
		return false
	}
	moving := m.controls.Update()
	m.camera.Position = m.controls.Position()
	m.camera.Target = m.controls.Target
	return moving
}

// Camera returns the current camera
func (m *Manager) Camera() Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.camera
}

// Surface returns the bound surface, nil before Initialize
func (m *Manager) Surface() Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface
}

// Frame returns a snapshot of the scene for drawing
func (m *Manager) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := make([]*Line, len(m.lines))
	copy(lines, m.lines)
	lights := make([]Light, len(m.lights))
	copy(lights, m.lights)

	return Frame{
		Width:      m.width,
		Height:     m.height,
		Background: m.opts.Background,
		Camera:     m.camera,
		Grid:       m.grid,
		Axes:       m.axes,
		Lights:     lights,
		Lines:      lines,
	}
}

// LineCount returns the number of path lines in the scene
func (m *Manager) LineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}

// ObjectCount returns the static elements plus lines
func (m *Manager) ObjectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface == nil {
		return len(m.lines)
	}
	return baseObjects + len(m.lines)
}

// Close releases all lines and the surface
func (m *Manager) Close() error {
	m.mu.Lock()
	surface := m.surface
	m.lines = nil
	m.surface = nil
	m.mu.Unlock()

	if surface == nil {
		return nil
	}
	return surface.Close()
}
