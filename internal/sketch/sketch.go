// Package sketch turns a freehand drawing into a motion path.
package sketch

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/toolpath"
)

var (
	ErrAlreadyDrawing = errors.New("a drawing is already in progress")
	ErrNotDrawing     = errors.New("no drawing in progress")
	ErrTooShort       = errors.New("drawing needs at least two distinct points")
)

// State of a sketch
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// DefaultMinSpacing drops samples closer than this to the previous one
const DefaultMinSpacing = 0.5

// Sketch accumulates points for one drawing at a time
type Sketch struct {
	mu         sync.Mutex
	state      State
	points     []geometry.Vector3
	minSpacing float64
}

// New creates an idle sketch. minSpacing <= 0 uses DefaultMinSpacing.
func New(minSpacing float64) *Sketch {
	if minSpacing <= 0 {
		minSpacing = DefaultMinSpacing
	}
	return &Sketch{minSpacing: minSpacing}
}

// State returns the current state
func (s *Sketch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin starts a drawing at p
func (s *Sketch) Begin(p geometry.Vector3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Drawing {
		return ErrAlreadyDrawing
	}
	s.state = Drawing
	s.points = s.points[:0]
	if p.IsFinite() {
		s.points = append(s.points, p)
	}
	return nil
}

// Add records a sample of the current drawing
func (s *Sketch) Add(p geometry.Vector3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Drawing {
		return ErrNotDrawing
	}
	if !p.IsFinite() {
		return nil
	}
	if n := len(s.points); n > 0 && s.points[n-1].Distance(p) < s.minSpacing {
		return nil
	}
	s.points = append(s.points, p)
	return nil
}

// End finishes the drawing and returns it as a path: a rapid move to the
// first point followed by feed moves. The sketch is idle afterwards even on
// error.
func (s *Sketch) End() ([]toolpath.MotionPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Drawing {
		return nil, ErrNotDrawing
	}
	s.state = Idle
	points := s.points
	s.points = nil

	if len(points) < 2 {
		return nil, ErrTooShort
	}

	path := make([]toolpath.MotionPoint, len(points))
	for i, p := range points {
		move := toolpath.Feed
		if i == 0 {
			move = toolpath.Rapid
		}
		path[i] = toolpath.NewPoint(p.X, p.Y, p.Z, move)
	}
	return path, nil
}

// Cancel discards the drawing in progress
func (s *Sketch) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.points = nil
}

// Points returns a copy of the samples recorded so far
func (s *Sketch) Points() []geometry.Vector3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]geometry.Vector3, len(s.points))
	copy(out, s.points)
	return out
}

// GCode renders a path as absolute millimetre G-code
func GCode(points []toolpath.MotionPoint) string {
	var b strings.Builder
	b.WriteString("G21\nG90\n")
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		code := "G1"
		if p.Move == toolpath.Rapid {
			code = "G0"
		}
		fmt.Fprintf(&b, "%s X%.3f Y%.3f Z%.3f\n", code, p.X, p.Y, p.Z)
	}
	b.WriteString("M2\n")
	return b.String()
}
