package scene

import (
	"fmt"
	"sync"
)

// Surface is a drawing target bound to a Manager. Open is called once by
// Initialize; Draw is called by the render loop with an immutable frame.
type Surface interface {
	Open() error
	Size() (width, height int)
	Draw(frame Frame)
	Close() error
}

// InitializationError reports that the drawing surface or the underlying 3D
// capability is unavailable. No rendering can happen after it.
type InitializationError struct {
	Reason string
	Err    error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scene initialization failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("scene initialization failed: %s", e.Reason)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// HeadlessSurface is a Surface without a display. It keeps the most recent
// frame so terminal front ends and tests can inspect what would be drawn.
type HeadlessSurface struct {
	mu      sync.Mutex
	width   int
	height  int
	frames  int
	last    Frame
	closed  bool
	openErr error
}

// NewHeadlessSurface creates a headless surface of the given size
func NewHeadlessSurface(width, height int) *HeadlessSurface {
	return &HeadlessSurface{width: width, height: height}
}

// FailOpen makes the next Open return err
func (s *HeadlessSurface) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

func (s *HeadlessSurface) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	return nil
}

func (s *HeadlessSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Resize changes the reported size; the owner still calls Manager.Resize
func (s *HeadlessSurface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

func (s *HeadlessSurface) Draw(frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = frame
}

func (s *HeadlessSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns how many frames were drawn
func (s *HeadlessSurface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// LastFrame returns the most recently drawn frame
func (s *HeadlessSurface) LastFrame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Closed reports whether Close was called
func (s *HeadlessSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
