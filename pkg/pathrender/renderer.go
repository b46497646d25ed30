package pathrender

import (
	"image/color"
	"sync"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/philipparndt/cncview/pkg/viewfit"
)

var (
	// RapidColor is used for non-cutting positioning moves
	RapidColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	// FeedColor is used for cutting moves
	FeedColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}
)

// ColorFor returns the segment color for a move type
func ColorFor(m toolpath.MoveType) color.RGBA {
	if m == toolpath.Rapid {
		return RapidColor
	}
	return FeedColor
}

// Segment is one rendered line between two consecutive path points
type Segment struct {
	Index  int // index of the point the segment ends at
	From   geometry.Vector3
	To     geometry.Vector3
	Move   toolpath.MoveType
	Handle scene.LineHandle
}

// Renderer keeps the scene line geometry in step with the store
type Renderer struct {
	mu         sync.Mutex
	scene      *scene.Manager
	fitter     *viewfit.Fitter
	generation uint64
	last       *toolpath.MotionPoint
	count      int
	segments   []Segment
}

// New creates a renderer drawing into sm. fitter may be nil to skip framing.
func New(sm *scene.Manager, fitter *viewfit.Fitter) *Renderer {
	return &Renderer{scene: sm, fitter: fitter}
}

// Attach subscribes the renderer to store and renders its current contents
func (r *Renderer) Attach(store *toolpath.Store) {
	store.Subscribe(r.Apply)
	snap := store.Snapshot()
	r.Apply(toolpath.Change{
		Kind:       toolpath.ChangeReplace,
		Generation: snap.Generation,
		Points:     snap.Points,
		Total:      len(snap.Points),
	})
}

// Apply folds one store change into the scene
func (r *Renderer) Apply(c toolpath.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.Kind == toolpath.ChangeReplace || c.Generation != r.generation {
		r.rebuildLocked(c)
		return
	}
	for _, p := range c.Points {
		r.extendLocked(p)
	}
}

func (r *Renderer) rebuildLocked(c toolpath.Change) {
	r.clearLocked()
	r.generation = c.Generation
	for _, p := range c.Points {
		r.extendLocked(p)
	}
	if r.fitter != nil {
		r.fitter.Apply(c.Points)
	}
}

func (r *Renderer) extendLocked(p toolpath.MotionPoint) {
	if !p.Valid() {
		return
	}
	if r.last != nil {
		from := r.last.Position()
		to := p.Position()
		h := r.scene.AddLine([]geometry.Vector3{from, to}, ColorFor(p.Move))
		r.segments = append(r.segments, Segment{
			Index:  r.count,
			From:   from,
			To:     to,
			Move:   p.Move,
			Handle: h,
		})
	}
	point := p
	r.last = &point
	r.count++
}

func (r *Renderer) clearLocked() {
	handles := make([]scene.LineHandle, len(r.segments))
	for i, s := range r.segments {
		handles[i] = s.Handle
	}
	r.scene.RemoveLines(handles)
	r.segments = nil
	r.last = nil
	r.count = 0
}

// Clear removes every line the renderer owns
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

// Segments returns a copy of the rendered segments in path order
func (r *Renderer) Segments() []Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

// Generation returns the store generation the geometry was built from
func (r *Renderer) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// PointCount returns how many points have been rendered
func (r *Renderer) PointCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
