package toolpath

import (
	"errors"
	"sync"
)

// ErrStaleMutation is returned when a mutation targets a superseded generation
var ErrStaleMutation = errors.New("mutation targets a stale generation")

// ChangeKind tells listeners how the path changed
type ChangeKind int

const (
	// ChangeReplace means a new generation started; Points holds the full path
	ChangeReplace ChangeKind = iota
	// ChangeAppend means Points were added to the end of the current generation
	ChangeAppend
)

func (k ChangeKind) String() string {
	if k == ChangeAppend {
		return "append"
	}
	return "replace"
}

// Change is delivered to listeners after every successful mutation
type Change struct {
	Kind       ChangeKind
	Generation uint64
	Points     []MotionPoint // full path for replace, new points for append
	Total      int           // path length after the change
}

// Snapshot is a copy of the path tagged with its generation
type Snapshot struct {
	Generation uint64
	Points     []MotionPoint
}

// Listener receives changes in mutation order. It is called with the store
// lock held and must not call back into the store.
type Listener func(Change)

// Store is the ordered, append-only motion path with a generation counter.
// It is the single writer of path data and is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	generation uint64
	points     []MotionPoint
	listeners  []Listener
}

// NewStore creates an empty store at generation 0
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers a listener for future changes
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Generation returns the current generation
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Len returns the number of points in the current generation
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// Snapshot returns a copy of the current path
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Generation: s.generation, Points: clonePoints(s.points)}
}

// Append adds points to the path if gen is still current. Invalid points are
// dropped. A stale generation leaves the store untouched and returns
// ErrStaleMutation.
func (s *Store) Append(gen uint64, points ...MotionPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStaleMutation
	}
	s.appendLocked(points)
	return nil
}

// Replace starts a new generation holding exactly the given valid points
func (s *Store) Replace(points []MotionPoint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(points)
}

// Clear starts a new, empty generation
func (s *Store) Clear() uint64 {
	return s.Replace(nil)
}

// Reconcile folds a full-path payload observed at generation gen into the
// store: an empty stored path is replaced, a payload extending the stored
// path has its tail appended, an identical payload is a no-op and anything
// else replaces the path. A payload with no valid points changes nothing, so
// a window of bad samples cannot blank the path.
func (s *Store) Reconcile(gen uint64, points []MotionPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStaleMutation
	}

	incoming := validPoints(points)
	switch {
	case len(incoming) == 0:
	case len(s.points) == 0:
		s.replaceLocked(incoming)
	case hasPrefix(incoming, s.points):
		s.appendLocked(incoming[len(s.points):])
	default:
		s.replaceLocked(incoming)
	}
	return nil
}

func (s *Store) appendLocked(points []MotionPoint) {
	added := validPoints(points)
	if len(added) == 0 {
		return
	}
	s.points = append(s.points, added...)
	s.notifyLocked(Change{
		Kind:       ChangeAppend,
		Generation: s.generation,
		Points:     clonePoints(added),
		Total:      len(s.points),
	})
}

func (s *Store) replaceLocked(points []MotionPoint) uint64 {
	s.generation++
	// Fresh backing array so earlier snapshots never alias the new path
	s.points = validPoints(points)
	s.notifyLocked(Change{
		Kind:       ChangeReplace,
		Generation: s.generation,
		Points:     clonePoints(s.points),
		Total:      len(s.points),
	})
	return s.generation
}

func (s *Store) notifyLocked(c Change) {
	for _, l := range s.listeners {
		l(c)
	}
}

// validPoints returns a new slice holding only the valid points
func validPoints(points []MotionPoint) []MotionPoint {
	out := make([]MotionPoint, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

func hasPrefix(points, prefix []MotionPoint) bool {
	if len(points) < len(prefix) {
		return false
	}
	for i := range prefix {
		if points[i] != prefix[i] {
			return false
		}
	}
	return true
}

func clonePoints(points []MotionPoint) []MotionPoint {
	out := make([]MotionPoint, len(points))
	copy(out, points)
	return out
}
