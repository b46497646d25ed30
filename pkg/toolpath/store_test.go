package toolpath

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() []MotionPoint {
	return []MotionPoint{
		NewPoint(0, 0, 0, Rapid),
		NewPoint(10, 0, 0, Feed),
		NewPoint(10, 10, 0, Feed),
		NewPoint(0, 10, 0, Feed),
	}
}

func TestStore_StartsEmptyAtGenerationZero(t *testing.T) {
	s := NewStore()
	assert.Equal(t, uint64(0), s.Generation())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot().Points)
}

func TestStore_ReplaceIncrementsGenerationOnce(t *testing.T) {
	s := NewStore()

	gen := s.Replace(square())
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, 4, s.Len())

	gen = s.Clear()
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, 0, s.Len())
}

func TestStore_AppendKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	gen := s.Replace(square()[:1])

	require.NoError(t, s.Append(gen, square()[1:3]...))
	require.NoError(t, s.Append(gen, square()[3]))

	if diff := cmp.Diff(square(), s.Snapshot().Points); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, gen, s.Generation(), "append must not change the generation")
}

func TestStore_StaleAppendAfterReplaceIsNoop(t *testing.T) {
	s := NewStore()
	old := s.Replace(square())
	s.Replace(square()[:2])

	err := s.Append(old, NewPoint(99, 99, 99, Feed))
	assert.ErrorIs(t, err, ErrStaleMutation)
	assert.Equal(t, 2, s.Len())
	if diff := cmp.Diff(square()[:2], s.Snapshot().Points); diff != "" {
		t.Errorf("stale append changed the path (-want +got):\n%s", diff)
	}
}

func TestStore_DropsInvalidPoints(t *testing.T) {
	s := NewStore()
	gen := s.Replace([]MotionPoint{
		NewPoint(0, 0, 0, Rapid),
		NewPoint(math.NaN(), 1, 1, Feed),
		NewPoint(5, 5, 5, Feed),
	})

	require.NoError(t, s.Append(gen, NewPoint(1, math.Inf(1), 0, Feed), NewPoint(6, 6, 6, Feed)))

	want := []MotionPoint{NewPoint(0, 0, 0, Rapid), NewPoint(5, 5, 5, Feed), NewPoint(6, 6, 6, Feed)}
	if diff := cmp.Diff(want, s.Snapshot().Points); diff != "" {
		t.Errorf("invalid points should be dropped (-want +got):\n%s", diff)
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Replace(square())

	snap := s.Snapshot()
	snap.Points[0] = NewPoint(-1, -1, -1, Feed)

	assert.Equal(t, NewPoint(0, 0, 0, Rapid), s.Snapshot().Points[0])
}

func TestStore_ListenersSeeChangesInOrder(t *testing.T) {
	s := NewStore()
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	gen := s.Replace(square()[:2])
	require.NoError(t, s.Append(gen, square()[2:]...))
	s.Clear()

	require.Len(t, changes, 3)
	assert.Equal(t, ChangeReplace, changes[0].Kind)
	assert.Equal(t, 2, changes[0].Total)
	assert.Equal(t, ChangeAppend, changes[1].Kind)
	assert.Len(t, changes[1].Points, 2)
	assert.Equal(t, 4, changes[1].Total)
	assert.Equal(t, ChangeReplace, changes[2].Kind)
	assert.Equal(t, uint64(2), changes[2].Generation)
	assert.Empty(t, changes[2].Points)
}

func TestStore_EmptyAppendDoesNotNotify(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	require.NoError(t, s.Append(0))
	require.NoError(t, s.Append(0, NewPoint(math.NaN(), 0, 0, Feed)))
	assert.Zero(t, calls)
}

func TestStore_Reconcile(t *testing.T) {
	t.Run("empty store replaces", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Reconcile(0, square()[:2]))
		assert.Equal(t, uint64(1), s.Generation())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("prefix extension appends tail", func(t *testing.T) {
		s := NewStore()
		gen := s.Replace(square()[:2])

		var kinds []ChangeKind
		s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

		require.NoError(t, s.Reconcile(gen, square()))
		assert.Equal(t, gen, s.Generation())
		assert.Equal(t, []ChangeKind{ChangeAppend}, kinds)
		assert.Equal(t, 4, s.Len())
	})

	t.Run("identical payload is a noop", func(t *testing.T) {
		s := NewStore()
		gen := s.Replace(square())
		calls := 0
		s.Subscribe(func(Change) { calls++ })

		require.NoError(t, s.Reconcile(gen, square()))
		assert.Zero(t, calls)
		assert.Equal(t, gen, s.Generation())
	})

	t.Run("divergent payload replaces", func(t *testing.T) {
		s := NewStore()
		gen := s.Replace(square())
		other := []MotionPoint{NewPoint(1, 1, 1, Rapid), NewPoint(2, 2, 2, Feed)}

		require.NoError(t, s.Reconcile(gen, other))
		assert.Equal(t, gen+1, s.Generation())
		if diff := cmp.Diff(other, s.Snapshot().Points); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("stale generation rejected", func(t *testing.T) {
		s := NewStore()
		s.Replace(square())
		s.Clear()

		err := s.Reconcile(1, square())
		assert.ErrorIs(t, err, ErrStaleMutation)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("all invalid payload keeps path", func(t *testing.T) {
		s := NewStore()
		gen := s.Replace(square())

		require.NoError(t, s.Reconcile(gen, []MotionPoint{NewPoint(math.NaN(), 0, 0, Feed)}))
		assert.Equal(t, 4, s.Len())
		assert.Equal(t, gen, s.Generation())
	})
}
