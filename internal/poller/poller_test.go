package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSource blocks every request until release is called
type gatedSource struct {
	mu       sync.Mutex
	current  int
	peak     int
	calls    atomic.Int32
	gate     chan struct{}
	response func() (status.Snapshot, error)
}

func newGatedSource(response func() (status.Snapshot, error)) *gatedSource {
	return &gatedSource{gate: make(chan struct{}), response: response}
}

func (s *gatedSource) Status(ctx context.Context) (status.Snapshot, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.current++
	if s.current > s.peak {
		s.peak = s.current
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.current--
		s.mu.Unlock()
	}()

	select {
	case <-s.gate:
	case <-ctx.Done():
		return status.Snapshot{}, ctx.Err()
	}
	return s.response()
}

func (s *gatedSource) release() {
	close(s.gate)
}

func (s *gatedSource) Peak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

type funcSource func(ctx context.Context) (status.Snapshot, error)

func (f funcSource) Status(ctx context.Context) (status.Snapshot, error) {
	return f(ctx)
}

func running(points ...toolpath.MotionPoint) status.Snapshot {
	p := 0.25
	return status.Snapshot{
		State:     status.StateRunning,
		RawState:  "running",
		HasState:  true,
		Progress:  &p,
		HasPoints: true,
		Points:    points,
	}
}

func TestPoller_NeverOverlapsRequests(t *testing.T) {
	src := newGatedSource(func() (status.Snapshot, error) { return running(), nil })
	p := New(src, Options{Interval: time.Hour}, zerolog.Nop())

	require.True(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Eventually(t, p.InFlight, time.Second, time.Millisecond)
	for i := 0; i < 10; i++ {
		p.Tick(context.Background())
	}

	skipped, _, _ := p.Stats()
	assert.Equal(t, int64(10), skipped)
	assert.Equal(t, int32(1), src.calls.Load())

	src.release()
	p.Wait()
	assert.False(t, p.InFlight())
	assert.Equal(t, 1, src.Peak())

	p.Tick(context.Background())
	p.Wait()
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestPoller_FastTimerSlowResponses(t *testing.T) {
	src := funcSource(func(ctx context.Context) (status.Snapshot, error) {
		time.Sleep(15 * time.Millisecond)
		return running(), nil
	})
	var peak, current atomic.Int32
	counting := funcSource(func(ctx context.Context) (status.Snapshot, error) {
		n := current.Add(1)
		defer current.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		return src.Status(ctx)
	})

	p := New(counting, Options{Interval: time.Millisecond}, zerolog.Nop())
	p.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	p.Stop()
	p.Wait()

	skipped, applied, _ := p.Stats()
	assert.Equal(t, int32(1), peak.Load())
	assert.Positive(t, skipped)
	assert.Positive(t, applied)
}

func TestPoller_ReconcilesIntoStore(t *testing.T) {
	store := toolpath.NewStore()
	display := status.NewDisplay()
	points := []toolpath.MotionPoint{
		toolpath.NewPoint(0, 0, 0, toolpath.Rapid),
		toolpath.NewPoint(1, 1, 1, toolpath.Feed),
	}
	src := funcSource(func(context.Context) (status.Snapshot, error) { return running(points...), nil })

	p := New(src, Options{Interval: time.Hour, Store: store, Display: display}, zerolog.Nop())
	p.Start(context.Background())
	assert.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, time.Millisecond)
	p.Stop()
	p.Wait()

	snap := store.Snapshot()
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, points, snap.Points)
	assert.Equal(t, "25%", display.View().ProgressText())
}

func TestPoller_StaleResponseAfterClearIsDropped(t *testing.T) {
	store := toolpath.NewStore()
	store.Replace([]toolpath.MotionPoint{toolpath.NewPoint(5, 5, 5, toolpath.Feed)})

	src := newGatedSource(func() (status.Snapshot, error) {
		return running(toolpath.NewPoint(5, 5, 5, toolpath.Feed), toolpath.NewPoint(6, 6, 6, toolpath.Feed)), nil
	})
	p := New(src, Options{Interval: time.Hour, Store: store}, zerolog.Nop())
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, p.InFlight, time.Second, time.Millisecond)
	gen := store.Clear()

	src.release()
	p.Wait()

	assert.Equal(t, gen, store.Generation())
	assert.Equal(t, 0, store.Len(), "in-flight response must not repopulate a cleared path")
}

func TestPoller_ResponseAfterStopIsDiscarded(t *testing.T) {
	store := toolpath.NewStore()
	display := status.NewDisplay()
	src := newGatedSource(func() (status.Snapshot, error) {
		return running(toolpath.NewPoint(1, 2, 3, toolpath.Feed)), nil
	})
	// The source ignores cancellation so the response still arrives
	slow := funcSource(func(ctx context.Context) (status.Snapshot, error) {
		return src.Status(context.Background())
	})

	p := New(slow, Options{Interval: time.Hour, Store: store, Display: display}, zerolog.Nop())
	p.Start(context.Background())
	assert.Eventually(t, p.InFlight, time.Second, time.Millisecond)

	p.Stop()
	src.release()
	p.Wait()

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, status.StateUnknown, display.View().State)
}

func TestPoller_StopsOnTerminalState(t *testing.T) {
	var terminal atomic.Bool
	src := funcSource(func(context.Context) (status.Snapshot, error) {
		return status.Snapshot{State: status.StateIdle, HasState: true}, nil
	})

	p := New(src, Options{
		Interval:       time.Millisecond,
		StopOnTerminal: true,
		OnTerminal:     func(status.Snapshot) { terminal.Store(true) },
	}, zerolog.Nop())
	p.Start(context.Background())

	assert.Eventually(t, func() bool { return !p.Running() }, time.Second, time.Millisecond)
	p.Wait()
	assert.True(t, terminal.Load())
	_, applied, _ := p.Stats()
	assert.Equal(t, int64(1), applied)
}

func TestPoller_MissingStateDoesNotStop(t *testing.T) {
	var calls atomic.Int32
	src := funcSource(func(context.Context) (status.Snapshot, error) {
		calls.Add(1)
		return status.Snapshot{}, nil
	})

	p := New(src, Options{Interval: time.Millisecond, StopOnTerminal: true}, zerolog.Nop())
	p.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, p.Running())
	p.Stop()
	p.Wait()
}

func TestPoller_StatusOnlyIgnoresTerminal(t *testing.T) {
	var seen atomic.Int32
	src := funcSource(func(context.Context) (status.Snapshot, error) {
		return status.Snapshot{State: status.StateStopped, HasState: true}, nil
	})

	p := New(src, Options{
		Interval:   time.Millisecond,
		OnSnapshot: func(status.Snapshot) { seen.Add(1) },
	}, zerolog.Nop())
	p.Start(context.Background())
	assert.Eventually(t, func() bool { return seen.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, p.Running())
	p.Stop()
	p.Wait()
}

func TestPoller_TransientErrorsKeepPolling(t *testing.T) {
	display := status.NewDisplay()
	var calls atomic.Int32
	src := funcSource(func(context.Context) (status.Snapshot, error) {
		calls.Add(1)
		return status.Snapshot{}, errors.New("connection refused")
	})

	p := New(src, Options{Interval: time.Millisecond, StopOnTerminal: true, Display: display}, zerolog.Nop())
	p.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, p.Running())
	p.Stop()
	p.Wait()

	_, _, failed := p.Stats()
	assert.GreaterOrEqual(t, failed, int64(1))
	assert.Equal(t, "connection refused", display.View().LastError)
}

func TestPoller_StartTwice(t *testing.T) {
	src := funcSource(func(context.Context) (status.Snapshot, error) { return status.Snapshot{}, nil })
	p := New(src, Options{Interval: time.Hour}, zerolog.Nop())

	assert.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()))
	p.Stop()
	p.Wait()
	assert.True(t, p.Start(context.Background()))
	p.Stop()
	p.Wait()
}

func TestPoller_TickWhenStoppedDoesNothing(t *testing.T) {
	var calls atomic.Int32
	src := funcSource(func(context.Context) (status.Snapshot, error) {
		calls.Add(1)
		return status.Snapshot{}, nil
	})
	p := New(src, Options{Interval: time.Hour}, zerolog.Nop())
	p.Tick(context.Background())
	p.Wait()
	assert.Zero(t, calls.Load())
}
