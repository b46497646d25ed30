// Package schedule runs a function at a fixed interval until stopped.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is a cancellable periodic task. A Task can be started again after
// Stop.
type Task struct {
	interval  time.Duration
	immediate bool
	fn        func(context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Task
type Option func(*Task)

// Immediate makes the task fire once right after Start instead of waiting a
// full interval
func Immediate() Option {
	return func(t *Task) { t.immediate = true }
}

// New creates a stopped task calling fn every interval
func New(interval time.Duration, fn func(context.Context), opts ...Option) *Task {
	if interval <= 0 {
		interval = time.Second
	}
	t := &Task{interval: interval, fn: fn}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Interval returns the tick interval
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Start arms the task. It returns false if the task is already running.
// The task stops when ctx is cancelled or Stop is called.
func (t *Task) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(ctx, done)
	return true
}

func (t *Task) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if t.immediate {
		t.fn(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			t.fn(ctx)
		}
	}
}

// Stop cancels the task. A tick already in progress runs to completion but no
// further tick starts. It is safe to call on a stopped task and from inside fn.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Done returns a channel closed when the most recently started run loop has
// exited, or nil if the task was never started
func (t *Task) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Running reports whether the task is armed
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
