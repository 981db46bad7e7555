// Package loop provides the single-threaded cooperative executor that owns
// all engine mutation, plus a small Future type for asynchronous results.
//
// A [Loop] is a FIFO task queue. Exactly one goroutine drains it at a time,
// either with [Loop.Run] (long-lived, as in the HTTP server and TUI) or
// [Loop.Drain] (run until idle, as in tests and the batch CLI). Any
// goroutine may [Loop.Post] work; [Loop.Do] posts and blocks until the
// task has run, which is how HTTP handlers reach the engine.
//
// Suspension only ever happens between tasks. A multi-step operation, such
// as an asynchronous cook chain, posts one task per step so that other
// tasks interleave with it.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
)

// Loop is a single-threaded task queue.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It is safe to call from any goroutine, including from
// inside a running task.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Drain runs queued tasks on the calling goroutine, including tasks they
// post, until the queue is empty. It returns the number of tasks run.
func (l *Loop) Drain() int {
	n := 0
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Run executes tasks on the calling goroutine until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Do posts fn and waits for it to run. If ctx is done before the loop
// reaches the task, fn is skipped and Do returns ctx.Err(). Once fn has
// started Do waits for it, so the returned error always reflects whether
// fn ran. Do must not be called from a loop task: the loop would wait on
// itself.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	const (
		pending int32 = iota
		started
		skipped
	)
	var state atomic.Int32
	f := NewFuture[struct{}]()
	l.Post(func() {
		if ctx.Err() != nil || !state.CompareAndSwap(pending, started) {
			f.Resolve(struct{}{}, ctx.Err())
			return
		}
		f.Resolve(struct{}{}, fn())
	})

	select {
	case <-f.Done():
	case <-ctx.Done():
		if state.CompareAndSwap(pending, skipped) {
			return ctx.Err()
		}
		<-f.Done()
	}
	_, err := f.Result()
	return err
}
