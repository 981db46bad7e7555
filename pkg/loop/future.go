package loop

import (
	"context"
	"sync"
)

// Future is a value that becomes available later. The first call to
// Resolve wins; later calls are ignored.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns an unsettled future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that is already settled with v and err.
func Resolved[T any](v T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v, err)
	return f
}

// Resolve settles the future and runs OnSettled callbacks on the calling
// goroutine. It reports whether this call settled the future.
func (f *Future[T]) Resolve(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value, f.err = v, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(v, err)
	}
	return true
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Settled reports whether the future has a result.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the settled value. Before settlement it returns the zero
// value and a nil error; check Settled first.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Wait blocks until the future settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnSettled registers fn to run with the result. If the future is already
// settled, fn runs immediately on the calling goroutine.
func (f *Future[T]) OnSettled(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	fn(v, err)
}
