// Package lock provides the counting mutual-exclusion gate shared by the
// command history and the graph evaluator.
//
// # Overview
//
// A [Lock] is engaged while at least one [Key] is outstanding. Acquiring
// never blocks: callers check [Lock.Locked] and treat an engaged lock as a
// "busy" signal rather than waiting on it. This matches the cooperative,
// single-threaded model of the engine, where the evaluator holds a key for
// the lifetime of a cook chain and commands short-circuit while it does.
//
// # Pipes
//
// Locks can be piped into one another with [Lock.Pipe]. Every key issued by
// the upstream lock acquires a sub-key on each piped lock, and freeing the
// key frees those sub-keys again:
//
//	gesture := lock.New()
//	gesture.Pipe(history)
//
//	key := gesture.Lock() // history.Locked() == true
//	gesture.Free(key)     // history.Locked() == false
//
// Pipes form a DAG and are established once. No cycle detection is done;
// piping a lock into itself (directly or transitively) recurses forever.
//
// # Concurrency
//
// Lock is safe for concurrent use. Watch callbacks run on the goroutine
// that caused the transition, after the internal mutex is released.
package lock

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

// Key is an opaque token returned by [Lock.Lock]. It must be presented to
// [Lock.Free] to release that acquisition.
type Key string

// Lock is a counting gate with pipeable sub-locks.
//
// The zero value is not usable - use New.
type Lock struct {
	mu       sync.Mutex
	keys     map[Key]map[*Lock]Key // issued key -> sub-keys per piped lock
	pipes    []*Lock
	watchers []func(locked bool)
}

// New creates an unlocked Lock with no pipes.
func New() *Lock {
	return &Lock{keys: make(map[Key]map[*Lock]Key)}
}

// Lock issues a new key and engages the lock. It also acquires a sub-key
// from every piped lock and stores it alongside the key.
func (l *Lock) Lock() Key {
	l.mu.Lock()
	pipes := slices.Clone(l.pipes)
	l.mu.Unlock()

	subs := make(map[*Lock]Key, len(pipes))
	for _, p := range pipes {
		subs[p] = p.Lock()
	}

	key := Key(uuid.NewString())

	l.mu.Lock()
	wasLocked := len(l.keys) > 0
	l.keys[key] = subs
	watchers := l.snapshotWatchers(!wasLocked)
	l.mu.Unlock()

	notify(watchers, true)
	return key
}

// Free releases key and the sub-keys it acquired on piped locks.
// Returns an UNKNOWN_KEY error if key was never issued or is already free.
func (l *Lock) Free(key Key) error {
	l.mu.Lock()
	subs, ok := l.keys[key]
	if !ok {
		l.mu.Unlock()
		return errs.New(errs.ErrCodeUnknownKey, "lock key %q is not outstanding", key)
	}
	delete(l.keys, key)
	watchers := l.snapshotWatchers(len(l.keys) == 0)
	l.mu.Unlock()

	var firstErr error
	for p, sub := range subs {
		if err := p.Free(sub); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	notify(watchers, false)
	return firstErr
}

// Pipe registers other as a downstream lock that is co-locked and co-freed
// with l from now on. Piping the same lock twice is a no-op.
// Keys issued before the pipe existed carry no sub-key for other.
func (l *Lock) Pipe(other *Lock) {
	if other == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.pipes {
		if p == other {
			return
		}
	}
	l.pipes = append(l.pipes, other)
}

// Locked reports whether at least one key is outstanding.
func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys) > 0
}

// Outstanding returns the number of keys currently issued.
func (l *Lock) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Watch registers fn to be called whenever the lock transitions between
// unlocked and locked. fn receives the new state.
func (l *Lock) Watch(fn func(locked bool)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.watchers = append(l.watchers, fn)
}

// snapshotWatchers returns a copy of the watchers if transitioned is true.
// Must be called with l.mu held.
func (l *Lock) snapshotWatchers(transitioned bool) []func(bool) {
	if !transitioned || len(l.watchers) == 0 {
		return nil
	}
	return slices.Clone(l.watchers)
}

func notify(watchers []func(bool), locked bool) {
	for _, fn := range watchers {
		fn(locked)
	}
}
