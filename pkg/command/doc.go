// Package command implements reversible commands and the bounded undo/redo
// history they live in.
//
// # Overview
//
// A [Command] wraps an [Effect], the concrete mutation supplied by callers,
// and enforces the legal lifecycle around it:
//
//	created (detached) -> attached to a Stack -> executed (1..N times)
//	  -> closed (Continuous only) -> undone <-> redone
//
// [Immediate] commands close inside their first Execute. [Continuous]
// commands stay open across repeated Execute calls (a slider drag, a brush
// stroke) until exactly one Close. Calling an operation outside its legal
// window returns an INVALID_STATE error from [errors]; callers are expected
// to respect the state machine rather than recover from these.
//
// # Stack
//
// A [Stack] owns an ordered, bounded list of commands and a current index.
// At most one command is open, and it is always the most recent. Adding a
// command after undoing discards every entry past the current index:
//
//	s := command.NewStack(lk)
//	s.Add(c1); c1.Execute()
//	s.Add(c2); c2.Execute()
//	s.Undo()               // current = c1
//	s.Add(c3); c3.Execute() // c2 is gone, CanRedo() == false
//
// When the history exceeds its limit the oldest entry is evicted and the
// remaining indices shift down by one.
//
// # Locking
//
// The stack shares a [lock.Lock] with the graph evaluator. While the lock
// is engaged, Execute, Close, Undo and Redo are silent no-ops, CanUndo and
// CanRedo report false, and Add refuses new commands with a BUSY error.
// Lock contention is a "busy" signal, not a fault: UIs poll CanUndo/CanRedo
// or subscribe to change notifications and disable controls meanwhile.
//
// # Composite Commands
//
// [NewMulti] groups detached commands into one history entry. Its kind is
// Immediate only if every child is; lifecycle calls are delegated in order
// (reverse order for Undo), skipping children that are already closed.
//
// # Concurrency
//
// Commands and stacks are not safe for concurrent use. The engine routes
// every call through a single-threaded loop (see package loop).
//
// [errors]: github.com/matzehuels/cookgraph/pkg/errors
// [lock.Lock]: github.com/matzehuels/cookgraph/pkg/lock
package command
