package command

import (
	"slices"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/lock"
	"github.com/matzehuels/cookgraph/pkg/observability"
)

// DefaultLimit is the history capacity used when WithLimit is not given.
const DefaultLimit = 100

// Option configures a Stack.
type Option func(*Stack)

// WithLimit bounds the number of commands kept in history. Values below 1
// are ignored.
func WithLimit(n int) Option {
	return func(s *Stack) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger used for history transitions.
func WithLogger(l *log.Logger) Option {
	return func(s *Stack) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks overrides the globally registered history hooks.
func WithHooks(h observability.HistoryHooks) Option {
	return func(s *Stack) {
		if h != nil {
			s.hooks = h
		}
	}
}

// Stack is a linear, bounded, branch-discarding undo/redo history.
//
// The zero value is not usable - use NewStack.
// Stack is not safe for concurrent use.
type Stack struct {
	lock      *lock.Lock
	entries   []*Command
	index     int // -1 when empty or everything is undone
	limit     int
	listeners []func()
	logger    *log.Logger
	hooks     observability.HistoryHooks
}

// NewStack creates an empty history guarded by lk. A nil lk gets a fresh
// private lock. Lock transitions are forwarded as change notifications,
// since they flip CanUndo and CanRedo.
func NewStack(lk *lock.Lock, opts ...Option) *Stack {
	if lk == nil {
		lk = lock.New()
	}
	s := &Stack{
		lock:   lk,
		index:  -1,
		limit:  DefaultLimit,
		logger: log.Default(),
		hooks:  observability.History(),
	}
	for _, opt := range opts {
		opt(s)
	}
	lk.Watch(func(bool) { s.notify() })
	return s
}

// Lock returns the lock shared with the evaluator.
func (s *Stack) Lock() *lock.Lock { return s.lock }

// Len returns the number of commands in history.
func (s *Stack) Len() int { return len(s.entries) }

// Index returns the current index, or -1.
func (s *Stack) Index() int { return s.index }

// Limit returns the history capacity.
func (s *Stack) Limit() int { return s.limit }

// Entries returns a copy of the history, oldest first.
func (s *Stack) Entries() []*Command { return slices.Clone(s.entries) }

// Current returns the command at the current index, or nil.
func (s *Stack) Current() *Command {
	if s.index < 0 || s.index >= len(s.entries) {
		return nil
	}
	return s.entries[s.index]
}

// Next returns the command after the current index, or nil.
func (s *Stack) Next() *Command {
	i := s.index + 1
	if i < 0 || i >= len(s.entries) {
		return nil
	}
	return s.entries[i]
}

// Subscribe registers fn as a change listener. It is called after every
// add, done, undo, redo, abort, clear and lock transition.
func (s *Stack) Subscribe(fn func()) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// Add appends cmd to the history, discarding every entry past the current
// index, and attaches the stack to it.
//
// Add fails with INVALID_STATE if cmd is already attached or if the
// current command is still open. While the lock is engaged Add fails with
// BUSY and leaves cmd detached, so the caller can retry once the lock
// clears. When the history exceeds its limit the oldest entries are
// evicted.
func (s *Stack) Add(cmd *Command) error {
	if cmd == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil command")
	}
	if cur := s.Current(); cur != nil && cur.open {
		return errs.InvalidState("cannot add %q: command %q is still open", cmd.name, cur.name)
	}
	if s.lock.Locked() {
		s.hooks.OnRejected()
		s.logger.Debug("rejected command while locked", "command", cmd.name)
		return errs.New(errs.ErrCodeBusy, "cannot add %q while locked", cmd.name)
	}
	if err := cmd.attach(s); err != nil {
		return err
	}

	if discarded := len(s.entries) - (s.index + 1); discarded > 0 {
		s.logger.Debug("discarded redo branch", "commands", discarded)
		dropAll(s.entries[s.index+1:])
		s.entries = s.entries[:s.index+1]
	}
	s.entries = append(s.entries, cmd)

	if over := len(s.entries) - s.limit; over > 0 {
		dropAll(s.entries[:over])
		s.entries = slices.Delete(s.entries, 0, over)
		s.hooks.OnEvict(over)
		s.logger.Debug("evicted commands", "commands", over)
	}
	s.index = len(s.entries) - 1

	cmd.On(EventDone, s.onDone)
	cmd.On(EventUndo, s.onUndo)
	cmd.On(EventRedo, s.onRedo)

	s.logger.Debug("added command", "command", cmd.name, "kind", cmd.kind, "index", s.index)
	s.notify()
	return nil
}

// CanUndo reports whether Undo would apply. Always false while locked.
func (s *Stack) CanUndo() bool {
	cur := s.Current()
	return cur != nil && cur.CanUndo()
}

// CanRedo reports whether Redo would apply. Always false while locked.
func (s *Stack) CanRedo() bool {
	next := s.Next()
	return next != nil && next.CanRedo()
}

// Undo reverts the current command. It is a no-op when CanUndo is false.
func (s *Stack) Undo() error {
	if !s.CanUndo() {
		return nil
	}
	return s.Current().Undo()
}

// Redo re-applies the next command. It is a no-op when CanRedo is false.
func (s *Stack) Redo() error {
	if !s.CanRedo() {
		return nil
	}
	return s.Next().Redo()
}

// Abort removes the current command if it is still open, for example an
// Immediate command whose effect failed or a drag the user cancelled.
// No effect is called; reverting partial effects is the caller's job.
// The aborted command is dropped and cannot be added again.
func (s *Stack) Abort() error {
	cur := s.Current()
	if cur == nil || !cur.open {
		return errs.InvalidState("abort: no open command")
	}
	cur.drop()
	s.entries = s.entries[:s.index]
	s.index--
	s.logger.Debug("aborted command", "command", cur.name)
	s.notify()
	return nil
}

// Clear discards the whole history.
func (s *Stack) Clear() {
	dropAll(s.entries)
	s.entries = nil
	s.index = -1
	s.notify()
}

func (s *Stack) onDone(c *Command) {
	if i := s.position(c); i >= 0 {
		s.index = i
	}
	s.hooks.OnDone(c.kind.String())
	s.notify()
}

func (s *Stack) onUndo(c *Command) {
	if i := s.position(c); i >= 0 {
		s.index = i - 1
	}
	s.hooks.OnUndo(c.kind.String())
	s.logger.Debug("undo", "command", c.name, "index", s.index)
	s.notify()
}

func (s *Stack) onRedo(c *Command) {
	if i := s.position(c); i >= 0 {
		s.index = i
	}
	s.hooks.OnRedo(c.kind.String())
	s.logger.Debug("redo", "command", c.name, "index", s.index)
	s.notify()
}

func dropAll(cmds []*Command) {
	for _, c := range cmds {
		c.drop()
	}
}

// position returns the index of c, or -1.
func (s *Stack) position(c *Command) int {
	return slices.Index(s.entries, c)
}

func (s *Stack) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}
