package command

import (
	"fmt"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

// Kind determines when a command closes.
type Kind int

const (
	// Immediate commands apply their effect once and close inside Execute.
	Immediate Kind = iota
	// Continuous commands accept repeated Execute calls until Close.
	Continuous
)

// String returns "immediate" or "continuous".
func (k Kind) String() string {
	switch k {
	case Immediate:
		return "immediate"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event identifies a lifecycle transition a listener can subscribe to.
type Event int

const (
	// EventDone fires once, when the command closes with its effect applied.
	EventDone Event = iota
	// EventUndo fires after every successful Undo.
	EventUndo
	// EventRedo fires after every successful Redo.
	EventRedo
)

func (e Event) String() string {
	switch e {
	case EventDone:
		return "done"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Effect is the mutation a command applies. Implementations supply the
// forward effect (Execute, possibly called repeatedly for Continuous
// commands) and its inverse pair Undo/Redo. The Command wrapping an Effect
// guarantees these are only called in legal states.
type Effect interface {
	Execute(args ...any) error
	Undo() error
	Redo() error
}

// Closer is implemented by effects that need to finalize when a Continuous
// command closes (for example, committing the last dragged value).
type Closer interface {
	Close() error
}

// Command is a unit of reversible mutation.
//
// A command that leaves its stack's history (branch discard, eviction,
// Abort or Clear) is dropped: its lifecycle methods fail with
// INVALID_STATE from then on.
//
// The zero value is not usable - use New or NewMulti.
type Command struct {
	name   string
	kind   Kind
	effect Effect

	open    bool
	done    bool
	busy    bool
	dropped bool // discarded, evicted or aborted from its stack

	stack     *Stack
	parent    *Command // set when owned by a composite
	listeners map[Event][]func(*Command)
}

// New creates a detached, open command of the given kind around effect.
// The name is used in logs and error messages only.
func New(name string, kind Kind, effect Effect) *Command {
	return &Command{
		name:      name,
		kind:      kind,
		effect:    effect,
		open:      true,
		listeners: make(map[Event][]func(*Command)),
	}
}

// Name returns the display name given to New.
func (c *Command) Name() string { return c.name }

// Kind returns the command kind.
func (c *Command) Kind() Kind { return c.kind }

// Open reports whether the command still accepts Execute calls.
func (c *Command) Open() bool { return c.open }

// Done reports whether the command's forward effect is currently applied.
func (c *Command) Done() bool { return c.done }

// Stack returns the stack the command is attached to, or nil.
func (c *Command) Stack() *Stack { return c.stack }

// On registers fn for event. Listeners run synchronously after the
// transition, in registration order.
func (c *Command) On(event Event, fn func(*Command)) {
	c.listeners[event] = append(c.listeners[event], fn)
}

// locked reports whether the owning stack's lock is engaged.
// Detached commands are never locked.
func (c *Command) locked() bool {
	return c.stack != nil && c.stack.lock.Locked()
}

// Execute applies the forward effect with args.
//
// Execute is a no-op while the owning stack's lock is engaged. It fails
// with INVALID_STATE if the command is closed or already mid-operation.
// An Immediate command closes and fires EventDone on success. If the
// effect fails the error is wrapped with EFFECT_FAILED and the command
// keeps its state.
func (c *Command) Execute(args ...any) error {
	if c.dropped {
		return errs.InvalidState("execute on dropped command %q", c.name)
	}
	if c.locked() {
		return nil
	}
	if !c.open {
		return errs.InvalidState("execute on closed command %q", c.name)
	}
	if err := c.enter("execute"); err != nil {
		return err
	}
	defer c.leave()

	if err := c.effect.Execute(args...); err != nil {
		return errs.Wrap(errs.ErrCodeEffectFailed, err, "execute %q", c.name)
	}
	if c.kind == Immediate {
		c.finish()
	}
	return nil
}

// Close finalizes an open Continuous command, calling the effect's Closer
// if it has one, and fires EventDone.
//
// Close is a no-op while locked. It fails with INVALID_STATE for Immediate
// commands and for commands that are already closed.
func (c *Command) Close() error {
	if c.dropped {
		return errs.InvalidState("close on dropped command %q", c.name)
	}
	if c.locked() {
		return nil
	}
	if c.kind != Continuous {
		return errs.InvalidState("close on %s command %q", c.kind, c.name)
	}
	if !c.open {
		return errs.InvalidState("close on closed command %q", c.name)
	}
	if err := c.enter("close"); err != nil {
		return err
	}
	defer c.leave()

	if closer, ok := c.effect.(Closer); ok {
		if err := closer.Close(); err != nil {
			return errs.Wrap(errs.ErrCodeEffectFailed, err, "close %q", c.name)
		}
	}
	c.finish()
	return nil
}

// Undo reverts the forward effect and fires EventUndo.
//
// Undo is a no-op while locked. It fails with INVALID_STATE while the
// command is open or already undone.
func (c *Command) Undo() error {
	if c.dropped {
		return errs.InvalidState("undo on dropped command %q", c.name)
	}
	if c.locked() {
		return nil
	}
	if c.open {
		return errs.InvalidState("undo on open command %q", c.name)
	}
	if !c.done {
		return errs.InvalidState("undo on undone command %q", c.name)
	}
	if err := c.enter("undo"); err != nil {
		return err
	}
	defer c.leave()

	if err := c.effect.Undo(); err != nil {
		return errs.Wrap(errs.ErrCodeEffectFailed, err, "undo %q", c.name)
	}
	c.done = false
	c.fire(EventUndo)
	return nil
}

// Redo re-applies the forward effect and fires EventRedo.
//
// Redo is a no-op while locked. It fails with INVALID_STATE while the
// command is open or already done.
func (c *Command) Redo() error {
	if c.dropped {
		return errs.InvalidState("redo on dropped command %q", c.name)
	}
	if c.locked() {
		return nil
	}
	if c.open {
		return errs.InvalidState("redo on open command %q", c.name)
	}
	if c.done {
		return errs.InvalidState("redo on done command %q", c.name)
	}
	if err := c.enter("redo"); err != nil {
		return err
	}
	defer c.leave()

	if err := c.effect.Redo(); err != nil {
		return errs.Wrap(errs.ErrCodeEffectFailed, err, "redo %q", c.name)
	}
	c.done = true
	c.fire(EventRedo)
	return nil
}

// CanUndo reports whether Undo would apply: in history, not locked,
// closed and done.
func (c *Command) CanUndo() bool {
	return !c.dropped && !c.locked() && !c.open && c.done
}

// CanRedo reports whether Redo would apply: in history, not locked,
// closed and not done.
func (c *Command) CanRedo() bool {
	return !c.dropped && !c.locked() && !c.open && !c.done
}

// Dropped reports whether the command has left its stack's history.
func (c *Command) Dropped() bool { return c.dropped }

func (c *Command) enter(op string) error {
	if c.busy {
		return errs.InvalidState("%s re-entered command %q", op, c.name)
	}
	c.busy = true
	return nil
}

func (c *Command) leave() { c.busy = false }

func (c *Command) finish() {
	c.open = false
	c.done = true
	c.fire(EventDone)
}

func (c *Command) fire(event Event) {
	for _, fn := range c.listeners[event] {
		fn(c)
	}
}

// drop detaches c from its stack for good. Every later lifecycle call
// fails with INVALID_STATE.
func (c *Command) drop() {
	c.dropped = true
	c.stack = nil
}

// attach sets the owning stack.
func (c *Command) attach(s *Stack) error {
	if c.stack != nil || c.dropped {
		return errs.InvalidState("command %q is already attached to a stack", c.name)
	}
	if c.parent != nil {
		return errs.InvalidState("command %q is owned by composite %q", c.name, c.parent.name)
	}
	c.stack = s
	return nil
}
