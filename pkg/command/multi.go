package command

import (
	"errors"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

// NewMulti groups children into a single composite command named name.
//
// The composite is Immediate only if every child is Immediate. Execute and
// Close visit children in order, skipping children that are already
// closed; Undo visits them in reverse order and Redo in order. Children
// must be detached and not owned by another composite; the composite owns
// them from now on and they cannot be added to a stack themselves.
func NewMulti(name string, children ...*Command) (*Command, error) {
	kind := Immediate
	for _, ch := range children {
		if ch.stack != nil || ch.parent != nil || ch.dropped {
			return nil, errs.InvalidState("command %q cannot join composite %q: already owned", ch.name, name)
		}
		if ch.kind == Continuous {
			kind = Continuous
		}
	}

	m := &multi{children: append([]*Command(nil), children...)}
	c := New(name, kind, m)
	for _, ch := range m.children {
		ch.parent = c
	}
	return c, nil
}

// Children returns the commands grouped by a composite, or nil for a plain
// command.
func (c *Command) Children() []*Command {
	if m, ok := c.effect.(*multi); ok {
		return append([]*Command(nil), m.children...)
	}
	return nil
}

type multi struct {
	children []*Command
}

// Execute runs the open children in order. If a child fails, the
// Immediate children this call closed are undone in reverse order and
// reopened, so the composite is left as it was before the call.
func (m *multi) Execute(args ...any) error {
	var closed []*Command
	for _, ch := range m.children {
		if !ch.open {
			continue
		}
		if err := ch.Execute(args...); err != nil {
			return rollback(err, closed)
		}
		if !ch.open {
			closed = append(closed, ch)
		}
	}
	return nil
}

// rollback undoes closed in reverse order and reopens each child. It
// returns cause, joined with the first rollback failure if any.
func rollback(cause error, closed []*Command) error {
	for i := len(closed) - 1; i >= 0; i-- {
		ch := closed[i]
		if err := ch.Undo(); err != nil {
			return errors.Join(cause, err)
		}
		ch.open = true
	}
	return cause
}

func (m *multi) Close() error {
	for _, ch := range m.children {
		if !ch.open {
			continue
		}
		if ch.kind == Immediate {
			return errs.InvalidState("close composite: child %q was never executed", ch.name)
		}
		if err := ch.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Undo reverts the children in reverse order. If a child fails, the
// children already reverted are redone so the composite stays done.
func (m *multi) Undo() error {
	for i := len(m.children) - 1; i >= 0; i-- {
		if err := m.children[i].Undo(); err != nil {
			for _, ch := range m.children[i+1:] {
				if rerr := ch.Redo(); rerr != nil {
					return errors.Join(err, rerr)
				}
			}
			return err
		}
	}
	return nil
}

// Redo re-applies the children in order. If a child fails, the children
// already re-applied are undone again so the composite stays undone.
func (m *multi) Redo() error {
	for i, ch := range m.children {
		if err := ch.Redo(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := m.children[j].Undo(); uerr != nil {
					return errors.Join(err, uerr)
				}
			}
			return err
		}
	}
	return nil
}
