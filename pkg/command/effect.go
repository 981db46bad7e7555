package command

import (
	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

// Func adapts plain functions to [Effect]. OnRedo defaults to calling
// OnExecute with no arguments; OnClose is optional.
type Func struct {
	OnExecute func(args ...any) error
	OnUndo    func() error
	OnRedo    func() error
	OnClose   func() error
}

func (f Func) Execute(args ...any) error {
	if f.OnExecute == nil {
		return nil
	}
	return f.OnExecute(args...)
}

func (f Func) Undo() error {
	if f.OnUndo == nil {
		return errs.New(errs.ErrCodeInternal, "func effect has no undo")
	}
	return f.OnUndo()
}

func (f Func) Redo() error {
	if f.OnRedo != nil {
		return f.OnRedo()
	}
	return f.Execute()
}

func (f Func) Close() error {
	if f.OnClose == nil {
		return nil
	}
	return f.OnClose()
}

// Assign is an Effect that writes a value to a variable. Execute remembers
// the previous value the first time it runs; for Continuous commands each
// further Execute may pass a replacement value of type T as args[0].
type Assign[T any] struct {
	target *T
	value  T
	prev   T
	saved  bool
}

// NewAssign returns an Assign effect setting *target to value.
func NewAssign[T any](target *T, value T) *Assign[T] {
	return &Assign[T]{target: target, value: value}
}

func (a *Assign[T]) Execute(args ...any) error {
	if !a.saved {
		a.prev = *a.target
		a.saved = true
	}
	if len(args) > 0 {
		v, ok := args[0].(T)
		if !ok {
			return errs.New(errs.ErrCodeInvalidInput, "assign: argument has type %T", args[0])
		}
		a.value = v
	}
	*a.target = a.value
	return nil
}

func (a *Assign[T]) Undo() error {
	*a.target = a.prev
	return nil
}

func (a *Assign[T]) Redo() error {
	*a.target = a.value
	return nil
}
