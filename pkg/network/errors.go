package network

import (
	"errors"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

var (
	// ErrArity is returned when a cooker produces a different number of
	// values than the node has outputs.
	ErrArity = errors.New("cooker returned wrong number of outputs")
)

func validateSpec(spec NodeSpec) error {
	if err := errs.ValidateIdentifier("node id", spec.ID); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, p := range append(append([]PortSpec(nil), spec.Inputs...), spec.Outputs...) {
		if p.Name == "" {
			return errs.New(errs.ErrCodeInvalidInput, "node %q: empty port name", spec.ID)
		}
		if seen[p.Name] {
			return errs.New(errs.ErrCodeDuplicate, "node %q: duplicate port %q", spec.ID, p.Name)
		}
		seen[p.Name] = true
	}
	for _, p := range spec.Outputs {
		if p.Multi {
			return errs.New(errs.ErrCodeInvalidInput, "node %q: output %q cannot be multi", spec.ID, p.Name)
		}
	}
	return nil
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "node %q not found", id)
}
