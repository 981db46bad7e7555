package scenario

import (
	"fmt"

	"github.com/matzehuels/cookgraph/internal/nodes"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/network"
	"github.com/matzehuels/cookgraph/pkg/session"
)

// Build populates the session's network directly, outside the undo
// history, and settles the initial cook.
func Build(s *session.Session, sc *Scenario) error {
	net := s.Network()
	for _, n := range sc.Nodes {
		kind := nodes.Find(n.Kind)
		if kind == nil {
			return errs.New(errs.ErrCodeInvalidInput, "node %q: unknown kind %q", n.ID, n.Kind)
		}
		if _, err := net.AddNode(kind.Spec(n.ID, n.Settings)); err != nil {
			return fmt.Errorf("add node %s: %w", n.ID, err)
		}
		if n.Locked {
			if err := net.SetLocked(n.ID, true); err != nil {
				return err
			}
		}
	}
	for _, l := range sc.Links {
		out, in, err := Ports(net, l.From, l.To)
		if err != nil {
			return err
		}
		if _, err := net.Connect(out, in); err != nil {
			return fmt.Errorf("link %s -> %s: %w", l.From, l.To, err)
		}
	}
	if sc.Visible != "" {
		if err := net.SetVisible(sc.Visible); err != nil {
			return fmt.Errorf("visible: %w", err)
		}
	}
	s.Settle()
	return nil
}

// Output resolves a "node.port" reference to an output port.
func Output(net *network.Network, ref string) (*network.Output, error) {
	id, port, err := SplitRef(ref)
	if err != nil {
		return nil, err
	}
	n := net.Node(id)
	if n == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	out := n.Output(port)
	if out == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "node %q has no output %q", id, port)
	}
	return out, nil
}

// Input resolves a "node.port" reference to an input port.
func Input(net *network.Network, ref string) (network.Sink, error) {
	id, port, err := SplitRef(ref)
	if err != nil {
		return nil, err
	}
	n := net.Node(id)
	if n == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}
	in := n.Input(port)
	if in == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "node %q has no input %q", id, port)
	}
	return in, nil
}

// Ports resolves a from/to reference pair.
func Ports(net *network.Network, from, to string) (*network.Output, network.Sink, error) {
	out, err := Output(net, from)
	if err != nil {
		return nil, nil, err
	}
	in, err := Input(net, to)
	if err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

// FindLink returns the first link from one reference to another.
func FindLink(net *network.Network, from, to string) (*network.Link, error) {
	out, in, err := Ports(net, from, to)
	if err != nil {
		return nil, err
	}
	for _, l := range in.Links() {
		if l.From() == out {
			return l, nil
		}
	}
	return nil, errs.New(errs.ErrCodeNotFound, "no link %s -> %s", from, to)
}
