package network

import (
	"context"
	"maps"
)

// Settings is a node's opaque key/value parameter bag.
type Settings map[string]any

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	if s == nil {
		return Settings{}
	}
	return maps.Clone(s)
}

// Inputs is the ordered list of input values handed to a Cooker. An Input
// contributes its linked value (or nil), a MultiInput a []any.
type Inputs []any

// Cooker computes a node's output values from its input values and
// settings. It must return exactly one value per output.
type Cooker interface {
	Cook(ctx context.Context, in Inputs, settings Settings) ([]any, error)
}

// CookFunc adapts a function to the Cooker interface.
type CookFunc func(ctx context.Context, in Inputs, settings Settings) ([]any, error)

// Cook calls f.
func (f CookFunc) Cook(ctx context.Context, in Inputs, settings Settings) ([]any, error) {
	return f(ctx, in, settings)
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	ID       string
	Kind     string
	Inputs   []PortSpec
	Outputs  []PortSpec
	Settings Settings
	Cooker   Cooker
}

// Node is a unit of computation in a Network.
type Node struct {
	id       string
	kind     string
	inputs   []Sink
	outputs  []*Output
	settings Settings
	cooker   Cooker

	dirtyInput    bool
	dirtySettings bool
	locked        bool
	visible       bool
	selected      bool

	network *Network
}

// NewNode builds a detached node from spec. A fresh node is dirty: it has
// never been cooked. Use [Network.Insert] to add it to a network.
func NewNode(spec NodeSpec) (*Node, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	n := &Node{
		id:            spec.ID,
		kind:          spec.Kind,
		settings:      spec.Settings.Clone(),
		cooker:        spec.Cooker,
		dirtySettings: true,
	}
	for _, p := range spec.Inputs {
		if p.Multi {
			n.inputs = append(n.inputs, &MultiInput{node: n, name: p.Name, typ: p.Type})
		} else {
			n.inputs = append(n.inputs, &Input{node: n, name: p.Name, typ: p.Type})
		}
	}
	for _, p := range spec.Outputs {
		n.outputs = append(n.outputs, &Output{node: n, name: p.Name, typ: p.Type})
	}
	return n, nil
}

func (n *Node) ID() string         { return n.id }
func (n *Node) Kind() string       { return n.kind }
func (n *Node) Inputs() []Sink     { return n.inputs }
func (n *Node) Outputs() []*Output { return n.outputs }
func (n *Node) Locked() bool       { return n.locked }
func (n *Node) Visible() bool      { return n.visible }
func (n *Node) Selected() bool     { return n.selected }
func (n *Node) Network() *Network  { return n.network }

// Settings returns a copy of the node's settings.
func (n *Node) Settings() Settings { return n.settings.Clone() }

// Setting returns a single setting value.
func (n *Node) Setting(key string) (any, bool) {
	v, ok := n.settings[key]
	return v, ok
}

// Dirty reports whether the node's outputs are stale.
func (n *Node) Dirty() bool { return n.dirtyInput || n.dirtySettings }

// DirtyInput reports whether an upstream value or link changed.
func (n *Node) DirtyInput() bool { return n.dirtyInput }

// DirtySettings reports whether a setting changed.
func (n *Node) DirtySettings() bool { return n.dirtySettings }

// Input returns the input port named name, or nil.
func (n *Node) Input(name string) Sink {
	for _, in := range n.inputs {
		if in.Name() == name {
			return in
		}
	}
	return nil
}

// Output returns the output port named name, or nil.
func (n *Node) Output(name string) *Output {
	for _, out := range n.outputs {
		if out.name == name {
			return out
		}
	}
	return nil
}

// Dependencies returns the source nodes of all linked inputs, in input and
// link order, without duplicates.
func (n *Node) Dependencies() []*Node {
	var deps []*Node
	seen := make(map[*Node]bool)
	for _, in := range n.inputs {
		for _, l := range in.Links() {
			if l.from == nil {
				continue
			}
			src := l.from.node
			if !seen[src] {
				seen[src] = true
				deps = append(deps, src)
			}
		}
	}
	return deps
}

// Dependents returns the destination nodes of all outgoing links, without
// duplicates.
func (n *Node) Dependents() []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	for _, o := range n.outputs {
		for _, l := range o.links {
			if l.to == nil {
				continue
			}
			dst := l.to.Node()
			if !seen[dst] {
				seen[dst] = true
				out = append(out, dst)
			}
		}
	}
	return out
}

// Cook gathers input values, runs the cooker and writes the results to the
// outputs, which marks downstream nodes dirty. Dirty flags are cleared only
// on success. A node without a cooker just clears its flags.
func (n *Node) Cook(ctx context.Context) error {
	if n.cooker == nil {
		n.clean()
		return nil
	}
	in := make(Inputs, len(n.inputs))
	for i, s := range n.inputs {
		in[i] = s.value()
	}
	vals, err := n.cooker.Cook(ctx, in, n.settings.Clone())
	if err != nil {
		return err
	}
	if len(vals) != len(n.outputs) {
		return ErrArity
	}
	for i, out := range n.outputs {
		out.SetValue(vals[i])
	}
	n.clean()
	return nil
}

// MarkDirty flags the node as needing a cook, as if a setting changed.
func (n *Node) MarkDirty() { n.dirtySettings = true }

func (n *Node) clean() {
	n.dirtyInput = false
	n.dirtySettings = false
}
