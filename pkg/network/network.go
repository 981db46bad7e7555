package network

import (
	"slices"

	"github.com/google/uuid"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

// Network owns a set of nodes and the links between them.
type Network struct {
	nodes     map[string]*Node
	order     []*Node
	links     []*Link
	visible   *Node
	listeners []func()
}

// ConnectResult reports the link created by a connect and the link it
// displaced from a single-link Input, if any.
type ConnectResult struct {
	Link     *Link
	Replaced *Link
}

// Detached is a link removed together with a node, remembered with its
// former slot so that it can be restored in place with [Network.Attach].
type Detached struct {
	Link *Link
	Slot int
}

// New creates an empty network.
func New() *Network {
	return &Network{nodes: make(map[string]*Node)}
}

// OnChange registers fn to run after every structural, setting or flag
// change.
func (net *Network) OnChange(fn func()) {
	net.listeners = append(net.listeners, fn)
}

func (net *Network) notify() {
	for _, fn := range net.listeners {
		fn()
	}
}

// AddNode creates a node from spec and adds it.
func (net *Network) AddNode(spec NodeSpec) (*Node, error) {
	n, err := NewNode(spec)
	if err != nil {
		return nil, err
	}
	if err := net.Insert(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Insert adds a detached node, such as one returned by [Network.RemoveNode]
// earlier. Its links are not restored; use [Network.Attach] for that.
func (net *Network) Insert(n *Node) error {
	if n == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil node")
	}
	if n.network != nil {
		return errs.InvalidState("node %q already belongs to a network", n.id)
	}
	if _, ok := net.nodes[n.id]; ok {
		return errs.New(errs.ErrCodeDuplicate, "node %q already exists", n.id)
	}
	n.network = net
	net.nodes[n.id] = n
	net.order = append(net.order, n)
	net.notify()
	return nil
}

// RemoveNode detaches every link touching the node, then removes it. The
// detached links are returned ordered by slot, ready to be re-attached in
// sequence.
func (net *Network) RemoveNode(id string) (*Node, []Detached, error) {
	n, ok := net.nodes[id]
	if !ok {
		return nil, nil, notFound(id)
	}

	var detached []Detached
	seen := make(map[*Link]bool)
	collect := func(l *Link) {
		if !seen[l] {
			seen[l] = true
			detached = append(detached, Detached{Link: l, Slot: l.Slot()})
		}
	}
	for _, in := range n.inputs {
		for _, l := range in.Links() {
			collect(l)
		}
	}
	for _, out := range n.outputs {
		for _, l := range out.links {
			collect(l)
		}
	}
	for _, d := range detached {
		net.detach(d.Link)
	}
	slices.SortStableFunc(detached, func(a, b Detached) int { return a.Slot - b.Slot })

	if net.visible == n {
		net.visible = nil
		n.visible = false
	}
	delete(net.nodes, id)
	net.order = slices.DeleteFunc(net.order, func(x *Node) bool { return x == n })
	n.network = nil
	net.notify()
	return n, detached, nil
}

// Node returns the node with the given ID, or nil.
func (net *Network) Node(id string) *Node { return net.nodes[id] }

// Nodes returns all nodes in insertion order.
func (net *Network) Nodes() []*Node { return slices.Clone(net.order) }

// Links returns all links in creation order.
func (net *Network) Links() []*Link { return slices.Clone(net.links) }

// Link returns the link with the given ID, or nil.
func (net *Network) Link(id string) *Link {
	for _, l := range net.links {
		if l.id == id {
			return l
		}
	}
	return nil
}

// Visible returns the node whose output is materialized, or nil.
func (net *Network) Visible() *Node { return net.visible }

// Connect links out to in. Connecting to an Input that already has a link
// replaces it; the displaced link is reported in the result.
func (net *Network) Connect(out *Output, in Sink) (ConnectResult, error) {
	if out == nil || in == nil {
		return ConnectResult{}, errs.New(errs.ErrCodeInvalidInput, "connect: missing endpoint")
	}
	l := &Link{id: uuid.NewString(), from: out, to: in}
	return net.attach(l, -1)
}

// Complete attaches the missing end of a pending link. endpoint must be an
// *Output for a link started at an input, and a Sink otherwise.
func (net *Network) Complete(l *Link, endpoint any) (ConnectResult, error) {
	if l == nil || !l.Pending() {
		return ConnectResult{}, errs.InvalidState("link is not pending")
	}
	if l.from == nil && l.to == nil {
		return ConnectResult{}, errs.InvalidState("pending link has no endpoint")
	}
	candidate := *l
	switch {
	case l.from == nil:
		out, ok := endpoint.(*Output)
		if !ok || out == nil {
			return ConnectResult{}, errs.New(errs.ErrCodeInvalidInput, "pending link needs an output, got %T", endpoint)
		}
		candidate.from = out
	default:
		in, ok := endpoint.(Sink)
		if !ok || in == nil {
			return ConnectResult{}, errs.New(errs.ErrCodeInvalidInput, "pending link needs an input, got %T", endpoint)
		}
		candidate.to = in
	}
	if err := net.check(&candidate); err != nil {
		return ConnectResult{}, err
	}
	l.from, l.to = candidate.from, candidate.to
	return net.attach(l, -1)
}

// Attach re-inserts a previously detached link at slot. Slot only matters
// for a MultiInput; a negative or out-of-range slot appends.
func (net *Network) Attach(l *Link, slot int) (*Link, error) {
	if l == nil || l.Pending() {
		return nil, errs.InvalidState("cannot attach a pending link")
	}
	res, err := net.attach(l, slot)
	return res.Replaced, err
}

// Disconnect removes a link. Disconnecting a link that is not part of the
// network is an invalid-state error.
func (net *Network) Disconnect(l *Link) error {
	if l == nil || !slices.Contains(net.links, l) {
		return errs.InvalidState("link is not part of the network")
	}
	net.detach(l)
	net.notify()
	return nil
}

// SetSetting stores a setting and marks the node dirty.
func (net *Network) SetSetting(id, key string, value any) error {
	n, ok := net.nodes[id]
	if !ok {
		return notFound(id)
	}
	if key == "" {
		return errs.New(errs.ErrCodeInvalidInput, "node %q: empty setting key", id)
	}
	if n.settings == nil {
		n.settings = Settings{}
	}
	n.settings[key] = value
	n.dirtySettings = true
	net.notify()
	return nil
}

// UnsetSetting removes a setting and marks the node dirty.
func (net *Network) UnsetSetting(id, key string) error {
	n, ok := net.nodes[id]
	if !ok {
		return notFound(id)
	}
	delete(n.settings, key)
	n.dirtySettings = true
	net.notify()
	return nil
}

// SetLocked freezes or unfreezes a node. A locked node keeps its cached
// outputs and is treated by the evaluator as an opaque leaf.
func (net *Network) SetLocked(id string, locked bool) error {
	n, ok := net.nodes[id]
	if !ok {
		return notFound(id)
	}
	n.locked = locked
	net.notify()
	return nil
}

// SetVisible makes id the single visible node. An empty id clears it.
func (net *Network) SetVisible(id string) error {
	var n *Node
	if id != "" {
		var ok bool
		if n, ok = net.nodes[id]; !ok {
			return notFound(id)
		}
	}
	if net.visible != nil {
		net.visible.visible = false
	}
	net.visible = n
	if n != nil {
		n.visible = true
	}
	net.notify()
	return nil
}

// SetSelected toggles a node's selection flag.
func (net *Network) SetSelected(id string, selected bool) error {
	n, ok := net.nodes[id]
	if !ok {
		return notFound(id)
	}
	n.selected = selected
	net.notify()
	return nil
}

func (net *Network) check(l *Link) error {
	if l.from.node.network != net {
		return notFound(l.from.node.id)
	}
	dst := l.to.Node()
	if dst.network != net {
		return notFound(dst.id)
	}
	if !l.to.Type().Accepts(l.from.typ) {
		return errs.New(errs.ErrCodeTypeMismatch, "cannot connect %s (%s) to %s.%s (%s)",
			l.from.node.id+"."+l.from.name, l.from.typ, dst.id, l.to.Name(), l.to.Type())
	}
	return nil
}

func (net *Network) attach(l *Link, slot int) (ConnectResult, error) {
	if err := net.check(l); err != nil {
		return ConnectResult{}, err
	}
	if slices.Contains(net.links, l) {
		return ConnectResult{}, errs.New(errs.ErrCodeDuplicate, "link %s already attached", l.id)
	}
	replaced := l.to.attach(l, slot)
	if replaced != nil {
		replaced.from.removeLink(replaced)
		net.links = slices.DeleteFunc(net.links, func(x *Link) bool { return x == replaced })
	}
	l.from.links = append(l.from.links, l)
	net.links = append(net.links, l)
	l.to.Node().dirtyInput = true
	net.notify()
	return ConnectResult{Link: l, Replaced: replaced}, nil
}

func (net *Network) detach(l *Link) {
	l.from.removeLink(l)
	l.to.detach(l)
	l.to.Node().dirtyInput = true
	net.links = slices.DeleteFunc(net.links, func(x *Link) bool { return x == l })
}
