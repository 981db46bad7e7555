package network

// PortType tags the values flowing through a port. Links may only connect
// ports of compatible types.
type PortType string

// AnyType is compatible with every port type.
const AnyType PortType = "any"

// Accepts reports whether a value of type other may flow into t.
func (t PortType) Accepts(other PortType) bool {
	return t == AnyType || other == AnyType || t == other
}

// PortSpec declares an input or output port.
type PortSpec struct {
	Name  string
	Type  PortType
	Multi bool // inputs only: accept an ordered list of links
}

// Sink is an input port: either an *Input or a *MultiInput.
type Sink interface {
	Name() string
	Type() PortType
	Node() *Node
	// Links returns the incoming links in order. The slice must not be modified.
	Links() []*Link
	// Multi reports whether the sink accepts more than one link.
	Multi() bool

	// attach inserts l at slot (clamped; ignored for single inputs) and
	// returns the link it displaced, if any.
	attach(l *Link, slot int) (replaced *Link)
	// detach removes l and reports whether it was present.
	detach(l *Link) bool
	// value returns the cook input contributed by this sink.
	value() any
}

// Input is a connection point holding at most one link.
type Input struct {
	node *Node
	name string
	typ  PortType
	link *Link
}

func (in *Input) Name() string   { return in.name }
func (in *Input) Type() PortType { return in.typ }
func (in *Input) Node() *Node    { return in.node }
func (in *Input) Multi() bool    { return false }

// Link returns the connected link, or nil.
func (in *Input) Link() *Link { return in.link }

func (in *Input) Links() []*Link {
	if in.link == nil {
		return nil
	}
	return []*Link{in.link}
}

// Value returns the value of the linked output, or nil when unconnected.
func (in *Input) Value() any {
	if in.link == nil || in.link.from == nil {
		return nil
	}
	return in.link.from.value
}

func (in *Input) attach(l *Link, _ int) *Link {
	replaced := in.link
	in.link = l
	return replaced
}

func (in *Input) detach(l *Link) bool {
	if in.link != l {
		return false
	}
	in.link = nil
	return true
}

func (in *Input) value() any { return in.Value() }

// MultiInput is a connection point holding an ordered list of links.
// Link order is significant: it is the order of values handed to the
// cooker.
type MultiInput struct {
	node  *Node
	name  string
	typ   PortType
	links []*Link
}

func (m *MultiInput) Name() string   { return m.name }
func (m *MultiInput) Type() PortType { return m.typ }
func (m *MultiInput) Node() *Node    { return m.node }
func (m *MultiInput) Multi() bool    { return true }
func (m *MultiInput) Links() []*Link { return m.links }

// Values returns the linked output values in link order.
func (m *MultiInput) Values() []any {
	vals := make([]any, len(m.links))
	for i, l := range m.links {
		if l.from != nil {
			vals[i] = l.from.value
		}
	}
	return vals
}

func (m *MultiInput) attach(l *Link, slot int) *Link {
	if slot < 0 || slot > len(m.links) {
		slot = len(m.links)
	}
	m.links = append(m.links, nil)
	copy(m.links[slot+1:], m.links[slot:])
	m.links[slot] = l
	return nil
}

func (m *MultiInput) detach(l *Link) bool {
	for i, x := range m.links {
		if x == l {
			m.links = append(m.links[:i], m.links[i+1:]...)
			return true
		}
	}
	return false
}

func (m *MultiInput) value() any { return m.Values() }

// Output is a connection point holding the node's cached value for that
// port and its outgoing links.
type Output struct {
	node  *Node
	name  string
	typ   PortType
	value any
	links []*Link
}

func (o *Output) Name() string   { return o.name }
func (o *Output) Type() PortType { return o.typ }
func (o *Output) Node() *Node    { return o.node }

// Links returns the outgoing links. The slice must not be modified.
func (o *Output) Links() []*Link { return o.links }

// Value returns the cached value.
func (o *Output) Value() any { return o.value }

// SetValue stores v and marks every node with a directly linked input as
// dirty.
func (o *Output) SetValue(v any) {
	o.value = v
	for _, l := range o.links {
		if l.to != nil {
			l.to.Node().dirtyInput = true
		}
	}
}

func (o *Output) removeLink(l *Link) {
	for i, x := range o.links {
		if x == l {
			o.links = append(o.links[:i], o.links[i+1:]...)
			return
		}
	}
}
