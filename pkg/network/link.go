package network

import (
	"fmt"

	"github.com/google/uuid"
)

// Link is a directed edge from an Output to a Sink.
//
// A link with only one endpoint set is pending: it exists while the user
// drags a connection and is completed with [Network.Complete].
type Link struct {
	id   string
	from *Output
	to   Sink
}

// NewPendingFrom starts a link at out.
func NewPendingFrom(out *Output) *Link {
	return &Link{id: uuid.NewString(), from: out}
}

// NewPendingTo starts a link at in, to be completed with an output.
func NewPendingTo(in Sink) *Link {
	return &Link{id: uuid.NewString(), to: in}
}

// ID returns the link's unique identifier.
func (l *Link) ID() string { return l.id }

// From returns the source output, or nil for a pending link.
func (l *Link) From() *Output { return l.from }

// To returns the destination input, or nil for a pending link.
func (l *Link) To() Sink { return l.to }

// Pending reports whether one endpoint is still missing.
func (l *Link) Pending() bool { return l.from == nil || l.to == nil }

// Slot returns the link's position among its destination's links, or -1
// if it is not attached.
func (l *Link) Slot() int {
	if l.to == nil {
		return -1
	}
	for i, x := range l.to.Links() {
		if x == l {
			return i
		}
	}
	return -1
}

// String formats the link as "from.port -> to.port".
func (l *Link) String() string {
	from, to := "?", "?"
	if l.from != nil {
		from = l.from.node.id + "." + l.from.name
	}
	if l.to != nil {
		to = l.to.Node().id + "." + l.to.Name()
	}
	return fmt.Sprintf("%s -> %s", from, to)
}
