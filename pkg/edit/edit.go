// Package edit provides the undoable commands that mutate a node network.
//
// Each constructor returns a ready [command.Command] wrapping an effect
// over a [network.Network]. Effects capture whatever they need to reverse
// themselves the first time they execute, so a command must be executed
// before it is undone (the command state machine already enforces this).
//
//	cmd := edit.SetSetting(net, "gain", "value", 2.5)
//	if err := stack.Add(cmd); err != nil { ... }
//	if err := cmd.Execute(); err != nil { ... }
package edit

import (
	"fmt"

	"github.com/matzehuels/cookgraph/pkg/command"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/network"
)

// =============================================================================
// Settings
// =============================================================================

type setting struct {
	net   *network.Network
	id    string
	key   string
	value any
	prev  any
	had   bool
	saved bool
}

func (s *setting) save() error {
	if s.saved {
		return nil
	}
	n := s.net.Node(s.id)
	if n == nil {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", s.id)
	}
	s.prev, s.had = n.Setting(s.key)
	s.saved = true
	return nil
}

func (s *setting) Execute(args ...any) error {
	if err := s.save(); err != nil {
		return err
	}
	if len(args) > 0 {
		s.value = args[0]
	}
	return s.net.SetSetting(s.id, s.key, s.value)
}

func (s *setting) Undo() error {
	if !s.had {
		return s.net.UnsetSetting(s.id, s.key)
	}
	return s.net.SetSetting(s.id, s.key, s.prev)
}

func (s *setting) Redo() error {
	return s.net.SetSetting(s.id, s.key, s.value)
}

// SetSetting sets a single node setting in one step.
func SetSetting(net *network.Network, id, key string, value any) *command.Command {
	return command.New(fmt.Sprintf("set %s.%s", id, key), command.Immediate,
		&setting{net: net, id: id, key: key, value: value})
}

// drag is a setting edited continuously, such as by dragging a slider.
type drag struct {
	setting
	steps int
}

func (d *drag) Execute(args ...any) error {
	if len(args) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "drag %s.%s: missing value", d.id, d.key)
	}
	d.steps++
	return d.setting.Execute(args[0])
}

// Close is a no-op beyond finalizing the command; the last value dragged
// to is the one redo restores.
func (d *drag) Close() error {
	if d.steps == 0 {
		return errs.InvalidState("drag %s.%s closed without a value", d.id, d.key)
	}
	return nil
}

// DragSetting edits a setting continuously. Each Execute takes the new
// value as its first argument; Close ends the gesture and records the
// whole drag as one history entry.
func DragSetting(net *network.Network, id, key string) *command.Command {
	return command.New(fmt.Sprintf("drag %s.%s", id, key), command.Continuous,
		&drag{setting: setting{net: net, id: id, key: key}})
}

// =============================================================================
// Links
// =============================================================================

type connect struct {
	net      *network.Network
	out      *network.Output
	in       network.Sink
	link     *network.Link
	slot     int
	replaced *network.Link
}

func (c *connect) Execute(...any) error {
	res, err := c.net.Connect(c.out, c.in)
	if err != nil {
		return err
	}
	c.link, c.replaced = res.Link, res.Replaced
	c.slot = c.link.Slot()
	return nil
}

func (c *connect) Undo() error {
	if err := c.net.Disconnect(c.link); err != nil {
		return err
	}
	if c.replaced != nil {
		if _, err := c.net.Attach(c.replaced, 0); err != nil {
			return err
		}
	}
	return nil
}

func (c *connect) Redo() error {
	_, err := c.net.Attach(c.link, c.slot)
	return err
}

// Connect links out to in. Undo restores any link the connection replaced.
func Connect(net *network.Network, out *network.Output, in network.Sink) *command.Command {
	name := "connect"
	if out != nil && in != nil {
		name = fmt.Sprintf("connect %s.%s -> %s.%s", out.Node().ID(), out.Name(), in.Node().ID(), in.Name())
	}
	return command.New(name, command.Immediate, &connect{net: net, out: out, in: in})
}

type disconnect struct {
	net  *network.Network
	link *network.Link
	slot int
}

func (d *disconnect) Execute(...any) error {
	if d.link == nil {
		return errs.New(errs.ErrCodeInvalidInput, "disconnect: nil link")
	}
	d.slot = d.link.Slot()
	return d.net.Disconnect(d.link)
}

func (d *disconnect) Undo() error {
	_, err := d.net.Attach(d.link, d.slot)
	return err
}

func (d *disconnect) Redo() error {
	return d.net.Disconnect(d.link)
}

// Disconnect removes a link. Undo re-inserts it at its former position.
func Disconnect(net *network.Network, link *network.Link) *command.Command {
	name := "disconnect"
	if link != nil {
		name += " " + link.String()
	}
	return command.New(name, command.Immediate, &disconnect{net: net, link: link})
}

// =============================================================================
// Nodes
// =============================================================================

type addNode struct {
	net  *network.Network
	spec network.NodeSpec
	node *network.Node
}

func (a *addNode) Execute(...any) error {
	n, err := a.net.AddNode(a.spec)
	if err != nil {
		return err
	}
	a.node = n
	return nil
}

func (a *addNode) Undo() error {
	_, _, err := a.net.RemoveNode(a.node.ID())
	return err
}

func (a *addNode) Redo() error {
	return a.net.Insert(a.node)
}

// AddNode creates a node from spec.
func AddNode(net *network.Network, spec network.NodeSpec) *command.Command {
	return command.New("add "+spec.ID, command.Immediate, &addNode{net: net, spec: spec})
}

type removeNode struct {
	net     *network.Network
	id      string
	node    *network.Node
	links   []network.Detached
	visible bool
}

func (r *removeNode) Execute(...any) error {
	n := r.net.Node(r.id)
	if n == nil {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", r.id)
	}
	r.visible = n.Visible()
	node, links, err := r.net.RemoveNode(r.id)
	if err != nil {
		return err
	}
	r.node, r.links = node, links
	return nil
}

func (r *removeNode) Undo() error {
	if err := r.net.Insert(r.node); err != nil {
		return err
	}
	for _, d := range r.links {
		if _, err := r.net.Attach(d.Link, d.Slot); err != nil {
			return err
		}
	}
	if r.visible {
		return r.net.SetVisible(r.id)
	}
	return nil
}

func (r *removeNode) Redo() error {
	return r.Execute()
}

// RemoveNode deletes a node and its links. Undo restores the node, every
// link in its original slot, and its visibility.
func RemoveNode(net *network.Network, id string) *command.Command {
	return command.New("remove "+id, command.Immediate, &removeNode{net: net, id: id})
}

// =============================================================================
// Flags
// =============================================================================

type setLocked struct {
	net    *network.Network
	id     string
	locked bool
	prev   bool
}

func (s *setLocked) Execute(...any) error {
	n := s.net.Node(s.id)
	if n == nil {
		return errs.New(errs.ErrCodeNotFound, "node %q not found", s.id)
	}
	s.prev = n.Locked()
	return s.net.SetLocked(s.id, s.locked)
}

func (s *setLocked) Undo() error { return s.net.SetLocked(s.id, s.prev) }
func (s *setLocked) Redo() error { return s.net.SetLocked(s.id, s.locked) }

// SetLocked freezes or unfreezes a node.
func SetLocked(net *network.Network, id string, locked bool) *command.Command {
	verb := "unlock"
	if locked {
		verb = "lock"
	}
	return command.New(verb+" "+id, command.Immediate, &setLocked{net: net, id: id, locked: locked})
}

type setVisible struct {
	net  *network.Network
	id   string
	prev string
}

func (s *setVisible) Execute(...any) error {
	if v := s.net.Visible(); v != nil {
		s.prev = v.ID()
	}
	return s.net.SetVisible(s.id)
}

func (s *setVisible) Undo() error { return s.net.SetVisible(s.prev) }
func (s *setVisible) Redo() error { return s.net.SetVisible(s.id) }

// SetVisible makes id the visible node, the one the updater cooks.
func SetVisible(net *network.Network, id string) *command.Command {
	return command.New("show "+id, command.Immediate, &setVisible{net: net, id: id})
}
