// Package scenario loads TOML scenario files: a node network plus an
// optional script of edits to play against it.
//
//	visible = "sum"
//
//	[[nodes]]
//	id = "a"
//	kind = "constant"
//	settings = { value = 2 }
//
//	[[nodes]]
//	id = "sum"
//	kind = "add"
//
//	[[links]]
//	from = "a.out"
//	to = "sum.terms"
//
//	[[steps]]
//	action = "set"
//	node = "a"
//	key = "value"
//	value = 5
//	expect = { "sum.out" = 5 }
//
// Ports are referenced as "node.port". Node kinds come from the demo
// catalog in internal/nodes.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cookgraph/internal/nodes"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
)

// Actions understood by Play.
const (
	ActionSet        = "set"
	ActionDrag       = "drag"
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
	ActionAdd        = "add"
	ActionRemove     = "remove"
	ActionLock       = "lock"
	ActionUnlock     = "unlock"
	ActionShow       = "show"
	ActionUndo       = "undo"
	ActionRedo       = "redo"
	ActionCook       = "cook"
)

var actions = map[string]bool{
	ActionSet: true, ActionDrag: true, ActionConnect: true, ActionDisconnect: true,
	ActionAdd: true, ActionRemove: true, ActionLock: true, ActionUnlock: true,
	ActionShow: true, ActionUndo: true, ActionRedo: true, ActionCook: true,
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name    string `toml:"name"`
	Visible string `toml:"visible"`
	Nodes   []Node `toml:"nodes"`
	Links   []Link `toml:"links"`
	Steps   []Step `toml:"steps"`
}

// Node declares a node.
type Node struct {
	ID       string         `toml:"id"`
	Kind     string         `toml:"kind"`
	Locked   bool           `toml:"locked"`
	Settings map[string]any `toml:"settings"`
}

// Link declares a link between two "node.port" references.
type Link struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Step is one scripted action. Which fields apply depends on Action.
type Step struct {
	Action   string         `toml:"action"`
	Node     string         `toml:"node"`
	Key      string         `toml:"key"`
	Value    any            `toml:"value"`
	Values   []any          `toml:"values"`
	From     string         `toml:"from"`
	To       string         `toml:"to"`
	Kind     string         `toml:"kind"`
	Settings map[string]any `toml:"settings"`
	// Expect maps "node.port" references to output values checked after
	// the step settles.
	Expect map[string]any `toml:"expect"`
	// Fails marks a step whose error is expected.
	Fails bool `toml:"fails"`
}

// String describes the step for logs.
func (s Step) String() string {
	switch s.Action {
	case ActionSet:
		return fmt.Sprintf("set %s.%s = %v", s.Node, s.Key, s.Value)
	case ActionDrag:
		return fmt.Sprintf("drag %s.%s through %v", s.Node, s.Key, s.Values)
	case ActionConnect, ActionDisconnect:
		return fmt.Sprintf("%s %s -> %s", s.Action, s.From, s.To)
	case ActionAdd:
		return fmt.Sprintf("add %s (%s)", s.Node, s.Kind)
	case ActionRemove, ActionLock, ActionUnlock, ActionShow:
		return s.Action + " " + s.Node
	default:
		return s.Action
	}
}

// SplitRef splits a "node.port" reference.
func SplitRef(ref string) (node, port string, err error) {
	node, port, ok := strings.Cut(ref, ".")
	if !ok || node == "" || port == "" {
		return "", "", errs.New(errs.ErrCodeInvalidInput, "port reference %q: want node.port", ref)
	}
	return node, port, nil
}

// Parse decodes and validates a scenario.
func Parse(data string) (*Scenario, error) {
	var sc Scenario
	md, err := toml.Decode(data, &sc)
	if err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse scenario: unknown key %q", undecoded[0].String())
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks kinds, references and actions. It does not check that
// referenced nodes exist; that happens when the network is built.
func (sc *Scenario) Validate() error {
	for i, n := range sc.Nodes {
		if err := errs.ValidateIdentifier("node id", n.ID); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
		if nodes.Find(n.Kind) == nil {
			return fmt.Errorf("nodes[%d]: unknown kind %q (known: %s)", i, n.Kind, strings.Join(nodes.Names(), ", "))
		}
	}
	for i, l := range sc.Links {
		if err := checkRefs(l.From, l.To); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, st.Action, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	if !actions[s.Action] {
		return fmt.Errorf("unknown action %q", s.Action)
	}
	switch s.Action {
	case ActionSet:
		if s.Node == "" || s.Key == "" || s.Value == nil {
			return fmt.Errorf("set needs node, key and value")
		}
	case ActionDrag:
		if s.Node == "" || s.Key == "" || len(s.Values) == 0 {
			return fmt.Errorf("drag needs node, key and values")
		}
	case ActionConnect, ActionDisconnect:
		return checkRefs(s.From, s.To)
	case ActionAdd:
		if nodes.Find(s.Kind) == nil {
			return fmt.Errorf("unknown kind %q", s.Kind)
		}
		return errs.ValidateIdentifier("node id", s.Node)
	case ActionRemove, ActionLock, ActionUnlock, ActionShow:
		if s.Node == "" {
			return fmt.Errorf("%s needs node", s.Action)
		}
	}
	for ref := range s.Expect {
		if _, _, err := SplitRef(ref); err != nil {
			return err
		}
	}
	return nil
}

func checkRefs(refs ...string) error {
	for _, ref := range refs {
		if _, _, err := SplitRef(ref); err != nil {
			return err
		}
	}
	return nil
}
