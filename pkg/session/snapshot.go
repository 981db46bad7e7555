package session

import (
	"fmt"
	"maps"
	"time"

	"github.com/matzehuels/cookgraph/pkg/cook"
)

// Snapshot is a read-only view of a session for UIs and the HTTP API.
type Snapshot struct {
	Nodes    []NodeState  `json:"nodes"`
	Links    []LinkState  `json:"links"`
	Visible  string       `json:"visible,omitempty"`
	History  HistoryState `json:"history"`
	Locked   bool         `json:"locked"`
	LastCook *CookState   `json:"last_cook,omitempty"`
}

// NodeState describes one node.
type NodeState struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Settings map[string]any `json:"settings,omitempty"`
	Outputs  map[string]any `json:"outputs,omitempty"`
	Dirty    bool           `json:"dirty"`
	Locked   bool           `json:"locked"`
	Visible  bool           `json:"visible"`
	Selected bool           `json:"selected"`
}

// LinkState describes one link as "node.port" endpoints.
type LinkState struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// HistoryState describes the undo history.
type HistoryState struct {
	Entries []string `json:"entries"`
	Index   int      `json:"index"`
	CanUndo bool     `json:"can_undo"`
	CanRedo bool     `json:"can_redo"`
}

// CookState describes the last settled cook.
type CookState struct {
	Cooked   []string `json:"cooked"`
	Clean    bool     `json:"clean"`
	Acyclic  bool     `json:"acyclic"`
	Busy     bool     `json:"busy"`
	Duration string   `json:"duration"`
	At       string   `json:"at"`
	Error    string   `json:"error,omitempty"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes:  []NodeState{},
		Links:  []LinkState{},
		Locked: s.lock.Locked(),
	}
	for _, n := range s.net.Nodes() {
		ns := NodeState{
			ID:       n.ID(),
			Kind:     n.Kind(),
			Dirty:    n.Dirty(),
			Locked:   n.Locked(),
			Visible:  n.Visible(),
			Selected: n.Selected(),
		}
		if settings := n.Settings(); len(settings) > 0 {
			ns.Settings = maps.Clone(map[string]any(settings))
		}
		if outs := n.Outputs(); len(outs) > 0 {
			ns.Outputs = make(map[string]any, len(outs))
			for _, o := range outs {
				ns.Outputs[o.Name()] = o.Value()
			}
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	for _, l := range s.net.Links() {
		snap.Links = append(snap.Links, LinkState{
			ID:   l.ID(),
			From: fmt.Sprintf("%s.%s", l.From().Node().ID(), l.From().Name()),
			To:   fmt.Sprintf("%s.%s", l.To().Node().ID(), l.To().Name()),
		})
	}
	if v := s.net.Visible(); v != nil {
		snap.Visible = v.ID()
	}

	entries := s.stack.Entries()
	snap.History = HistoryState{
		Entries: make([]string, len(entries)),
		Index:   s.stack.Index(),
		CanUndo: s.stack.CanUndo(),
		CanRedo: s.stack.CanRedo(),
	}
	for i, c := range entries {
		snap.History.Entries[i] = c.Name()
	}

	if res, ok := s.LastCook(); ok {
		snap.LastCook = cookState(res, s.lastErr)
		snap.LastCook.At = s.lastAt.Format(time.RFC3339)
	}
	return snap
}

func cookState(res cook.Result, err error) *CookState {
	cs := &CookState{
		Cooked:   append([]string{}, res.Cooked...),
		Clean:    res.Clean,
		Acyclic:  res.Acyclic,
		Busy:     res.Busy,
		Duration: res.Total().String(),
	}
	if err != nil {
		cs.Error = err.Error()
	}
	return cs
}
