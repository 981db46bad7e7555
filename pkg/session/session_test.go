package session

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cookgraph/pkg/command"
	"github.com/matzehuels/cookgraph/pkg/edit"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/network"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return New(Config{HistoryLimit: 10}, WithLogger(log.New(io.Discard)))
}

// scale multiplies its input by the "factor" setting.
func addScale(t *testing.T, s *Session, id string) *network.Node {
	t.Helper()
	n, err := s.Network().AddNode(network.NodeSpec{
		ID:       id,
		Kind:     "scale",
		Inputs:   []network.PortSpec{{Name: "in", Type: "number"}},
		Outputs:  []network.PortSpec{{Name: "out", Type: "number"}},
		Settings: network.Settings{"factor": 1},
		Cooker: network.CookFunc(func(_ context.Context, in network.Inputs, set network.Settings) ([]any, error) {
			x, ok := in[0].(int)
			if !ok {
				x = 1
			}
			return []any{x * set["factor"].(int)}, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestEndToEndSetX(t *testing.T) {
	s := newSession(t)
	x := 0

	if err := s.Apply(command.New("set x=1", command.Immediate, command.NewAssign(&x, 1))); err != nil {
		t.Fatal(err)
	}
	if x != 1 || !s.Stack().CanUndo() || s.Stack().CanRedo() {
		t.Fatalf("after push: x=%d canUndo=%v canRedo=%v", x, s.Stack().CanUndo(), s.Stack().CanRedo())
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if x != 0 || s.Stack().CanUndo() || !s.Stack().CanRedo() {
		t.Fatalf("after undo: x=%d canUndo=%v canRedo=%v", x, s.Stack().CanUndo(), s.Stack().CanRedo())
	}

	if err := s.Apply(command.New("set x=2", command.Immediate, command.NewAssign(&x, 2))); err != nil {
		t.Fatal(err)
	}
	if x != 2 || s.Stack().CanRedo() {
		t.Fatalf("after second push: x=%d canRedo=%v", x, s.Stack().CanRedo())
	}
}

func TestApplyTriggersCoalescedCook(t *testing.T) {
	s := newSession(t)
	a, b := addScale(t, s, "a"), addScale(t, s, "b")
	if _, err := s.Network().Connect(a.Output("out"), b.Input("in")); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(edit.SetVisible(s.Network(), "b")); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(edit.SetSetting(s.Network(), "a", "factor", 3)); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(edit.SetSetting(s.Network(), "b", "factor", 5)); err != nil {
		t.Fatal(err)
	}
	s.Settle()

	res, ok := s.LastCook()
	if !ok {
		t.Fatal("no cook recorded")
	}
	if len(res.Cooked) != 2 {
		t.Errorf("Cooked = %v, want [a b]", res.Cooked)
	}
	if got := b.Output("out").Value(); got != 15 {
		t.Errorf("b = %v, want 15", got)
	}
	if s.Lock().Locked() {
		t.Error("lock engaged after Settle")
	}

	// Undo restores the old factor and the next settle recooks.
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	s.Settle()
	if got := b.Output("out").Value(); got != 3 {
		t.Errorf("after undo b = %v, want 3", got)
	}
}

func TestApplyRejectedWhileCooking(t *testing.T) {
	s := newSession(t)
	addScale(t, s, "a")
	if err := s.Network().SetVisible("a"); err != nil {
		t.Fatal(err)
	}
	// Run until the chain has started but not finished.
	f := s.Evaluator().Start(context.Background(), s.Loop(), s.Network().Node("a"))

	x := 0
	err := s.Apply(command.New("set x", command.Immediate, command.NewAssign(&x, 1)))
	if !errs.Is(err, errs.ErrCodeBusy) {
		t.Errorf("Apply() while cooking error = %v, want BUSY", err)
	}
	if s.Stack().CanUndo() {
		t.Error("CanUndo() = true while cooking")
	}

	s.Settle()
	if !f.Settled() {
		t.Fatal("chain did not settle")
	}
	if err := s.Apply(command.New("set x", command.Immediate, command.NewAssign(&x, 1))); err != nil {
		t.Errorf("Apply() after cook error = %v", err)
	}
}

func TestApplyAbortsFailedImmediate(t *testing.T) {
	s := newSession(t)
	err := s.Apply(edit.SetSetting(s.Network(), "missing", "k", 1))
	if !errs.Is(err, errs.ErrCodeEffectFailed) {
		t.Errorf("Apply() error = %v, want EFFECT_FAILED", err)
	}
	if s.Stack().Len() != 0 {
		t.Errorf("Len() = %d, want 0 after failed apply", s.Stack().Len())
	}
}

func TestApplyFailedCompositeLeavesNoEffect(t *testing.T) {
	s := newSession(t)
	addScale(t, s, "a")
	m, err := command.NewMulti("set both",
		edit.SetSetting(s.Network(), "a", "factor", 3),
		edit.SetSetting(s.Network(), "missing", "factor", 3),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Apply(m); !errs.Is(err, errs.ErrCodeEffectFailed) {
		t.Fatalf("Apply() error = %v, want EFFECT_FAILED", err)
	}
	if got, _ := s.Network().Node("a").Setting("factor"); got != 1 {
		t.Errorf("factor = %v, want 1 after failed composite", got)
	}
	if s.Stack().Len() != 0 || s.Stack().CanUndo() {
		t.Errorf("Len() = %d CanUndo() = %v, want empty history", s.Stack().Len(), s.Stack().CanUndo())
	}
}

func TestSubscribe(t *testing.T) {
	s := newSession(t)
	addScale(t, s, "a")
	var n int
	s.Subscribe(func() { n++ })

	if err := s.Apply(edit.SetVisible(s.Network(), "a")); err != nil {
		t.Fatal(err)
	}
	before := n
	s.Settle()
	if n <= before {
		t.Errorf("no notification for settled cook (before=%d after=%d)", before, n)
	}
}

func TestSnapshot(t *testing.T) {
	s := newSession(t)
	a, b := addScale(t, s, "a"), addScale(t, s, "b")
	if _, err := s.Network().Connect(a.Output("out"), b.Input("in")); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(edit.SetVisible(s.Network(), "b")); err != nil {
		t.Fatal(err)
	}
	s.Settle()

	snap := s.Snapshot()
	if len(snap.Nodes) != 2 || len(snap.Links) != 1 || snap.Visible != "b" {
		t.Fatalf("Snapshot() = %+v", snap)
	}
	if snap.Links[0].From != "a.out" || snap.Links[0].To != "b.in" {
		t.Errorf("link = %+v", snap.Links[0])
	}
	if snap.History.Index != 0 || !snap.History.CanUndo || len(snap.History.Entries) != 1 {
		t.Errorf("History = %+v", snap.History)
	}
	if snap.LastCook == nil || len(snap.LastCook.Cooked) != 2 {
		t.Errorf("LastCook = %+v", snap.LastCook)
	}
	if snap.Nodes[1].Dirty {
		t.Error("visible node dirty after settle")
	}

	if _, err := json.Marshal(snap); err != nil {
		t.Errorf("json.Marshal(Snapshot) error: %v", err)
	}
}
