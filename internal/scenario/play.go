package scenario

import (
	"context"
	"fmt"
	"reflect"

	"github.com/matzehuels/cookgraph/internal/nodes"
	"github.com/matzehuels/cookgraph/pkg/cook"
	"github.com/matzehuels/cookgraph/pkg/edit"
	"github.com/matzehuels/cookgraph/pkg/session"
)

// Result reports one played step.
type Result struct {
	Index int
	Step  Step
	Err   error        // the step's error, expected or not
	Cook  *cook.Result // set when the step settled at least one cook
}

// Player plays a scenario one step at a time.
type Player struct {
	ctx  context.Context
	sess *session.Session
	sc   *Scenario
	next int
}

// NewPlayer returns a player positioned before the first step.
func NewPlayer(ctx context.Context, s *session.Session, sc *Scenario) *Player {
	return &Player{ctx: ctx, sess: s, sc: sc}
}

// Done reports whether every step has been played.
func (p *Player) Done() bool { return p.next >= len(p.sc.Steps) }

// Position returns the index of the next step.
func (p *Player) Position() int { return p.next }

// Peek returns the next step, if any.
func (p *Player) Peek() (Step, bool) {
	if p.Done() {
		return Step{}, false
	}
	return p.sc.Steps[p.next], true
}

// Step applies the next step, settles the loop, and checks the step's
// expectations. The returned error is non-nil for an unexpected failure,
// a missing expected failure, or a failed expectation; Result.Err holds
// the step's own error either way.
func (p *Player) Step() (Result, error) {
	if p.Done() {
		return Result{}, fmt.Errorf("no steps left")
	}
	i, st := p.next, p.sc.Steps[p.next]
	p.next++

	before := p.sess.Cooks()
	err := apply(p.ctx, p.sess, st)
	p.sess.Settle()

	res := Result{Index: i, Step: st, Err: err}
	if p.sess.Cooks() > before {
		if last, ok := p.sess.LastCook(); ok {
			res.Cook = &last
		}
	}

	switch {
	case err != nil && !st.Fails:
		return res, fmt.Errorf("step %d (%s): %w", i, st, err)
	case err == nil && st.Fails:
		return res, fmt.Errorf("step %d (%s): expected an error", i, st)
	}
	if err := checkExpect(p.sess, st); err != nil {
		return res, fmt.Errorf("step %d (%s): %w", i, st, err)
	}
	return res, nil
}

// Play runs the scenario's steps in order against s, settling the loop
// after each one, and calls onStep with every result. It stops at the
// first unexpected error or failed expectation.
func Play(ctx context.Context, s *session.Session, sc *Scenario, onStep func(Result)) error {
	p := NewPlayer(ctx, s, sc)
	for !p.Done() {
		res, err := p.Step()
		if onStep != nil {
			onStep(res)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func apply(ctx context.Context, s *session.Session, st Step) error {
	net := s.Network()
	switch st.Action {
	case ActionSet:
		return s.Apply(edit.SetSetting(net, st.Node, st.Key, st.Value))
	case ActionDrag:
		return drag(s, st)
	case ActionConnect:
		out, in, err := Ports(net, st.From, st.To)
		if err != nil {
			return err
		}
		return s.Apply(edit.Connect(net, out, in))
	case ActionDisconnect:
		l, err := FindLink(net, st.From, st.To)
		if err != nil {
			return err
		}
		return s.Apply(edit.Disconnect(net, l))
	case ActionAdd:
		return s.Apply(edit.AddNode(net, nodes.Find(st.Kind).Spec(st.Node, st.Settings)))
	case ActionRemove:
		return s.Apply(edit.RemoveNode(net, st.Node))
	case ActionLock, ActionUnlock:
		return s.Apply(edit.SetLocked(net, st.Node, st.Action == ActionLock))
	case ActionShow:
		return s.Apply(edit.SetVisible(net, st.Node))
	case ActionUndo:
		return s.Undo()
	case ActionRedo:
		return s.Redo()
	case ActionCook:
		_, err := s.Cook(ctx)
		return err
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
}

// drag plays a continuous edit: one open command executed once per value,
// then closed, leaving a single history entry.
func drag(s *session.Session, st Step) error {
	cmd := edit.DragSetting(s.Network(), st.Node, st.Key)
	if err := s.Apply(cmd, st.Values[0]); err != nil {
		_ = s.Stack().Abort()
		return err
	}
	for _, v := range st.Values[1:] {
		if err := cmd.Execute(v); err != nil {
			_ = s.Stack().Abort()
			return err
		}
	}
	return cmd.Close()
}

func checkExpect(s *session.Session, st Step) error {
	for ref, want := range st.Expect {
		out, err := Output(s.Network(), ref)
		if err != nil {
			return err
		}
		if got := out.Value(); !sameValue(got, want) {
			return fmt.Errorf("expect %s = %v, got %v", ref, want, got)
		}
	}
	return nil
}

// sameValue compares numerically when both sides are numbers, since TOML
// integers decode as int64 and the catalog produces float64.
func sameValue(got, want any) bool {
	g, gok := toFloat(got)
	w, wok := toFloat(want)
	if gok && wok {
		return g == w
	}
	return reflect.DeepEqual(got, want)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
