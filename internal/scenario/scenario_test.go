package scenario

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/session"
)

func newSession() *session.Session {
	return session.New(session.Config{}, session.WithLogger(log.New(io.Discard)))
}

func TestLoadAndPlayArithmetic(t *testing.T) {
	sc, err := Load("testdata/arithmetic.toml")
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "arithmetic" || len(sc.Nodes) != 7 || len(sc.Links) != 6 {
		t.Fatalf("Load() = %d nodes, %d links", len(sc.Nodes), len(sc.Links))
	}

	s := newSession()
	if err := Build(s, sc); err != nil {
		t.Fatal(err)
	}
	if got := s.Network().Node("product").Output("out").Value(); got != -20.0 {
		t.Fatalf("initial product = %v, want -20", got)
	}

	var results []Result
	if err := Play(context.Background(), s, sc, func(r Result) { results = append(results, r) }); err != nil {
		t.Fatal(err)
	}
	if len(results) != len(sc.Steps) {
		t.Errorf("results = %d, want %d", len(results), len(sc.Steps))
	}
	// The drag is one history entry.
	if got := s.Stack().Len(); got != 4 {
		t.Errorf("Stack().Len() = %d, want 4", got)
	}
}

func TestPlayCycle(t *testing.T) {
	sc, err := Parse(`
visible = "left"

[[nodes]]
id = "seed"
kind = "constant"
settings = { value = 1 }

[[nodes]]
id = "left"
kind = "add"

[[nodes]]
id = "right"
kind = "add"

[[links]]
from = "seed.out"
to = "left.terms"

[[links]]
from = "left.out"
to = "right.terms"

[[links]]
from = "right.out"
to = "left.terms"

[[steps]]
action = "cook"

[[steps]]
action = "disconnect"
from = "right.out"
to = "left.terms"
expect = { "left.out" = 1 }
`)
	if err != nil {
		t.Fatal(err)
	}
	s := newSession()
	if err := Build(s, sc); err != nil {
		t.Fatal(err)
	}

	var results []Result
	if err := Play(context.Background(), s, sc, func(r Result) { results = append(results, r) }); err != nil {
		t.Fatal(err)
	}
	if results[0].Cook == nil || results[0].Cook.Acyclic {
		t.Errorf("cook step = %+v, want cyclic result", results[0].Cook)
	}
}

func TestPlayExpectedFailure(t *testing.T) {
	sc, err := Parse(`
visible = "out"

[[nodes]]
id = "src"
kind = "constant"

[[nodes]]
id = "out"
kind = "fail"

[[links]]
from = "src.out"
to = "out.in"

[[steps]]
action = "cook"
fails = true

[[steps]]
action = "set"
node = "ghost"
key = "value"
value = 1
fails = true
`)
	if err != nil {
		t.Fatal(err)
	}
	s := newSession()
	if err := Build(s, sc); err != nil {
		t.Fatal(err)
	}
	var results []Result
	if err := Play(context.Background(), s, sc, func(r Result) { results = append(results, r) }); err != nil {
		t.Fatal(err)
	}
	if !errs.Is(results[0].Err, errs.ErrCodeCookFailed) {
		t.Errorf("cook step error = %v, want COOK_FAILED", results[0].Err)
	}
	if !errs.Is(results[1].Err, errs.ErrCodeEffectFailed) {
		t.Errorf("set step error = %v, want EFFECT_FAILED", results[1].Err)
	}
}

func TestPlayStopsOnFailedExpectation(t *testing.T) {
	sc, err := Parse(`
visible = "a"

[[nodes]]
id = "a"
kind = "constant"

[[steps]]
action = "set"
node = "a"
key = "value"
value = 2
expect = { "a.out" = 3 }

[[steps]]
action = "undo"
`)
	if err != nil {
		t.Fatal(err)
	}
	s := newSession()
	if err := Build(s, sc); err != nil {
		t.Fatal(err)
	}
	var played int
	err = Play(context.Background(), s, sc, func(Result) { played++ })
	if err == nil || !strings.Contains(err.Error(), "expect a.out = 3") {
		t.Errorf("Play() error = %v, want failed expectation", err)
	}
	if played != 1 {
		t.Errorf("played = %d, want 1", played)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown kind", "[[nodes]]\nid = \"a\"\nkind = \"teleport\"", "unknown kind"},
		{"bad id", "[[nodes]]\nid = \"a.b\"\nkind = \"constant\"", "node id"},
		{"bad ref", "[[links]]\nfrom = \"a\"\nto = \"b.in\"", "want node.port"},
		{"unknown action", "[[steps]]\naction = \"fly\"", "unknown action"},
		{"set without value", "[[steps]]\naction = \"set\"\nnode = \"a\"\nkey = \"k\"", "set needs"},
		{"unknown key", "colour = \"red\"", "unknown key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestBuildUnknownPort(t *testing.T) {
	sc, err := Parse(`
[[nodes]]
id = "a"
kind = "constant"

[[nodes]]
id = "n"
kind = "negate"

[[links]]
from = "a.nope"
to = "n.in"
`)
	if err != nil {
		t.Fatal(err)
	}
	if err := Build(newSession(), sc); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Build() error = %v, want NOT_FOUND", err)
	}
}

func TestStepString(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{Step{Action: ActionSet, Node: "a", Key: "value", Value: int64(2)}, "set a.value = 2"},
		{Step{Action: ActionConnect, From: "a.out", To: "b.in"}, "connect a.out -> b.in"},
		{Step{Action: ActionLock, Node: "a"}, "lock a"},
		{Step{Action: ActionUndo}, "undo"},
	}
	for _, tt := range tests {
		if got := tt.step.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPlayerSteps(t *testing.T) {
	sc, err := Parse(`
visible = "a"

[[nodes]]
id = "a"
kind = "constant"

[[steps]]
action = "set"
node = "a"
key = "value"
value = 7
expect = { "a.out" = 7 }

[[steps]]
action = "undo"
expect = { "a.out" = 0 }
`)
	if err != nil {
		t.Fatal(err)
	}
	s := newSession()
	if err := Build(s, sc); err != nil {
		t.Fatal(err)
	}

	p := NewPlayer(context.Background(), s, sc)
	if st, ok := p.Peek(); !ok || st.Action != ActionSet {
		t.Fatalf("Peek() = %v, %v", st, ok)
	}
	res, err := p.Step()
	if err != nil {
		t.Fatal(err)
	}
	if res.Index != 0 || res.Cook == nil {
		t.Errorf("Step() = %+v, want index 0 with a cook", res)
	}
	if _, err := p.Step(); err != nil {
		t.Fatal(err)
	}
	if !p.Done() || p.Position() != 2 {
		t.Errorf("Done() = %v, Position() = %d", p.Done(), p.Position())
	}
	if _, err := p.Step(); err == nil {
		t.Error("Step() past the end error = nil")
	}
}
