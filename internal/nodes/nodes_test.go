package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/cookgraph/pkg/network"
)

func TestFind(t *testing.T) {
	for _, name := range Names() {
		if k := Find(name); k == nil || k.Name != name {
			t.Errorf("Find(%q) = %v", name, k)
		}
	}
	if Find("nope") != nil {
		t.Error("Find(nope) != nil")
	}
}

func TestCook(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		kind     string
		in       network.Inputs
		settings network.Settings
		want     any
	}{
		{"constant", nil, network.Settings{"value": int64(4)}, 4.0},
		{"add", network.Inputs{[]any{1.0, int64(2), 3}}, nil, 6.0},
		{"add", network.Inputs{[]any{}}, network.Settings{"bias": 1.5}, 1.5},
		{"multiply", network.Inputs{2.0, 3.0}, nil, 6.0},
		{"multiply", network.Inputs{2.0, nil}, nil, 2.0},
		{"negate", network.Inputs{2.0}, nil, -2.0},
		{"negate", network.Inputs{nil}, nil, 0.0},
		{"format", network.Inputs{2.5}, network.Settings{"template": "x=%v"}, "x=2.5"},
		{"delay", network.Inputs{"v"}, nil, "v"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			k := Find(tt.kind)
			spec := k.Spec("n", tt.settings)
			got, err := spec.Cooker.Cook(ctx, tt.in, spec.Settings)
			if err != nil {
				t.Fatalf("Cook() error: %v", err)
			}
			if len(got) != len(k.Outputs) || got[0] != tt.want {
				t.Errorf("Cook() = %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestCookErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Find("fail").Cook(ctx, network.Inputs{nil}, nil); !errors.Is(err, ErrFailNode) {
		t.Errorf("fail Cook() error = %v, want ErrFailNode", err)
	}
	if _, err := Find("add").Cook(ctx, network.Inputs{[]any{"x"}}, network.Settings{"bias": 0.0}); err == nil {
		t.Error("add with string term: want error")
	}
	if _, err := Find("constant").Cook(ctx, nil, network.Settings{}); err == nil {
		t.Error("constant without value: want error")
	}
}

func TestDelayHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Find("delay").Cook(ctx, network.Inputs{1.0}, network.Settings{"ms": float64(time.Hour / time.Millisecond)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Cook() error = %v, want context.Canceled", err)
	}
}

func TestSpecMergesDefaults(t *testing.T) {
	spec := Find("add").Spec("sum", network.Settings{"extra": true})
	if spec.Settings["bias"] != 0.0 || spec.Settings["extra"] != true {
		t.Errorf("Settings = %v", spec.Settings)
	}
	if Find("add").Defaults["extra"] != nil {
		t.Error("Spec() mutated the kind's defaults")
	}
}
