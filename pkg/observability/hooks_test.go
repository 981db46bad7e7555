package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	h := NoopHistoryHooks{}
	h.OnDone("immediate")
	h.OnUndo("immediate")
	h.OnRedo("continuous")
	h.OnEvict(3)
	h.OnRejected()

	c := NoopCookHooks{}
	c.OnChainStart(ctx, "out", 4)
	c.OnNodeCooked(ctx, "add", "add", time.Millisecond, nil)
	c.OnChainComplete(ctx, "out", true, time.Millisecond, nil)
	c.OnBusy(ctx, "out")
	c.OnCycle(ctx, "out")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("History() should return NoopHistoryHooks by default")
	}
	if _, ok := Cook().(NoopCookHooks); !ok {
		t.Error("Cook() should return NoopCookHooks by default")
	}

	custom := NewPrometheusHooks(prometheus.NewRegistry())
	SetHistoryHooks(custom)
	SetCookHooks(custom)
	if History() != custom {
		t.Error("SetHistoryHooks should set custom hooks")
	}
	if Cook() != custom {
		t.Error("SetCookHooks should set custom hooks")
	}

	Reset()
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("Reset() should restore NoopHistoryHooks")
	}
	if _, ok := Cook().(NoopCookHooks); !ok {
		t.Error("Reset() should restore NoopCookHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := NewPrometheusHooks(prometheus.NewRegistry())
	SetCookHooks(custom)
	SetCookHooks(nil)

	if Cook() != custom {
		t.Error("SetCookHooks(nil) should not replace existing hooks")
	}
}

func TestPrometheusHooksRecord(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheusHooks(reg)

	p.OnDone("immediate")
	p.OnDone("immediate")
	p.OnUndo("immediate")
	p.OnEvict(2)
	p.OnRejected()
	p.OnBusy(ctx, "out")
	p.OnCycle(ctx, "out")
	p.OnCycle(ctx, "out")
	p.OnChainStart(ctx, "out", 5)
	p.OnNodeCooked(ctx, "a", "add", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(p.commands.WithLabelValues("done", "immediate")); got != 2 {
		t.Errorf("commands_total{done,immediate} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.evicted); got != 2 {
		t.Errorf("commands_evicted_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.chainsSkipped.WithLabelValues("cycle")); got != 2 {
		t.Errorf("chains_skipped_total{cycle} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.chainNodes); got != 5 {
		t.Errorf("chain_nodes = %v, want 5", got)
	}

	expected := `
# HELP cookgraph_commands_rejected_total Commands refused because the lock was engaged
# TYPE cookgraph_commands_rejected_total counter
cookgraph_commands_rejected_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "cookgraph_commands_rejected_total"); err != nil {
		t.Errorf("GatherAndCompare: %v", err)
	}
}
