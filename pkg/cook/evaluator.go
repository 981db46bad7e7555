package cook

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/lock"
	"github.com/matzehuels/cookgraph/pkg/loop"
	"github.com/matzehuels/cookgraph/pkg/network"
	"github.com/matzehuels/cookgraph/pkg/observability"
)

// Result describes a settled cook request.
type Result struct {
	Time    []time.Duration // per cooked node, in chain order
	Cooked  []string        // IDs of cooked nodes, in chain order
	Clean   bool            // the target needed no work
	Acyclic bool            // false if the subgraph had a cycle and nothing ran
	Busy    bool            // the lock was engaged and nothing ran
}

// Total returns the summed cook time.
func (r Result) Total() time.Duration {
	var d time.Duration
	for _, t := range r.Time {
		d += t
	}
	return d
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the evaluator's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks overrides the globally registered cook hooks.
func WithHooks(h observability.CookHooks) Option {
	return func(e *Evaluator) {
		if h != nil {
			e.hooks = h
		}
	}
}

// Evaluator runs cook chains guarded by a shared lock.
type Evaluator struct {
	lock   *lock.Lock
	logger *log.Logger
	hooks  observability.CookHooks
}

// New creates an evaluator that holds lk for the duration of every chain.
// A nil lk gets a fresh private lock.
func New(lk *lock.Lock, opts ...Option) *Evaluator {
	if lk == nil {
		lk = lock.New()
	}
	e := &Evaluator{
		lock:   lk,
		logger: log.Default(),
		hooks:  observability.Cook(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lock returns the evaluator's lock.
func (e *Evaluator) Lock() *lock.Lock { return e.lock }

// Cook brings target up to date on the calling goroutine.
//
// A busy lock or a cyclic subgraph is reported in the result with a nil
// error. A failing node aborts the chain; the error carries code
// COOK_FAILED and nodes after the failure are not cooked.
func (e *Evaluator) Cook(ctx context.Context, target *network.Node) (Result, error) {
	c, res, ok := e.begin(ctx, target)
	if !ok {
		return res, nil
	}
	defer c.finish(ctx)
	for c.step(ctx) {
	}
	return c.res, c.err
}

// Start brings target up to date asynchronously, cooking one node per
// loop task. The returned future settles with the same result Cook would
// produce.
func (e *Evaluator) Start(ctx context.Context, lp *loop.Loop, target *network.Node) *loop.Future[Result] {
	c, res, ok := e.begin(ctx, target)
	if !ok {
		return loop.Resolved(res, nil)
	}
	f := loop.NewFuture[Result]()
	var next func()
	next = func() {
		if c.step(ctx) {
			lp.Post(next)
			return
		}
		c.finish(ctx)
		f.Resolve(c.res, c.err)
	}
	lp.Post(next)
	return f
}

// chain is one in-flight cook of a target's subgraph.
type chain struct {
	e      *Evaluator
	target *network.Node
	order  []*network.Node
	pos    int
	key    lock.Key
	start  time.Time
	res    Result
	err    error
	freed  bool
}

func (e *Evaluator) begin(ctx context.Context, target *network.Node) (*chain, Result, bool) {
	if target == nil {
		return nil, Result{Clean: true, Acyclic: true}, false
	}
	if e.lock.Locked() {
		e.hooks.OnBusy(ctx, target.ID())
		e.logger.Debug("cook skipped, lock engaged", "target", target.ID())
		return nil, Result{Busy: true}, false
	}
	w := Subgraph(target)
	if !w.Acyclic {
		e.hooks.OnCycle(ctx, target.ID())
		e.logger.Warn("cook skipped, cycle detected", "target", target.ID())
		return nil, Result{Acyclic: false}, false
	}

	c := &chain{
		e:      e,
		target: target,
		order:  w.Order,
		key:    e.lock.Lock(),
		start:  time.Now(),
		res:    Result{Acyclic: true},
	}
	e.hooks.OnChainStart(ctx, target.ID(), len(w.Order))
	e.logger.Debug("cook chain started", "target", target.ID(), "nodes", len(w.Order))
	return c, Result{}, true
}

// step cooks the next node in the order and reports whether more steps
// remain.
func (c *chain) step(ctx context.Context) bool {
	if c.err != nil || c.pos >= len(c.order) {
		return false
	}
	n := c.order[c.pos]
	c.pos++

	if n.Locked() || !n.Dirty() {
		if n == c.target {
			c.res.Clean = true
		}
		return c.pos < len(c.order)
	}

	start := time.Now()
	err := cookNode(ctx, n)
	d := time.Since(start)
	c.e.hooks.OnNodeCooked(ctx, n.ID(), n.Kind(), d, err)
	if err != nil {
		c.err = errs.Wrap(errs.ErrCodeCookFailed, err, "cook %s", n.ID())
		c.e.logger.Error("cook failed", "node", n.ID(), "error", err)
		return false
	}
	c.res.Time = append(c.res.Time, d)
	c.res.Cooked = append(c.res.Cooked, n.ID())
	c.e.logger.Debug("cooked node", "node", n.ID(), "kind", n.Kind(), "duration", d)
	return c.pos < len(c.order)
}

// finish frees the chain's key. It is safe to call more than once.
func (c *chain) finish(ctx context.Context) {
	if c.freed {
		return
	}
	c.freed = true
	if err := c.e.lock.Free(c.key); err != nil {
		c.e.logger.Error("free cook key", "error", err)
	}
	d := time.Since(c.start)
	c.e.hooks.OnChainComplete(ctx, c.target.ID(), c.res.Clean, d, c.err)
	if c.err == nil {
		c.e.logger.Debug("cook chain complete",
			"target", c.target.ID(),
			"cooked", len(c.res.Cooked),
			"clean", c.res.Clean,
			"duration", d)
	}
}

// cookNode runs a single node, converting a panicking cooker into an error.
func cookNode(ctx context.Context, n *network.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cooker panic: %v", r)
		}
	}()
	return n.Cook(ctx)
}
