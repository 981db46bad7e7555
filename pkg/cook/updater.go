package cook

import (
	"context"

	"github.com/matzehuels/cookgraph/pkg/loop"
	"github.com/matzehuels/cookgraph/pkg/network"
)

// Updater coalesces update requests into cooks of the network's visible
// node. It must only be used from loop tasks.
type Updater struct {
	ctx      context.Context
	eval     *Evaluator
	loop     *loop.Loop
	net      *network.Network
	onResult func(Result, error)

	scheduled bool
	inflight  bool
	again     bool
}

// NewUpdater creates an updater. onResult, if non-nil, receives every
// settled result.
func NewUpdater(ctx context.Context, eval *Evaluator, lp *loop.Loop, net *network.Network, onResult func(Result, error)) *Updater {
	return &Updater{
		ctx:      ctx,
		eval:     eval,
		loop:     lp,
		net:      net,
		onResult: onResult,
	}
}

// Request schedules an update. Repeated calls before the update runs are
// merged. A request made while a chain is in flight is deferred until the
// chain settles and then runs once.
func (u *Updater) Request() {
	if u.inflight {
		u.again = true
		return
	}
	if u.scheduled {
		return
	}
	u.scheduled = true
	u.loop.Post(u.run)
}

// Pending reports whether an update is scheduled or running.
func (u *Updater) Pending() bool { return u.scheduled || u.inflight || u.again }

func (u *Updater) run() {
	u.scheduled = false
	target := u.net.Visible()
	if target == nil {
		return
	}
	u.inflight = true
	f := u.eval.Start(u.ctx, u.loop, target)
	f.OnSettled(func(res Result, err error) {
		u.inflight = false
		if u.onResult != nil {
			u.onResult(res, err)
		}
		if u.again {
			u.again = false
			u.Request()
		}
	})
}
