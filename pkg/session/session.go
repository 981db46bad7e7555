// Package session wires the engine together: one node network, one command
// history and one evaluator sharing a single lock, all driven by one loop.
//
// # Architecture
//
// A Session owns:
//   - a [lock.Lock] shared by the [command.Stack] and the [cook.Evaluator]
//   - a [loop.Loop] that runs every engine mutation
//   - a [network.Network] whose change notifications feed a coalescing
//     [cook.Updater]
//
// Edits go through the history ([Session.Apply]), which changes the
// network, which requests an update, which cooks the visible node
// asynchronously on the loop. While that chain runs the shared lock is
// engaged and the history rejects new commands with a BUSY error.
//
// # Usage
//
//	s := session.New(session.Config{HistoryLimit: 50})
//	// ... populate s.Network() ...
//	s.Apply(edit.SetSetting(s.Network(), "gain", "value", 2.0))
//	s.Settle()                  // run the queued cook
//	fmt.Println(s.Snapshot().LastCook)
//	s.Undo()
//
// # Concurrency
//
// Session methods must run on the loop: either call them from the
// goroutine that drives the loop (as the CLI does, settling with
// [Session.Settle]) or wrap them in [loop.Loop.Do] from other goroutines
// (as the HTTP server does).
package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cookgraph/pkg/command"
	"github.com/matzehuels/cookgraph/pkg/cook"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/lock"
	"github.com/matzehuels/cookgraph/pkg/loop"
	"github.com/matzehuels/cookgraph/pkg/network"
	"github.com/matzehuels/cookgraph/pkg/observability"
)

// Config holds the engine settings a session needs.
type Config struct {
	// HistoryLimit bounds the undo history. Zero means command.DefaultLimit.
	HistoryLimit int
}

// Option configures a Session.
type Option func(*options)

type options struct {
	ctx          context.Context
	logger       *log.Logger
	historyHooks observability.HistoryHooks
	cookHooks    observability.CookHooks
}

// WithContext sets the context handed to cookers by update chains.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithLogger sets the logger for the history and the evaluator.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHooks sets history and cook hooks. Nil values fall back to the
// globally registered hooks.
func WithHooks(h observability.HistoryHooks, c observability.CookHooks) Option {
	return func(o *options) {
		o.historyHooks = h
		o.cookHooks = c
	}
}

// Session is one editing session over a node network.
type Session struct {
	lock    *lock.Lock
	loop    *loop.Loop
	net     *network.Network
	stack   *command.Stack
	eval    *cook.Evaluator
	updater *cook.Updater
	logger  *log.Logger

	last      *cook.Result
	lastErr   error
	lastAt    time.Time
	cooks     int
	listeners []func()
}

// New creates a session with an empty network.
func New(cfg Config, opts ...Option) *Session {
	o := options{ctx: context.Background(), logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	s := &Session{
		lock:   lock.New(),
		loop:   loop.New(),
		net:    network.New(),
		logger: o.logger,
	}
	s.stack = command.NewStack(s.lock,
		command.WithLimit(cfg.HistoryLimit),
		command.WithLogger(o.logger),
		command.WithHooks(o.historyHooks),
	)
	s.eval = cook.New(s.lock,
		cook.WithLogger(o.logger),
		cook.WithHooks(o.cookHooks),
	)
	s.updater = cook.NewUpdater(o.ctx, s.eval, s.loop, s.net, s.record)
	s.net.OnChange(s.updater.Request)
	s.stack.Subscribe(s.notify)
	return s
}

func (s *Session) Loop() *loop.Loop           { return s.loop }
func (s *Session) Network() *network.Network  { return s.net }
func (s *Session) Stack() *command.Stack      { return s.stack }
func (s *Session) Evaluator() *cook.Evaluator { return s.eval }
func (s *Session) Lock() *lock.Lock           { return s.lock }
func (s *Session) Updater() *cook.Updater     { return s.updater }

// Subscribe registers fn to run after history changes and settled cooks.
func (s *Session) Subscribe(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Apply adds cmd to the history and executes it with args. An Immediate
// command whose effect fails is removed from the history again. A
// Continuous command stays open; drive it with Execute and finish it with
// Close.
func (s *Session) Apply(cmd *command.Command, args ...any) error {
	if cmd == nil {
		return errs.New(errs.ErrCodeInvalidInput, "apply: nil command")
	}
	if err := s.stack.Add(cmd); err != nil {
		return err
	}
	if err := cmd.Execute(args...); err != nil {
		if cmd.Open() && cmd.Kind() == command.Immediate {
			if abortErr := s.stack.Abort(); abortErr != nil {
				s.logger.Error("abort failed command", "command", cmd.Name(), "error", abortErr)
			}
		}
		return err
	}
	s.logger.Debug("applied command", "command", cmd.Name())
	return nil
}

// Undo reverts the current command. It does nothing while a cook is in
// flight or when there is nothing to undo.
func (s *Session) Undo() error { return s.stack.Undo() }

// Redo re-applies the next command. It does nothing while a cook is in
// flight or when there is nothing to redo.
func (s *Session) Redo() error { return s.stack.Redo() }

// Update requests a cook of the visible node.
func (s *Session) Update() { s.updater.Request() }

// Cook synchronously cooks the visible node and records the result.
func (s *Session) Cook(ctx context.Context) (cook.Result, error) {
	res, err := s.eval.Cook(ctx, s.net.Visible())
	s.record(res, err)
	return res, err
}

// Settle runs queued loop tasks until none remain and returns how many ran.
func (s *Session) Settle() int { return s.loop.Drain() }

// LastCook returns the most recent settled cook result, if any.
func (s *Session) LastCook() (cook.Result, bool) {
	if s.last == nil {
		return cook.Result{}, false
	}
	return *s.last, true
}

// LastError returns the error of the most recent settled cook.
func (s *Session) LastError() error { return s.lastErr }

// Cooks returns the number of settled cook requests so far.
func (s *Session) Cooks() int { return s.cooks }

func (s *Session) record(res cook.Result, err error) {
	s.last = &res
	s.lastErr = err
	s.lastAt = time.Now()
	s.cooks++
	if err != nil {
		s.logger.Warn("cook failed", "error", errs.UserMessage(err))
	}
	s.notify()
}
