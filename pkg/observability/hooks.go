// Package observability provides hooks for metrics and tracing of the
// command history and the graph evaluator.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the engine packages.
// Consumers register hooks at startup to receive events about command
// transitions and cook chains.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] is the bundled backend; it implements both interfaces
// and is what the cookgraph server exposes on /metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewPrometheusHooks(prometheus.NewRegistry())
//	    observability.SetHistoryHooks(hooks)
//	    observability.SetCookHooks(hooks)
//	    // ... run application
//	}
//
// Engine packages call hooks to emit events:
//
//	observability.Cook().OnChainStart(ctx, target, len(order))
//	// ... cook nodes ...
//	observability.Cook().OnChainComplete(ctx, target, clean, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// History Hooks
// =============================================================================

// HistoryHooks receives events from the command stack.
// Kind is the command kind as a string ("immediate" or "continuous").
type HistoryHooks interface {
	// OnDone records a command reaching the closed+done state for the first time.
	OnDone(kind string)

	// OnUndo and OnRedo record history traversal.
	OnUndo(kind string)
	OnRedo(kind string)

	// OnEvict records commands dropped from the bounded history.
	OnEvict(count int)

	// OnRejected records an Add refused because the lock was engaged.
	OnRejected()
}

// =============================================================================
// Cook Hooks
// =============================================================================

// CookHooks receives events from the graph evaluator.
type CookHooks interface {
	// OnChainStart records the start of a cook chain over nodes nodes.
	OnChainStart(ctx context.Context, target string, nodes int)

	// OnNodeCooked records a single node cook.
	OnNodeCooked(ctx context.Context, node, kind string, duration time.Duration, err error)

	// OnChainComplete records a settled chain.
	OnChainComplete(ctx context.Context, target string, clean bool, duration time.Duration, err error)

	// OnBusy records a cook request skipped because the lock was engaged.
	OnBusy(ctx context.Context, target string)

	// OnCycle records a cook request skipped because the subgraph is cyclic.
	OnCycle(ctx context.Context, target string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHistoryHooks is a no-op implementation of HistoryHooks.
type NoopHistoryHooks struct{}

func (NoopHistoryHooks) OnDone(string) {}
func (NoopHistoryHooks) OnUndo(string) {}
func (NoopHistoryHooks) OnRedo(string) {}
func (NoopHistoryHooks) OnEvict(int)   {}
func (NoopHistoryHooks) OnRejected()   {}

// NoopCookHooks is a no-op implementation of CookHooks.
type NoopCookHooks struct{}

func (NoopCookHooks) OnChainStart(context.Context, string, int)                            {}
func (NoopCookHooks) OnNodeCooked(context.Context, string, string, time.Duration, error)   {}
func (NoopCookHooks) OnChainComplete(context.Context, string, bool, time.Duration, error) {}
func (NoopCookHooks) OnBusy(context.Context, string)                                       {}
func (NoopCookHooks) OnCycle(context.Context, string)                                      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	historyHooks HistoryHooks = NoopHistoryHooks{}
	cookHooks    CookHooks    = NoopCookHooks{}
	hooksMu      sync.RWMutex
)

// SetHistoryHooks registers custom history hooks.
// This should be called once at application startup before any commands run.
func SetHistoryHooks(h HistoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		historyHooks = h
	}
}

// SetCookHooks registers custom cook hooks.
// This should be called once at application startup before any cook chains run.
func SetCookHooks(h CookHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cookHooks = h
	}
}

// History returns the registered history hooks.
func History() HistoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return historyHooks
}

// Cook returns the registered cook hooks.
func Cook() CookHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cookHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	historyHooks = NoopHistoryHooks{}
	cookHooks = NoopCookHooks{}
}
