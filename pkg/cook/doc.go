// Package cook evaluates a node network incrementally.
//
// # Overview
//
// Cooking a target node means bringing its outputs up to date. The
// [Evaluator] walks the target's upstream subgraph depth-first, producing
// a topological order (dependencies first, each node once), then cooks
// every node in that order that is dirty and not locked. Cooking a node
// writes its outputs, which marks its direct dependents dirty, so dirtiness
// flows forward through the chain as it runs.
//
// # Chains and the Lock
//
// A running chain holds a key on the shared [lock.Lock]. While it is held
// the command history refuses to add, execute, undo or redo commands, and
// a second chain reports [Result.Busy] instead of starting. The key is
// freed when the chain settles, including on cook failure or a panicking
// cooker.
//
// [Evaluator.Cook] runs a chain to completion on the calling goroutine.
// [Evaluator.Start] runs one node per [loop.Loop] task and returns a
// future, so other loop tasks interleave with the chain and observe the
// engaged lock.
//
// # Cycles
//
// A cyclic subgraph is not an error. The evaluator reports
// Result.Acyclic == false and cooks nothing. Locked nodes are opaque: the
// walk includes them but does not follow their inputs.
//
// # Updates
//
// [Updater] coalesces "update network" requests. Any number of
// [Updater.Request] calls within one loop turn schedule a single cook of
// the network's visible node.
package cook
