// Package pkg provides the core libraries for cookgraph, a lazily cooked
// node-graph engine with an undo history.
//
// # Overview
//
// A node network is a directed graph of nodes whose outputs feed other
// nodes' inputs. Editing a node marks it and everything downstream dirty;
// cooking a target recomputes only the dirty part of its upstream subgraph.
// Every edit is a command in a bounded undo history, and the history and
// the evaluator share one lock so that edits are refused while a cook is
// in flight. The pkg directory is organized as follows:
//
//  1. [network] - Nodes, typed ports, links and dirty tracking
//  2. [cook] - Subgraph ordering, the evaluator and the update coalescer
//  3. [command] - Commands, multi-commands and the undo stack
//  4. [edit] - Undoable network edits built on commands
//  5. [lock] - The single-holder lock shared by history and evaluator
//  6. [loop] - The single-threaded task loop and futures
//  7. [session] - Wiring of all of the above, plus snapshots
//  8. [render], [cache] - Graphviz rendering and its cache
//  9. [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
// The typical flow of an edit:
//
//	session.Apply(edit.SetSetting(...))
//	         ↓
//	    [command] stack records and executes the edit
//	         ↓
//	    [network] marks nodes dirty and notifies
//	         ↓
//	    [cook] updater queues one chain on the [loop]
//	         ↓
//	    evaluator cooks the visible node's dirty subgraph
//
// # Quick Start
//
//	s := session.New(session.Config{})
//	a, _ := s.Network().AddNode(network.NodeSpec{...})
//	s.Apply(edit.SetVisible(s.Network(), a.ID()))
//	s.Apply(edit.SetSetting(s.Network(), a.ID(), "value", 2.0))
//	s.Settle()
//	s.Undo()
//
// The cookgraph command (cmd/cookgraph) drives sessions from TOML scenario
// files and can serve them over HTTP.
package pkg
