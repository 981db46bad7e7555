// Package network provides the node network evaluated by the cook engine:
// nodes with typed inputs and outputs, the links between them, and the
// dirty tracking that drives incremental re-evaluation.
//
// # Overview
//
// A [Node] has ordered inputs ([Input] holds at most one link, [MultiInput]
// an ordered list), ordered [Output]s, an opaque [Settings] bag and a
// [Cooker] that computes output values from input values. Links always run
// from an Output to an input ([Sink]):
//
//	net := network.New()
//	a, _ := net.AddNode(network.NodeSpec{
//	    ID: "a", Kind: "constant",
//	    Outputs: []network.PortSpec{{Name: "out", Type: "number"}},
//	})
//	sum, _ := net.AddNode(network.NodeSpec{
//	    ID: "sum", Kind: "add",
//	    Inputs:  []network.PortSpec{{Name: "terms", Type: "number", Multi: true}},
//	    Outputs: []network.PortSpec{{Name: "out", Type: "number"}},
//	})
//	net.Connect(a.Output("out"), sum.Input("terms"))
//
// # Dirty Tracking
//
// A node is dirty when its cached outputs are stale. Two flags feed
// [Node.Dirty]: dirtyInput, set when a linked upstream output changes
// value or a link is added or removed, and dirtySettings, set by
// [Network.SetSetting]. Cooking a node writes its outputs with
// [Output.SetValue], which marks every directly linked downstream node
// dirty, and then clears both flags on the cooked node.
//
// Locked nodes are skipped by the evaluator but still receive dirty
// notifications, so unlocking them is enough to bring them up to date.
//
// # Change Notifications
//
// Every mutating Network method fires the listeners registered with
// [Network.OnChange]. The session wires this to a coalescing update
// request, so a burst of edits results in a single cook. Value
// propagation during a cook does not fire change listeners.
//
// # Concurrency
//
// Network instances are not safe for concurrent use. The engine routes
// all access through a single-threaded loop.
package network
