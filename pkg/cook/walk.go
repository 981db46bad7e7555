package cook

import "github.com/matzehuels/cookgraph/pkg/network"

// Walk is the result of a subgraph traversal.
type Walk struct {
	// Order lists the target and its upstream nodes, dependencies first.
	// It is empty when the subgraph is cyclic.
	Order []*network.Node
	// Acyclic is false when a cycle was found upstream of the target.
	Acyclic bool
}

// Subgraph walks the dependencies of target depth-first. Locked nodes are
// included but their dependencies are not followed.
func Subgraph(target *network.Node) Walk {
	if target == nil {
		return Walk{Acyclic: true}
	}

	const (
		white = iota
		gray
		black
	)

	color := make(map[*network.Node]int)
	var order []*network.Node
	var hasCycle bool

	var dfs func(n *network.Node)
	dfs = func(n *network.Node) {
		color[n] = gray
		if !n.Locked() {
			for _, dep := range n.Dependencies() {
				switch color[dep] {
				case white:
					dfs(dep)
				case gray:
					hasCycle = true
				}
				if hasCycle {
					return
				}
			}
		}
		color[n] = black
		order = append(order, n)
	}

	dfs(target)
	if hasCycle {
		return Walk{Acyclic: false}
	}
	return Walk{Order: order, Acyclic: true}
}
