package transform

import "github.com/matzehuels/pipemerge/pkg/dag"

// FindCycleFrom searches for a directed cycle reachable from any of the given
// source nodes and returns the node IDs along it (first node repeated at the
// end), or nil if none is reachable. Unknown sources are ignored.
//
// Sources are explored in the order given, children in insertion order, so
// the reported cycle is deterministic.
func FindCycleFrom(g *dag.DAG, sources ...string) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var stack []string
	var cycle []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		stack = append(stack, node)
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				for i, id := range stack {
					if id == child {
						cycle = append(append([]string{}, stack[i:]...), child)
						break
					}
				}
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	for _, src := range sources {
		if _, ok := g.Node(src); !ok || color[src] != white {
			continue
		}
		if dfs(src) {
			return cycle
		}
	}
	return nil
}
