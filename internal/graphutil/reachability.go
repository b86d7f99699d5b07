// Package graphutil adapts github.com/yourbasic/graph to the
// reachability query the Backedge Detector needs.
package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/tools/container/intsets"
)

// TransitiveSuccessors returns, for each vertex v of g (a graph of n
// vertices numbered 0..n-1), the set of vertices transitively reachable
// from v via g's directed edges, excluding v itself: the blocks that
// would close a cycle if they appeared as a predecessor of v.
//
// Algorithm: depth-first expansion from v following successors, with a
// visited set seeded with v to exclude self. Complexity is O(n·(n+m))
// for a graph with n vertices and m edges, acceptable for
// translation-unit-sized function bodies.
func TransitiveSuccessors(g *graph.Mutable) [][]int {
	n := g.Order()
	out := make([][]int, n)
	for v := 0; v < n; v++ {
		var visited intsets.Sparse
		visited.Insert(v)
		stack := []int{v}
		var reached []int
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			g.Visit(cur, func(w int, _ int64) bool {
				if visited.Insert(w) {
					reached = append(reached, w)
					stack = append(stack, w)
				}
				return false
			})
		}
		out[v] = reached
	}
	return out
}
