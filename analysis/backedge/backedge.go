// Package backedge implements the Backedge Detector: for
// every block of every function, the set of blocks that would close a
// cycle if they appeared as one of its predecessors.
package backedge

import (
	"github.com/ganler/mkint/ir"
	"github.com/ganler/mkint/internal/graphutil"
	"github.com/yourbasic/graph"
)

// Sets holds the per-function backedge information the Range Engine
// consults to skip backedge predecessors when building block
// environments.
type Sets struct {
	// perBlock[b] is the set of blocks transitively reachable from b,
	// i.e. blocks that would close a cycle if seen as a predecessor of b.
	perBlock map[*ir.Block]map[*ir.Block]bool
}

// IsBackedge reports whether pred would close a cycle as a predecessor of
// b: pred ∈ backedges[b].
func (s *Sets) IsBackedge(b, pred *ir.Block) bool {
	set := s.perBlock[b]
	if set == nil {
		return false
	}
	return set[pred]
}

// Compute runs the Backedge Detector over every function of m.
func Compute(m *ir.Module) *Sets {
	s := &Sets{perBlock: make(map[*ir.Block]map[*ir.Block]bool)}
	for _, f := range m.Functions {
		s.computeFunction(f)
	}
	return s
}

func (s *Sets) computeFunction(f *ir.Function) {
	n := len(f.Blocks)
	if n == 0 {
		return
	}
	g := graph.New(n)
	for _, b := range f.Blocks {
		for _, succ := range b.Succs() {
			g.Add(b.Index, succ.Index)
		}
	}
	reach := graphutil.TransitiveSuccessors(g)
	for _, b := range f.Blocks {
		set := make(map[*ir.Block]bool, len(reach[b.Index]))
		for _, idx := range reach[b.Index] {
			set[f.Blocks[idx]] = true
		}
		s.perBlock[b] = set
	}
}
