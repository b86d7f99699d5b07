// Package state owns the analysis state that lives for one module run,
// shared by the taint, range, and error-marking components the way a
// dataflow analyzer's cache centralizes one run's maps for its passes.
package state

import (
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

// blockEnv maps a value to its currently-known range within one block.
type blockEnv map[ir.Value]crange.Range

// State is the single mutable owner of every analysis map. It is not
// safe for concurrent use.
type State struct {
	Module *ir.Module

	// TaintFuncs is the set of functions whose behavior is considered
	// tainted. Monotonic: once added, never removed.
	TaintFuncs map[*ir.Function]bool

	// FuncTaintSources maps a source function to the synthesized
	// taint-source call instructions created for its integer parameters.
	FuncTaintSources map[*ir.Function][]*ir.Call

	// BlockRanges is block_ranges: function -> block -> value -> crange.
	BlockRanges map[*ir.Function]map[*ir.Block]blockEnv

	// FuncReturnRange is func_return_range: function -> crange.
	FuncReturnRange map[*ir.Function]crange.Range

	// ArgRanges is arg_ranges: argument -> crange, the interprocedural
	// summary of a parameter's incoming value across every call site,
	// refined round over round by the whole-module fixed point.
	ArgRanges map[*ir.Argument]crange.Range

	// GlobalRange is global_range: global scalar -> crange.
	GlobalRange map[*ir.GlobalScalar]crange.Range

	// GlobalArrayRanges is global_array_ranges: global array -> per-
	// element crange, in element order.
	GlobalArrayRanges map[*ir.GlobalArray][]crange.Range

	// ImpossibleBranches maps a Cmp instruction to the boolean branch
	// shown impossible (true means the true-branch is unreachable).
	ImpossibleBranches map[*ir.Cmp]bool

	// GepOOB is the set of GEP instructions whose index range exceeds the
	// target array's length.
	GepOOB map[*ir.GEP]bool

	// AnalysisTargets is the set of functions selected for range
	// analysis: those returning integer, or in TaintFuncs.
	AnalysisTargets map[*ir.Function]bool
}

// New returns an empty State bound to m.
func New(m *ir.Module) *State {
	return &State{
		Module:             m,
		TaintFuncs:         make(map[*ir.Function]bool),
		FuncTaintSources:   make(map[*ir.Function][]*ir.Call),
		BlockRanges:        make(map[*ir.Function]map[*ir.Block]blockEnv),
		FuncReturnRange:    make(map[*ir.Function]crange.Range),
		ArgRanges:          make(map[*ir.Argument]crange.Range),
		GlobalRange:        make(map[*ir.GlobalScalar]crange.Range),
		GlobalArrayRanges:  make(map[*ir.GlobalArray][]crange.Range),
		ImpossibleBranches: make(map[*ir.Cmp]bool),
		GepOOB:             make(map[*ir.GEP]bool),
		AnalysisTargets:    make(map[*ir.Function]bool),
	}
}

// Env returns the block environment for (f, b), creating it empty if
// absent — the "empty" bottom a block starts from at its first visit.
func (s *State) Env(f *ir.Function, b *ir.Block) blockEnv {
	fm, ok := s.BlockRanges[f]
	if !ok {
		fm = make(map[*ir.Block]blockEnv)
		s.BlockRanges[f] = fm
	}
	env, ok := fm[b]
	if !ok {
		env = make(blockEnv)
		fm[b] = env
	}
	return env
}

// SetEnv replaces the block environment for (f, b) wholesale, used when
// committing a freshly-recomputed environment after a round changes it.
func (s *State) SetEnv(f *ir.Function, b *ir.Block, env blockEnv) {
	fm, ok := s.BlockRanges[f]
	if !ok {
		fm = make(map[*ir.Block]blockEnv)
		s.BlockRanges[f] = fm
	}
	fm[b] = env
}

// RangeOf looks up v's range in (f, b)'s environment, or the empty range
// of v's width if absent.
func (s *State) RangeOf(f *ir.Function, b *ir.Block, v ir.Value) crange.Range {
	env := s.Env(f, b)
	if r, ok := env[v]; ok {
		return r
	}
	bits := widthOf(v)
	return crange.NewEmpty(bits)
}

func widthOf(v ir.Value) uint32 {
	if it, ok := ir.IsInteger(v.Type()); ok {
		return it.Bits
	}
	return 32
}

// EnvsEqual reports whether two block environments hold pointwise-equal
// ranges, used by the fixed-point equality check.
func EnvsEqual(a, b map[ir.Value]crange.Range) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || other != v {
			return false
		}
	}
	return true
}
