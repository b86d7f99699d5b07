package rangeanalysis

import (
	"github.com/ganler/mkint/analysis/backedge"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

// entryEnv builds the environment a block sees on entry: the union of
// every non-backedge predecessor's stored exit environment, narrowed per edge by that predecessor's terminating Branch or
// Switch when one applies.
func entryEnv(s *state.State, bs *backedge.Sets, f *ir.Function, block *ir.Block) map[ir.Value]crange.Range {
	merged := make(map[ir.Value]crange.Range)
	for _, pred := range block.Preds() {
		if bs.IsBackedge(block, pred) {
			continue
		}
		edge := narrowedEdgeEnv(s, pred, block)
		for k, v := range edge {
			if existing, ok := merged[k]; ok {
				merged[k] = crange.Union(existing, v)
			} else {
				merged[k] = v
			}
		}
	}
	return merged
}

// narrowedEdgeEnv returns pred's stored exit environment, narrowed by the
// condition pred's terminator imposes on the edge into target. It never mutates pred's stored
// environment.
func narrowedEdgeEnv(s *state.State, pred, target *ir.Block) map[ir.Value]crange.Range {
	base := s.Env(pred.Func, pred)
	switch term := pred.Terminator().(type) {
	case *ir.Branch:
		return narrowByBranch(s, pred.Func, base, term, target)
	case *ir.Switch:
		return narrowBySwitch(s, base, term, target)
	default:
		return base
	}
}

func narrowByBranch(s *state.State, f *ir.Function, base map[ir.Value]crange.Range, br *ir.Branch, target *ir.Block) map[ir.Value]crange.Range {
	cmp, ok := br.Cond.(*ir.Cmp)
	if !ok {
		return base
	}
	pred := cmp.Pred
	trueTarget := target == br.TrueSucc
	if !trueTarget {
		pred = pred.Inverse()
	}

	xRange := Resolve(s, base, cmp.X)
	yRange := Resolve(s, base, cmp.Y)

	allowedX := crange.AllowedRegion(toCrangePredicate(pred), yRange)
	narrowedX := crange.Intersect(xRange, allowedX)
	allowedY := crange.AllowedRegion(toCrangePredicate(pred).Swapped(), xRange)
	narrowedY := crange.Intersect(yRange, allowedY)

	if (narrowedX.IsEmpty() && !xRange.IsEmpty()) || (narrowedY.IsEmpty() && !yRange.IsEmpty()) {
		s.ImpossibleBranches[cmp] = trueTarget
	}

	out := make(map[ir.Value]crange.Range, len(base)+2)
	for k, v := range base {
		out[k] = v
	}
	out[cmp.X] = narrowedX
	out[cmp.Y] = narrowedY
	return out
}

func narrowBySwitch(s *state.State, base map[ir.Value]crange.Range, sw *ir.Switch, target *ir.Block) map[ir.Value]crange.Range {
	condRange := Resolve(s, base, sw.Cond)

	allValues := crange.NewEmpty(condRange.Bits)
	matched := crange.NewEmpty(condRange.Bits)
	for _, c := range sw.Cases {
		v := crange.NewPoint(c.Value.Bits, uint64FromConstant(c.Value))
		allValues = crange.Union(allValues, v)
		if c.Succ == target {
			matched = crange.Union(matched, v)
		}
	}

	var narrowed crange.Range
	switch {
	case target == sw.Default:
		narrowed = crange.Union(condRange, crange.Inverse(allValues))
	case matched.IsEmpty():
		return base
	default:
		narrowed = matched
	}

	out := make(map[ir.Value]crange.Range, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[sw.Cond] = narrowed
	return out
}

func uint64FromConstant(c *ir.Constant) uint64 {
	return bigToUint64(c.Value, c.Bits)
}

// Resolve returns v's currently-known range: exact for a Constant, the
// interprocedural or global summary for an Argument/GlobalScalar, or its
// entry in env for anything computed by another instruction. A missing env entry means "not yet computed this round" and
// resolves to bottom, which is safe since Union with empty is a no-op
// join. Exported so analysis/errcheck's binary-instruction sweep
// can read the same operand ranges the Range Engine computed, without
// duplicating the Constant/GlobalScalar/Argument switch.
func Resolve(s *state.State, env map[ir.Value]crange.Range, v ir.Value) crange.Range {
	switch x := v.(type) {
	case *ir.Constant:
		return crange.NewPoint(x.Bits, bigToUint64(x.Value, x.Bits))
	case *ir.GlobalScalar:
		return s.GlobalRange[x]
	case *ir.Argument:
		return s.ArgRanges[x]
	default:
		if r, ok := env[v]; ok {
			return r
		}
		return crange.NewEmpty(widthOfValue(v))
	}
}

func widthOfValue(v ir.Value) uint32 {
	if it, ok := ir.IsInteger(v.Type()); ok {
		return it.Bits
	}
	return 32
}
