package rangeanalysis

import (
	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

// funcRound carries the per-round, per-function bookkeeping that outlives
// a single block: whether any interprocedural summary (an argument range
// or a global scalar or array range) changed (which
// keeps the whole-module fixed point going even after every block
// environment has stabilized) and the accumulated join of every Return
// value seen so far this round.
type funcRound struct {
	summaryChanged bool
	returnAcc      crange.Range
	haveReturn     bool
}

// processInstruction evaluates instr against env (the block's working
// environment, mutated in place for instructions that produce a value)
// and updates whatever global state.State maps the instruction's kind
// touches.
func processInstruction(s *state.State, cfg *config.Config, fr *funcRound, env map[ir.Value]crange.Range, instr ir.Instruction) {
	switch x := instr.(type) {
	case *ir.BinOp:
		lhs, rhs := crange.Promote(Resolve(s, env, x.X), Resolve(s, env, x.Y))
		env[x] = crange.Transfer(toCrangeOp(x.Op), lhs, rhs)

	case *ir.Cast:
		src := Resolve(s, env, x.X)
		switch x.Kind {
		case ir.Trunc:
			env[x] = crange.Trunc(src, x.DstBits)
		case ir.ZExt:
			env[x] = crange.ZExt(src, x.DstBits)
		case ir.SExt:
			env[x] = crange.SExt(src, x.DstBits)
		}

	case *ir.Select:
		env[x] = crange.Union(Resolve(s, env, x.T), Resolve(s, env, x.F))

	case *ir.Phi:
		acc := crange.NewEmpty(x.Bits)
		for _, e := range x.Edges {
			acc = crange.Union(acc, Resolve(s, env, e.Value))
		}
		env[x] = acc

	case *ir.Load:
		env[x] = loadRange(s, cfg, env, x)

	case *ir.Store:
		storeRange(s, fr, env, x)

	case *ir.Call:
		callRange(s, fr, env, x)

	case *ir.Return:
		if x.Val == nil {
			return
		}
		v := Resolve(s, env, x.Val)
		if !fr.haveReturn {
			fr.returnAcc = v
			fr.haveReturn = true
		} else {
			fr.returnAcc = crange.Union(fr.returnAcc, v)
		}
	}
}

func loadRange(s *state.State, cfg *config.Config, env map[ir.Value]crange.Range, l *ir.Load) crange.Range {
	switch addr := l.Addr.(type) {
	case *ir.GlobalScalar:
		return s.GlobalRange[addr]
	case *ir.GEP:
		checkGepOOB(s, cfg, env, addr)
		elems := s.GlobalArrayRanges[addr.Base]
		idx := gepIndex(addr)
		idxRange := Resolve(s, env, idx)
		if idxRange.Kind == crange.Point && int(idxRange.Lo) < len(elems) {
			return elems[idxRange.Lo]
		}
		acc := crange.NewEmpty(addr.Base.ElementBits)
		for _, e := range elems {
			acc = crange.Union(acc, e)
		}
		return acc
	}
	return crange.NewFull(l.Bits)
}

func storeRange(s *state.State, fr *funcRound, env map[ir.Value]crange.Range, st *ir.Store) {
	val := Resolve(s, env, st.Val)
	switch addr := st.Addr.(type) {
	case *ir.GlobalScalar:
		joined := crange.Union(s.GlobalRange[addr], val)
		if joined != s.GlobalRange[addr] {
			s.GlobalRange[addr] = joined
			fr.summaryChanged = true
		}
	case *ir.GEP:
		elems := s.GlobalArrayRanges[addr.Base]
		idx := gepIndex(addr)
		idxRange := Resolve(s, env, idx)
		lo, hi := 0, len(elems)
		if idxRange.Kind == crange.Point && int(idxRange.Lo) < len(elems) {
			lo, hi = int(idxRange.Lo), int(idxRange.Lo)+1
		}
		for i := lo; i < hi; i++ {
			if joined := crange.Union(elems[i], val); joined != elems[i] {
				elems[i] = joined
				fr.summaryChanged = true
			}
		}
	}
}

// gepIndex returns the element-index operand of a two-operand GEP. A GEP
// with a single index has that index used as the element index.
func gepIndex(g *ir.GEP) ir.Value {
	if len(g.Indices) >= 2 {
		return g.Indices[1]
	}
	return g.Indices[0]
}

// checkGepOOB flags g in s.GepOOB when its index range's maximum exceeds
// the target array's last valid element. cfg.SignedIndices switches
// between the index operand's unsigned and signed maximum.
func checkGepOOB(s *state.State, cfg *config.Config, env map[ir.Value]crange.Range, g *ir.GEP) {
	idxRange := Resolve(s, env, gepIndex(g))
	if idxRange.IsEmpty() {
		return
	}
	last := uint64(g.Base.Length - 1)
	if cfg.SignedIndices && g.IndexSigned {
		if idxRange.SMin() < 0 || idxRange.SMax() > int64(last) {
			s.GepOOB[g] = true
		}
		return
	}
	if idxRange.UMax() > last {
		s.GepOOB[g] = true
	}
}

func callRange(s *state.State, fr *funcRound, env map[ir.Value]crange.Range, c *ir.Call) {
	if c.Callee == nil {
		return
	}
	if !c.Callee.IsDeclaration() {
		for i, argVal := range c.Args {
			if i >= len(c.Callee.Params) {
				break
			}
			param := c.Callee.Params[i]
			if param.Bits == 0 {
				continue
			}
			incoming := Resolve(s, env, argVal)
			joined := crange.Union(s.ArgRanges[param], incoming)
			if joined != s.ArgRanges[param] {
				s.ArgRanges[param] = joined
				fr.summaryChanged = true
			}
		}
	}
	if c.Callee.ReturnBits != 0 {
		env[c] = s.FuncReturnRange[c.Callee]
	}
}
