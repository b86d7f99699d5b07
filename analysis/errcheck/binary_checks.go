package errcheck

import (
	"math/big"

	"github.com/ganler/mkint/analysis/rangeanalysis"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

// CheckBinaryInstructions walks every BinOp in every analyzed function
// and flags divide-by-zero, bad-shift, and overflow directly from the
// operand ranges the Range Engine already computed in each block's final
// environment. This supplements the module-level findings (impossible
// branches, array OOB) with per-instruction overflow, divide-by-zero,
// and bad-shift checks.
func CheckBinaryInstructions(s *state.State) {
	for f := range s.AnalysisTargets {
		for _, block := range f.Blocks {
			env := s.Env(f, block)
			for _, instr := range block.Instrs {
				bin, ok := instr.(*ir.BinOp)
				if !ok {
					continue
				}
				checkBinOp(s, env, bin)
			}
		}
	}
}

func checkBinOp(s *state.State, env map[ir.Value]crange.Range, bin *ir.BinOp) {
	x := rangeanalysis.Resolve(s, env, bin.X)
	y := rangeanalysis.Resolve(s, env, bin.Y)
	if x.IsEmpty() || y.IsEmpty() {
		return
	}
	x, y = crange.Promote(x, y)

	switch bin.Op {
	case ir.UDiv, ir.SDiv, ir.URem, ir.SRem:
		if y.Contains(0) {
			s.Module.Meta.Set(ir.ErrorChannel, bin, ir.ErrDivideByZero)
		}
	case ir.Shl, ir.LShr, ir.AShr:
		if y.UMax() >= uint64(bin.ResBits) {
			s.Module.Meta.Set(ir.ErrorChannel, bin, ir.ErrBadShift)
		}
	case ir.Add, ir.Sub, ir.Mul:
		if mayOverflow(bin.Op, x, y, bin.ResBits) {
			s.Module.Meta.Set(ir.ErrorChannel, bin, ir.ErrIntegerOverflow)
		}
	}
}

// mayOverflow reports whether the exact (unmasked) result of x Op y can
// fall outside [0, 2^bits - 1], recomputing the same corner-based bound
// internal/crange.Transfer folds internally but keeping the pre-mask
// bounds instead of widening them to Full, since Transfer's job is a
// sound result range and this check's job is "did that soundness require
// wrapping".
func mayOverflow(op ir.BinOpKind, x, y crange.Range, bits uint32) bool {
	lx, hx := new(big.Int).SetUint64(x.UMin()), new(big.Int).SetUint64(x.UMax())
	ly, hy := new(big.Int).SetUint64(y.UMin()), new(big.Int).SetUint64(y.UMax())

	var lo, hi *big.Int
	switch op {
	case ir.Add:
		lo = new(big.Int).Add(lx, ly)
		hi = new(big.Int).Add(hx, hy)
	case ir.Sub:
		lo = new(big.Int).Sub(lx, hy)
		hi = new(big.Int).Sub(hx, ly)
	case ir.Mul:
		corners := []*big.Int{
			new(big.Int).Mul(lx, ly), new(big.Int).Mul(lx, hy),
			new(big.Int).Mul(hx, ly), new(big.Int).Mul(hx, hy),
		}
		lo, hi = corners[0], corners[0]
		for _, c := range corners[1:] {
			if c.Cmp(lo) < 0 {
				lo = c
			}
			if c.Cmp(hi) > 0 {
				hi = c
			}
		}
	default:
		return false
	}

	if lo.Sign() < 0 {
		return true
	}
	domainMax := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	return hi.Cmp(domainMax) > 0
}
