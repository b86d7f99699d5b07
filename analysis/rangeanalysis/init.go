package rangeanalysis

import (
	"math/big"

	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/internal/crange"
)

// InitRanges seeds every map the fixed-point loop refines: global scalar
// and array ranges from initializers (or full, if uninitialized),
// declaration-only function returns to full, and the set of functions
// selected for range analysis — those returning an integer, plus every
// function the Taint Engine put in TaintFuncs.
func InitRanges(s *state.State) {
	m := s.Module

	for _, g := range m.Globals {
		if g.Init != nil {
			s.GlobalRange[g] = crange.NewPoint(g.Bits, bigToUint64(g.Init, g.Bits))
		} else {
			s.GlobalRange[g] = crange.NewFull(g.Bits)
		}
	}

	for _, arr := range m.Arrays {
		elems := make([]crange.Range, arr.Length)
		for i := range elems {
			if i < len(arr.Init) && arr.Init[i] != nil {
				elems[i] = crange.NewPoint(arr.ElementBits, bigToUint64(arr.Init[i], arr.ElementBits))
			} else {
				elems[i] = crange.NewFull(arr.ElementBits)
			}
		}
		s.GlobalArrayRanges[arr] = elems
	}

	for _, f := range m.Functions {
		if f.IsDeclaration() {
			if f.ReturnsInt() {
				s.FuncReturnRange[f] = crange.NewFull(f.ReturnBits)
			}
			for _, arg := range f.Params {
				if arg.Bits != 0 {
					s.ArgRanges[arg] = crange.NewFull(arg.Bits)
				}
			}
			continue
		}
		if f.ReturnsInt() {
			s.AnalysisTargets[f] = true
		}
	}

	for f := range s.TaintFuncs {
		if !f.IsDeclaration() {
			s.AnalysisTargets[f] = true
		}
	}

	for f := range s.AnalysisTargets {
		if f.ReturnsInt() {
			if _, ok := s.FuncReturnRange[f]; !ok {
				s.FuncReturnRange[f] = crange.NewEmpty(f.ReturnBits)
			}
		}
		_, isSource := s.FuncTaintSources[f]
		for _, arg := range f.Params {
			if arg.Bits == 0 {
				continue
			}
			if _, ok := s.ArgRanges[arg]; ok {
				continue
			}
			if isSource {
				// A taint-source function's parameters carry untrusted
				// external input with no internal call sites to refine
				// from; start at full rather than at bottom.
				s.ArgRanges[arg] = crange.NewFull(arg.Bits)
			} else {
				s.ArgRanges[arg] = crange.NewEmpty(arg.Bits)
			}
		}
	}
}

func bigToUint64(v *big.Int, bits uint32) uint64 {
	m := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	r := new(big.Int).Mod(v, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	return r.Uint64()
}
