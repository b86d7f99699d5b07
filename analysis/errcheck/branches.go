package errcheck

import (
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/ir"
)

// MarkImpossibleBranches and MarkGepOOB translate the Range Engine's
// findings into diagnostics on the error channel. They
// are split from binary_checks.go's sweep since these two only replay
// state the Range Engine already computed, rather than recomputing
// anything themselves.
func MarkImpossibleBranches(s *state.State) {
	for cmp, trueImpossible := range s.ImpossibleBranches {
		msg := ir.ErrImpossibleFalseBranch
		if trueImpossible {
			msg = ir.ErrImpossibleTrueBranch
		}
		s.Module.Meta.Set(ir.ErrorChannel, cmp, msg)
	}
}

func MarkGepOOB(s *state.State) {
	for gep := range s.GepOOB {
		s.Module.Meta.Set(ir.ErrorChannel, gep, ir.ErrArrayIndexOOB)
	}
}
