package rangeanalysis

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/ganler/mkint/analysis/backedge"
	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

// Run iterates every selected function's block environments, every
// function's argument/return summary and every global's range to a
// whole-module fixed point,
// bounded by cfg.IterationCap outer rounds. InitRanges must have already
// seeded s.
func Run(s *state.State, cfg *config.Config, bs *backedge.Sets, log *config.LogGroup) {
	targets := sortedTargets(s)

	for round := 0; ; round++ {
		anyChanged := false
		for _, f := range targets {
			fr := &funcRound{}
			if runFunctionToFixpoint(s, cfg, bs, f, fr, log) {
				anyChanged = true
			}
			if fr.haveReturn {
				joined := crange.Union(s.FuncReturnRange[f], fr.returnAcc)
				if joined != s.FuncReturnRange[f] {
					s.FuncReturnRange[f] = joined
					anyChanged = true
				}
			}
			if fr.summaryChanged {
				anyChanged = true
			}
		}
		if log != nil {
			log.Debugf("range fixed point round %d, changed=%v", round, anyChanged)
		}
		if !anyChanged {
			break
		}
		if round >= cfg.IterationCap {
			if log != nil {
				log.Warnf("range fixed point did not converge within %d rounds", cfg.IterationCap)
			}
			break
		}
	}
}

// sortedTargets returns s.AnalysisTargets in program order, so repeated
// runs iterate functions deterministically.
func sortedTargets(s *state.State) []*ir.Function {
	out := maps.Keys(s.AnalysisTargets)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// runFunctionToFixpoint repeatedly walks f's blocks in program order,
// rebuilding each block's entry environment from its (non-backedge)
// predecessors and re-running every instruction's transfer function,
// until no block's stored environment changes. It returns whether any
// environment changed relative to what was stored when it was called.
func runFunctionToFixpoint(s *state.State, cfg *config.Config, bs *backedge.Sets, f *ir.Function, fr *funcRound, log *config.LogGroup) bool {
	anyChanged := false
	for iter := 0; ; iter++ {
		roundChanged := false
		for _, block := range f.Blocks {
			env := entryEnv(s, bs, f, block)
			for _, instr := range block.Instrs {
				if o, ok := instr.(*ir.Other); ok && iter == 0 && log != nil {
					log.Warnf("%s: no range transfer for instruction %q; its range stays empty", f.Name, o.Op)
				}
				processInstruction(s, cfg, fr, env, instr)
			}
			old := s.Env(f, block)
			if !state.EnvsEqual(old, env) {
				s.SetEnv(f, block, env)
				roundChanged = true
				anyChanged = true
			}
		}
		if !roundChanged {
			break
		}
		if iter >= cfg.IterationCap {
			if log != nil {
				log.Warnf("range analysis of %s did not converge within %d iterations", f.Name, cfg.IterationCap)
			}
			break
		}
	}
	return anyChanged
}
