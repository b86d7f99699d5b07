package taint

import (
	"golang.org/x/exp/maps"

	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/ir"
)

// Run drives the Taint Engine end to end: shims must already have been
// synthesized (SynthesizeSources) and registered (PopulateSourceState)
// before this is called. It marks sinks, walks reverse-reachability from
// every source call, then repeats the walk from the parameters of every
// non-source function in TaintFuncs until the set stops growing.
func Run(s *state.State, cfg *config.Config, demangle NameDemangler, log *config.LogGroup) {
	if demangle == nil {
		demangle = identity
	}
	MarkSinks(s, cfg, demangle)

	p := &propagator{s: s, cfg: cfg, demangle: demangle, visiting: map[ir.Instruction]bool{}}

	for _, calls := range s.FuncTaintSources {
		for _, call := range calls {
			if p.propagate(call) {
				s.Module.Meta.Set(ir.TaintChannel, call, "source")
			}
		}
	}

	for round := 0; ; round++ {
		before := len(s.TaintFuncs)
		for _, f := range snapshotFuncs(s.TaintFuncs) {
			if IsSourceFunction(cfg, f, demangle) {
				continue
			}
			for _, arg := range f.Params {
				if arg.Bits == 0 {
					continue
				}
				for _, user := range s.Module.Users(arg) {
					p.propagate(user)
				}
			}
		}
		after := len(s.TaintFuncs)
		if log != nil {
			log.Debugf("taint fixed point round %d: %d -> %d tainted functions", round, before, after)
		}
		if after == before {
			break
		}
		if round >= cfg.IterationCap {
			if log != nil {
				log.Warnf("taint fixed point did not converge within %d rounds", cfg.IterationCap)
			}
			break
		}
	}
}

// snapshotFuncs copies set's keys so the outer round can range over a
// stable list while propagate mutates s.TaintFuncs underneath it.
func snapshotFuncs(set map[*ir.Function]bool) []*ir.Function {
	return maps.Keys(set)
}
