// Package pass orchestrates the Backedge Detector, Taint Engine, Range
// Engine, and Error Marker into one whole-module run,
// leaves-first: backedges before ranges (ranges consult them), taint
// before ranges (init_ranges consults TaintFuncs), ranges before error
// marking (error marking only replays what ranges computed).
package pass

import (
	"github.com/ganler/mkint/analysis/backedge"
	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/errcheck"
	"github.com/ganler/mkint/analysis/rangeanalysis"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/analysis/taint"
	"github.com/ganler/mkint/ir"
)

// Run executes the whole pipeline over m and returns the resulting
// state, whose Module.Meta carries every finding on the error channel.
// A non-nil error means a hard-abort invariant was violated; the state
// returned alongside it is nil when a precondition failed, and otherwise
// whatever was computed before the abort, which should not be trusted.
func Run(m *ir.Module, cfg *config.Config, demangle taint.NameDemangler) (*state.State, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log := config.NewLogGroup(cfg)

	if err := checkPreconditions(m); err != nil {
		return nil, err
	}

	log.Infof("computing backedges over %d functions", len(m.Functions))
	bs := backedge.Compute(m)

	s := state.New(m)

	log.Infof("synthesizing taint sources")
	sources := taint.SynthesizeSources(m, cfg, demangle)
	taint.PopulateSourceState(s, sources)

	log.Infof("running taint engine")
	taint.Run(s, cfg, demangle, log)
	log.Infof("taint engine converged: %d tainted functions", len(s.TaintFuncs))

	rangeanalysis.InitRanges(s)
	log.Infof("running range engine over %d targets", len(s.AnalysisTargets))
	rangeanalysis.Run(s, cfg, bs, log)

	errcheck.MarkImpossibleBranches(s)
	errcheck.MarkGepOOB(s)
	errcheck.CheckBinaryInstructions(s)

	if err := checkPostconditions(s, log); err != nil {
		return s, err
	}

	if cfg.StripShims {
		log.Warnf("stripping %d taint-source shim calls; any remaining reference to their results is now dangling", countShims(sources))
		stripShims(m, sources)
	}

	return s, nil
}

func countShims(sources map[*ir.Function][]*ir.Call) int {
	n := 0
	for _, calls := range sources {
		n += len(calls)
	}
	return n
}
