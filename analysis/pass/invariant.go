package pass

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/ir"
)

// Severity distinguishes three internal outcomes underneath the
// externally-visible hard-abort/soft-warning split: abort the run, relax
// a check and warn, or just note something. severityRelax and
// severityInfo both correspond to "soft warning" externally, but keeping
// them separate internally lets the log line say which kind of leniency
// was applied instead of a single generic "warning".
type Severity int

const (
	severityAbort Severity = iota
	severityRelax
	severityInfo
)

// InvariantError is returned by Run when a hard-abort invariant is
// violated. It carries a stack trace via github.com/pkg/errors
// so a caller logging it can see where in the pipeline the check failed.
type InvariantError struct {
	Check string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("mkint: invariant violated: %s", e.Check)
}

func abort(check string) error {
	return errors.WithStack(&InvariantError{Check: check})
}

// checkPreconditions validates what Run needs before it starts.
// An empty module is a hard abort: there is nothing to analyze and
// every downstream component would report vacuously clean results,
// which is worse than saying so plainly.
func checkPreconditions(m *ir.Module) error {
	if m == nil {
		return abort("module is nil")
	}
	if len(m.Functions) == 0 {
		return abort("module declares no functions")
	}
	return nil
}

// checkPostconditions runs sanity checks over the converged state, using
// severityRelax for outcomes that indicate imprecision rather than an
// unsound result, and severityAbort only for a state that could not have
// been produced by a correct run.
func checkPostconditions(s *state.State, log *config.LogGroup) error {
	for f := range s.TaintFuncs {
		if f == nil {
			return abort("taint_funcs contains a nil function")
		}
	}
	for f, r := range s.FuncReturnRange {
		if f.ReturnBits != 0 && r.Bits != f.ReturnBits {
			logSeverity(log, severityRelax, fmt.Sprintf("%s: return range width %d does not match declared %d", f.Name, r.Bits, f.ReturnBits))
		}
	}
	logSeverity(log, severityInfo, fmt.Sprintf("%d impossible branches, %d out-of-bounds GEPs found", len(s.ImpossibleBranches), len(s.GepOOB)))
	return nil
}

func logSeverity(log *config.LogGroup, sev Severity, msg string) {
	if log == nil {
		return
	}
	switch sev {
	case severityRelax:
		log.Warnf("%s", msg)
	case severityInfo:
		log.Infof("%s", msg)
	}
}
