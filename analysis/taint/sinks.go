package taint

import (
	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/ir"
)

// MarkSinks walks every Call in m and, for calls to a configured sink
// function, marks the instruction producing the designated dangerous
// argument on the sink channel. It also marks every
// Return of a taint-source function as a sink if that function's integer
// return value is used by at least one non-source function, to capture
// kernel-boundary leakage.
func MarkSinks(s *state.State, cfg *config.Config, demangle NameDemangler) {
	m := s.Module
	for _, f := range m.Functions {
		f.AllInstructions(func(_ *ir.Block, in ir.Instruction) {
			call, ok := in.(*ir.Call)
			if !ok || call.Callee == nil {
				return
			}
			argIdx, isSink := cfg.Sink(demangleOrIdentity(demangle)(call.Callee.Name))
			if !isSink || argIdx >= len(call.Args) {
				return
			}
			producer, ok := call.Args[argIdx].(ir.Instruction)
			if !ok {
				return
			}
			m.Meta.Set(ir.SinkChannel, producer, call.Callee.Name)
		})
	}

	for f := range s.FuncTaintSources {
		if !f.ReturnsInt() {
			continue
		}
		if returnEscapesToNonSource(m, f, cfg, demangle) {
			f.AllInstructions(func(_ *ir.Block, in ir.Instruction) {
				if ret, ok := in.(*ir.Return); ok {
					m.Meta.Set(ir.SinkChannel, ret, "return:"+f.Name)
				}
			})
		}
	}
}

func demangleOrIdentity(d NameDemangler) NameDemangler {
	if d == nil {
		return identity
	}
	return d
}

// returnEscapesToNonSource reports whether some call to f (an integer-
// returning taint source) is made from a function that is not itself a
// taint source, i.e. the source's return value crosses the trust
// boundary into ordinary code.
func returnEscapesToNonSource(m *ir.Module, f *ir.Function, cfg *config.Config, demangle NameDemangler) bool {
	for _, caller := range m.Functions {
		if caller == f || caller.IsDeclaration() {
			continue
		}
		if IsSourceFunction(cfg, caller, demangle) {
			continue
		}
		callsF := false
		caller.AllInstructions(func(_ *ir.Block, in ir.Instruction) {
			if call, ok := in.(*ir.Call); ok && call.Callee == f {
				callsF = true
			}
		})
		if callsF {
			return true
		}
	}
	return false
}
