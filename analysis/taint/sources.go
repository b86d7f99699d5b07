// Package taint implements the Taint Engine: source/sink
// identification, synthesized taint-source shim calls, and the
// reverse-reachability propagation that grows state.State.TaintFuncs to a
// whole-module fixed point.
//
// Source/sink identification matches by name prefix and name table
// against the ir vocabulary directly, rather than against Go SSA nodes;
// the fixed point itself is a worklist-driven whole-program round.
package taint

import (
	"fmt"

	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/ir"
)

// NameDemangler demangles a possibly-mangled callee name before the
// source-prefix test is applied.
// The default is the identity function, since ir.Function.Name is assumed
// already demangled (ir/doc.go).
type NameDemangler func(string) string

func identity(s string) string { return s }

// SynthesizeSources rewrites every taint-source function in m: each
// integer parameter with at least one use is replaced by a call to a
// freshly-declared shim function "<fn>.mkint.arg<N>", and the parameter's
// uses are redirected to that call's result. It returns,
// per source function, the synthesized calls created — state.State's
// FuncTaintSources.
//
// This mutates the IR structurally and must run once, before any
// analysis reads the module.
func SynthesizeSources(m *ir.Module, cfg *config.Config, demangle NameDemangler) map[*ir.Function][]*ir.Call {
	if demangle == nil {
		demangle = identity
	}
	result := make(map[*ir.Function][]*ir.Call)
	// Snapshot the function list: AddFunction below appends to
	// m.Functions, and we must not synthesize shims for shim
	// declarations themselves.
	sources := make([]*ir.Function, 0)
	for _, f := range m.Functions {
		if f.IsDeclaration() {
			continue
		}
		if cfg.IsSource(demangle(f.Name)) {
			sources = append(sources, f)
		}
	}
	for _, f := range sources {
		var calls []*ir.Call
		for i, arg := range f.Params {
			if arg.Bits == 0 {
				continue
			}
			if len(m.Users(arg)) == 0 {
				continue
			}
			shimName := fmt.Sprintf("%s.mkint.arg%d", f.Name, i)
			shim := &ir.Function{Name: shimName, ReturnBits: arg.Bits}
			m.AddFunction(shim)
			call := &ir.Call{Callee: shim}
			entry := f.Entry()
			ir.PrependInstruction(entry, call)
			ir.ReplaceValue(f, arg, call)
			calls = append(calls, call)
		}
		if len(calls) > 0 {
			result[f] = calls
		}
	}
	m.InvalidateUsers()
	return result
}

// IsSourceFunction reports whether f's (demangled) name matches one of
// cfg's configured source prefixes.
func IsSourceFunction(cfg *config.Config, f *ir.Function, demangle NameDemangler) bool {
	if demangle == nil {
		demangle = identity
	}
	return cfg.IsSource(demangle(f.Name))
}

// IsSourceArgCall reports whether call invokes a synthesized taint-source
// shim, i.e. its callee name contains ".mkint.arg".
func IsSourceArgCall(call *ir.Call) bool {
	if call.Callee == nil {
		return false
	}
	return containsShimMarker(call.Callee.Name)
}

func containsShimMarker(name string) bool {
	const marker = ".mkint.arg"
	for i := 0; i+len(marker) <= len(name); i++ {
		if name[i:i+len(marker)] == marker {
			return true
		}
	}
	return false
}

// PopulateSourceState records the synthesized-source calls into s.
// Marking a source call "source" on the taint channel only happens once
// propagation confirms it reaches a sink; the source call itself is
// marked only when the walk that started there returns true.
func PopulateSourceState(s *state.State, sources map[*ir.Function][]*ir.Call) {
	for f, calls := range sources {
		s.FuncTaintSources[f] = calls
	}
}
