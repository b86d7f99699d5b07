package taint

import (
	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/ir"
)

// propagator implements the reverse-reachability walk as a recursion with
// a "currently visiting" set that cuts cycles by treating a re-entrant
// node as untainted.
type propagator struct {
	s        *state.State
	cfg      *config.Config
	demangle NameDemangler
	visiting map[ir.Instruction]bool
}

// propagate returns true iff instr's value is taint-dependent on a sink,
// marking the taint channel and growing TaintFuncs along the way.
func (p *propagator) propagate(instr ir.Instruction) bool {
	if p.visiting[instr] {
		return false
	}
	if p.s.Module.Meta.Has(ir.SinkChannel, instr) {
		for _, fn := range sinkCallees(p.s.Module, p.cfg, p.demangle, instr) {
			p.s.TaintFuncs[fn] = true
		}
		return true
	}

	p.visiting[instr] = true
	defer delete(p.visiting, instr)

	if store, ok := instr.(*ir.Store); ok {
		return p.propagateStore(instr, store)
	}

	tainted := false
	if call, ok := instr.(*ir.Call); ok && call.Callee != nil && !call.Callee.IsDeclaration() {
		for _, arg := range call.Callee.Params {
			if arg.Bits == 0 {
				continue
			}
			for _, user := range p.s.Module.Users(arg) {
				if p.propagate(user) {
					tainted = true
				}
			}
		}
	}

	if val, ok := instr.(ir.Value); ok {
		for _, user := range p.s.Module.Users(val) {
			if p.propagate(user) {
				tainted = true
			}
		}
	}

	if tainted {
		p.s.Module.Meta.Set(ir.TaintChannel, instr, "")
		if call, ok := instr.(*ir.Call); ok && call.Callee != nil && call.Callee.ReturnsInt() {
			p.s.TaintFuncs[call.Callee] = true
		}
	}
	return tainted
}

func (p *propagator) propagateStore(instr ir.Instruction, store *ir.Store) bool {
	gv, ok := store.Addr.(*ir.GlobalScalar)
	if !ok {
		return false
	}
	tainted := false
	for _, user := range p.s.Module.Users(gv) {
		if user == instr {
			continue
		}
		if p.propagate(user) {
			tainted = true
		}
	}
	if tainted {
		p.s.Module.Meta.Set(ir.TaintChannel, instr, "")
		p.s.Module.Meta.Set(ir.TaintChannel, gv, "")
	}
	return tainted
}

// sinkCallees returns the callee functions of every sink call that
// consumes instr's value directly.
func sinkCallees(m *ir.Module, cfg *config.Config, demangle NameDemangler, instr ir.Instruction) []*ir.Function {
	val, ok := instr.(ir.Value)
	if !ok {
		return nil
	}
	var fns []*ir.Function
	for _, user := range m.Users(val) {
		call, ok := user.(*ir.Call)
		if !ok || call.Callee == nil {
			continue
		}
		if _, isSink := cfg.Sink(demangleOrIdentity(demangle)(call.Callee.Name)); isSink {
			fns = append(fns, call.Callee)
		}
	}
	return fns
}
