package pass

import "github.com/ganler/mkint/ir"

// stripShims removes every synthesized taint-source shim call from the
// module. Only meaningful with cfg.StripShims set explicitly, since the
// parameter's original uses were already redirected onto these calls by
// SynthesizeSources and nothing restores them afterward.
func stripShims(m *ir.Module, sources map[*ir.Function][]*ir.Call) {
	for _, calls := range sources {
		for _, call := range calls {
			ir.RemoveInstruction(call.Parent(), call)
		}
	}
	m.InvalidateUsers()
}
