package ir

// Module is one whole translation unit: the read-only program graph the
// analyses run over, plus the metadata side-tables they write findings
// into.
type Module struct {
	Functions []*Function
	Globals   []*GlobalScalar
	Arrays    []*GlobalArray

	Meta *Metadata

	byName map[string]*Function
	users  map[Value][]Instruction
}

// NewModule returns an empty module with an initialized metadata store.
func NewModule() *Module {
	return &Module{Meta: NewMetadata()}
}

// FuncByName looks up a function by name; ok is false if none exists.
func (m *Module) FuncByName(name string) (*Function, bool) {
	if m.byName == nil {
		m.reindex()
	}
	f, ok := m.byName[name]
	return f, ok
}

// AddFunction appends f to the module and indexes it, assigning f.Index.
func (m *Module) AddFunction(f *Function) {
	f.Index = len(m.Functions)
	f.Module = m
	m.Functions = append(m.Functions, f)
	if m.byName != nil {
		m.byName[f.Name] = f
	}
	m.users = nil // invalidate use-def cache
}

func (m *Module) reindex() {
	m.byName = make(map[string]*Function, len(m.Functions))
	for _, f := range m.Functions {
		m.byName[f.Name] = f
	}
}

// InvalidateUsers forces the next call to Users to recompute the use-def
// index. Callers that structurally mutate a function's instructions after
// the index has already been built (e.g. taint-source shim synthesis run
// a second time in tests) must call this.
func (m *Module) InvalidateUsers() { m.users = nil }

// Users returns every instruction that uses v as an operand, in the order
// discovered by a single deterministic pass over the module (program
// order of functions, blocks, instructions). This is the use-def
// information the Taint Engine's reverse-reachability propagation walks.
func (m *Module) Users(v Value) []Instruction {
	if m.users == nil {
		m.buildUsers()
	}
	return m.users[v]
}

func (m *Module) buildUsers() {
	m.users = make(map[Value][]Instruction)
	add := func(v Value, in Instruction) {
		if v == nil {
			return
		}
		m.users[v] = append(m.users[v], in)
	}
	for _, f := range m.Functions {
		f.AllInstructions(func(_ *Block, in Instruction) {
			switch x := in.(type) {
			case *BinOp:
				add(x.X, in)
				add(x.Y, in)
			case *Cmp:
				add(x.X, in)
				add(x.Y, in)
			case *Cast:
				add(x.X, in)
			case *Select:
				add(x.Cond, in)
				add(x.T, in)
				add(x.F, in)
			case *Phi:
				for _, e := range x.Edges {
					add(e.Value, in)
				}
			case *Load:
				add(x.Addr, in)
			case *Store:
				add(x.Val, in)
				add(x.Addr, in)
			case *Call:
				for _, a := range x.Args {
					add(a, in)
				}
			case *Return:
				add(x.Val, in)
			case *Branch:
				add(x.Cond, in)
			case *Switch:
				add(x.Cond, in)
			case *GEP:
				for _, idx := range x.Indices {
					add(idx, in)
				}
			}
		})
	}
}
