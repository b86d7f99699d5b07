package ir

// Builder assembles a Module's functions and blocks by hand. It exists so
// that tests (and, eventually, a real IR-producing frontend) do not have
// to poke at instrBase/preds/succs bookkeeping directly.
type Builder struct {
	Module *Module
}

// NewBuilder returns a Builder over a fresh module.
func NewBuilder() *Builder {
	return &Builder{Module: NewModule()}
}

// Func declares a function and adds it to the module. It has no body
// until Block adds one; a function left without blocks is a declaration.
func (b *Builder) Func(name string, returnBits uint32, paramBits ...uint32) *Function {
	f := &Function{Name: name, ReturnBits: returnBits}
	for i, bits := range paramBits {
		f.Params = append(f.Params, &Argument{Func: f, Index: i, Bits: bits, Name: argName(i)})
	}
	b.Module.AddFunction(f)
	return f
}

func argName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return "p"
}

// Block appends a new, empty block to f and returns it.
func (b *Builder) Block(f *Function, name string) *Block {
	blk := &Block{Name: name, Func: f, Index: len(f.Blocks)}
	f.Blocks = append(f.Blocks, blk)
	return blk
}

// Emit appends instr to block, assigning its (block, index) identity.
// Terminators (*Branch, *Switch) also link the predecessor/successor
// edges; call Emit for a block's terminator last.
func (b *Builder) Emit(block *Block, instr Instruction) Instruction {
	switch base := instr.(type) {
	case *BinOp:
		base.block, base.index = block, len(block.Instrs)
	case *Cmp:
		base.block, base.index = block, len(block.Instrs)
	case *Cast:
		base.block, base.index = block, len(block.Instrs)
	case *Select:
		base.block, base.index = block, len(block.Instrs)
	case *Phi:
		base.block, base.index = block, len(block.Instrs)
	case *Load:
		base.block, base.index = block, len(block.Instrs)
	case *Store:
		base.block, base.index = block, len(block.Instrs)
	case *Call:
		base.block, base.index = block, len(block.Instrs)
	case *Return:
		base.block, base.index = block, len(block.Instrs)
	case *Branch:
		base.block, base.index = block, len(block.Instrs)
		linkEdge(block, base.TrueSucc)
		if base.FalseSucc != nil {
			linkEdge(block, base.FalseSucc)
		}
	case *Switch:
		base.block, base.index = block, len(block.Instrs)
		linkEdge(block, base.Default)
		for _, c := range base.Cases {
			linkEdge(block, c.Succ)
		}
	case *GEP:
		base.block, base.index = block, len(block.Instrs)
	case *Other:
		base.block, base.index = block, len(block.Instrs)
	}
	block.Instrs = append(block.Instrs, instr)
	return instr
}

// Global declares a module-level scalar. If init is non-nil the global
// has that exact initial value; otherwise it starts as full range.
func (b *Builder) Global(id string, bits uint32, init *int64) *GlobalScalar {
	g := &GlobalScalar{ID: id, Bits: bits}
	if init != nil {
		g.Init = bigFromInt64(*init)
	}
	b.Module.Globals = append(b.Module.Globals, g)
	return g
}

// Array declares a module-level one-dimensional array.
func (b *Builder) Array(id string, elemBits uint32, length int) *GlobalArray {
	a := &GlobalArray{ID: id, ElementBits: elemBits, Length: length}
	b.Module.Arrays = append(b.Module.Arrays, a)
	return a
}
