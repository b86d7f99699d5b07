package ir

// ReplaceValue rewrites every operand of every instruction in f that is
// exactly old into new. This is the one place shim synthesis needs to
// mutate the IR structurally, redirecting a parameter's uses to its
// shim call's result; it happens once, before any analysis reads the
// module.
func ReplaceValue(f *Function, old, new Value) {
	f.AllInstructions(func(_ *Block, in Instruction) {
		switch x := in.(type) {
		case *BinOp:
			replaceIn(&x.X, old, new)
			replaceIn(&x.Y, old, new)
		case *Cmp:
			replaceIn(&x.X, old, new)
			replaceIn(&x.Y, old, new)
		case *Cast:
			replaceIn(&x.X, old, new)
		case *Select:
			replaceIn(&x.Cond, old, new)
			replaceIn(&x.T, old, new)
			replaceIn(&x.F, old, new)
		case *Phi:
			for i := range x.Edges {
				replaceIn(&x.Edges[i].Value, old, new)
			}
		case *Load:
			replaceIn(&x.Addr, old, new)
		case *Store:
			replaceIn(&x.Val, old, new)
			replaceIn(&x.Addr, old, new)
		case *Call:
			for i := range x.Args {
				replaceIn(&x.Args[i], old, new)
			}
		case *Return:
			replaceIn(&x.Val, old, new)
		case *Branch:
			replaceIn(&x.Cond, old, new)
		case *Switch:
			replaceIn(&x.Cond, old, new)
		case *GEP:
			for i := range x.Indices {
				replaceIn(&x.Indices[i], old, new)
			}
		}
	})
}

func replaceIn(slot *Value, old, new Value) {
	if *slot == old {
		*slot = new
	}
}

// PrependInstruction inserts instr at the start of block's instruction
// list, shifting every existing instruction's Index by one. Used only by
// shim synthesis, which runs once before any analysis.
func PrependInstruction(block *Block, instr Instruction) {
	setBase(instr, block, 0)
	for _, existing := range block.Instrs {
		setBase(existing, block, indexOf(existing)+1)
	}
	block.Instrs = append([]Instruction{instr}, block.Instrs...)
}

// RemoveInstruction deletes instr from block's instruction list, shifting
// every later instruction's Index down by one. Used only by
// analysis/pass's optional shim-stripping step; callers accept that any
// remaining operand references to instr become dangling.
func RemoveInstruction(block *Block, instr Instruction) {
	pos := indexOf(instr)
	if pos < 0 || pos >= len(block.Instrs) {
		return
	}
	block.Instrs = append(block.Instrs[:pos], block.Instrs[pos+1:]...)
	for i, existing := range block.Instrs[pos:] {
		setBase(existing, block, pos+i)
	}
}

func indexOf(in Instruction) int { return in.Index() }

func setBase(in Instruction, block *Block, index int) {
	switch x := in.(type) {
	case *BinOp:
		x.block, x.index = block, index
	case *Cmp:
		x.block, x.index = block, index
	case *Cast:
		x.block, x.index = block, index
	case *Select:
		x.block, x.index = block, index
	case *Phi:
		x.block, x.index = block, index
	case *Load:
		x.block, x.index = block, index
	case *Store:
		x.block, x.index = block, index
	case *Call:
		x.block, x.index = block, index
	case *Return:
		x.block, x.index = block, index
	case *Branch:
		x.block, x.index = block, index
	case *Switch:
		x.block, x.index = block, index
	case *GEP:
		x.block, x.index = block, index
	case *Other:
		x.block, x.index = block, index
	}
}
