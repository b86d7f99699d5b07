package ir

// Block is a basic block: an ordered instruction list whose last element
// is always a terminator (*Branch, *Switch, or *Return).
type Block struct {
	Name   string
	Func   *Function
	Index  int // position within Func.Blocks, i.e. program order
	Instrs []Instruction

	preds []*Block
	succs []*Block
}

// Terminator returns the block's last instruction.
func (b *Block) Terminator() Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Preds returns the block's predecessors in the order they were linked.
func (b *Block) Preds() []*Block { return b.preds }

// Succs returns the block's successors in program order (true-successor
// before false-successor for a conditional Branch; for a Switch, Default
// first, then the cases in declaration order).
func (b *Block) Succs() []*Block { return b.succs }

func linkEdge(from, to *Block) {
	to.preds = append(to.preds, from)
	from.succs = append(from.succs, to)
}
