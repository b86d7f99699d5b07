package ir

import (
	"fmt"
	"strings"
)

// Instruction is anything that lives in a Block's instruction list. The
// last instruction of a block is always a terminator (Branch, Switch, or
// Return).
type Instruction interface {
	fmt.Stringer

	// Parent returns the block this instruction belongs to.
	Parent() *Block

	// Index returns this instruction's position within its block's
	// instruction list. Combined with Parent().Func.Name and
	// Parent().Index, this gives a stable identity usable as a metadata
	// key even for IRs that do not expose pointer-stable nodes.
	Index() int
}

// instrBase is embedded by every concrete instruction to implement the
// bookkeeping part of the Instruction interface.
type instrBase struct {
	block *Block
	index int
}

func (b *instrBase) Parent() *Block { return b.block }
func (b *instrBase) Index() int     { return b.index }

// BinOpKind enumerates the binary opcodes the Range Engine has transfer
// functions for.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	UDiv
	SDiv
	Shl
	LShr
	AShr
	And
	Or
	Xor
	URem
	SRem
)

func (k BinOpKind) String() string {
	return [...]string{"add", "sub", "mul", "udiv", "sdiv", "shl", "lshr", "ashr", "and", "or", "xor", "urem", "srem"}[k]
}

// BinOp is a binary arithmetic/bitwise instruction. It is also a Value: its
// result can be used as an operand elsewhere.
type BinOp struct {
	instrBase
	Op       BinOpKind
	X, Y     Value
	ResBits  uint32
}

func (b *BinOp) Type() Type    { return IntType{Bits: b.ResBits} }
func (b *BinOp) String() string { return fmt.Sprintf("%s %s, %s", b.Op, b.X, b.Y) }
func (*BinOp) ident()          {}

// CmpPredicate enumerates the comparison predicates used by Cmp and by
// branch narrowing.
type CmpPredicate int

const (
	CmpEQ CmpPredicate = iota
	CmpNE
	CmpULT
	CmpULE
	CmpUGT
	CmpUGE
	CmpSLT
	CmpSLE
	CmpSGT
	CmpSGE
)

var predicateNames = [...]string{"eq", "ne", "ult", "ule", "ugt", "uge", "slt", "sle", "sgt", "sge"}

func (p CmpPredicate) String() string { return predicateNames[p] }

// Swapped returns the predicate for (Y, X) given (X, Y): e.g. slt becomes
// sgt. Used when narrowing the right-hand operand of a comparison.
func (p CmpPredicate) Swapped() CmpPredicate {
	switch p {
	case CmpEQ, CmpNE:
		return p
	case CmpULT:
		return CmpUGT
	case CmpULE:
		return CmpUGE
	case CmpUGT:
		return CmpULT
	case CmpUGE:
		return CmpULE
	case CmpSLT:
		return CmpSGT
	case CmpSLE:
		return CmpSGE
	case CmpSGT:
		return CmpSLT
	case CmpSGE:
		return CmpSLE
	}
	panic("unreachable")
}

// Inverse returns the negated predicate: e.g. slt becomes sge.
func (p CmpPredicate) Inverse() CmpPredicate {
	switch p {
	case CmpEQ:
		return CmpNE
	case CmpNE:
		return CmpEQ
	case CmpULT:
		return CmpUGE
	case CmpULE:
		return CmpUGT
	case CmpUGT:
		return CmpULE
	case CmpUGE:
		return CmpULT
	case CmpSLT:
		return CmpSGE
	case CmpSLE:
		return CmpSGT
	case CmpSGT:
		return CmpSLE
	case CmpSGE:
		return CmpSLT
	}
	panic("unreachable")
}

// Cmp is an integer comparison. It produces an i1, which the Range Engine
// leaves untracked beyond {0,1}.
type Cmp struct {
	instrBase
	Pred CmpPredicate
	X, Y Value
}

func (c *Cmp) Type() Type    { return IntType{Bits: 1} }
func (c *Cmp) String() string { return fmt.Sprintf("cmp %s %s, %s", c.Pred, c.X, c.Y) }
func (*Cmp) ident()          {}

// CastKind enumerates the integer width-conversion kinds.
type CastKind int

const (
	Trunc CastKind = iota
	ZExt
	SExt
)

func (k CastKind) String() string { return [...]string{"trunc", "zext", "sext"}[k] }

// Cast changes an integer value's bit-width.
type Cast struct {
	instrBase
	Kind    CastKind
	X       Value
	DstBits uint32
}

func (c *Cast) Type() Type    { return IntType{Bits: c.DstBits} }
func (c *Cast) String() string { return fmt.Sprintf("%s %s to i%d", c.Kind, c.X, c.DstBits) }
func (*Cast) ident()          {}

// Select is a ternary conditional value (cond ? T : F).
type Select struct {
	instrBase
	Cond Value
	T, F Value
}

func (s *Select) Type() Type    { return s.T.Type() }
func (s *Select) String() string { return fmt.Sprintf("select %s, %s, %s", s.Cond, s.T, s.F) }
func (*Select) ident()          {}

// PhiEdge is one incoming edge of a Phi node.
type PhiEdge struct {
	Pred  *Block
	Value Value
}

// Phi merges values coming from different predecessor blocks.
type Phi struct {
	instrBase
	Edges []PhiEdge
	Bits  uint32
}

func (p *Phi) Type() Type { return IntType{Bits: p.Bits} }
func (p *Phi) String() string {
	var sb strings.Builder
	sb.WriteString("phi ")
	for i, e := range p.Edges {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "[%s: %s]", e.Pred.Name, e.Value)
	}
	return sb.String()
}
func (*Phi) ident() {}

// Load reads an integer through an address, which is either a
// *GlobalScalar or a *GEP into a *GlobalArray.
type Load struct {
	instrBase
	Addr Value
	Bits uint32
}

func (l *Load) Type() Type    { return IntType{Bits: l.Bits} }
func (l *Load) String() string { return fmt.Sprintf("load %s", l.Addr) }
func (*Load) ident()          {}

// Store writes val to addr. Store is a terminal instruction in the sense
// that it produces no result value (it does not implement Value).
type Store struct {
	instrBase
	Val, Addr Value
}

func (s *Store) String() string { return fmt.Sprintf("store %s, %s", s.Val, s.Addr) }

// Call invokes callee with args. Call always implements Value; its Type
// is an integer type only when Callee.ReturnBits != 0.
type Call struct {
	instrBase
	Callee *Function
	Args   []Value
}

func (c *Call) Type() Type {
	if c.Callee != nil && c.Callee.ReturnBits != 0 {
		return IntType{Bits: c.Callee.ReturnBits}
	}
	return OpaqueType{Name: "void"}
}
func (c *Call) String() string {
	name := "<indirect>"
	if c.Callee != nil {
		name = c.Callee.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("call %s(%s)", name, strings.Join(parts, ", "))
}
func (*Call) ident() {}

// Return exits the function, optionally with an integer value.
type Return struct {
	instrBase
	Val Value // nil for void returns
}

func (r *Return) String() string {
	if r.Val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", r.Val)
}

// Branch is a terminator, conditional (on Cond, an i1-typed Cmp result) or
// unconditional (Cond == nil, FalseSucc == nil).
type Branch struct {
	instrBase
	Cond                 Value // nil for unconditional branches
	TrueSucc, FalseSucc  *Block
}

func (b *Branch) String() string {
	if b.Cond == nil {
		return fmt.Sprintf("br %s", b.TrueSucc.Name)
	}
	return fmt.Sprintf("br %s, %s, %s", b.Cond, b.TrueSucc.Name, b.FalseSucc.Name)
}

// SwitchCase is one (case value, target block) arm of a Switch.
type SwitchCase struct {
	Value *Constant
	Succ  *Block
}

// Switch is a multi-way terminator.
type Switch struct {
	instrBase
	Cond    Value
	Default *Block
	Cases   []SwitchCase
}

func (s *Switch) String() string {
	return fmt.Sprintf("switch %s, default %s (%d cases)", s.Cond, s.Default.Name, len(s.Cases))
}

// GEP computes the address of an element of a GlobalArray. Only
// single-level indexing into one-dimensional global arrays is understood;
// Indices holds exactly the index operands supplied; mkint reads the
// second one as the element index, or the only one when there is just
// one.
type GEP struct {
	instrBase
	Base    *GlobalArray
	Indices []Value

	// IndexSigned records whether the element-index operand's source type
	// was signed. Consulted by the Range Engine's OOB check when
	// analysis/config.Config.SignedIndices is enabled.
	IndexSigned bool
}

func (g *GEP) Type() Type    { return OpaqueType{Name: "ptr"} }
func (g *GEP) String() string { return fmt.Sprintf("gep %s, %v", g.Base, g.Indices) }
func (*GEP) ident()          {}

// Other stands in for any instruction kind the analyses do not interpret.
// The Range Engine leaves its range empty until joined on a later
// iteration and emits a soft warning.
type Other struct {
	instrBase
	Op   string
	Bits uint32 // 0 if the instruction is not integer-typed
}

func (o *Other) Type() Type {
	if o.Bits == 0 {
		return OpaqueType{Name: o.Op}
	}
	return IntType{Bits: o.Bits}
}
func (o *Other) String() string { return o.Op }
func (*Other) ident()          {}

// IndexOf returns i such that block.Instrs[i] == instr, or -1.
func IndexOf(block *Block, instr Instruction) int {
	for i, in := range block.Instrs {
		if in == instr {
			return i
		}
	}
	return -1
}
