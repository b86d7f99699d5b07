package ir

import (
	"fmt"
	"math/big"
)

// Value is anything that can be the operand of an instruction: a constant,
// a global, a function argument, or the result of another instruction.
//
// Following the shape of golang.org/x/tools/go/ssa (which our IR does not
// depend on, since it is not restricted to Go source, but whose
// dual-interface design we imitate): most Instruction implementations also
// implement Value, since most instructions produce a result that can in
// turn be used as an operand.
type Value interface {
	fmt.Stringer

	// Type returns the value's static type.
	Type() Type

	// ident is a private method that lets us use Value as a map key by
	// identity without accidentally comparing structurally-equal-but-
	// distinct constants as the same key when that is undesirable; concrete
	// types are comparable structs/pointers, so plain map[Value]X already
	// works for our purposes and this method exists only to seal the
	// interface to this package's known implementations.
	ident()
}

// Constant is an immediate integer value of a fixed bit-width.
type Constant struct {
	// Value is stored as a big.Int so we never lose bits reasoning about
	// arbitrary widths; the Range Engine reduces it modulo 2^Bits when it
	// needs a machine integer.
	Value *big.Int
	Bits  uint32
}

func NewConstant(v int64, bits uint32) *Constant {
	return &Constant{Value: big.NewInt(v), Bits: bits}
}

func bigFromInt64(v int64) *big.Int { return big.NewInt(v) }

func (c *Constant) Type() Type   { return IntType{Bits: c.Bits} }
func (c *Constant) String() string { return fmt.Sprintf("%s:i%d", c.Value.String(), c.Bits) }
func (*Constant) ident()          {}

// GlobalScalar is a module-level integer variable.
type GlobalScalar struct {
	ID   string
	Bits uint32

	// Init is the initial value, or nil if the global has no initializer
	// (in which case its range starts as full).
	Init *big.Int
}

func (g *GlobalScalar) Type() Type    { return IntType{Bits: g.Bits} }
func (g *GlobalScalar) String() string { return "@" + g.ID }
func (*GlobalScalar) ident()          {}

// GlobalArray is a module-level one-dimensional array of fixed-width
// integers. mkint only reasons about single-level indexing into such
// arrays.
type GlobalArray struct {
	ID          string
	ElementBits uint32
	Length      int

	// Init holds one entry per element when the array has an initializer,
	// or is nil otherwise.
	Init []*big.Int
}

func (g *GlobalArray) Type() Type {
	return OpaqueType{Name: fmt.Sprintf("[%d x i%d]", g.Length, g.ElementBits)}
}
func (g *GlobalArray) String() string { return "@" + g.ID }
func (*GlobalArray) ident()          {}

// Argument is a formal parameter of a Function, before/unless it is
// rewritten by the taint engine's source-argument shim synthesis.
type Argument struct {
	Func  *Function
	Index int
	Bits  uint32 // 0 if the argument is not an integer
	Name  string
}

func (a *Argument) Type() Type {
	if a.Bits == 0 {
		return OpaqueType{Name: "arg"}
	}
	return IntType{Bits: a.Bits}
}
func (a *Argument) String() string { return fmt.Sprintf("%s#arg%d", a.Func.Name, a.Index) }
func (*Argument) ident()          {}
