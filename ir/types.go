package ir

import "fmt"

// Type is the minimal type vocabulary the analyses care about: integer
// bit-width, or "everything else" (pointers, aggregates, ...) which the
// analyses only ever touch opaquely (as GEP bases, call callees, etc).
type Type interface {
	String() string
	isType()
}

// IntType is an integer type of a fixed bit-width.
type IntType struct {
	Bits uint32
}

func (t IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }
func (IntType) isType()          {}

// OpaqueType stands in for any non-integer type the analyses do not
// interpret (pointers, structs, function types, ...).
type OpaqueType struct {
	Name string
}

func (t OpaqueType) String() string {
	if t.Name == "" {
		return "opaque"
	}
	return t.Name
}
func (OpaqueType) isType() {}

// IsInteger reports whether t is an IntType.
func IsInteger(t Type) (IntType, bool) {
	it, ok := t.(IntType)
	return it, ok
}
