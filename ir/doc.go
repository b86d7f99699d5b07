// Package ir defines the vocabulary that the mkint analyses operate on: an
// already-lowered, SSA-form intermediate representation of a whole
// translation unit.
//
// Producing this IR is out of scope for this module. It is assumed to be
// handed over by an upstream frontend that has already run a mem-to-register
// promotion pass, so every local is a register (an ir.Value), not a stack
// slot. Function and callee names are assumed already demangled; a frontend
// for a name-mangling source language should demangle before constructing
// the IR, or supply a NameDemangler to analysis/taint.
package ir
