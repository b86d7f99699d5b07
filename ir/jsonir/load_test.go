package jsonir

import (
	"encoding/json"
	"testing"

	"github.com/ganler/mkint/ir"
)

func mustMarshal(t *testing.T, m Module) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}

func TestLoadSimpleFunction(t *testing.T) {
	fixture := Module{
		Functions: []Function{
			{
				Name:       "f",
				ReturnBits: 32,
				Params:     []Param{{Name: "a", Bits: 32}},
				Blocks: []Block{
					{
						Name: "entry",
						Instrs: []Instr{
							{ID: "x", Op: "binop", Kind: "add", Bits: 32, X: "arg:0", Y: "const:5:32"},
							{Op: "return", Val: "x"},
						},
					},
				},
			},
		},
	}

	m, err := Load(mustMarshal(t, fixture))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	f, ok := m.FuncByName("f")
	if !ok {
		t.Fatalf("function f not found")
	}
	if len(f.Params) != 1 || f.Params[0].Name != "a" || f.Params[0].Bits != 32 {
		t.Fatalf("unexpected params: %+v", f.Params)
	}
	entry := f.Entry()
	if len(entry.Instrs) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(entry.Instrs))
	}
	bin, ok := entry.Instrs[0].(*ir.BinOp)
	if !ok {
		t.Fatalf("first instruction is not a BinOp: %T", entry.Instrs[0])
	}
	if bin.Op != ir.Add {
		t.Errorf("op = %v, want Add", bin.Op)
	}
	if bin.X != ir.Value(f.Params[0]) {
		t.Errorf("X operand did not resolve to the function's parameter")
	}
	ret, ok := entry.Instrs[1].(*ir.Return)
	if !ok {
		t.Fatalf("second instruction is not a Return: %T", entry.Instrs[1])
	}
	if ret.Val != ir.Value(bin) {
		t.Errorf("return value did not resolve back to the binop's id label")
	}
}

func TestLoadPhiForwardReference(t *testing.T) {
	// body's phi references "n", the id of an instruction appearing
	// later in the same block — exercises the two-pass fixup, since a
	// loop backedge value is not yet built when the phi node itself is
	// constructed.
	fixture := Module{
		Functions: []Function{
			{
				Name:       "loop",
				ReturnBits: 32,
				Blocks: []Block{
					{Name: "entry", Instrs: []Instr{
						{Op: "branch", TrueSucc: "body"},
					}},
					{Name: "body", Instrs: []Instr{
						{ID: "p", Op: "phi", Bits: 32, Edges: []PhiEdge{
							{Pred: "entry", Value: "const:0:32"},
							{Pred: "body", Value: "n"},
						}},
						{ID: "n", Op: "binop", Kind: "add", Bits: 32, X: "p", Y: "const:1:32"},
						{Op: "branch", TrueSucc: "body"},
					}},
				},
			},
		},
	}

	m, err := Load(mustMarshal(t, fixture))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	f, _ := m.FuncByName("loop")
	body := f.Blocks[1]
	phi, ok := body.Instrs[0].(*ir.Phi)
	if !ok {
		t.Fatalf("first instruction of body is not a Phi: %T", body.Instrs[0])
	}
	if len(phi.Edges) != 2 {
		t.Fatalf("expected 2 phi edges, got %d", len(phi.Edges))
	}
	n := body.Instrs[1].(*ir.BinOp)
	if phi.Edges[1].Value != ir.Value(n) {
		t.Errorf("backedge phi value did not resolve to the later 'n' instruction")
	}
	if phi.Edges[1].Pred != body {
		t.Errorf("backedge phi predecessor should be body itself")
	}
}

func TestLoadGlobalsAndArrays(t *testing.T) {
	init := int64(7)
	fixture := Module{
		Globals: []Global{{ID: "g", Bits: 32, Init: &init}},
		Arrays:  []Array{{ID: "buf", ElemBits: 32, Length: 4, Init: []int64{1, 2}}},
		Functions: []Function{
			{
				Name:       "reads",
				ReturnBits: 32,
				Blocks: []Block{
					{Name: "entry", Instrs: []Instr{
						{ID: "gv", Op: "load", Addr: "global:g", Bits: 32},
						{Op: "return", Val: "gv"},
					}},
				},
			},
		},
	}

	m, err := Load(mustMarshal(t, fixture))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Globals) != 1 || m.Globals[0].ID != "g" {
		t.Fatalf("unexpected globals: %+v", m.Globals)
	}
	if m.Globals[0].Init == nil || m.Globals[0].Init.Int64() != 7 {
		t.Errorf("global init not preserved: %+v", m.Globals[0].Init)
	}
	if len(m.Arrays) != 1 || m.Arrays[0].Length != 4 {
		t.Fatalf("unexpected arrays: %+v", m.Arrays)
	}
	if len(m.Arrays[0].Init) != 2 || m.Arrays[0].Init[0].Int64() != 1 {
		t.Errorf("array init not preserved: %+v", m.Arrays[0].Init)
	}
}

func TestLoadUnknownOperandLabelErrors(t *testing.T) {
	fixture := Module{
		Functions: []Function{
			{
				Name: "f",
				Blocks: []Block{
					{Name: "entry", Instrs: []Instr{
						{Op: "return", Val: "does_not_exist"},
					}},
				},
			},
		},
	}
	if _, err := Load(mustMarshal(t, fixture)); err == nil {
		t.Errorf("expected an error for an unresolvable operand label")
	}
}
