// Package jsonir loads a Module from the JSON fixture format cmd/mkint
// reads: a plain textual encoding of the vocabulary in ir/instruction.go,
// with operands addressed by string reference rather than pointer so a
// module can be written by hand or generated by an external frontend.
//
// Operand references:
//
//	""            no operand (void return, unconditional branch)
//	"arg:I"       the function's I'th parameter
//	"const:V:B"   an immediate value V at bit-width B
//	"global:NAME" a module-level scalar by id
//	anything else the "id" label of an earlier instruction in the same
//	              function's instruction stream (a phi edge may also
//	              name a later one)
package jsonir

// Module is the JSON root.
type Module struct {
	Globals   []Global   `json:"globals"`
	Arrays    []Array    `json:"arrays"`
	Functions []Function `json:"functions"`
}

type Global struct {
	ID   string `json:"id"`
	Bits uint32 `json:"bits"`
	Init *int64 `json:"init,omitempty"`
}

type Array struct {
	ID       string  `json:"id"`
	ElemBits uint32  `json:"elem_bits"`
	Length   int     `json:"length"`
	Init     []int64 `json:"init,omitempty"`
}

type Param struct {
	Name string `json:"name"`
	Bits uint32 `json:"bits"`
}

type Function struct {
	Name        string  `json:"name"`
	Declaration bool    `json:"declaration,omitempty"`
	ReturnBits  uint32  `json:"return_bits,omitempty"`
	Params      []Param `json:"params,omitempty"`
	Blocks      []Block `json:"blocks,omitempty"`
}

type Block struct {
	Name   string  `json:"name"`
	Instrs []Instr `json:"instrs"`
}

type Case struct {
	Value uint64 `json:"value"`
	Bits  uint32 `json:"bits"`
	Succ  string `json:"succ"`
}

type PhiEdge struct {
	Pred  string `json:"pred"`
	Value string `json:"value"`
}

// Instr is a tagged union over every instruction kind, keyed by Op. Only
// the fields relevant to Op are read.
type Instr struct {
	ID string `json:"id,omitempty"`
	Op string `json:"op"`

	Kind string `json:"kind,omitempty"` // binop opcode / cast kind / cmp predicate name
	Bits uint32 `json:"bits,omitempty"`

	X       string `json:"x,omitempty"`
	Y       string `json:"y,omitempty"`
	Val     string `json:"val,omitempty"`
	Addr    string `json:"addr,omitempty"`
	Cond    string `json:"cond,omitempty"`
	T       string `json:"t,omitempty"`
	F       string `json:"f,omitempty"`
	DstBits uint32 `json:"dst_bits,omitempty"`

	Callee string   `json:"callee,omitempty"`
	Args   []string `json:"args,omitempty"`

	TrueSucc  string `json:"true_succ,omitempty"`
	FalseSucc string `json:"false_succ,omitempty"`

	Default string `json:"default,omitempty"`
	Cases   []Case `json:"cases,omitempty"`

	Edges []PhiEdge `json:"edges,omitempty"`

	Base        string   `json:"base,omitempty"`
	Indices     []string `json:"indices,omitempty"`
	IndexSigned bool     `json:"index_signed,omitempty"`
}
