package jsonir

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ganler/mkint/ir"
)

// Load parses data as a Module and builds the corresponding *ir.Module.
func Load(data []byte) (*ir.Module, error) {
	var jm Module
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("jsonir: %w", err)
	}
	return build(&jm)
}

type phiFixup struct {
	phi    *ir.Phi
	fn     *ir.Function
	blocks map[string]*ir.Block
	labels map[string]ir.Value
	edges  []PhiEdge
}

func build(jm *Module) (*ir.Module, error) {
	b := ir.NewBuilder()

	globals := make(map[string]*ir.GlobalScalar)
	for _, g := range jm.Globals {
		globals[g.ID] = b.Global(g.ID, g.Bits, g.Init)
	}

	arrays := make(map[string]*ir.GlobalArray)
	for _, a := range jm.Arrays {
		arr := b.Array(a.ID, a.ElemBits, a.Length)
		if len(a.Init) > 0 {
			init := make([]*big.Int, len(a.Init))
			for i, v := range a.Init {
				init[i] = big.NewInt(v)
			}
			arr.Init = init
		}
		arrays[a.ID] = arr
	}

	funcs := make(map[string]*ir.Function)
	for _, jf := range jm.Functions {
		paramBits := make([]uint32, len(jf.Params))
		for i, p := range jf.Params {
			paramBits[i] = p.Bits
		}
		f := b.Func(jf.Name, jf.ReturnBits, paramBits...)
		for i, p := range jf.Params {
			if p.Name != "" {
				f.Params[i].Name = p.Name
			}
		}
		funcs[jf.Name] = f
	}

	var fixups []phiFixup
	for _, jf := range jm.Functions {
		if jf.Declaration || len(jf.Blocks) == 0 {
			continue
		}
		f := funcs[jf.Name]
		blocks := make(map[string]*ir.Block, len(jf.Blocks))
		for _, jb := range jf.Blocks {
			blocks[jb.Name] = b.Block(f, jb.Name)
		}
		labels := make(map[string]ir.Value)
		for _, jb := range jf.Blocks {
			block := blocks[jb.Name]
			for _, ji := range jb.Instrs {
				instr, phi, err := buildInstr(b, block, f, globals, arrays, funcs, blocks, labels, ji)
				if err != nil {
					return nil, fmt.Errorf("jsonir: %s.%s: %w", jf.Name, jb.Name, err)
				}
				if ji.ID != "" {
					if v, ok := instr.(ir.Value); ok {
						labels[ji.ID] = v
					}
				}
				if phi != nil {
					fixups = append(fixups, phiFixup{phi: phi, fn: f, blocks: blocks, labels: labels, edges: ji.Edges})
				}
			}
		}
	}

	for _, fx := range fixups {
		edges := make([]ir.PhiEdge, 0, len(fx.edges))
		for _, e := range fx.edges {
			pred, ok := fx.blocks[e.Pred]
			if !ok {
				return nil, fmt.Errorf("jsonir: phi predecessor block %q not found", e.Pred)
			}
			v, err := resolveOperand(e.Value, fx.fn, globals, fx.labels)
			if err != nil {
				return nil, fmt.Errorf("jsonir: phi edge %q: %w", e.Value, err)
			}
			edges = append(edges, ir.PhiEdge{Pred: pred, Value: v})
		}
		fx.phi.Edges = edges
	}

	return b.Module, nil
}

func buildInstr(
	b *ir.Builder,
	block *ir.Block,
	f *ir.Function,
	globals map[string]*ir.GlobalScalar,
	arrays map[string]*ir.GlobalArray,
	funcs map[string]*ir.Function,
	blocks map[string]*ir.Block,
	labels map[string]ir.Value,
	ji Instr,
) (ir.Instruction, *ir.Phi, error) {
	resolve := func(ref string) (ir.Value, error) { return resolveOperand(ref, f, globals, labels) }

	switch ji.Op {
	case "binop":
		x, err := resolve(ji.X)
		if err != nil {
			return nil, nil, err
		}
		y, err := resolve(ji.Y)
		if err != nil {
			return nil, nil, err
		}
		op, err := binOpKind(ji.Kind)
		if err != nil {
			return nil, nil, err
		}
		in := &ir.BinOp{Op: op, X: x, Y: y, ResBits: ji.Bits}
		return b.Emit(block, in), nil, nil

	case "cmp":
		x, err := resolve(ji.X)
		if err != nil {
			return nil, nil, err
		}
		y, err := resolve(ji.Y)
		if err != nil {
			return nil, nil, err
		}
		pred, err := cmpPredicate(ji.Kind)
		if err != nil {
			return nil, nil, err
		}
		in := &ir.Cmp{Pred: pred, X: x, Y: y}
		return b.Emit(block, in), nil, nil

	case "cast":
		x, err := resolve(ji.X)
		if err != nil {
			return nil, nil, err
		}
		kind, err := castKind(ji.Kind)
		if err != nil {
			return nil, nil, err
		}
		in := &ir.Cast{Kind: kind, X: x, DstBits: ji.DstBits}
		return b.Emit(block, in), nil, nil

	case "select":
		cond, err := resolve(ji.Cond)
		if err != nil {
			return nil, nil, err
		}
		t, err := resolve(ji.T)
		if err != nil {
			return nil, nil, err
		}
		fv, err := resolve(ji.F)
		if err != nil {
			return nil, nil, err
		}
		in := &ir.Select{Cond: cond, T: t, F: fv}
		return b.Emit(block, in), nil, nil

	case "phi":
		in := &ir.Phi{Bits: ji.Bits}
		b.Emit(block, in)
		return in, in, nil

	case "load":
		addr, err := resolveAddr(ji.Addr, globals, arrays, labels)
		if err != nil {
			return nil, nil, err
		}
		in := &ir.Load{Addr: addr, Bits: ji.Bits}
		return b.Emit(block, in), nil, nil

	case "store":
		val, err := resolve(ji.Val)
		if err != nil {
			return nil, nil, err
		}
		addr, err := resolveAddr(ji.Addr, globals, arrays, labels)
		if err != nil {
			return nil, nil, err
		}
		in := &ir.Store{Val: val, Addr: addr}
		return b.Emit(block, in), nil, nil

	case "call":
		callee := funcs[ji.Callee]
		args := make([]ir.Value, len(ji.Args))
		for i, a := range ji.Args {
			v, err := resolve(a)
			if err != nil {
				return nil, nil, err
			}
			args[i] = v
		}
		in := &ir.Call{Callee: callee, Args: args}
		return b.Emit(block, in), nil, nil

	case "return":
		var val ir.Value
		if ji.Val != "" {
			v, err := resolve(ji.Val)
			if err != nil {
				return nil, nil, err
			}
			val = v
		}
		in := &ir.Return{Val: val}
		return b.Emit(block, in), nil, nil

	case "branch":
		var cond ir.Value
		if ji.Cond != "" {
			v, err := resolve(ji.Cond)
			if err != nil {
				return nil, nil, err
			}
			cond = v
		}
		trueSucc := blocks[ji.TrueSucc]
		var falseSucc *ir.Block
		if ji.FalseSucc != "" {
			falseSucc = blocks[ji.FalseSucc]
		}
		in := &ir.Branch{Cond: cond, TrueSucc: trueSucc, FalseSucc: falseSucc}
		return b.Emit(block, in), nil, nil

	case "switch":
		cond, err := resolve(ji.Cond)
		if err != nil {
			return nil, nil, err
		}
		cases := make([]ir.SwitchCase, len(ji.Cases))
		for i, c := range ji.Cases {
			cases[i] = ir.SwitchCase{Value: ir.NewConstant(int64(c.Value), c.Bits), Succ: blocks[c.Succ]}
		}
		in := &ir.Switch{Cond: cond, Default: blocks[ji.Default], Cases: cases}
		return b.Emit(block, in), nil, nil

	case "gep":
		arr, ok := arrays[ji.Base]
		if !ok {
			return nil, nil, fmt.Errorf("unknown array %q", ji.Base)
		}
		indices := make([]ir.Value, len(ji.Indices))
		for i, idx := range ji.Indices {
			v, err := resolve(idx)
			if err != nil {
				return nil, nil, err
			}
			indices[i] = v
		}
		in := &ir.GEP{Base: arr, Indices: indices, IndexSigned: ji.IndexSigned}
		return b.Emit(block, in), nil, nil

	case "other":
		in := &ir.Other{Op: ji.Kind, Bits: ji.Bits}
		return b.Emit(block, in), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown instruction op %q", ji.Op)
}

func resolveAddr(ref string, globals map[string]*ir.GlobalScalar, arrays map[string]*ir.GlobalArray, labels map[string]ir.Value) (ir.Value, error) {
	if strings.HasPrefix(ref, "global:") {
		name := strings.TrimPrefix(ref, "global:")
		if g, ok := globals[name]; ok {
			return g, nil
		}
		return nil, fmt.Errorf("unknown global %q", name)
	}
	if gep, ok := labels[ref].(*ir.GEP); ok {
		return gep, nil
	}
	return nil, fmt.Errorf("address operand %q must reference a global or a gep instruction id", ref)
}

func resolveOperand(ref string, f *ir.Function, globals map[string]*ir.GlobalScalar, labels map[string]ir.Value) (ir.Value, error) {
	if ref == "" {
		return nil, nil
	}
	switch {
	case strings.HasPrefix(ref, "arg:"):
		i, err := strconv.Atoi(strings.TrimPrefix(ref, "arg:"))
		if err != nil || i < 0 || i >= len(f.Params) {
			return nil, fmt.Errorf("bad argument reference %q", ref)
		}
		return f.Params[i], nil
	case strings.HasPrefix(ref, "const:"):
		parts := strings.SplitN(strings.TrimPrefix(ref, "const:"), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad constant reference %q", ref)
		}
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad constant value in %q: %w", ref, err)
		}
		bits, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad constant width in %q: %w", ref, err)
		}
		return ir.NewConstant(v, uint32(bits)), nil
	case strings.HasPrefix(ref, "global:"):
		name := strings.TrimPrefix(ref, "global:")
		if g, ok := globals[name]; ok {
			return g, nil
		}
		return nil, fmt.Errorf("unknown global %q", name)
	default:
		if v, ok := labels[ref]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("unknown operand label %q", ref)
	}
}

func binOpKind(name string) (ir.BinOpKind, error) {
	table := map[string]ir.BinOpKind{
		"add": ir.Add, "sub": ir.Sub, "mul": ir.Mul,
		"udiv": ir.UDiv, "sdiv": ir.SDiv,
		"shl": ir.Shl, "lshr": ir.LShr, "ashr": ir.AShr,
		"and": ir.And, "or": ir.Or, "xor": ir.Xor,
		"urem": ir.URem, "srem": ir.SRem,
	}
	if k, ok := table[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown binop kind %q", name)
}

func cmpPredicate(name string) (ir.CmpPredicate, error) {
	table := map[string]ir.CmpPredicate{
		"eq": ir.CmpEQ, "ne": ir.CmpNE,
		"ult": ir.CmpULT, "ule": ir.CmpULE, "ugt": ir.CmpUGT, "uge": ir.CmpUGE,
		"slt": ir.CmpSLT, "sle": ir.CmpSLE, "sgt": ir.CmpSGT, "sge": ir.CmpSGE,
	}
	if p, ok := table[name]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown cmp predicate %q", name)
}

func castKind(name string) (ir.CastKind, error) {
	table := map[string]ir.CastKind{"trunc": ir.Trunc, "zext": ir.ZExt, "sext": ir.SExt}
	if k, ok := table[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown cast kind %q", name)
}
