package rangeanalysis

import (
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

func toCrangePredicate(p ir.CmpPredicate) crange.Predicate {
	switch p {
	case ir.CmpEQ:
		return crange.EQ
	case ir.CmpNE:
		return crange.NE
	case ir.CmpULT:
		return crange.ULT
	case ir.CmpULE:
		return crange.ULE
	case ir.CmpUGT:
		return crange.UGT
	case ir.CmpUGE:
		return crange.UGE
	case ir.CmpSLT:
		return crange.SLT
	case ir.CmpSLE:
		return crange.SLE
	case ir.CmpSGT:
		return crange.SGT
	case ir.CmpSGE:
		return crange.SGE
	}
	panic("unreachable")
}

func toCrangeOp(k ir.BinOpKind) crange.Op {
	switch k {
	case ir.Add:
		return crange.Add
	case ir.Sub:
		return crange.Sub
	case ir.Mul:
		return crange.Mul
	case ir.UDiv:
		return crange.UDiv
	case ir.SDiv:
		return crange.SDiv
	case ir.Shl:
		return crange.Shl
	case ir.LShr:
		return crange.LShr
	case ir.AShr:
		return crange.AShr
	case ir.And:
		return crange.And
	case ir.Or:
		return crange.Or
	case ir.Xor:
		return crange.Xor
	case ir.URem:
		return crange.URem
	case ir.SRem:
		return crange.SRem
	}
	panic("unreachable")
}
