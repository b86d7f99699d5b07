package crange

import "math/big"

// Op mirrors ir.BinOpKind without importing the ir package, for the same
// leaf-dependency reason as Predicate in cmpregion.go.
type Op int

const (
	Add Op = iota
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

// Transfer computes a sound over-approximation of the result range of
// "lhs Op rhs". Callers must Promote(lhs, rhs) first. Every opcode's
// transfer function is implemented; precision varies (exact on
// Point/Point, otherwise a widened bound) but every result is always a
// superset of the true value set.
func Transfer(op Op, lhs, rhs Range) Range {
	bits := lhs.Bits
	if lhs.IsEmpty() || rhs.IsEmpty() {
		return NewEmpty(bits)
	}
	if lhs.Kind == Point && rhs.Kind == Point {
		if r, ok := exactPoint(op, lhs.Lo, rhs.Lo, bits); ok {
			return r
		}
	}
	switch op {
	case Add:
		return spanFold(bits, lhs, rhs, func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
	case Sub:
		return cornerFold(bits, lhs, rhs, func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
	case Mul:
		return cornerFold(bits, lhs, rhs, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
	case UDiv:
		return udiv(bits, lhs, rhs)
	case SDiv:
		return sdiv(bits, lhs, rhs)
	case URem:
		return urem(bits, lhs, rhs)
	case SRem:
		return srem(bits, lhs, rhs)
	case Shl:
		return shl(bits, lhs, rhs)
	case LShr:
		return lshr(bits, lhs, rhs)
	case AShr:
		return ashr(bits, lhs, rhs)
	case And, Or, Xor:
		return NewFull(bits) // no precision beyond point/point (see exactPoint)
	}
	return NewFull(bits)
}

func exactPoint(op Op, x, y uint64, bits uint32) (Range, bool) {
	bx, by := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)
	var res *big.Int
	switch op {
	case Add:
		res = new(big.Int).Add(bx, by)
	case Sub:
		res = new(big.Int).Sub(bx, by)
	case Mul:
		res = new(big.Int).Mul(bx, by)
	case UDiv:
		if y == 0 {
			return Range{}, false
		}
		res = new(big.Int).Div(bx, by)
	case SDiv:
		if y == 0 {
			return Range{}, false
		}
		sx, sy := toSigned(x, bits), toSigned(y, bits)
		res = big.NewInt(sx / sy)
	case URem:
		if y == 0 {
			return Range{}, false
		}
		res = new(big.Int).Mod(bx, by)
	case SRem:
		if y == 0 {
			return Range{}, false
		}
		sx, sy := toSigned(x, bits), toSigned(y, bits)
		res = big.NewInt(sx % sy)
	case Shl:
		if y >= uint64(bits) {
			return NewPoint(bits, 0), true
		}
		res = new(big.Int).Lsh(bx, uint(y))
	case LShr:
		if y >= uint64(bits) {
			return NewPoint(bits, 0), true
		}
		res = new(big.Int).Rsh(bx, uint(y))
	case AShr:
		sx := toSigned(x, bits)
		shift := y
		if shift >= uint64(bits) {
			shift = uint64(bits) - 1
		}
		res = big.NewInt(sx >> shift)
	case And:
		res = new(big.Int).And(bx, by)
	case Or:
		res = new(big.Int).Or(bx, by)
	case Xor:
		res = new(big.Int).Xor(bx, by)
	default:
		return Range{}, false
	}
	return NewPoint(bits, reduceToU64(res, bits)), true
}

func reduceToU64(v *big.Int, bits uint32) uint64 {
	m := new(big.Int).SetUint64(mask(bits))
	r := new(big.Int).And(v, m)
	if r.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		r.Add(r, mod)
	}
	return r.Uint64()
}

// spanFold combines the unsigned min/max corners of lhs and rhs through f
// and represents the result as an interval if its span fits the domain,
// otherwise widens to Full.
func spanFold(bits uint32, lhs, rhs Range, f func(a, b *big.Int) *big.Int) Range {
	lLo, lHi := new(big.Int).SetUint64(lhs.UMin()), new(big.Int).SetUint64(lhs.UMax())
	rLo, rHi := new(big.Int).SetUint64(rhs.UMin()), new(big.Int).SetUint64(rhs.UMax())
	lo := f(lLo, rLo)
	hi := f(lHi, rHi)
	return foldedInterval(bits, lo, hi)
}

func cornerFold(bits uint32, lhs, rhs Range, f func(a, b *big.Int) *big.Int) Range {
	lLo, lHi := new(big.Int).SetUint64(lhs.UMin()), new(big.Int).SetUint64(lhs.UMax())
	rLo, rHi := new(big.Int).SetUint64(rhs.UMin()), new(big.Int).SetUint64(rhs.UMax())
	corners := []*big.Int{f(lLo, rLo), f(lLo, rHi), f(lHi, rLo), f(lHi, rHi)}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c.Cmp(lo) < 0 {
			lo = c
		}
		if c.Cmp(hi) > 0 {
			hi = c
		}
	}
	return foldedInterval(bits, lo, hi)
}

// foldedInterval turns a [lo, hi] computed in unbounded big.Int arithmetic
// into a Range, widening to Full when the span exceeds the domain (the
// result would otherwise have wrapped in a way we cannot represent
// precisely as one Interval/Wrapped tag).
func foldedInterval(bits uint32, lo, hi *big.Int) Range {
	span := new(big.Int).Sub(hi, lo)
	domain := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	if span.Sign() < 0 || span.Cmp(domain) >= 0 {
		return NewFull(bits)
	}
	return NewInterval(bits, reduceToU64(lo, bits), reduceToU64(hi, bits))
}

func udiv(bits uint32, lhs, rhs Range) Range {
	if rhs.UMax() == 0 {
		return NewFull(bits) // divisor may only be zero; div-by-zero is flagged elsewhere
	}
	divisorLo := rhs.UMin()
	if divisorLo == 0 {
		divisorLo = 1
	}
	lo := lhs.UMin() / rhs.UMax()
	hi := lhs.UMax() / divisorLo
	return NewInterval(bits, lo, hi)
}

func sdiv(bits uint32, lhs, rhs Range) Range {
	if rhs.SMin() <= 0 && rhs.SMax() >= 0 {
		return NewFull(bits) // divisor range includes zero
	}
	corners := []int64{
		divClamp(lhs.SMin(), rhs.SMin()), divClamp(lhs.SMin(), rhs.SMax()),
		divClamp(lhs.SMax(), rhs.SMin()), divClamp(lhs.SMax(), rhs.SMax()),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return NewInterval(bits, uint64(lo)&mask(bits), uint64(hi)&mask(bits))
}

func divClamp(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func urem(bits uint32, lhs, rhs Range) Range {
	if rhs.UMax() == 0 {
		return NewFull(bits)
	}
	hiBound := rhs.UMax() - 1
	if lhs.UMax() < hiBound {
		hiBound = lhs.UMax()
	}
	return NewInterval(bits, 0, hiBound)
}

func srem(bits uint32, lhs, rhs Range) Range {
	if rhs.SMin() <= 0 && rhs.SMax() >= 0 {
		return NewFull(bits)
	}
	bound := absI64(rhs.SMax())
	if absI64(rhs.SMin()) > bound {
		bound = absI64(rhs.SMin())
	}
	bound--
	if bound < 0 {
		bound = 0
	}
	return NewInterval(bits, uint64(-bound)&mask(bits), uint64(bound)&mask(bits))
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func shl(bits uint32, lhs, rhs Range) Range {
	if rhs.Kind != Point || rhs.Lo >= uint64(bits) {
		return NewFull(bits)
	}
	lo := new(big.Int).Lsh(new(big.Int).SetUint64(lhs.UMin()), uint(rhs.Lo))
	hi := new(big.Int).Lsh(new(big.Int).SetUint64(lhs.UMax()), uint(rhs.Lo))
	return foldedInterval(bits, lo, hi)
}

func lshr(bits uint32, lhs, rhs Range) Range {
	shift := rhs.UMin()
	if shift >= uint64(bits) {
		return NewPoint(bits, 0)
	}
	var lo uint64
	if maxShift := rhs.UMax(); maxShift < uint64(bits) {
		lo = lhs.UMin() >> maxShift
	}
	return NewInterval(bits, lo, lhs.UMax()>>shift)
}

func ashr(bits uint32, lhs, rhs Range) Range {
	if rhs.Kind != Point {
		return NewFull(bits)
	}
	shift := rhs.Lo
	if shift >= uint64(bits) {
		shift = uint64(bits) - 1
	}
	lo := lhs.SMin() >> shift
	hi := lhs.SMax() >> shift
	return NewInterval(bits, uint64(lo)&mask(bits), uint64(hi)&mask(bits))
}
