package crange

// Trunc truncates r to a narrower bit-width, discarding high bits.
func Trunc(r Range, bits uint32) Range {
	if r.IsEmpty() {
		return NewEmpty(bits)
	}
	if r.IsFull() || spanOf(r) >= mask(bits) {
		return NewFull(bits)
	}
	return NewInterval(bits, r.Lo&mask(bits), r.Hi&mask(bits))
}

// ZExt zero-extends r to a wider bit-width. Values do not change
// numerically, only the domain they are tagged with grows.
func ZExt(r Range, bits uint32) Range {
	switch r.Kind {
	case Empty:
		return NewEmpty(bits)
	case Full:
		// The old domain's full range is [0, oldMask]; in the wider
		// domain that is no longer "full", just that interval.
		return NewInterval(bits, 0, mask(r.Bits))
	case Point:
		return NewPoint(bits, r.Lo)
	default: // Interval, Wrapped: re-express as unsigned bounds, which
		// zero-extension preserves exactly for Interval, and
		// conservatively for Wrapped (see UMin/UMax doc).
		if r.Kind == Interval {
			return NewInterval(bits, r.Lo, r.Hi)
		}
		return NewInterval(bits, r.UMin(), r.UMax())
	}
}

// SExt sign-extends r to a wider bit-width.
func SExt(r Range, bits uint32) Range {
	switch r.Kind {
	case Empty:
		return NewEmpty(bits)
	case Point:
		return NewPoint(bits, uint64(toSigned(r.Lo, r.Bits)) & mask(bits))
	default:
		lo := uint64(r.SMin()) & mask(bits)
		hi := uint64(r.SMax()) & mask(bits)
		return NewInterval(bits, lo, hi)
	}
}
