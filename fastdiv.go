package entropy

import "math/bits"

// A FastDiv divides 31-bit unsigned integers by a fixed divisor using a
// single widening multiplication and a right shift, with a precomputed
// "magic" multiplier. See Henry S. Warren, Jr. "Hacker's Delight"
// chapter 10.
//
// Numerators and divisors must be below 1<<31. Extending the scheme to the
// full 32-bit range would complicate it considerably and the coders never
// need it: rANS frequencies stay below 1<<23 and states below 1<<31.
type FastDiv struct {
	divisor    uint32
	multiplier uint64
	shift      uint
}

// NewFastDiv returns a FastDiv for divisor d. A zero divisor yields a
// descriptor whose quotient is always zero; callers must not actually
// divide by it. NewFastDiv panics if d >= 1<<31.
func NewFastDiv(d uint32) FastDiv {
	if d == 0 {
		return FastDiv{}
	}
	if d >= 1<<31 {
		panic("entropy: fast division divisor must be below 1<<31")
	}

	// Exponent of the closest power of two greater or equal to d.
	w := uint(bits.Len32(d - 1))

	if d == 1<<w {
		return FastDiv{divisor: d, multiplier: 1, shift: w}
	}

	shift := 32 + w
	multiplier := ((uint64(1) << shift) + uint64(d) - 1) / uint64(d)
	return FastDiv{divisor: d, multiplier: multiplier, shift: shift}
}

// Div returns n / d for n below 1<<31.
func (f FastDiv) Div(n uint32) uint32 {
	return uint32((uint64(n) * f.multiplier) >> f.shift)
}

// DivMod returns the quotient and remainder of n / d for n below 1<<31.
func (f FastDiv) DivMod(n uint32) (q, r uint32) {
	q = uint32((uint64(n) * f.multiplier) >> f.shift)
	r = n - q*f.divisor
	return q, r
}
