// Package bac implements a binary arithmetic coder with a fixed,
// caller-supplied probability, based on the integer algorithm described in
// Witten, Ian H.; Neal, Radford M.; Cleary, John G. (June 1987). "Arithmetic
// Coding for Data Compression". Communications of the ACM 30 (6): 520-540.
//
// The coder maps the message to a subinterval of [0, 1) represented in
// 32-bit fixed point. Whenever the interval falls entirely into one half it
// is rescaled and a bit is emitted (E1/E2); when it straddles the midpoint
// inside the middle half, emission is deferred and a pending-bit counter is
// incremented instead (E3).
package bac

import (
	entropy "github.com/rotemdan/entropy-coding"
)

const (
	codeValueBits = 32

	// The initial interval is [0, 1<<32 - 1]. Keeping the top endpoint one
	// below 1<<32 ensures doubling it during normalization cannot overflow
	// a 32-bit word.
	topValue      = uint32(1<<codeValueBits - 1)
	quarter       = uint32(1) << (codeValueBits - 2)
	half          = uint32(1) << (codeValueBits - 1)
	threeQuarters = half + quarter
)

// probEpsilon keeps the probability away from exactly 0 or 1, which would
// produce zero-width subintervals.
const probEpsilon = 1e-9

func clampProb(p float64) float64 {
	if p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}

// bitPlusPending appends bit to the stream, followed by the recorded number
// of pending bits with the opposite value.
func bitPlusPending(out *entropy.BitStream, bit byte, pending *int) {
	out.Append(bit)
	for ; *pending > 0; *pending-- {
		out.Append(bit ^ 1)
	}
}

// Encode encodes the bits of input into output, where probOf1 is the
// probability of a 1 bit. probOf1 is clamped to [1e-9, 1-1e-9]. The encoded
// stream carries no length information; the decoder must be given the
// original bit count.
func Encode(input *entropy.BitArray, output *entropy.BitStream, probOf1 float64) {
	probOf1 = clampProb(probOf1)

	// Fixed-point multiplier for the width of the 0 subinterval.
	frac := entropy.NewFracMul(1 - probOf1)

	var low, high uint32 = 0, topValue
	pending := 0

	n := input.BitLen()
	for i := 0; i < n; i++ {
		// Narrow the interval. The boundary splits it proportionally to
		// the probability of 0: below the boundary means 0, at or above
		// means 1.
		boundary := low + frac.Mul(high-low)
		if input.Bit(i) == 0 {
			high = boundary
		} else {
			low = boundary
		}

		// Normalize and emit.
		for {
			if high < half { // E1: interval in [0, 0.5)
				bitPlusPending(output, 0, &pending)
				low *= 2
				high *= 2
			} else if low >= half { // E2: interval in [0.5, 1)
				bitPlusPending(output, 1, &pending)
				low = (low - half) * 2
				high = (high - half) * 2
			} else if low >= quarter && high < threeQuarters { // E3: interval in [0.25, 0.75)
				pending++
				low = (low - quarter) * 2
				high = (high - quarter) * 2
			} else {
				break
			}
		}
	}

	// Finalize: one more definitive bit, plus all deferred bits, uniquely
	// identifies the interval.
	pending++
	if low < quarter {
		bitPlusPending(output, 0, &pending)
	} else {
		bitPlusPending(output, 1, &pending)
	}
}

// Decode decodes encoded into output, where probOf1 is the same probability
// given to Encode. The length of output determines how many bits are
// decoded; any bit stream yields exactly that many bits. output must be
// zeroed.
func Decode(encoded *entropy.BitArray, output *entropy.BitArray, probOf1 float64) {
	probOf1 = clampProb(probOf1)
	frac := entropy.NewFracMul(1 - probOf1)

	var low, high uint32 = 0, topValue
	var value uint32
	readPos := 0

	m := encoded.BitLen()
	n := output.BitLen()

	// Prime value with the first bits of the stream, MSB first, padding
	// with zeros if the stream is shorter than the code width.
	initial := m
	if initial > codeValueBits {
		initial = codeValueBits
	}
	for ; readPos < initial; readPos++ {
		value = value*2 | uint32(encoded.Bit(readPos))
	}
	value <<= uint(codeValueBits - initial)

	for writePos := 0; writePos < n; writePos++ {
		boundary := low + frac.Mul(high-low)
		if value < boundary {
			output.SetBit(writePos, 0)
			high = boundary
		} else {
			output.SetBit(writePos, 1)
			low = boundary
		}

		// Mirror the encoder's normalization, keeping value in sync with
		// the interval.
		for {
			if high < half {
				low *= 2
				high *= 2
				value *= 2
			} else if low >= half {
				low = (low - half) * 2
				high = (high - half) * 2
				value = (value - half) * 2
			} else if low >= quarter && high < threeQuarters {
				low = (low - quarter) * 2
				high = (high - quarter) * 2
				value = (value - quarter) * 2
			} else {
				break
			}

			// The shift left one position exposed a zero in value's lowest
			// bit; pull in the next stream bit if any remain.
			if readPos < m {
				value |= uint32(encoded.Bit(readPos))
				readPos++
			}
		}
	}
}
