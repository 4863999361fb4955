// Package rans implements a byte-wise streaming range Asymmetric Numeral
// Systems (rANS) coder for a binary alphabet with a fixed, caller-supplied
// probability. See Jarek Duda, "Asymmetric numeral systems: entropy coding
// combining speed of Huffman coding with compression rate of arithmetic
// coding", https://arxiv.org/abs/1311.2540.
//
// The coder's entire state is a single 32-bit integer. Encoding consumes the
// message in reverse and flushes the low byte of the state whenever it would
// outgrow its bound; decoding reads the flushed bytes in forward order and
// reconstructs the state sequence backwards (the LIFO property of ANS).
//
// Optionally, the per-symbol state transitions can be precomputed into dense
// lookup tables (tANS style); see BuildEncoderTable and BuildDecoderTable.
package rans

import (
	"math"

	"github.com/pkg/errors"
	entropy "github.com/rotemdan/entropy-coding"
)

// Range bit width bounds. The upper bound keeps every state below
// totalFreq * 256 <= 1<<31, within 32 bits and within FastDiv's domain.
const (
	MinRangeBits = 2
	MaxRangeBits = 23
)

// A Coder encodes and decodes binary messages with a fixed probability of
// the 1 symbol, quantized onto a frequency space of 1<<rangeBits.
//
// A Coder is logically immutable after construction, except for the lazily
// built transition tables. Sharing one across goroutines is safe as long as
// any tables are built before sharing.
type Coder struct {
	rangeBits uint
	totalFreq uint32

	freq           [2]uint32
	cum            [2]uint32
	flushThreshold [2]uint32
	div            [2]entropy.FastDiv

	encTable []uint32
	decTable []stateSym
}

// stateSym is a decoder transition: the successor state and the symbol the
// transition emits.
type stateSym struct {
	state uint32
	sym   byte
}

// New returns a Coder for the given probability of a 1 bit and range bit
// width. Larger widths quantize the probability more finely; widths in
// [6, 12] are typical when table mode is intended, since table size grows
// linearly with 1<<rangeBits.
func New(probOf1 float64, rangeBits int) (*Coder, error) {
	if probOf1 < 0 || probOf1 > 1 {
		return nil, errors.Errorf("rans: probability of 1 must be in [0, 1], got %v", probOf1)
	}
	if rangeBits < MinRangeBits || rangeBits > MaxRangeBits {
		return nil, errors.Errorf("rans: range bit width must be in [%d, %d], got %d",
			MinRangeBits, MaxRangeBits, rangeBits)
	}

	c := &Coder{
		rangeBits: uint(rangeBits),
		totalFreq: uint32(1) << rangeBits,
	}

	// Quantize the probability of 0 onto the frequency space, keeping both
	// symbols representable.
	f0 := uint32(math.Round((1 - probOf1) * float64(c.totalFreq)))
	f0 = clip(f0, 1, c.totalFreq-1)

	c.freq = [2]uint32{f0, c.totalFreq - f0}
	c.cum = [2]uint32{0, f0}
	for s := 0; s < 2; s++ {
		c.flushThreshold[s] = c.freq[s] * 256
		c.div[s] = entropy.NewFastDiv(c.freq[s])
	}
	return c, nil
}

func clip(n, min, max uint32) uint32 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// TotalFreq returns the size of the frequency space, 1<<rangeBits.
func (c *Coder) TotalFreq() uint32 { return c.totalFreq }

// Freq returns the quantized frequency of symbol s.
func (c *Coder) Freq(s byte) uint32 { return c.freq[s] }

// encodeStep computes the encoder state transition C(s, x).
func (c *Coder) encodeStep(x uint32, s byte) uint32 {
	q, r := c.div[s].DivMod(x)
	return c.totalFreq*q + c.cum[s] + r
}

// decodeStep computes the decoder state transition D(x), returning the
// predecessor state and the symbol it encoded. The quotient and remainder
// reduce to shifts and masks since totalFreq is a power of two.
func (c *Coder) decodeStep(x uint32) (uint32, byte) {
	q := x >> c.rangeBits
	r := x & (c.totalFreq - 1)

	var s byte
	if r >= c.cum[1] {
		s = 1
	}
	return c.freq[s]*q - c.cum[s] + r, s
}

// Encode encodes the bits of input and returns the flushed bytes together
// with the final state. The final state is required for decoding and is not
// serialized here; transmitting it is up to the caller.
func (c *Coder) Encode(input *entropy.BitArray) ([]byte, uint32) {
	out := make([]byte, 0, input.ByteLen()+4)
	state := c.totalFreq

	// Message bits are consumed in reverse so the decoder can replay the
	// state sequence in forward order.
	for i := input.BitLen() - 1; i >= 0; i-- {
		s := input.Bit(i)

		// Flush the low byte of the state while it is at or above the
		// symbol's threshold. Bounding the state by freq[s]*256 before the
		// transition keeps the successor state in [totalFreq, totalFreq*256),
		// so a decoder state below totalFreq can only come from a flush;
		// that is the condition the decoder recognizes to unflush.
		for state >= c.flushThreshold[s] {
			out = append(out, byte(state))
			state >>= 8
		}

		state = c.encodeStep(state, s)
	}

	// The decoder reads bytes in forward order.
	reverseBytes(out)
	return out, state
}

// Decode decodes the encoded bytes into output given the final state
// returned by Encode. The length of output determines how many bits are
// decoded. output must be zeroed.
func (c *Coder) Decode(encoded []byte, finalState uint32, output *entropy.BitArray) {
	state := finalState
	readPos := 0

	n := output.BitLen()
	for j := 0; j < n; j++ {
		for state < c.totalFreq && readPos < len(encoded) {
			state = state<<8 | uint32(encoded[readPos])
			readPos++
		}

		var s byte
		state, s = c.decodeStep(state)
		output.SetBit(j, s)
	}
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
