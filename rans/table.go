package rans

import (
	"github.com/pkg/errors"
	entropy "github.com/rotemdan/entropy-coding"
)

// Table-based coding replaces the per-symbol transition arithmetic with a
// dense array lookup over all states below totalFreq*256. The encode and
// decode loops are otherwise identical to the compute-mode ones; they are
// kept as separate methods rather than parameterized to keep both hot loops
// tight.

// stateCount is the number of distinct states a running coder can reach,
// totalFreq*256. Computed in int because it sizes and indexes the tables;
// at the maximum range width the product is 1<<31.
func (c *Coder) stateCount() int {
	return int(c.totalFreq) * 256
}

// BuildEncoderTable precomputes the encoder state transition table used by
// EncodeWithTable. Building is idempotent. The table holds two uint32
// entries per state, totalFreq*2048 bytes in all.
func (c *Coder) BuildEncoderTable() {
	if c.encTable != nil {
		return
	}

	n := c.stateCount()
	table := make([]uint32, n*2)
	for x := 0; x < n; x++ {
		table[x*2] = c.encodeStep(uint32(x), 0)
		table[x*2+1] = c.encodeStep(uint32(x), 1)
	}
	c.encTable = table
}

// BuildDecoderTable precomputes the decoder state transition table used by
// DecodeWithTable. Building is idempotent.
func (c *Coder) BuildDecoderTable() {
	if c.decTable != nil {
		return
	}

	n := c.stateCount()
	table := make([]stateSym, n)
	for x := 0; x < n; x++ {
		table[x].state, table[x].sym = c.decodeStep(uint32(x))
	}
	c.decTable = table
}

// EncodeWithTable encodes like Encode but looks transitions up in the
// precomputed table. It fails if BuildEncoderTable has not been called.
func (c *Coder) EncodeWithTable(input *entropy.BitArray) ([]byte, uint32, error) {
	if c.encTable == nil {
		return nil, 0, errors.New("rans: encoder state transition table has not been built")
	}

	out := make([]byte, 0, input.ByteLen()+4)
	state := c.totalFreq

	for i := input.BitLen() - 1; i >= 0; i-- {
		s := input.Bit(i)

		for state >= c.flushThreshold[s] {
			out = append(out, byte(state))
			state >>= 8
		}

		state = c.encTable[int(state)*2+int(s)]
	}

	reverseBytes(out)
	return out, state, nil
}

// DecodeWithTable decodes like Decode but looks transitions up in the
// precomputed table. It fails if BuildDecoderTable has not been called.
func (c *Coder) DecodeWithTable(encoded []byte, finalState uint32, output *entropy.BitArray) error {
	if c.decTable == nil {
		return errors.New("rans: decoder state transition table has not been built")
	}

	state := finalState
	readPos := 0

	n := output.BitLen()
	for j := 0; j < n; j++ {
		for state < c.totalFreq && readPos < len(encoded) {
			state = state<<8 | uint32(encoded[readPos])
			readPos++
		}

		t := c.decTable[state]
		state = t.state
		output.SetBit(j, t.sym)
	}
	return nil
}
