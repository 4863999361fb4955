package bac

import (
	"bytes"
	"math/rand"
	"testing"

	entropy "github.com/rotemdan/entropy-coding"
)

func roundTrip(t *testing.T, bits []byte, p float64) *entropy.BitStream {
	t.Helper()

	input := entropy.NewBitArray(len(bits))
	for i, b := range bits {
		input.SetBit(i, b)
	}

	output := entropy.NewBitStream(len(bits))
	Encode(input, output, p)

	decoded := entropy.NewBitArray(len(bits))
	Decode(output.BitArray(), decoded, p)

	for i, b := range bits {
		if decoded.Bit(i) != b {
			t.Fatalf("p=%v n=%d: bit %d: %d != %d", p, len(bits), i, decoded.Bit(i), b)
		}
	}
	return output
}

func randomBits(r *rand.Rand, n int, p float64) []byte {
	bits := make([]byte, n)
	for i := range bits {
		if r.Float64() < p {
			bits[i] = 1
		}
	}
	return bits
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	probs := []float64{0.001, 0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99, 0.999}
	sizes := []int{0, 1, 2, 7, 8, 9, 100, 1000, 100000}

	for _, p := range probs {
		for _, n := range sizes {
			roundTrip(t, randomBits(r, n, p), p)
		}
	}
}

// TestRoundTripMismatchedBias feeds messages whose statistics do not match
// the supplied probability; decoding must still be lossless.
func TestRoundTripMismatchedBias(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	roundTrip(t, randomBits(r, 5000, 0.9), 0.1)
	roundTrip(t, randomBits(r, 5000, 0.5), 0.001)
}

func TestRoundTripExtremeProbabilities(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	bits := randomBits(r, 1000, 0.5)

	// Out-of-range probabilities are clamped, not rejected.
	roundTrip(t, bits, 0)
	roundTrip(t, bits, 1)
	roundTrip(t, bits, -3)
	roundTrip(t, bits, 4)
}

func TestAlternating(t *testing.T) {
	bits := []byte{1, 0, 1, 0, 1, 0, 1, 0, 1, 0}
	out := roundTrip(t, bits, 0.5)
	if out.BitLen() == 0 {
		t.Error("empty encoded stream")
	}
	if out.BitLen() > len(bits)+2 {
		t.Errorf("encoded %d bits from %d input bits", out.BitLen(), len(bits))
	}
}

// TestCompression checks that a strongly biased message compresses well: a
// thousand zeros at probOf1 = 0.01 carry under 15 bits of information.
func TestCompression(t *testing.T) {
	bits := make([]byte, 1000)
	out := roundTrip(t, bits, 0.01)
	if out.BitLen() > 20 {
		t.Errorf("encoded 1000 zeros into %d bits", out.BitLen())
	}
}

func TestSingleBit(t *testing.T) {
	input := entropy.NewBitArray(1)
	input.SetBit(0, 1)

	output := entropy.NewBitStream(1)
	Encode(input, output, 0.5)

	decoded := entropy.NewBitArray(1)
	Decode(output.BitArray(), decoded, 0.5)
	if decoded.Bit(0) != 1 {
		t.Errorf("%d", decoded.Bit(0))
	}
}

func TestEmptyMessage(t *testing.T) {
	input := entropy.NewBitArray(0)
	output := entropy.NewBitStream(0)
	Encode(input, output, 0.3)

	decoded := entropy.NewBitArray(0)
	Decode(output.BitArray(), decoded, 0.3)
}

// TestDeterminism checks that encoding is a pure function of the message
// and the probability.
func TestDeterminism(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	bits := randomBits(r, 4096, 0.7)

	input := entropy.NewBitArray(len(bits))
	for i, b := range bits {
		input.SetBit(i, b)
	}

	first := entropy.NewBitStream(len(bits))
	Encode(input, first, 0.7)
	second := entropy.NewBitStream(len(bits))
	Encode(input, second, 0.7)

	if first.BitLen() != second.BitLen() || !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two encodings of the same message differ")
	}
}

func BenchmarkEncode(b *testing.B) {
	r := rand.New(rand.NewSource(9))
	bits := randomBits(r, 1<<16, 0.3)
	input := entropy.NewBitArray(len(bits))
	for i, bit := range bits {
		input.SetBit(i, bit)
	}

	b.SetBytes(int64(len(bits) / 8))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		output := entropy.NewBitStream(len(bits))
		Encode(input, output, 0.3)
	}
}

func BenchmarkDecode(b *testing.B) {
	r := rand.New(rand.NewSource(10))
	bits := randomBits(r, 1<<16, 0.3)
	input := entropy.NewBitArray(len(bits))
	for i, bit := range bits {
		input.SetBit(i, bit)
	}
	output := entropy.NewBitStream(len(bits))
	Encode(input, output, 0.3)
	encoded := output.BitArray()

	b.SetBytes(int64(len(bits) / 8))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		decoded := entropy.NewBitArray(len(bits))
		Decode(encoded, decoded, 0.3)
	}
}
