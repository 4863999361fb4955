// Package codec frames messages for the entropy coders in this repository,
// turning them into a self-contained compression format: each frame carries
// everything the decoder needs except the coder choice, which the caller
// selects on both sides.
//
// The probability of a 1 bit is estimated once per message from the data
// itself and stays fixed for the whole message; the coders perform no
// adaptation.
//
// Frame layouts:
//
//	arithmetic: uvarint(bitLength) | float64bits(probOf1, little-endian) | payload
//	rANS:       uvarint(bitLength) | float64bits(probOf1, little-endian) |
//	            byte(rangeBits) | uvarint(finalState) | payload
//
// The rANS final state is an opaque 32-bit integer the rans package leaves
// to its consumers to transmit; this package stores it as a uvarint in the
// frame header.
package codec

import (
	"bufio"
	"encoding/binary"
	"io"
	"io/ioutil"
	"math"
	mathbits "math/bits"

	"github.com/pkg/errors"
	entropy "github.com/rotemdan/entropy-coding"
	"github.com/rotemdan/entropy-coding/bac"
	"github.com/rotemdan/entropy-coding/rans"
)

// probabilityOf1 estimates the probability of a 1 bit from the message
// itself.
func probabilityOf1(bits *entropy.BitArray) float64 {
	if bits.BitLen() == 0 {
		return 0.5
	}
	ones := 0
	for _, b := range bits.Bytes() {
		ones += mathbits.OnesCount8(b)
	}
	return float64(ones) / float64(bits.BitLen())
}

func writeHeader(w io.Writer, bitLen int, probOf1 float64) error {
	var buf [binary.MaxVarintLen64 + 8]byte
	n := binary.PutUvarint(buf[:], uint64(bitLen))
	binary.LittleEndian.PutUint64(buf[n:], math.Float64bits(probOf1))
	if _, err := w.Write(buf[:n+8]); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func readHeader(r *bufio.Reader) (bitLen int, probOf1 float64, err error) {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, 0, errors.Wrap(err, "")
	}
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, 0, errors.Wrap(err, "")
	}
	return int(length), math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// Compress encodes the contents of the named file with the binary
// arithmetic coder and writes a frame to w.
func Compress(w io.Writer, name string) error {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "")
	}

	bits := entropy.AsBitArray(data, len(data)*8)
	p := probabilityOf1(bits)

	encoded := entropy.NewBitStream(bits.BitLen())
	bac.Encode(bits, encoded, p)

	if err := writeHeader(w, bits.BitLen(), p); err != nil {
		return err
	}
	if _, err := w.Write(encoded.Bytes()); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Decompress reads an arithmetic-coder frame from r and writes the decoded
// bytes to w.
func Decompress(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	bitLen, p, err := readHeader(br)
	if err != nil {
		return err
	}
	payload, err := ioutil.ReadAll(br)
	if err != nil {
		return errors.Wrap(err, "")
	}

	decoded := entropy.NewBitArray(bitLen)
	bac.Decode(entropy.AsBitArray(payload, len(payload)*8), decoded, p)

	if _, err := w.Write(decoded.Bytes()); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// CompressANS encodes the contents of the named file with the rANS coder
// and writes a frame to w. rangeBits selects the coder's frequency space
// size.
func CompressANS(w io.Writer, name string, rangeBits int) error {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "")
	}

	bits := entropy.AsBitArray(data, len(data)*8)
	p := probabilityOf1(bits)

	c, err := rans.New(p, rangeBits)
	if err != nil {
		return errors.Wrap(err, "")
	}
	encoded, state := c.Encode(bits)

	if err := writeHeader(w, bits.BitLen(), p); err != nil {
		return err
	}
	var buf [1 + binary.MaxVarintLen32]byte
	buf[0] = byte(rangeBits)
	n := binary.PutUvarint(buf[1:], uint64(state))
	if _, err := w.Write(buf[:1+n]); err != nil {
		return errors.Wrap(err, "")
	}
	if _, err := w.Write(encoded); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// DecompressANS reads a rANS frame from r and writes the decoded bytes
// to w.
func DecompressANS(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	bitLen, p, err := readHeader(br)
	if err != nil {
		return err
	}
	rangeBits, err := br.ReadByte()
	if err != nil {
		return errors.Wrap(err, "")
	}
	state, err := binary.ReadUvarint(br)
	if err != nil {
		return errors.Wrap(err, "")
	}
	payload, err := ioutil.ReadAll(br)
	if err != nil {
		return errors.Wrap(err, "")
	}

	c, err := rans.New(p, int(rangeBits))
	if err != nil {
		return errors.Wrap(err, "")
	}
	decoded := entropy.NewBitArray(bitLen)
	c.Decode(payload, uint32(state), decoded)

	if _, err := w.Write(decoded.Bytes()); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
