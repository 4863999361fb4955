package entropy

import (
	"math/rand"
	"testing"
)

func TestFastDivExact(t *testing.T) {
	divisors := []uint32{
		1, 2, 3, 5, 7, 10, 100, 255, 256, 257,
		1 << 15, 1<<15 + 1, 1<<23 - 1, 1 << 23, 1<<31 - 1,
	}
	numerators := []uint32{
		0, 1, 2, 6, 7, 8, 255, 256, 65535, 1<<31 - 1, 1<<31 - 2,
	}
	for _, d := range divisors {
		f := NewFastDiv(d)
		for _, n := range numerators {
			q, r := f.DivMod(n)
			if q != n/d || r != n%d {
				t.Errorf("DivMod(%d, %d) = (%d, %d), want (%d, %d)", n, d, q, r, n/d, n%d)
			}
			if f.Div(n) != n/d {
				t.Errorf("Div(%d, %d) = %d, want %d", n, d, f.Div(n), n/d)
			}
		}
	}
}

func TestFastDivSeven(t *testing.T) {
	q, r := NewFastDiv(7).DivMod(2147483646)
	if q != 306783378 || r != 0 {
		t.Errorf("(%d, %d)", q, r)
	}
}

func TestFastDivRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 100000; i++ {
		d := uint32(rnd.Int31n(1<<31-1)) + 1
		n := uint32(rnd.Int31())
		f := NewFastDiv(d)
		q, r := f.DivMod(n)
		if q != n/d || r != n%d {
			t.Fatalf("DivMod(%d, %d) = (%d, %d), want (%d, %d)", n, d, q, r, n/d, n%d)
		}
	}
}

// TestFastDivZero checks the degenerate zero-divisor descriptor: the
// quotient is always zero.
func TestFastDivZero(t *testing.T) {
	f := NewFastDiv(0)
	if f.Div(12345) != 0 {
		t.Errorf("%d", f.Div(12345))
	}
}

func TestFastDivRejectsLargeDivisor(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic for divisor 1<<31")
		}
	}()
	NewFastDiv(1 << 31)
}
