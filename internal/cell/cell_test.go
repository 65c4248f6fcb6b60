package cell

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
)

func pow2(n uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), n)
}

func sub(a *big.Int, b int64) *big.Int {
	return new(big.Int).Sub(a, big.NewInt(b))
}

func TestUintRoundTrip(t *testing.T) {
	tests := []struct {
		v     *big.Int
		width int
	}{
		{big.NewInt(0), 0},
		{big.NewInt(0), 1},
		{big.NewInt(1), 1},
		{big.NewInt(255), 8},
		{sub(pow2(256), 1), 256},
		{big.NewInt(0), 256},
	}
	for _, tt := range tests {
		b := NewBuilder()
		if err := b.StoreUint(tt.v, tt.width); err != nil {
			t.Errorf("StoreUint(%s, %d): %v", tt.v, tt.width, err)
			continue
		}
		s := b.EndCell().BeginParse()
		got, err := s.LoadUint(tt.width)
		if err != nil || got.Cmp(tt.v) != 0 {
			t.Errorf("LoadUint(%d) = %v, %v, want %s", tt.width, got, err, tt.v)
		}
		if s.BitsLeft() != 0 {
			t.Errorf("uint%d left %d bits", tt.width, s.BitsLeft())
		}
	}
}

func TestIntRoundTrip(t *testing.T) {
	tests := []struct {
		v     *big.Int
		width int
	}{
		{big.NewInt(0), 1},
		{big.NewInt(-1), 1},
		{big.NewInt(-128), 8},
		{big.NewInt(127), 8},
		{new(big.Int).Neg(pow2(256)), 257},
		{sub(pow2(256), 1), 257},
	}
	for _, tt := range tests {
		b := NewBuilder()
		if err := b.StoreInt(tt.v, tt.width); err != nil {
			t.Errorf("StoreInt(%s, %d): %v", tt.v, tt.width, err)
			continue
		}
		got, err := b.EndCell().BeginParse().LoadInt(tt.width)
		if err != nil || got.Cmp(tt.v) != 0 {
			t.Errorf("LoadInt(%d) = %v, %v, want %s", tt.width, got, err, tt.v)
		}
	}
}

func TestVariableLengthRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		v       *big.Int
		signed  bool
		lenBits int
	}{
		{"coins zero", big.NewInt(0), false, 4},
		{"coins max", MaxCoins, false, 4},
		{"varuint32 max", sub(pow2(248), 1), false, 5},
		{"varint16 min", new(big.Int).Neg(pow2(119)), true, 4},
		{"varint16 max", sub(pow2(119), 1), true, 4},
		{"varint32 -1", big.NewInt(-1), true, 5},
		{"varint32 128", big.NewInt(128), true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			var err error
			if tt.signed {
				err = b.StoreVarInt(tt.v, tt.lenBits)
			} else {
				err = b.StoreVarUint(tt.v, tt.lenBits)
			}
			if err != nil {
				t.Fatalf("store %s: %v", tt.v, err)
			}
			s := b.EndCell().BeginParse()
			var got *big.Int
			if tt.signed {
				got, err = s.LoadVarInt(tt.lenBits)
			} else {
				got, err = s.LoadVarUint(tt.lenBits)
			}
			if err != nil || got.Cmp(tt.v) != 0 {
				t.Errorf("load = %v, %v, want %s", got, err, tt.v)
			}
		})
	}
}

func TestRangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		store func(b *Builder) error
	}{
		{"uint too wide", func(b *Builder) error { return b.StoreUint(pow2(8), 8) }},
		{"negative uint", func(b *Builder) error { return b.StoreUint(big.NewInt(-1), 8) }},
		{"int too wide", func(b *Builder) error { return b.StoreInt(big.NewInt(128), 8) }},
		{"int below min", func(b *Builder) error { return b.StoreInt(big.NewInt(-129), 8) }},
		{"coins above max", func(b *Builder) error { return b.StoreCoins(pow2(120)) }},
		{"uint257", func(b *Builder) error { return b.StoreUint(big.NewInt(1), 257) }},
		{"int258", func(b *Builder) error { return b.StoreInt(big.NewInt(1), 258) }},
	}
	for _, tt := range tests {
		if err := tt.store(NewBuilder()); errors.Cause(err) != ErrRange {
			t.Errorf("%s: err = %v, want %v", tt.name, err, ErrRange)
		}
	}
}

func TestCapacity(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 3; i++ {
		if err := b.StoreUint(big.NewInt(0), 256); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.StoreUint(big.NewInt(0), 255); err != nil {
		t.Fatalf("filling to %d bits: %v", MaxBits, err)
	}
	if err := b.StoreUint(big.NewInt(0), 1); errors.Cause(err) != ErrOverflow {
		t.Errorf("bit %d: err = %v, want overflow", MaxBits+1, err)
	}

	empty := NewBuilder().EndCell()
	r := NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		if err := r.StoreRef(empty); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.StoreRef(empty); errors.Cause(err) != ErrOverflow {
		t.Errorf("ref %d: err = %v, want overflow", MaxRefs+1, err)
	}

	if _, err := empty.BeginParse().LoadUint(1); errors.Cause(err) != ErrUnderflow {
		t.Errorf("LoadUint on empty cell: err = %v, want underflow", err)
	}
	if _, err := empty.BeginParse().LoadRef(); errors.Cause(err) != ErrUnderflow {
		t.Errorf("LoadRef on empty cell: err = %v, want underflow", err)
	}
}

func TestStringAndSlices(t *testing.T) {
	b := NewBuilder()
	if err := b.StoreUint(big.NewInt(0xA), 4); err != nil {
		t.Fatal(err)
	}
	if err := b.StoreUint(big.NewInt(1), 2); err != nil {
		t.Fatal(err)
	}
	c := b.EndCell()
	if got, want := c.String(), "x{A6_}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	inner := NewBuilder()
	if err := inner.StoreRef(c); err != nil {
		t.Fatal(err)
	}
	if err := inner.StoreSlice(c.BeginParse()); err != nil {
		t.Fatal(err)
	}
	outer := inner.EndCell()
	if outer.Bits() != 6 || outer.Refs() != 1 {
		t.Errorf("copy has %d bits and %d refs, want 6 and 1", outer.Bits(), outer.Refs())
	}
	if got := Describe(outer); got != "x{A6_}\n  x{A6_}\n" {
		t.Errorf("Describe() = %q", got)
	}
}
