// Package cell implements the bit-level cell layout of the target machine:
// up to 1023 data bits and 4 references per cell.
//
// The compiler uses it to check and encode compile-time constants with the
// same integer formats the generated code loads and stores.
package cell

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const (
	MaxBits = 1023
	MaxRefs = 4
)

var (
	ErrOverflow  = errors.New("cell overflow")
	ErrUnderflow = errors.New("cell underflow")
	ErrRange     = errors.New("integer out of range")
)

// Cell is an immutable sequence of bits plus references
type Cell struct {
	data []byte
	bits int
	refs []*Cell
}

// Bits returns the number of data bits
func (c *Cell) Bits() int { return c.bits }

// Refs returns the number of references
func (c *Cell) Refs() int { return len(c.refs) }

// BeginParse returns a slice positioned at the first bit
func (c *Cell) BeginParse() *Slice {
	return &Slice{cell: c}
}

// String renders the data bits in the x{...} notation of Fift, with a "_"
// completion tag when the bit count is not a multiple of four.
func (c *Cell) String() string {
	var sb strings.Builder
	sb.WriteString("x{")
	full := c.bits / 4
	for i := 0; i < full; i++ {
		sb.WriteByte("0123456789ABCDEF"[c.nibble(i*4, 4)])
	}
	if rest := c.bits % 4; rest > 0 {
		// pad with a single 1 bit followed by zeros
		n := c.nibble(full*4, rest)<<(4-rest) | 1<<(3-rest)
		sb.WriteByte("0123456789ABCDEF"[n])
		sb.WriteByte('_')
	}
	sb.WriteString("}")
	return sb.String()
}

func (c *Cell) nibble(pos, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		v = v<<1 | int(c.bit(pos+i))
	}
	return v
}

func (c *Cell) bit(pos int) byte {
	return c.data[pos/8] >> (7 - uint(pos%8)) & 1
}

// Builder accumulates bits and references for a new cell
type Builder struct {
	data []byte
	bits int
	refs []*Cell
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Bits returns the number of bits stored so far
func (b *Builder) Bits() int { return b.bits }

func (b *Builder) storeBit(bit byte) {
	if b.bits%8 == 0 {
		b.data = append(b.data, 0)
	}
	b.data[b.bits/8] |= bit << (7 - uint(b.bits%8))
	b.bits++
}

func (b *Builder) reserve(n int) error {
	if b.bits+n > MaxBits {
		return errors.Wrapf(ErrOverflow, "storing %d bits after %d", n, b.bits)
	}
	return nil
}

// storeRaw writes the low n bits of the non-negative v, most significant first
func (b *Builder) storeRaw(v *big.Int, n int) {
	for i := n - 1; i >= 0; i-- {
		b.storeBit(byte(v.Bit(i)))
	}
}

// StoreUint stores v as an unsigned integer of the given width (0..256)
func (b *Builder) StoreUint(v *big.Int, width int) error {
	if width < 0 || width > 256 {
		return errors.Wrapf(ErrRange, "uint width %d", width)
	}
	if v.Sign() < 0 || v.BitLen() > width {
		return errors.Wrapf(ErrRange, "%s does not fit in uint%d", v, width)
	}
	if err := b.reserve(width); err != nil {
		return err
	}
	b.storeRaw(v, width)
	return nil
}

// StoreInt stores v in two's complement with the given width (1..257)
func (b *Builder) StoreInt(v *big.Int, width int) error {
	if width < 1 || width > 257 {
		return errors.Wrapf(ErrRange, "int width %d", width)
	}
	if signedBits(v) > width {
		return errors.Wrapf(ErrRange, "%s does not fit in int%d", v, width)
	}
	if err := b.reserve(width); err != nil {
		return err
	}
	b.storeRaw(twos(v, width), width)
	return nil
}

// StoreVarUint stores v as a byte length of lenBits bits followed by the bytes
func (b *Builder) StoreVarUint(v *big.Int, lenBits int) error {
	if v.Sign() < 0 {
		return errors.Wrapf(ErrRange, "%s is negative", v)
	}
	n := (v.BitLen() + 7) / 8
	if n >= 1<<uint(lenBits) {
		return errors.Wrapf(ErrRange, "%s needs %d bytes", v, n)
	}
	if err := b.reserve(lenBits + n*8); err != nil {
		return err
	}
	b.storeRaw(big.NewInt(int64(n)), lenBits)
	b.storeRaw(v, n*8)
	return nil
}

// StoreVarInt is StoreVarUint for signed values
func (b *Builder) StoreVarInt(v *big.Int, lenBits int) error {
	n := 0
	if v.Sign() != 0 {
		n = (signedBits(v) + 7) / 8
	}
	if n >= 1<<uint(lenBits) {
		return errors.Wrapf(ErrRange, "%s needs %d bytes", v, n)
	}
	if err := b.reserve(lenBits + n*8); err != nil {
		return err
	}
	b.storeRaw(big.NewInt(int64(n)), lenBits)
	if n > 0 {
		b.storeRaw(twos(v, n*8), n*8)
	}
	return nil
}

// StoreCoins stores a token amount, a VarUInteger 16
func (b *Builder) StoreCoins(v *big.Int) error {
	return b.StoreVarUint(v, 4)
}

// StoreRef appends a reference
func (b *Builder) StoreRef(c *Cell) error {
	if len(b.refs) >= MaxRefs {
		return errors.Wrap(ErrOverflow, "too many references")
	}
	b.refs = append(b.refs, c)
	return nil
}

// StoreSlice appends the remaining bits and references of s
func (b *Builder) StoreSlice(s *Slice) error {
	if err := b.reserve(s.BitsLeft()); err != nil {
		return err
	}
	if len(b.refs)+s.RefsLeft() > MaxRefs {
		return errors.Wrap(ErrOverflow, "too many references")
	}
	for i := s.pos; i < s.cell.bits; i++ {
		b.storeBit(s.cell.bit(i))
	}
	b.refs = append(b.refs, s.cell.refs[s.ref:]...)
	return nil
}

// EndCell finishes the cell. The builder can keep being used.
func (b *Builder) EndCell() *Cell {
	return &Cell{
		data: append([]byte(nil), b.data...),
		bits: b.bits,
		refs: append([]*Cell(nil), b.refs...),
	}
}

// Slice reads a cell front to back
type Slice struct {
	cell *Cell
	pos  int
	ref  int
}

func (s *Slice) BitsLeft() int { return s.cell.bits - s.pos }
func (s *Slice) RefsLeft() int { return len(s.cell.refs) - s.ref }

func (s *Slice) need(n int) error {
	if n > s.BitsLeft() {
		return errors.Wrapf(ErrUnderflow, "loading %d bits with %d left", n, s.BitsLeft())
	}
	return nil
}

func (s *Slice) loadRaw(n int) *big.Int {
	v := new(big.Int)
	for i := 0; i < n; i++ {
		v.Lsh(v, 1)
		if s.cell.bit(s.pos) == 1 {
			v.SetBit(v, 0, 1)
		}
		s.pos++
	}
	return v
}

func (s *Slice) LoadUint(width int) (*big.Int, error) {
	if width < 0 || width > 256 {
		return nil, errors.Wrapf(ErrRange, "uint width %d", width)
	}
	if err := s.need(width); err != nil {
		return nil, err
	}
	return s.loadRaw(width), nil
}

func (s *Slice) LoadInt(width int) (*big.Int, error) {
	if width < 1 || width > 257 {
		return nil, errors.Wrapf(ErrRange, "int width %d", width)
	}
	if err := s.need(width); err != nil {
		return nil, err
	}
	return fromTwos(s.loadRaw(width), width), nil
}

func (s *Slice) LoadVarUint(lenBits int) (*big.Int, error) {
	if err := s.need(lenBits); err != nil {
		return nil, err
	}
	n := int(s.loadRaw(lenBits).Int64())
	if err := s.need(n * 8); err != nil {
		return nil, err
	}
	return s.loadRaw(n * 8), nil
}

func (s *Slice) LoadVarInt(lenBits int) (*big.Int, error) {
	if err := s.need(lenBits); err != nil {
		return nil, err
	}
	n := int(s.loadRaw(lenBits).Int64())
	if err := s.need(n * 8); err != nil {
		return nil, err
	}
	if n == 0 {
		return new(big.Int), nil
	}
	return fromTwos(s.loadRaw(n*8), n*8), nil
}

func (s *Slice) LoadCoins() (*big.Int, error) {
	return s.LoadVarUint(4)
}

func (s *Slice) LoadRef() (*Cell, error) {
	if s.RefsLeft() == 0 {
		return nil, errors.Wrap(ErrUnderflow, "no references left")
	}
	c := s.cell.refs[s.ref]
	s.ref++
	return c, nil
}

// signedBits is the smallest two's complement width holding v
func signedBits(v *big.Int) int {
	if v.Sign() >= 0 {
		return v.BitLen() + 1
	}
	// -2^(k-1) needs k bits: use the bit length of -v-1
	t := new(big.Int).Neg(v)
	t.Sub(t, big.NewInt(1))
	return t.BitLen() + 1
}

func twos(v *big.Int, width int) *big.Int {
	if v.Sign() >= 0 {
		return v
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return mod.Add(mod, v)
}

func fromTwos(u *big.Int, width int) *big.Int {
	if u.Bit(width-1) == 0 {
		return u
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return u.Sub(u, mod)
}

// MaxCoins is the largest amount StoreCoins accepts, 2^120 - 1
var MaxCoins = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 120), big.NewInt(1))

// Describe formats a cell tree, one cell per line, indented by depth
func Describe(c *Cell) string {
	var sb strings.Builder
	var walk func(c *Cell, depth int)
	walk = func(c *Cell, depth int) {
		fmt.Fprintf(&sb, "%s%s\n", strings.Repeat("  ", depth), c)
		for _, r := range c.refs {
			walk(r, depth+1)
		}
	}
	walk(c, 0)
	return sb.String()
}
