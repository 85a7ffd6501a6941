// Package bitio implements the LSB-first bit cursor shared by the stream writer and reader.
//
// Bits are packed least-significant bit first within each byte, and multi-bit integers are
// written least-significant bits first, splitting across byte boundaries as needed. No
// operation assumes byte alignment.
//
// Every operation is bounds-checked against the underlying slice: writers return
// errs.ErrBufferOverflow and readers return errs.ErrShortStream instead of touching memory
// outside the buffer. A failed operation leaves the cursor unchanged.
package bitio

import "math/bits"

// Cursor is a position inside a byte buffer: a byte offset plus a bit offset in [0, 8).
type Cursor struct {
	Byte int
	Bit  uint8
}

// Offset returns the absolute bit offset of the cursor.
func (c Cursor) Offset() int {
	return c.Byte*8 + int(c.Bit)
}

// Aligned reports whether the cursor sits on a byte boundary.
func (c Cursor) Aligned() bool {
	return c.Bit == 0
}

// Align moves the cursor to the next byte boundary. An aligned cursor is not moved.
func (c *Cursor) Align() {
	if c.Bit != 0 {
		c.Byte++
		c.Bit = 0
	}
}

// advance moves the cursor forward by n bits, carrying into the byte offset.
func (c *Cursor) advance(n int) {
	total := int(c.Bit) + n
	c.Byte += total >> 3
	c.Bit = uint8(total & 7) //nolint:gosec // G115: value is in [0, 8)
}

// remaining returns the number of bits between the cursor and the end of a size-byte buffer.
func (c Cursor) remaining(size int) int {
	r := size*8 - c.Offset()
	if r < 0 {
		return 0
	}

	return r
}

// BitLength returns the zero-based index of the highest set bit of n, i.e. floor(log2(n))
// for n >= 1, and 0 for n <= 1.
//
// Note this is not the number of bits needed to represent n: BitLength(1) == 0 and
// BitLength(4) == 2. Both the Rice parameter field width and the Rice parameter itself
// are derived with this convention.
func BitLength(n uint64) int {
	if n <= 1 {
		return 0
	}

	return bits.Len64(n) - 1
}

func lowMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}
