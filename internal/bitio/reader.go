package bitio

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/btw/errs"
)

// Reader reads bits from a byte slice.
type Reader struct {
	data []byte
	cur  Cursor
}

// NewReader creates a reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt creates a reader positioned at the given cursor.
func NewReaderAt(data []byte, cur Cursor) *Reader {
	return &Reader{data: data, cur: cur}
}

// Cursor returns the current read position.
func (r *Reader) Cursor() Cursor {
	return r.cur
}

// Seek moves the reader to the given position.
func (r *Reader) Seek(cur Cursor) {
	r.cur = cur
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return r.cur.remaining(len(r.data))
}

// Align skips the rest of the current byte.
func (r *Reader) Align() {
	r.cur.Align()
}

func (r *Reader) ensure(n int) error {
	if n > r.Remaining() {
		return fmt.Errorf("%w: need %d bits at bit offset %d, have %d",
			errs.ErrShortStream, n, r.cur.Offset(), r.Remaining())
	}

	return nil
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}

	bit := uint(r.data[r.cur.Byte]>>r.cur.Bit) & 1
	r.cur.advance(1)

	return bit, nil
}

// ReadUint reads width bits as an unsigned integer, least-significant bits first.
//
// Width must be in [0, 64]; a zero width reads nothing and returns 0.
func (r *Reader) ReadUint(width int) (uint64, error) {
	if width < 0 || width > 64 {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidBitWidth, width)
	}
	if width == 0 {
		return 0, nil
	}
	if err := r.ensure(width); err != nil {
		return 0, err
	}

	var value uint64
	shift := 0
	for shift < width {
		n := 8 - int(r.cur.Bit)
		if n > width-shift {
			n = width - shift
		}
		chunk := uint64(r.data[r.cur.Byte]>>r.cur.Bit) & lowMask(n)
		value |= chunk << shift
		shift += n
		r.cur.advance(n)
	}

	return value, nil
}

// ReadOnes counts consecutive 1 bits up to and including the terminating 0 bit, which is
// consumed. It is the decoding side of a unary code.
//
// A run longer than limit returns errs.ErrCorruptStream; running out of input before the
// terminator returns errs.ErrShortStream. On error the cursor is left unchanged.
func (r *Reader) ReadOnes(limit uint64) (uint64, error) {
	start := r.cur
	var count uint64

	for r.cur.Byte < len(r.data) {
		avail := 8 - int(r.cur.Bit)
		// Bits above avail are zero after the shift, so the run stops inside this byte.
		ones := bits.TrailingZeros8(^(r.data[r.cur.Byte] >> r.cur.Bit))
		if ones > avail {
			ones = avail
		}
		count += uint64(ones) //nolint:gosec // G115: ones is in [0, 8]
		if count > limit {
			r.cur = start
			return 0, fmt.Errorf("%w: unary run exceeds %d at bit offset %d",
				errs.ErrCorruptStream, limit, start.Offset())
		}

		if ones < avail {
			r.cur.advance(ones + 1)
			return count, nil
		}
		r.cur.advance(ones)
	}

	r.cur = start

	return 0, fmt.Errorf("%w: unterminated unary run at bit offset %d", errs.ErrShortStream, start.Offset())
}
