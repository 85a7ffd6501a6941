package bitio

import (
	"fmt"

	"github.com/arloliu/btw/errs"
)

// Writer writes bits into a caller-supplied buffer.
//
// Writes are bitwise ORs into the existing buffer content, so the region being written
// must be zero-initialized. The writer never grows the buffer; callers size it up front.
type Writer struct {
	buf []byte
	cur Cursor
}

// NewWriter creates a writer positioned at the start of buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// NewWriterAt creates a writer positioned at the given cursor.
func NewWriterAt(buf []byte, cur Cursor) *Writer {
	return &Writer{buf: buf, cur: cur}
}

// Cursor returns the current write position.
func (w *Writer) Cursor() Cursor {
	return w.cur
}

// Seek moves the writer to the given position.
func (w *Writer) Seek(cur Cursor) {
	w.cur = cur
}

// Bytes returns the underlying buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes touched so far, counting a trailing partial byte.
func (w *Writer) Len() int {
	if w.cur.Bit != 0 {
		return w.cur.Byte + 1
	}

	return w.cur.Byte
}

// Align pads the current byte with zero bits and moves to the next byte boundary.
func (w *Writer) Align() {
	w.cur.Align()
}

func (w *Writer) ensure(n int) error {
	if n > w.cur.remaining(len(w.buf)) {
		return fmt.Errorf("%w: need %d bits at bit offset %d, buffer holds %d bytes",
			errs.ErrBufferOverflow, n, w.cur.Offset(), len(w.buf))
	}

	return nil
}

// WriteBit writes a single bit. Any non-zero value writes a 1.
func (w *Writer) WriteBit(bit uint) error {
	if err := w.ensure(1); err != nil {
		return err
	}

	if bit != 0 {
		w.buf[w.cur.Byte] |= 1 << w.cur.Bit
	}
	w.cur.advance(1)

	return nil
}

// WriteUint writes the low width bits of value, least-significant bits first.
//
// Width must be in [0, 64]; a zero width writes nothing and is not an error.
func (w *Writer) WriteUint(width int, value uint64) error {
	if width < 0 || width > 64 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidBitWidth, width)
	}
	if width == 0 {
		return nil
	}
	if err := w.ensure(width); err != nil {
		return err
	}

	for width > 0 {
		n := 8 - int(w.cur.Bit)
		if n > width {
			n = width
		}
		w.buf[w.cur.Byte] |= byte(value&lowMask(n)) << w.cur.Bit
		value >>= n
		width -= n
		w.cur.advance(n)
	}

	return nil
}

// WriteOnes writes count consecutive 1 bits.
//
// Interior bytes are filled with 0xFF a byte at a time.
func (w *Writer) WriteOnes(count uint64) error {
	if count == 0 {
		return nil
	}
	if count > uint64(w.cur.remaining(len(w.buf))) {
		return fmt.Errorf("%w: need %d bits at bit offset %d, buffer holds %d bytes",
			errs.ErrBufferOverflow, count, w.cur.Offset(), len(w.buf))
	}

	n := int(count) //nolint:gosec // G115: bounded by remaining buffer bits

	// Leading partial byte.
	if w.cur.Bit != 0 {
		head := 8 - int(w.cur.Bit)
		if head > n {
			head = n
		}
		w.buf[w.cur.Byte] |= byte(lowMask(head)) << w.cur.Bit
		w.cur.advance(head)
		n -= head
	}

	// Whole bytes.
	for n >= 8 {
		w.buf[w.cur.Byte] = 0xFF
		w.cur.Byte++
		n -= 8
	}

	// Trailing partial byte.
	if n > 0 {
		w.buf[w.cur.Byte] |= byte(lowMask(n))
		w.cur.advance(n)
	}

	return nil
}
