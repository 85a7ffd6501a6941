package bitio

import (
	"math/rand"
	"testing"

	"github.com/arloliu/btw/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteBit_LSBFirst(t *testing.T) {
	buf := make([]byte, 2)
	w := NewWriter(buf)

	for _, bit := range []uint{1, 0, 1, 1, 0, 0, 0, 0, 1} {
		require.NoError(t, w.WriteBit(bit))
	}

	require.Equal(t, []byte{0x0D, 0x01}, buf)
	require.Equal(t, Cursor{Byte: 1, Bit: 1}, w.Cursor())
	require.Equal(t, 2, w.Len())
}

func TestWriter_WriteUint_Unaligned(t *testing.T) {
	buf := make([]byte, 4)
	w := NewWriter(buf)

	require.NoError(t, w.WriteUint(3, 0b101))
	require.NoError(t, w.WriteUint(12, 0xABC))

	// 0xABC << 3 | 0b101 = 0x55E5
	require.Equal(t, []byte{0xE5, 0x55, 0x00, 0x00}, buf)
	require.Equal(t, 15, w.Cursor().Offset())

	r := NewReader(buf)
	v, err := r.ReadUint(3)
	require.NoError(t, err)
	require.Equal(t, uint64(0b101), v)
	v, err = r.ReadUint(12)
	require.NoError(t, err)
	require.Equal(t, uint64(0xABC), v)
}

func TestWriter_WriteUint_MasksHighBits(t *testing.T) {
	buf := make([]byte, 1)
	w := NewWriter(buf)

	require.NoError(t, w.WriteUint(4, 0xFF))
	require.Equal(t, byte(0x0F), buf[0])
}

func TestWriter_WriteUint_ZeroWidth(t *testing.T) {
	w := NewWriter(nil)

	require.NoError(t, w.WriteUint(0, 12345))
	require.Equal(t, Cursor{}, w.Cursor())

	r := NewReader(nil)
	v, err := r.ReadUint(0)
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestWriter_WriteUint_InvalidWidth(t *testing.T) {
	w := NewWriter(make([]byte, 16))
	require.ErrorIs(t, w.WriteUint(65, 1), errs.ErrInvalidBitWidth)
	require.ErrorIs(t, w.WriteUint(-1, 1), errs.ErrInvalidBitWidth)

	r := NewReader(make([]byte, 16))
	_, err := r.ReadUint(65)
	require.ErrorIs(t, err, errs.ErrInvalidBitWidth)
}

func TestWriter_WriteUint_64Bits(t *testing.T) {
	values := []uint64{0, 1, 0xDEADBEEFCAFEBABE, ^uint64(0)}

	for _, offset := range []int{0, 1, 5, 7} {
		buf := make([]byte, 40)
		w := NewWriter(buf)
		require.NoError(t, w.WriteUint(offset, 0))
		for _, v := range values {
			require.NoError(t, w.WriteUint(64, v))
		}

		r := NewReader(buf)
		_, err := r.ReadUint(offset)
		require.NoError(t, err)
		for _, want := range values {
			got, err := r.ReadUint(64)
			require.NoError(t, err)
			require.Equal(t, want, got, "offset %d", offset)
		}
	}
}

func TestWriter_WriteOnes(t *testing.T) {
	t.Run("within one byte", func(t *testing.T) {
		buf := make([]byte, 1)
		w := NewWriter(buf)
		require.NoError(t, w.WriteBit(0))
		require.NoError(t, w.WriteOnes(3))
		require.Equal(t, byte(0x0E), buf[0])
		require.Equal(t, Cursor{Byte: 0, Bit: 4}, w.Cursor())
	})

	t.Run("spanning bytes", func(t *testing.T) {
		buf := make([]byte, 4)
		w := NewWriter(buf)
		require.NoError(t, w.WriteUint(5, 0))
		require.NoError(t, w.WriteOnes(20))
		require.Equal(t, []byte{0xE0, 0xFF, 0xFF, 0x01}, buf)
		require.Equal(t, 25, w.Cursor().Offset())
	})

	t.Run("exact byte", func(t *testing.T) {
		buf := make([]byte, 2)
		w := NewWriter(buf)
		require.NoError(t, w.WriteOnes(8))
		require.Equal(t, []byte{0xFF, 0x00}, buf)
		require.True(t, w.Cursor().Aligned())
		require.Equal(t, 1, w.Len())
	})

	t.Run("zero count", func(t *testing.T) {
		w := NewWriter(nil)
		require.NoError(t, w.WriteOnes(0))
	})

	t.Run("matches single bit writes", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for range 200 {
			offset := rng.Intn(8)
			count := uint64(rng.Intn(70))

			fast := make([]byte, 16)
			fw := NewWriter(fast)
			require.NoError(t, fw.WriteUint(offset, 0))
			require.NoError(t, fw.WriteOnes(count))

			slow := make([]byte, 16)
			sw := NewWriter(slow)
			require.NoError(t, sw.WriteUint(offset, 0))
			for range count {
				require.NoError(t, sw.WriteBit(1))
			}

			require.Equal(t, slow, fast)
			require.Equal(t, sw.Cursor(), fw.Cursor())
		}
	})
}

func TestWriter_Overflow(t *testing.T) {
	buf := make([]byte, 1)
	w := NewWriter(buf)

	require.NoError(t, w.WriteUint(7, 0x7F))
	require.ErrorIs(t, w.WriteUint(2, 0), errs.ErrBufferOverflow)
	require.ErrorIs(t, w.WriteOnes(2), errs.ErrBufferOverflow)
	require.Equal(t, Cursor{Byte: 0, Bit: 7}, w.Cursor(), "failed write must not move the cursor")

	require.NoError(t, w.WriteBit(1))
	require.ErrorIs(t, w.WriteBit(1), errs.ErrBufferOverflow)
	require.Equal(t, byte(0xFF), buf[0])
}

func TestWriter_Align(t *testing.T) {
	buf := make([]byte, 2)
	w := NewWriter(buf)

	require.NoError(t, w.WriteUint(3, 0b111))
	w.Align()
	require.NoError(t, w.WriteBit(1))

	require.Equal(t, []byte{0x07, 0x01}, buf)
}

func TestReader_ReadOnes(t *testing.T) {
	t.Run("unary round trip", func(t *testing.T) {
		counts := []uint64{0, 1, 7, 8, 9, 15, 16, 17, 64, 100, 3}
		buf := make([]byte, 64)
		w := NewWriter(buf)
		require.NoError(t, w.WriteBit(1))
		for _, c := range counts {
			require.NoError(t, w.WriteOnes(c))
			require.NoError(t, w.WriteBit(0))
		}

		r := NewReader(buf)
		bit, err := r.ReadBit()
		require.NoError(t, err)
		require.Equal(t, uint(1), bit)
		for _, want := range counts {
			got, err := r.ReadOnes(1 << 20)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
		require.Equal(t, w.Cursor(), r.Cursor())
	})

	t.Run("limit exceeded", func(t *testing.T) {
		buf := []byte{0xFF, 0x0F}
		r := NewReader(buf)
		_, err := r.ReadOnes(10)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
		require.Equal(t, Cursor{}, r.Cursor())

		n, err := r.ReadOnes(12)
		require.NoError(t, err)
		require.Equal(t, uint64(12), n)
		require.Equal(t, Cursor{Byte: 1, Bit: 5}, r.Cursor())
	})

	t.Run("unterminated", func(t *testing.T) {
		r := NewReaderAt([]byte{0x00, 0xFF}, Cursor{Byte: 1})
		_, err := r.ReadOnes(1 << 20)
		require.ErrorIs(t, err, errs.ErrShortStream)
		require.Equal(t, Cursor{Byte: 1}, r.Cursor())
	})
}

func TestReader_ShortStream(t *testing.T) {
	r := NewReader([]byte{0xAA})

	_, err := r.ReadUint(9)
	require.ErrorIs(t, err, errs.ErrShortStream)

	v, err := r.ReadUint(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xAA), v)
	assert.Zero(t, r.Remaining())

	_, err = r.ReadBit()
	require.ErrorIs(t, err, errs.ErrShortStream)
}

func TestReader_AlignAndSeek(t *testing.T) {
	r := NewReader([]byte{0x01, 0x80})

	bit, err := r.ReadBit()
	require.NoError(t, err)
	require.Equal(t, uint(1), bit)

	r.Align()
	require.Equal(t, Cursor{Byte: 1}, r.Cursor())
	require.Equal(t, 8, r.Remaining())

	r.Seek(Cursor{Byte: 1, Bit: 7})
	bit, err = r.ReadBit()
	require.NoError(t, err)
	require.Equal(t, uint(1), bit)
}

func TestBitio_RandomRoundTrip(t *testing.T) {
	type op struct {
		width int
		value uint64
		ones  uint64
	}

	rng := rand.New(rand.NewSource(42))
	ops := make([]op, 500)
	totalBits := 0
	for i := range ops {
		width := rng.Intn(65)
		ones := uint64(rng.Intn(40))
		ops[i] = op{width: width, value: rng.Uint64() & lowMask(width), ones: ones}
		totalBits += width + int(ones) + 1
	}

	buf := make([]byte, (totalBits+7)/8)
	w := NewWriter(buf)
	for _, o := range ops {
		require.NoError(t, w.WriteUint(o.width, o.value))
		require.NoError(t, w.WriteOnes(o.ones))
		require.NoError(t, w.WriteBit(0))
	}
	require.Equal(t, totalBits, w.Cursor().Offset())

	r := NewReader(buf)
	for i, o := range ops {
		v, err := r.ReadUint(o.width)
		require.NoError(t, err)
		require.Equal(t, o.value, v, "op %d", i)
		n, err := r.ReadOnes(64)
		require.NoError(t, err)
		require.Equal(t, o.ones, n, "op %d", i)
	}
}

func BenchmarkWriter_WriteOnes(b *testing.B) {
	buf := make([]byte, 1<<16)

	b.ReportAllocs()
	for b.Loop() {
		clear(buf)
		w := NewWriter(buf)
		for w.Cursor().Offset() < (len(buf)-8)*8 {
			_ = w.WriteOnes(37)
			_ = w.WriteBit(0)
		}
	}
}

func BenchmarkReader_ReadOnes(b *testing.B) {
	buf := make([]byte, 1<<16)
	w := NewWriter(buf)
	for w.Cursor().Offset() < (len(buf)-8)*8 {
		_ = w.WriteOnes(37)
		_ = w.WriteBit(0)
	}
	end := w.Cursor().Offset()

	b.ReportAllocs()
	for b.Loop() {
		r := NewReader(buf)
		for r.Cursor().Offset() < end {
			_, _ = r.ReadOnes(64)
		}
	}
}
