// Package rice implements the per-block, per-channel Golomb-Rice coder.
//
// Each block of up to BlockSize frames is coded independently per channel with
// zeroth-order differential prediction: the prediction reference is reset to 0 at the
// start of every block, and each sample is coded as the difference from the previous one.
//
// A block record is laid out as:
//
//	rice_len   (riceLenBits bits)
//	codeword * n, each:
//	  sign       1 bit, 1 means negative
//	  quotient   |diff| >> rice_len as a run of 1 bits, terminated by a 0 bit
//	  remainder  low rice_len bits of |diff|
package rice

import (
	"fmt"

	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/bitio"
	"github.com/arloliu/btw/section"
)

const (
	// BlockSize is the nominal number of frames per block.
	BlockSize = section.BlockSize

	// MaxMagnitude is the largest difference magnitude two 32-bit samples can produce.
	MaxMagnitude = 1<<32 - 1
)

// Block is a view of one channel of one block inside an interleaved sample buffer.
type Block[T format.Sample] struct {
	// Samples is the whole interleaved buffer.
	Samples []T
	// Start is the index of the first frame of the block.
	Start int
	// Len is the number of frames in the block, at most BlockSize.
	Len int
	// Channel is the channel index coded by this view.
	Channel int
	// Channels is the channel count of the interleaved buffer.
	Channels int
}

func (b Block[T]) index(i int) int {
	return (b.Start+i)*b.Channels + b.Channel
}

// Plan is the result of analyzing one block of one channel.
type Plan struct {
	// RiceLen is the Rice parameter used for every codeword of the record.
	RiceLen int
	// Bits is the exact size of the record in bits, parameter field included.
	Bits uint64
}

// Analyze estimates the Rice parameter of a block and computes the exact record size.
//
// The parameter is bitio.BitLength of the mean absolute difference, where the mean always
// divides by the nominal BlockSize, also for a short trailing block. The estimate is
// clamped to maxRiceLen so that it fits the riceLenBits-wide parameter field.
func Analyze[T format.Sample](b Block[T], riceLenBits int, maxRiceLen int) Plan {
	var sumAbs uint64
	var prev int64
	for i := range b.Len {
		cur := int64(b.Samples[b.index(i)])
		sumAbs += absDiff(cur, prev)
		prev = cur
	}

	k := bitio.BitLength(sumAbs / BlockSize)
	if k > maxRiceLen {
		k = maxRiceLen
	}

	// Every codeword carries a sign bit, a terminator bit and k remainder bits.
	bits := uint64(riceLenBits) + uint64(b.Len)*uint64(2+k) //nolint:gosec // G115: non-negative
	prev = 0
	for i := range b.Len {
		cur := int64(b.Samples[b.index(i)])
		bits += absDiff(cur, prev) >> k
		prev = cur
	}

	return Plan{RiceLen: k, Bits: bits}
}

// Encode writes the block record described by plan.
func Encode[T format.Sample](w *bitio.Writer, b Block[T], plan Plan, riceLenBits int) error {
	k := plan.RiceLen
	if err := w.WriteUint(riceLenBits, uint64(k)); err != nil { //nolint:gosec // G115: k >= 0
		return err
	}

	var prev int64
	for i := range b.Len {
		cur := int64(b.Samples[b.index(i)])
		a := absDiff(cur, prev)
		var sign uint
		if cur < prev {
			sign = 1
		}
		prev = cur

		if err := w.WriteBit(sign); err != nil {
			return err
		}
		if err := w.WriteOnes(a >> k); err != nil {
			return err
		}
		if err := w.WriteBit(0); err != nil {
			return err
		}
		if err := w.WriteUint(k, a); err != nil {
			return err
		}
	}

	return nil
}

// Decode reads one block record and stores the reconstructed samples into b.Samples.
//
// A Rice parameter above maxRiceLen or a difference magnitude above MaxMagnitude is
// reported as errs.ErrCorruptStream.
func Decode[T format.Sample](r *bitio.Reader, b Block[T], riceLenBits int, maxRiceLen int) error {
	k, err := readRiceLen(r, riceLenBits, maxRiceLen)
	if err != nil {
		return err
	}
	limit := uint64(MaxMagnitude) >> k

	var prev int64
	for i := range b.Len {
		sign, err := r.ReadBit()
		if err != nil {
			return err
		}
		q, err := r.ReadOnes(limit)
		if err != nil {
			return err
		}
		rem, err := r.ReadUint(k)
		if err != nil {
			return err
		}

		a := q<<k | rem
		if a > MaxMagnitude {
			return fmt.Errorf("%w: difference magnitude %d exceeds %d", errs.ErrCorruptStream, a, uint64(MaxMagnitude))
		}

		diff := int64(a) //nolint:gosec // G115: a <= MaxMagnitude
		if sign != 0 {
			diff = -diff
		}
		prev += diff
		b.Samples[b.index(i)] = T(prev)
	}

	return nil
}

// Skip reads past one block record of n codewords without reconstructing samples.
//
// Returns:
//   - int: the Rice parameter of the record
//   - error: the same errors as Decode
func Skip(r *bitio.Reader, n int, riceLenBits int, maxRiceLen int) (int, error) {
	k, err := readRiceLen(r, riceLenBits, maxRiceLen)
	if err != nil {
		return 0, err
	}
	limit := uint64(MaxMagnitude) >> k

	for range n {
		if _, err := r.ReadBit(); err != nil {
			return 0, err
		}
		if _, err := r.ReadOnes(limit); err != nil {
			return 0, err
		}
		if _, err := r.ReadUint(k); err != nil {
			return 0, err
		}
	}

	return k, nil
}

func readRiceLen(r *bitio.Reader, riceLenBits int, maxRiceLen int) (int, error) {
	field, err := r.ReadUint(riceLenBits)
	if err != nil {
		return 0, err
	}
	if field > uint64(maxRiceLen) { //nolint:gosec // G115: maxRiceLen >= 0
		return 0, fmt.Errorf("%w: rice parameter %d exceeds %d", errs.ErrCorruptStream, field, maxRiceLen)
	}

	return int(field), nil //nolint:gosec // G115: bounded above
}

func absDiff(a, b int64) uint64 {
	if a >= b {
		return uint64(a - b) //nolint:gosec // G115: non-negative
	}

	return uint64(b - a) //nolint:gosec // G115: non-negative
}
