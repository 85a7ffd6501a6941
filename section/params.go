package section

import (
	"fmt"
	"math"

	"github.com/arloliu/btw/endian"
	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/internal/bitio"
)

// StreamParams holds the four parameters stored in the stream header.
//
// A stream is valid only when every field is strictly positive.
type StreamParams struct {
	// Channels is the number of interleaved channels, at most 65535.
	Channels uint32
	// BitsPerSample is the sample bit depth, in [1, 32].
	BitsPerSample uint32
	// SampleRate is the sample rate in Hz. It is stored but never interpreted by the codec.
	SampleRate uint32
	// SampleCount is the number of frames (samples per channel).
	SampleCount uint64
}

// Validate checks that every field is non-zero and fits the header layout.
//
// Returns:
//   - error: errs.ErrInvalidParams wrapped with the offending field
func (p StreamParams) Validate() error {
	switch {
	case p.Channels == 0:
		return fmt.Errorf("%w: channel count is zero", errs.ErrInvalidParams)
	case p.Channels > MaxChannels:
		return fmt.Errorf("%w: channel count %d exceeds %d", errs.ErrInvalidParams, p.Channels, MaxChannels)
	case p.BitsPerSample == 0:
		return fmt.Errorf("%w: bits per sample is zero", errs.ErrInvalidParams)
	case p.BitsPerSample > MaxBitsPerSample:
		return fmt.Errorf("%w: bits per sample %d exceeds %d", errs.ErrInvalidParams, p.BitsPerSample, MaxBitsPerSample)
	case p.SampleRate == 0:
		return fmt.Errorf("%w: sample rate is zero", errs.ErrInvalidParams)
	case p.SampleCount == 0:
		return fmt.Errorf("%w: sample count is zero", errs.ErrInvalidParams)
	}

	return nil
}

// BitsPerRiceLen returns the width of the Rice parameter field of every block record.
func (p StreamParams) BitsPerRiceLen() int {
	return bitio.BitLength(uint64(p.BitsPerSample))
}

// MaxRiceLen returns the largest Rice parameter the field width can hold.
func (p StreamParams) MaxRiceLen() int {
	return (1 << p.BitsPerRiceLen()) - 1
}

// BlockCount returns the number of blocks the frames are split into.
func (p StreamParams) BlockCount() uint64 {
	return p.SampleCount/BlockSize + min(p.SampleCount%BlockSize, 1)
}

// TotalSamples returns SampleCount * Channels, the length of the interleaved sample buffer.
//
// Returns:
//   - int: total sample count
//   - bool: false if the product does not fit in an int
func (p StreamParams) TotalSamples() (int, bool) {
	if p.Channels == 0 {
		return 0, true
	}
	if p.SampleCount > uint64(math.MaxInt)/uint64(p.Channels) {
		return 0, false
	}

	return int(p.SampleCount * uint64(p.Channels)), true //nolint:gosec // G115: checked above
}

// Bytes serializes the parameters into a 20-byte stream header.
//
// The fields are written through the bit cursor at byte-aligned positions in the order
// magic, sample count, channel count, bits per sample, sample rate. Channel count and bits
// per sample are truncated to 16 bits; callers validate first.
func (p StreamParams) Bytes() []byte {
	b := make([]byte, HeaderSize)
	w := bitio.NewWriter(b)

	// The buffer is exactly HeaderSize bytes and the widths below sum to 160 bits.
	_ = w.WriteUint(32, uint64(Magic))
	_ = w.WriteUint(64, p.SampleCount)
	_ = w.WriteUint(16, uint64(p.Channels))
	_ = w.WriteUint(16, uint64(p.BitsPerSample))
	_ = w.WriteUint(32, uint64(p.SampleRate))

	return b
}

// Parse reads the stream header from the start of data.
//
// On a magic mismatch or short input the receiver is left untouched, so callers must
// check the error before trusting the fields.
//
// Parameters:
//   - data: Byte slice starting with a stream header (at least 20 bytes)
//
// Returns:
//   - error: errs.ErrInvalidHeaderSize or errs.ErrUnrecognizedStream
func (p *StreamParams) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	r := bitio.NewReader(data[:HeaderSize])
	magic, err := r.ReadUint(32)
	if err != nil {
		return err
	}
	if uint32(magic) != Magic { //nolint:gosec // G115: 32-bit read
		return errs.ErrUnrecognizedStream
	}

	var parsed StreamParams
	if parsed.SampleCount, err = r.ReadUint(64); err != nil {
		return err
	}
	channels, err := r.ReadUint(16)
	if err != nil {
		return err
	}
	bps, err := r.ReadUint(16)
	if err != nil {
		return err
	}
	rate, err := r.ReadUint(32)
	if err != nil {
		return err
	}
	parsed.Channels = uint32(channels) //nolint:gosec // G115: 16-bit read
	parsed.BitsPerSample = uint32(bps) //nolint:gosec // G115: 16-bit read
	parsed.SampleRate = uint32(rate)   //nolint:gosec // G115: 32-bit read

	*p = parsed

	return nil
}

// ParseStreamParams parses the stream header at the start of data.
//
// The returned parameters are not validated; a recognized header may still carry zero
// fields.
func ParseStreamParams(data []byte) (StreamParams, error) {
	var p StreamParams
	if err := p.Parse(data); err != nil {
		return StreamParams{}, err
	}

	return p, nil
}

// IsStream reports whether data starts with the raw stream magic.
func IsStream(data []byte) bool {
	return len(data) >= 4 && endian.GetLittleEndianEngine().Uint32(data) == Magic
}

// String returns a human-readable summary of the parameters.
func (p StreamParams) String() string {
	return fmt.Sprintf("channels=%d bits=%d rate=%d frames=%d",
		p.Channels, p.BitsPerSample, p.SampleRate, p.SampleCount)
}
