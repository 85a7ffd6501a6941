package section

import (
	"fmt"

	"github.com/arloliu/btw/endian"
	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
)

// EnvelopeHeader is the fixed-size header of an enveloped stream.
//
// An envelope wraps a complete raw stream (header plus block records) for storage or
// transport, optionally compressing it and carrying an xxHash64 checksum of the raw bytes.
// All fields are little-endian:
//
//	offset 0  size 4  magic 'b','t','w','z'
//	offset 4  size 1  compression type
//	offset 5  size 1  flags (bit 0: checksum present)
//	offset 6  size 2  reserved, must be zero
//	offset 8  size 8  raw stream length in bytes
//	offset 16 size 8  xxHash64 of the raw stream
type EnvelopeHeader struct {
	// RawLength is the length of the raw stream after decompression.
	RawLength uint64
	// Checksum is the xxHash64 of the raw stream; valid only when HasChecksum is true.
	Checksum uint64
	// Compression is the codec used for the payload following the header.
	Compression format.CompressionType
	// Flags is a packed field of envelope flags.
	Flags uint8
}

// HasChecksum reports whether the checksum field is valid.
func (h EnvelopeHeader) HasChecksum() bool {
	return h.Flags&EnvelopeFlagChecksum != 0
}

// SetChecksum stores the checksum and marks it valid.
func (h *EnvelopeHeader) SetChecksum(sum uint64) {
	h.Checksum = sum
	h.Flags |= EnvelopeFlagChecksum
}

// Bytes serializes the envelope header.
func (h EnvelopeHeader) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, EnvelopeHeaderSize))
}

// AppendTo appends the serialized envelope header to dst.
func (h EnvelopeHeader) AppendTo(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()

	dst = engine.AppendUint32(dst, EnvelopeMagic)
	dst = append(dst, uint8(h.Compression), h.Flags, 0, 0)
	dst = engine.AppendUint64(dst, h.RawLength)
	dst = engine.AppendUint64(dst, h.Checksum)

	return dst
}

// Parse parses the envelope header from the start of data.
//
// Returns:
//   - error: errs.ErrInvalidHeaderSize, errs.ErrUnrecognizedStream or errs.ErrInvalidEnvelope
func (h *EnvelopeHeader) Parse(data []byte) error {
	if len(data) < EnvelopeHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	if engine.Uint32(data[0:4]) != EnvelopeMagic {
		return errs.ErrUnrecognizedStream
	}

	comp := format.CompressionType(data[4])
	switch comp {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: %w: %d", errs.ErrInvalidEnvelope, errs.ErrInvalidCompression, data[4])
	}

	flags := data[5]
	if flags&^envelopeFlagsMask != 0 || data[6] != 0 || data[7] != 0 {
		return fmt.Errorf("%w: reserved bits set", errs.ErrInvalidEnvelope)
	}

	h.Compression = comp
	h.Flags = flags
	h.RawLength = engine.Uint64(data[8:16])
	h.Checksum = engine.Uint64(data[16:24])

	return nil
}

// IsEnvelope reports whether data starts with the envelope magic.
func IsEnvelope(data []byte) bool {
	return len(data) >= 4 && endian.GetLittleEndianEngine().Uint32(data[0:4]) == EnvelopeMagic
}
