package stream

import (
	"fmt"
	"math"

	"github.com/arloliu/btw/compress"
	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/hash"
	"github.com/arloliu/btw/internal/options"
	"github.com/arloliu/btw/internal/pool"
	"github.com/arloliu/btw/section"
)

// wrapEnvelope compresses a raw stream and prefixes it with an envelope header.
func wrapEnvelope(raw []byte, comp format.CompressionType, checksum bool) ([]byte, error) {
	codec, err := compress.CreateCodec(comp, "stream")
	if err != nil {
		return nil, err
	}

	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compress stream: %w", err)
	}

	header := section.EnvelopeHeader{
		RawLength:   uint64(len(raw)),
		Compression: comp,
	}
	if checksum {
		header.SetChecksum(hash.Checksum(raw))
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	buf.Grow(section.EnvelopeHeaderSize + len(payload))
	buf.B = header.AppendTo(buf.B)
	buf.MustWrite(payload)

	return buf.Clone(), nil
}

// unwrapEnvelope returns the raw stream carried by data.
//
// Data that does not start with the envelope magic is returned unchanged. A declared raw
// length above limit is rejected before the payload is decompressed.
func unwrapEnvelope(data []byte, limit uint64) ([]byte, error) {
	if !section.IsEnvelope(data) {
		return data, nil
	}

	var header section.EnvelopeHeader
	if err := header.Parse(data); err != nil {
		return nil, err
	}
	if header.RawLength > limit || header.RawLength > math.MaxInt {
		return nil, fmt.Errorf("%w: envelope raw length %d, limit %d", errs.ErrStreamTooLarge, header.RawLength, limit)
	}
	rawLen := int(header.RawLength) //nolint:gosec // G115: checked above

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return nil, err
	}

	payload := data[section.EnvelopeHeaderSize:]
	var raw []byte
	if sized, ok := codec.(compress.SizedDecompressor); ok {
		raw, err = sized.DecompressSized(payload, rawLen)
	} else {
		raw, err = codec.Decompress(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidEnvelope, err)
	}

	if len(raw) != rawLen {
		return nil, fmt.Errorf("%w: raw length %d, header says %d", errs.ErrInvalidEnvelope, len(raw), rawLen)
	}

	if header.HasChecksum() {
		if sum := hash.Checksum(raw); sum != header.Checksum {
			return nil, fmt.Errorf("%w: got %016x, want %016x", errs.ErrChecksumMismatch, sum, header.Checksum)
		}
	}

	return raw, nil
}

// Unwrap returns the raw stream carried by an enveloped stream, after checking its
// length against the limits in opts and verifying its checksum. A raw stream is
// returned unchanged.
//
// Decoding the result skips the envelope work, so callers that inspect the header
// before decoding can decompress once.
func Unwrap(data []byte, opts ...DecoderOption) ([]byte, error) {
	config := newDecoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return unwrapEnvelope(data, config.envelopeLimit())
}
