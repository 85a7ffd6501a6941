package stream

import (
	"math"

	"github.com/arloliu/btw/internal/options"
	"github.com/arloliu/btw/section"
)

// DefaultMaxStreamBytes is the default limit on the raw length an envelope may declare.
const DefaultMaxStreamBytes = 1 << 30

// maxEncodedSampleBits bounds the encoded size of one sample whose value fits in
// bits_per_sample. 31-bit streams clamp the Rice parameter to 15, leaving up to 2^16-1
// quotient bits next to the sign, terminator and 15 remainder bits; a 5-bit parameter
// field and 7 padding bits are charged to the sample as well.
const maxEncodedSampleBits = 2 + 15 + (1<<16 - 1) + 5 + 7

// DecoderConfig holds the decoder settings applied through DecoderOption values.
type DecoderConfig struct {
	maxSamples     uint64
	maxStreamBytes uint64
}

func newDecoderConfig() *DecoderConfig {
	return &DecoderConfig{maxStreamBytes: DefaultMaxStreamBytes}
}

// MaxSamples returns the sample limit, 0 meaning unlimited.
func (c *DecoderConfig) MaxSamples() uint64 {
	return c.maxSamples
}

// MaxStreamBytes returns the envelope raw length limit, 0 meaning unlimited.
func (c *DecoderConfig) MaxStreamBytes() uint64 {
	return c.maxStreamBytes
}

// envelopeLimit returns the largest raw length an envelope may declare under both limits.
func (c *DecoderConfig) envelopeLimit() uint64 {
	limit := uint64(math.MaxInt)
	if c.maxStreamBytes > 0 {
		limit = min(limit, c.maxStreamBytes)
	}
	if c.maxSamples > 0 && c.maxSamples <= (math.MaxUint64-7)/maxEncodedSampleBits {
		limit = min(limit, section.HeaderSize+(c.maxSamples*maxEncodedSampleBits+7)/8)
	}

	return limit
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithMaxSamples rejects streams holding more than n samples across all channels
// with errs.ErrStreamTooLarge before any sample buffer is allocated. 0 disables the limit.
//
// The limit also caps the raw length an envelope may declare, checked before the
// payload is decompressed.
func WithMaxSamples(n uint64) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.maxSamples = n
	})
}

// WithMaxStreamBytes rejects envelopes declaring a raw stream longer than n bytes with
// errs.ErrStreamTooLarge before decompressing them. The default is DefaultMaxStreamBytes;
// 0 disables the limit.
func WithMaxStreamBytes(n uint64) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.maxStreamBytes = n
	})
}
