package stream

import (
	"fmt"
	"runtime"

	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/options"
)

// EncoderConfig holds the encoder settings applied through EncoderOption values.
type EncoderConfig struct {
	concurrency int
	compression format.CompressionType
	checksum    bool
	envelope    bool
}

func newEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		concurrency: 1,
		compression: format.CompressionNone,
	}
}

// Concurrency returns the number of goroutines used per Encode call.
func (c *EncoderConfig) Concurrency() int {
	return c.concurrency
}

// Compression returns the envelope compression type.
func (c *EncoderConfig) Compression() format.CompressionType {
	return c.compression
}

// Enveloped reports whether the encoder wraps its output in an envelope.
func (c *EncoderConfig) Enveloped() bool {
	return c.envelope
}

func (c *EncoderConfig) setConcurrency(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("%w: negative concurrency %d", errs.ErrInvalidParams, n)
	case n == 0:
		c.concurrency = runtime.GOMAXPROCS(0)
	default:
		c.concurrency = n
	}

	return nil
}

func (c *EncoderConfig) setCompression(comp format.CompressionType) error {
	switch comp {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		c.compression = comp
		c.envelope = true

		return nil
	default:
		return fmt.Errorf("%w: %v", errs.ErrInvalidCompression, comp)
	}
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithConcurrency sets how many goroutines analyze and write blocks.
//
// 1 (the default) encodes sequentially and 0 uses runtime.GOMAXPROCS. The output is
// byte-identical for every setting.
func WithConcurrency(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setConcurrency(n)
	})
}

// WithCompression wraps the raw stream in an envelope compressed with comp.
//
// format.CompressionNone still produces an envelope, which is useful together with
// WithChecksum.
func WithCompression(comp format.CompressionType) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setCompression(comp)
	})
}

// WithChecksum adds an xxHash64 checksum of the raw stream to the envelope.
// Enabling it implies an envelope.
func WithChecksum(enabled bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.checksum = enabled
		if enabled {
			c.envelope = true
		}
	})
}
