// Package btw is a lossless codec for interleaved integer PCM audio.
//
// Samples are split into blocks of 512 frames. Every channel of every block is coded
// independently with first-order differential prediction, reset to zero at each block
// start, and Golomb-Rice coding of the differences with a per-block parameter. The
// result is a compact byte stream with a 20-byte header that decodes back to the exact
// input samples.
//
// # Core Features
//
//   - Generic over the sample width: uint8, int16 and int32 (and named types of them)
//   - Any bit depth from 1 to 32 and up to 65535 channels
//   - Exact output sizing: one allocation per encoded stream
//   - Parallel encoding across blocks with byte-identical output
//   - Optional envelope with Zstd, S2 or LZ4 compression and an xxHash64 checksum
//
// # Basic Usage
//
//	params := btw.StreamParams{
//	    Channels:      2,
//	    BitsPerSample: 16,
//	    SampleRate:    44100,
//	    SampleCount:   uint64(len(pcm) / 2),
//	}
//
//	data, err := btw.Encode(pcm, params)
//	if err != nil {
//	    return err
//	}
//
//	samples, params, err := btw.Decode[int16](data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the stream package. For
// encoder and decoder options, use NewEncoder and NewDecoder with the stream options.
package btw

import (
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/section"
	"github.com/arloliu/btw/stream"
)

// StreamParams holds the channel count, bit depth, sample rate and frame count of a stream.
type StreamParams = section.StreamParams

var compressedOptions = []stream.EncoderOption{
	stream.WithCompression(format.CompressionZstd),
	stream.WithChecksum(true),
}

// NewEncoder creates a stream encoder for samples of type T.
//
// Available options:
//   - stream.WithConcurrency(n)
//   - stream.WithCompression(format.CompressionNone|Zstd|S2|LZ4)
//   - stream.WithChecksum(true|false)
//
// Example:
//
//	encoder, err := btw.NewEncoder[int16](stream.WithConcurrency(0))
func NewEncoder[T format.Sample](opts ...stream.EncoderOption) (*stream.Encoder[T], error) {
	return stream.NewEncoder[T](opts...)
}

// NewCompressedEncoder creates an encoder that wraps streams in a Zstd-compressed
// envelope with an xxHash64 checksum.
//
// Use this for archival storage, where long silent passages compress well and the
// checksum guards against storage corruption. Additional options are applied after the
// defaults.
func NewCompressedEncoder[T format.Sample](opts ...stream.EncoderOption) (*stream.Encoder[T], error) {
	all := make([]stream.EncoderOption, 0, len(compressedOptions)+len(opts))
	all = append(all, compressedOptions...)
	all = append(all, opts...)

	return stream.NewEncoder[T](all...)
}

// NewDecoder creates a stream decoder for samples of type T.
//
// Available options:
//   - stream.WithMaxSamples(n)
//   - stream.WithMaxStreamBytes(n)
func NewDecoder[T format.Sample](opts ...stream.DecoderOption) (*stream.Decoder[T], error) {
	return stream.NewDecoder[T](opts...)
}

// Encode encodes interleaved samples into a raw stream.
//
// Parameters:
//   - samples: params.SampleCount frames of params.Channels interleaved samples
//   - params: Stream parameters; every field must be non-zero
//
// Returns:
//   - []byte: Encoded stream
//   - error: errs.ErrInvalidParams, errs.ErrNilSamples or errs.ErrSampleCountMismatch
func Encode[T format.Sample](samples []T, params StreamParams) ([]byte, error) {
	encoder, err := stream.NewEncoder[T]()
	if err != nil {
		return nil, err
	}

	return encoder.Encode(samples, params)
}

// Decode decodes a raw or enveloped stream into interleaved samples of type T.
//
// T must hold params.BitsPerSample bits; see format.SampleFormatForBits.
func Decode[T format.Sample](data []byte) ([]T, StreamParams, error) {
	decoder, err := stream.NewDecoder[T]()
	if err != nil {
		return nil, StreamParams{}, err
	}

	return decoder.Decode(data)
}

// ReadHeader returns the parameters of a raw or enveloped stream without decoding it.
//
// A stream whose magic number does not match yields errs.ErrUnrecognizedStream and
// zero parameters.
func ReadHeader(data []byte) (StreamParams, error) {
	return stream.ReadHeader(data)
}
