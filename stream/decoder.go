package stream

import (
	"fmt"

	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/bitio"
	"github.com/arloliu/btw/internal/options"
	"github.com/arloliu/btw/internal/rice"
	"github.com/arloliu/btw/section"
)

// minCodewordBits is the size of the shortest codeword: a sign bit and a terminator.
const minCodewordBits = 2

// Decoder decodes btw streams into interleaved samples of type T.
//
// T must be wide enough for the stream's bits_per_sample; decoding a wider stream into
// a narrower T truncates samples silently. Use format.SampleFormatForBits to choose.
//
// A Decoder holds no per-stream state and is safe for concurrent use.
type Decoder[T format.Sample] struct {
	config *DecoderConfig
}

// NewDecoder creates a Decoder configured by opts.
func NewDecoder[T format.Sample](opts ...DecoderOption) (*Decoder[T], error) {
	config := newDecoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Decoder[T]{config: config}, nil
}

// Config returns the decoder configuration.
func (d *Decoder[T]) Config() *DecoderConfig {
	return d.config
}

// ReadHeader returns the validated stream parameters without decoding any block.
//
// An enveloped stream is checked against the decoder limits, decompressed and verified first.
func (d *Decoder[T]) ReadHeader(data []byte) (section.StreamParams, error) {
	raw, err := unwrapEnvelope(data, d.config.envelopeLimit())
	if err != nil {
		return section.StreamParams{}, err
	}

	return readParams(raw)
}

// ReadHeader returns the validated parameters of a raw or enveloped stream, applying the
// default decoder limits to envelopes.
//
// Returns:
//   - section.StreamParams: Header parameters, zero on error
//   - error: errs.ErrInvalidHeaderSize, errs.ErrUnrecognizedStream, errs.ErrInvalidParams
//     or an envelope error
func ReadHeader(data []byte) (section.StreamParams, error) {
	raw, err := Unwrap(data)
	if err != nil {
		return section.StreamParams{}, err
	}

	return readParams(raw)
}

// Decode decodes a raw or enveloped stream.
//
// Parameters:
//   - data: Encoded stream
//
// Returns:
//   - []T: Interleaved samples, SampleCount * Channels long
//   - section.StreamParams: Parameters read from the header
//   - error: Header, envelope, limit or bit stream errors; errs.ErrShortStream and
//     errs.ErrCorruptStream report damaged block records
func (d *Decoder[T]) Decode(data []byte) ([]T, section.StreamParams, error) {
	raw, err := unwrapEnvelope(data, d.config.envelopeLimit())
	if err != nil {
		return nil, section.StreamParams{}, err
	}

	params, err := readParams(raw)
	if err != nil {
		return nil, section.StreamParams{}, err
	}

	total, err := d.checkSize(params, len(raw))
	if err != nil {
		return nil, params, err
	}

	samples := make([]T, total)
	g := newGeometry(samples, params)
	r := bitio.NewReaderAt(raw, bitio.Cursor{Byte: section.HeaderSize})

	for blk := range g.blocks {
		for ch := range g.channels {
			if err := rice.Decode(r, g.view(blk, ch), g.riceLenBits, g.maxRiceLen); err != nil {
				return nil, params, fmt.Errorf("block %d channel %d: %w", blk, ch, err)
			}
		}
		r.Align()
	}

	return samples, params, nil
}

// checkSize returns the total sample count after rejecting streams that exceed the
// configured limit or that are too short to hold one codeword per sample.
func (d *Decoder[T]) checkSize(params section.StreamParams, rawLen int) (int, error) {
	total, ok := params.TotalSamples()
	if !ok {
		return 0, fmt.Errorf("%w: %v", errs.ErrStreamTooLarge, params)
	}
	if d.config.maxSamples > 0 && uint64(total) > d.config.maxSamples {
		return 0, fmt.Errorf("%w: %d samples, limit %d", errs.ErrStreamTooLarge, total, d.config.maxSamples)
	}

	payloadBits := uint64(rawLen-section.HeaderSize) * 8 //nolint:gosec // G115: rawLen >= HeaderSize
	if uint64(total) > payloadBits/minCodewordBits {
		return 0, fmt.Errorf("%w: %d samples need at least %d bits, have %d",
			errs.ErrShortStream, total, uint64(total)*minCodewordBits, payloadBits)
	}

	return total, nil
}

func readParams(raw []byte) (section.StreamParams, error) {
	params, err := section.ParseStreamParams(raw)
	if err != nil {
		return section.StreamParams{}, err
	}
	if err := params.Validate(); err != nil {
		return section.StreamParams{}, err
	}

	return params, nil
}
