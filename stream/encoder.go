package stream

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/bitio"
	"github.com/arloliu/btw/internal/options"
	"github.com/arloliu/btw/internal/pool"
	"github.com/arloliu/btw/internal/rice"
	"github.com/arloliu/btw/section"
)

// Encoder encodes interleaved samples of type T into btw streams.
//
// An Encoder holds no per-stream state and is safe for concurrent use.
type Encoder[T format.Sample] struct {
	config *EncoderConfig
	plans  *pool.SlicePool[rice.Plan]
}

// NewEncoder creates an Encoder configured by opts.
//
// Parameters:
//   - opts: Optional configuration (WithConcurrency, WithCompression, WithChecksum)
//
// Returns:
//   - *Encoder[T]: New encoder
//   - error: Invalid option value
func NewEncoder[T format.Sample](opts ...EncoderOption) (*Encoder[T], error) {
	config := newEncoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Encoder[T]{
		config: config,
		plans:  pool.NewSlicePool[rice.Plan](),
	}, nil
}

// Config returns the encoder configuration.
func (e *Encoder[T]) Config() *EncoderConfig {
	return e.config
}

// Encode encodes samples into a new stream.
//
// samples holds params.SampleCount frames of params.Channels interleaved samples. Every
// sample must fit in params.BitsPerSample bits; this is not checked.
//
// Parameters:
//   - samples: Interleaved sample buffer
//   - params: Stream parameters written to the header
//
// Returns:
//   - []byte: Encoded stream, wrapped in an envelope when configured
//   - error: errs.ErrNilSamples, errs.ErrInvalidParams, errs.ErrSampleCountMismatch or
//     errs.ErrStreamTooLarge
func (e *Encoder[T]) Encode(samples []T, params section.StreamParams) ([]byte, error) {
	if samples == nil {
		return nil, errs.ErrNilSamples
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	total, ok := params.TotalSamples()
	if !ok {
		return nil, fmt.Errorf("%w: %v", errs.ErrStreamTooLarge, params)
	}
	if len(samples) != total {
		return nil, fmt.Errorf("%w: got %d samples, want %d", errs.ErrSampleCountMismatch, len(samples), total)
	}

	g := newGeometry(samples, params)

	plans, release := e.plans.Get(g.blocks * g.channels)
	defer release()

	// Analysis pass: Rice parameter and exact size of every record.
	err := g.forEachBlock(e.config.concurrency, func(blk int) error {
		for ch := range g.channels {
			plans[blk*g.channels+ch] = rice.Analyze(g.view(blk, ch), g.riceLenBits, g.maxRiceLen)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	offsets, err := blockOffsets(plans, g.blocks, g.channels)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, offsets[g.blocks])
	copy(buf, params.Bytes())

	// Write pass: each block owns buf[offsets[blk]:offsets[blk+1]].
	err = g.forEachBlock(e.config.concurrency, func(blk int) error {
		w := bitio.NewWriterAt(buf[:offsets[blk+1]], bitio.Cursor{Byte: offsets[blk]})
		for ch := range g.channels {
			if err := rice.Encode(w, g.view(blk, ch), plans[blk*g.channels+ch], g.riceLenBits); err != nil {
				return fmt.Errorf("block %d channel %d: %w", blk, ch, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !e.config.envelope {
		return buf, nil
	}

	return wrapEnvelope(buf, e.config.compression, e.config.checksum)
}

// blockOffsets returns the byte offset of every block record group, followed by the
// total stream length.
func blockOffsets(plans []rice.Plan, blocks, channels int) ([]int, error) {
	offsets := make([]int, blocks+1)
	offsets[0] = section.HeaderSize

	pos := uint64(section.HeaderSize)
	for blk := range blocks {
		var bits uint64
		for _, p := range plans[blk*channels : (blk+1)*channels] {
			bits += p.Bits
		}
		pos += (bits + 7) / 8
		if pos > math.MaxInt {
			return nil, fmt.Errorf("%w: encoded size exceeds %d bytes", errs.ErrStreamTooLarge, math.MaxInt)
		}
		offsets[blk+1] = int(pos) //nolint:gosec // G115: checked above
	}

	return offsets, nil
}

// geometry maps (block, channel) pairs onto an interleaved sample buffer.
type geometry[T format.Sample] struct {
	samples     []T
	frames      int
	channels    int
	blocks      int
	riceLenBits int
	maxRiceLen  int
}

// newGeometry assumes params are valid and len(samples) == params.TotalSamples().
func newGeometry[T format.Sample](samples []T, params section.StreamParams) geometry[T] {
	frames := int(params.SampleCount) //nolint:gosec // G115: bounded by TotalSamples

	return geometry[T]{
		samples:     samples,
		frames:      frames,
		channels:    int(params.Channels),
		blocks:      int(params.BlockCount()), //nolint:gosec // G115: blocks <= frames
		riceLenBits: params.BitsPerRiceLen(),
		maxRiceLen:  params.MaxRiceLen(),
	}
}

func (g geometry[T]) view(blk, ch int) rice.Block[T] {
	start := blk * rice.BlockSize

	return rice.Block[T]{
		Samples:  g.samples,
		Start:    start,
		Len:      min(rice.BlockSize, g.frames-start),
		Channel:  ch,
		Channels: g.channels,
	}
}

// forEachBlock calls fn for every block index, splitting the blocks into contiguous
// ranges across up to workers goroutines.
func (g geometry[T]) forEachBlock(workers int, fn func(blk int) error) error {
	if workers <= 1 || g.blocks <= 1 {
		for blk := range g.blocks {
			if err := fn(blk); err != nil {
				return err
			}
		}

		return nil
	}

	workers = min(workers, g.blocks)
	chunk := (g.blocks + workers - 1) / workers

	var eg errgroup.Group
	for start := 0; start < g.blocks; start += chunk {
		end := min(start+chunk, g.blocks)
		eg.Go(func() error {
			for blk := start; blk < end; blk++ {
				if err := fn(blk); err != nil {
					return err
				}
			}

			return nil
		})
	}

	return eg.Wait()
}
