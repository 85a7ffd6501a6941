package stream

import (
	"fmt"

	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/internal/bitio"
	"github.com/arloliu/btw/internal/rice"
	"github.com/arloliu/btw/section"
)

// BlockInfo describes one block of a raw stream.
type BlockInfo struct {
	// Index is the block number.
	Index int
	// Offset is the byte offset of the block in the raw stream.
	Offset int
	// Size is the size of the block in bytes, padding included.
	Size int
	// Frames is the number of frames in the block.
	Frames int
	// RiceLens holds the Rice parameter of each channel's record.
	RiceLens []int
}

// Layout walks a raw or enveloped stream and reports where every block starts and which
// Rice parameters it uses. Offsets refer to the raw stream.
//
// Returns:
//   - section.StreamParams: Parameters read from the header
//   - []BlockInfo: One entry per block
//   - error: The same errors as Decoder.Decode
func Layout(data []byte) (section.StreamParams, []BlockInfo, error) {
	raw, err := Unwrap(data)
	if err != nil {
		return section.StreamParams{}, nil, err
	}

	params, err := readParams(raw)
	if err != nil {
		return section.StreamParams{}, nil, err
	}

	blocks := params.BlockCount()
	if blocks > uint64(len(raw)) { // every block takes at least one byte
		return params, nil, fmt.Errorf("%w: %d blocks in %d bytes", errs.ErrShortStream, blocks, len(raw))
	}

	channels := int(params.Channels)
	riceLenBits := params.BitsPerRiceLen()
	maxRiceLen := params.MaxRiceLen()

	infos := make([]BlockInfo, 0, blocks)
	r := bitio.NewReaderAt(raw, bitio.Cursor{Byte: section.HeaderSize})
	remaining := params.SampleCount

	for blk := range int(blocks) { //nolint:gosec // G115: bounded by len(raw)
		frames := int(min(remaining, rice.BlockSize)) //nolint:gosec // G115: <= BlockSize
		remaining -= uint64(frames)                   //nolint:gosec // G115: non-negative

		info := BlockInfo{
			Index:    blk,
			Offset:   r.Cursor().Byte,
			Frames:   frames,
			RiceLens: make([]int, channels),
		}
		for ch := range channels {
			k, err := rice.Skip(r, frames, riceLenBits, maxRiceLen)
			if err != nil {
				return params, nil, fmt.Errorf("block %d channel %d: %w", blk, ch, err)
			}
			info.RiceLens[ch] = k
		}
		r.Align()
		info.Size = r.Cursor().Byte - info.Offset

		infos = append(infos, info)
	}

	return params, infos, nil
}
