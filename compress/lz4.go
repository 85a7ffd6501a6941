package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal hash tables that benefit from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

const (
	// lz4MaxDecompressSize bounds the adaptive buffer of Decompress.
	lz4MaxDecompressSize = 256 * 1024 * 1024

	// lz4MaxExpansion is the largest output per input byte an LZ4 block can encode:
	// each length extension byte adds at most 255 bytes.
	lz4MaxExpansion = 255
)

// LZ4Compressor provides LZ4 block compression, the fastest decompression of the
// built-in codecs.
//
// LZ4 blocks do not record their decompressed size. The envelope stores the raw
// stream length, so the stream decoder calls DecompressSized; Decompress falls back to
// an adaptive buffer.
type LZ4Compressor struct{}

var (
	_ Codec             = (*LZ4Compressor)(nil)
	_ SizedDecompressor = (*LZ4Compressor)(nil)
)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
//
// Incompressible input is returned as an LZ4 block containing only literals, so the
// output is always decodable by Decompress.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// DecompressSized decompresses an LZ4 block whose decompressed size is known.
//
// Returns:
//   - []byte: Decompressed data of exactly size bytes
//   - error: Decompression error, or a size mismatch
func (c LZ4Compressor) DecompressSized(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		if size == 0 {
			return nil, nil
		}

		return nil, fmt.Errorf("lz4 decompression failed: empty input for %d bytes", size)
	}
	if size/lz4MaxExpansion > len(data) {
		return nil, fmt.Errorf("lz4 decompression failed: %d bytes cannot expand to %d", len(data), size)
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompression failed: got %d bytes, want %d", n, size)
	}

	return buf, nil
}

// Decompress decompresses an LZ4 block of unknown decompressed size.
//
// The buffer starts at 4x the compressed size and doubles on
// lz4.ErrInvalidSourceShortBuffer, up to a 256MB limit.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for bufSize := len(data) * 4; bufSize <= lz4MaxDecompressSize; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
	}

	return nil, fmt.Errorf("lz4 decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}
