package compress

import (
	"fmt"
	"io"
)

// ZstdCompressor provides Zstandard compression for enveloped btw streams.
//
// It gives the best ratio of the built-in codecs and suits archival of long recordings.
// The pure-Go implementation from klauspost/compress is used by default; building with
// the gozstd tag on a cgo toolchain switches to the libzstd binding from valyala/gozstd.
//
// DecompressSized streams the frame and stops one byte past the expected size, so the
// output never grows beyond what the envelope declares.
type ZstdCompressor struct{}

var (
	_ Codec             = (*ZstdCompressor)(nil)
	_ SizedDecompressor = (*ZstdCompressor)(nil)
)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// readSized drains a streaming zstd reader that must yield exactly size bytes.
func readSized(r io.Reader, size int) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out) > size {
		return nil, fmt.Errorf("zstd decompression failed: frame holds more than %d bytes", size)
	}
	if len(out) < size {
		return nil, fmt.Errorf("zstd decompression failed: got %d bytes, want %d", len(out), size)
	}

	return out, nil
}
