package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/btw/errs"
)

type (
	CompressionType uint8
	SampleFormat    uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	SampleU8  SampleFormat = 0x1 // SampleU8 stores samples as uint8.
	SampleS16 SampleFormat = 0x2 // SampleS16 stores samples as int16.
	SampleS32 SampleFormat = 0x3 // SampleS32 stores samples as int32.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a case-insensitive compression name.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidCompression, s)
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SampleU8:
		return "U8"
	case SampleS16:
		return "S16"
	case SampleS32:
		return "S32"
	default:
		return "Unknown"
	}
}

// Width returns the storage width of the sample format in bytes, or 0 if unknown.
func (f SampleFormat) Width() int {
	switch f {
	case SampleU8:
		return 1
	case SampleS16:
		return 2
	case SampleS32:
		return 4
	default:
		return 0
	}
}

// ParseSampleFormat parses a case-insensitive sample format name (u8, s16, s32).
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(s) {
	case "u8":
		return SampleU8, nil
	case "s16":
		return SampleS16, nil
	case "s32":
		return SampleS32, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidSampleFormat, s)
	}
}

// SampleFormatForBits returns the narrowest sample format able to hold bitsPerSample bits.
func SampleFormatForBits(bitsPerSample uint32) (SampleFormat, bool) {
	switch {
	case bitsPerSample == 0:
		return 0, false
	case bitsPerSample <= 8:
		return SampleU8, true
	case bitsPerSample <= 16:
		return SampleS16, true
	case bitsPerSample <= 32:
		return SampleS32, true
	default:
		return 0, false
	}
}
