package main

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/arloliu/btw/endian"
	"github.com/arloliu/btw/format"
)

// sampleWidth returns the size of T in bytes.
func sampleWidth[T format.Sample]() int {
	var zero T

	return int(unsafe.Sizeof(zero))
}

// readPCM converts raw interleaved PCM bytes into samples of type T.
func readPCM[T format.Sample](data []byte, engine endian.EndianEngine) ([]T, error) {
	width := sampleWidth[T]()
	if len(data)%width != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of the %d-byte sample width", len(data), width)
	}

	samples := make([]T, len(data)/width)
	for i := range samples {
		b := data[i*width:]
		switch width {
		case 1:
			samples[i] = T(b[0])
		case 2:
			samples[i] = T(int16(engine.Uint16(b))) //nolint:gosec // G115: reinterpret bits
		default:
			samples[i] = T(int32(engine.Uint32(b))) //nolint:gosec // G115: reinterpret bits
		}
	}

	return samples, nil
}

// appendPCM appends samples to dst as raw interleaved PCM bytes.
func appendPCM[T format.Sample](dst []byte, samples []T, engine endian.EndianEngine) []byte {
	width := sampleWidth[T]()
	dst = slices.Grow(dst, len(samples)*width)

	for _, s := range samples {
		switch width {
		case 1:
			dst = append(dst, uint8(s)) //nolint:gosec // G115: reinterpret bits
		case 2:
			dst = engine.AppendUint16(dst, uint16(s)) //nolint:gosec // G115: reinterpret bits
		default:
			dst = engine.AppendUint32(dst, uint32(s)) //nolint:gosec // G115: reinterpret bits
		}
	}

	return dst
}
