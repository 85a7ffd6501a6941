package stream

import (
	"fmt"
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/btw/compress"
	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/rice"
	"github.com/arloliu/btw/section"
)

func encodeS16(t *testing.T, frames int, opts ...EncoderOption) ([]byte, []int16, section.StreamParams) {
	t.Helper()

	p := params(2, 16, uint64(frames))
	samples := convert[int16](randomWalk(int64(frames), frames, 2, 1000, math.MinInt16, math.MaxInt16))

	enc, err := NewEncoder[int16](opts...)
	require.NoError(t, err)
	data, err := enc.Encode(samples, p)
	require.NoError(t, err)

	return data, samples, p
}

func TestDecoder_ReadHeader(t *testing.T) {
	data, _, p := encodeS16(t, 900)
	dec, err := NewDecoder[int16]()
	require.NoError(t, err)

	got, err := dec.ReadHeader(data)
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.Equal(t, p.Bytes(), data[:section.HeaderSize])

	corrupt := append([]byte(nil), data...)
	corrupt[0] ^= 0xFF
	got, err = dec.ReadHeader(corrupt)
	require.ErrorIs(t, err, errs.ErrUnrecognizedStream)
	require.Zero(t, got)
}

func TestDecoder_Errors(t *testing.T) {
	data, _, _ := encodeS16(t, 2000)
	dec, err := NewDecoder[int16]()
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, _, err := dec.Decode(nil)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("short header", func(t *testing.T) {
		_, _, err := dec.Decode(data[:section.HeaderSize-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("bad magic", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[0] = 'x'
		_, _, err := dec.Decode(corrupt)
		require.ErrorIs(t, err, errs.ErrUnrecognizedStream)
	})

	t.Run("zero field in header", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[section.ChannelCountOffset] = 0
		corrupt[section.ChannelCountOffset+1] = 0
		_, _, err := dec.Decode(corrupt)
		require.ErrorIs(t, err, errs.ErrInvalidParams)
	})

	t.Run("header only", func(t *testing.T) {
		_, _, err := dec.Decode(data[:section.HeaderSize])
		require.ErrorIs(t, err, errs.ErrShortStream)
	})

	t.Run("truncated body", func(t *testing.T) {
		_, _, err := dec.Decode(data[:len(data)-10])
		require.ErrorIs(t, err, errs.ErrShortStream)
	})

	t.Run("huge sample count", func(t *testing.T) {
		p := params(2, 16, 1<<40)
		forged := append(p.Bytes(), make([]byte, 64)...)
		_, _, err := dec.Decode(forged)
		require.ErrorIs(t, err, errs.ErrShortStream)
	})
}

func TestDecoder_MaxSamples(t *testing.T) {
	data, samples, _ := encodeS16(t, 1000)

	dec, err := NewDecoder[int16](WithMaxSamples(1999))
	require.NoError(t, err)
	_, _, err = dec.Decode(data)
	require.ErrorIs(t, err, errs.ErrStreamTooLarge)

	dec, err = NewDecoder[int16](WithMaxSamples(2000))
	require.NoError(t, err)
	out, _, err := dec.Decode(data)
	require.NoError(t, err)
	require.Equal(t, samples, out)
}

func TestEnvelope_AllCompressionTypes(t *testing.T) {
	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, comp := range types {
		for _, checksum := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/checksum=%t", comp, checksum), func(t *testing.T) {
				data, samples, p := encodeS16(t, 1500, WithCompression(comp), WithChecksum(checksum))
				require.True(t, section.IsEnvelope(data))
				require.False(t, section.IsStream(data))

				var header section.EnvelopeHeader
				require.NoError(t, header.Parse(data))
				require.Equal(t, comp, header.Compression)
				require.Equal(t, checksum, header.HasChecksum())

				dec, err := NewDecoder[int16]()
				require.NoError(t, err)
				out, got, err := dec.Decode(data)
				require.NoError(t, err)
				require.Equal(t, p, got)
				require.Equal(t, samples, out)

				raw, _, _ := encodeS16(t, 1500)
				require.Equal(t, uint64(len(raw)), header.RawLength)

				_, rawInfos, err := Layout(raw)
				require.NoError(t, err)
				_, infos, err := Layout(data)
				require.NoError(t, err)
				require.Equal(t, rawInfos, infos)
			})
		}
	}
}

func TestEnvelope_SilenceCompresses(t *testing.T) {
	p := params(2, 16, 48000)
	samples := make([]int16, 96000)

	enc, err := NewEncoder[int16](WithCompression(format.CompressionZstd))
	require.NoError(t, err)
	data, err := enc.Encode(samples, p)
	require.NoError(t, err)

	raw, err := Unwrap(data)
	require.NoError(t, err)
	require.Less(t, len(data), len(raw)/10)
}

func TestEnvelope_Errors(t *testing.T) {
	dec, err := NewDecoder[int16]()
	require.NoError(t, err)

	t.Run("checksum mismatch", func(t *testing.T) {
		data, _, _ := encodeS16(t, 800, WithChecksum(true))
		data[len(data)-1] ^= 0x01

		_, _, err := dec.Decode(data)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("truncated payload", func(t *testing.T) {
		data, _, _ := encodeS16(t, 800, WithCompression(format.CompressionZstd))
		_, _, err := dec.Decode(data[:len(data)-5])
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
	})

	t.Run("length mismatch", func(t *testing.T) {
		data, _, _ := encodeS16(t, 800, WithCompression(format.CompressionNone))
		_, _, err := dec.Decode(data[:len(data)-1])
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
	})

	t.Run("unknown compression", func(t *testing.T) {
		data, _, _ := encodeS16(t, 800, WithCompression(format.CompressionS2))
		data[4] = 0x7F
		_, _, err := dec.Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})

	t.Run("truncated header", func(t *testing.T) {
		data, _, _ := encodeS16(t, 800, WithChecksum(true))
		_, err := dec.ReadHeader(data[:section.EnvelopeHeaderSize-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})
}

// allocatedBytes reports the heap bytes allocated while fn runs.
func allocatedBytes(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)

	return after.TotalAlloc - before.TotalAlloc
}

func TestEnvelope_DeclaredLengthBoundsDecompression(t *testing.T) {
	const expanded = 8 << 20
	zeros := make([]byte, expanded)

	zstdPayload, err := compress.NewZstdCompressor().Compress(zeros)
	require.NoError(t, err)
	s2Payload, err := compress.NewS2Compressor().Compress(zeros)
	require.NoError(t, err)
	require.Less(t, len(zstdPayload), 1<<12)
	require.Less(t, len(s2Payload), 1<<12)

	envelope := func(comp format.CompressionType, rawLen uint64, payload []byte) []byte {
		header := section.EnvelopeHeader{RawLength: rawLen, Compression: comp}
		return append(header.Bytes(), payload...)
	}

	limited, err := NewDecoder[int16](WithMaxSamples(16))
	require.NoError(t, err)

	t.Run("zstd payload larger than declared", func(t *testing.T) {
		data := envelope(format.CompressionZstd, 64, zstdPayload)
		var decodeErr error
		allocated := allocatedBytes(func() {
			_, _, decodeErr = limited.Decode(data)
		})
		require.ErrorIs(t, decodeErr, errs.ErrInvalidEnvelope)
		require.Less(t, allocated, uint64(expanded/2))
	})

	t.Run("s2 payload larger than declared", func(t *testing.T) {
		data := envelope(format.CompressionS2, 64, s2Payload)
		var decodeErr error
		allocated := allocatedBytes(func() {
			_, _, decodeErr = limited.Decode(data)
		})
		require.ErrorIs(t, decodeErr, errs.ErrInvalidEnvelope)
		require.Less(t, allocated, uint64(expanded/2))
	})

	t.Run("declared length above sample limit", func(t *testing.T) {
		for _, comp := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
			payload := zstdPayload
			if comp == format.CompressionS2 {
				payload = s2Payload
			}
			data := envelope(comp, expanded, payload)

			var decodeErr, headerErr error
			allocated := allocatedBytes(func() {
				_, _, decodeErr = limited.Decode(data)
				_, headerErr = limited.ReadHeader(data)
			})
			require.ErrorIs(t, decodeErr, errs.ErrStreamTooLarge, comp.String())
			require.ErrorIs(t, headerErr, errs.ErrStreamTooLarge, comp.String())
			require.Less(t, allocated, uint64(1<<20), comp.String())
		}
	})

	t.Run("declared length above byte limit", func(t *testing.T) {
		data := envelope(format.CompressionZstd, expanded, zstdPayload)

		_, err := Unwrap(data, WithMaxStreamBytes(1<<20))
		require.ErrorIs(t, err, errs.ErrStreamTooLarge)

		raw, err := Unwrap(data, WithMaxStreamBytes(0))
		require.NoError(t, err)
		require.Equal(t, zeros, raw)
	})

	t.Run("huge declared length with default limits", func(t *testing.T) {
		data := envelope(format.CompressionLZ4, 1<<40, []byte{0x00})
		_, err := ReadHeader(data)
		require.ErrorIs(t, err, errs.ErrStreamTooLarge)
		_, _, err = Layout(data)
		require.ErrorIs(t, err, errs.ErrStreamTooLarge)
	})
}

func TestDecoderConfig_EnvelopeLimit(t *testing.T) {
	tests := []struct {
		name string
		opts []DecoderOption
		want uint64
	}{
		{name: "default", want: DefaultMaxStreamBytes},
		{name: "unlimited", opts: []DecoderOption{WithMaxStreamBytes(0)}, want: math.MaxInt},
		{name: "byte limit", opts: []DecoderOption{WithMaxStreamBytes(4096)}, want: 4096},
		{
			name: "sample limit",
			opts: []DecoderOption{WithMaxSamples(16)},
			want: section.HeaderSize + 16*maxEncodedSampleBits/8,
		},
		{
			name: "byte limit below sample limit",
			opts: []DecoderOption{WithMaxSamples(16), WithMaxStreamBytes(100)},
			want: 100,
		},
		{
			name: "sample limit too large to apply",
			opts: []DecoderOption{WithMaxSamples(math.MaxUint64), WithMaxStreamBytes(0)},
			want: math.MaxInt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewDecoder[int16](tt.opts...)
			require.NoError(t, err)
			require.Equal(t, tt.want, dec.Config().envelopeLimit())
		})
	}
}

func TestEnvelope_WorstCaseStreamFitsSampleLimit(t *testing.T) {
	const frames = 2 * rice.BlockSize
	samples := make([]int32, frames)
	for i := range samples {
		samples[i] = -(1 << 30)
		if i%2 == 1 {
			samples[i] = 1<<30 - 1
		}
	}
	p := params(1, 31, frames)

	for _, comp := range []format.CompressionType{format.CompressionNone, format.CompressionZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			enc, err := NewEncoder[int32](WithCompression(comp))
			require.NoError(t, err)
			data, err := enc.Encode(samples, p)
			require.NoError(t, err)

			dec, err := NewDecoder[int32](WithMaxSamples(frames))
			require.NoError(t, err)
			out, _, err := dec.Decode(data)
			require.NoError(t, err)
			require.Equal(t, samples, out)
		})
	}
}
