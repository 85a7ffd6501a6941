package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
)

func TestEnvelopeHeader_RoundTrip(t *testing.T) {
	h := EnvelopeHeader{RawLength: 123456, Compression: format.CompressionZstd}
	require.False(t, h.HasChecksum())
	h.SetChecksum(0xDEADBEEFCAFEF00D)
	require.True(t, h.HasChecksum())

	b := h.Bytes()
	require.Len(t, b, EnvelopeHeaderSize)
	require.Equal(t, []byte("btwz"), b[:4])
	require.Equal(t, byte(format.CompressionZstd), b[4])
	require.Equal(t, EnvelopeFlagChecksum, b[5])
	require.True(t, IsEnvelope(b))
	require.False(t, IsStream(b))

	var got EnvelopeHeader
	require.NoError(t, got.Parse(b))
	require.Equal(t, h, got)

	appended := h.AppendTo([]byte{0xFF})
	require.Equal(t, b, appended[1:])
}

func TestEnvelopeHeader_ParseErrors(t *testing.T) {
	valid := EnvelopeHeader{RawLength: 20, Compression: format.CompressionLZ4}.Bytes()

	tests := []struct {
		name    string
		mutate  func(b []byte) []byte
		wantErr error
	}{
		{"short", func(b []byte) []byte { return b[:EnvelopeHeaderSize-1] }, errs.ErrInvalidHeaderSize},
		{"magic", func(b []byte) []byte { b[3] = 'f'; return b }, errs.ErrUnrecognizedStream},
		{"compression", func(b []byte) []byte { b[4] = 0; return b }, errs.ErrInvalidCompression},
		{"flags", func(b []byte) []byte { b[5] = 0x80; return b }, errs.ErrInvalidEnvelope},
		{"reserved", func(b []byte) []byte { b[7] = 1; return b }, errs.ErrInvalidEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))

			var h EnvelopeHeader
			require.ErrorIs(t, h.Parse(data), tt.wantErr)
			require.Zero(t, h)
		})
	}
}
