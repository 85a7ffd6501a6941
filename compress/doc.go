// Package compress provides the general-purpose codecs applied to enveloped btw streams.
//
// A raw btw stream is already entropy coded, so compression is optional and happens
// once over the whole stream, after Rice coding:
//
//  1. Encoding: block Rice coding of the PCM samples (package stream)
//  2. Compression: one of the codecs below over the complete raw stream
//
// Supported algorithms:
//   - None (format.CompressionNone): pass-through
//   - Zstd (format.CompressionZstd): best ratio, klauspost/compress or valyala/gozstd
//   - S2 (format.CompressionS2): balanced speed and ratio, klauspost/compress/s2
//   - LZ4 (format.CompressionLZ4): fastest decompression, pierrec/lz4/v4
//
// Codecs are stateless values; pooled encoder state makes them safe for concurrent use.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(stream)
package compress
