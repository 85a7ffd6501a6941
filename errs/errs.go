// Package errs defines the sentinel errors returned by the btw codec.
//
// Callers should compare errors with errors.Is, since most call sites wrap the
// sentinel values with additional context.
package errs

import "errors"

// Stream parameter errors.
var (
	// ErrInvalidParams is returned when a stream parameter is zero or out of range.
	ErrInvalidParams = errors.New("invalid stream parameters")
	// ErrSampleCountMismatch is returned when the sample buffer length does not equal
	// sample_count * channel_count.
	ErrSampleCountMismatch = errors.New("sample buffer length does not match stream parameters")
	// ErrNilSamples is returned when encode is called without a sample buffer.
	ErrNilSamples = errors.New("sample buffer is nil")
)

// Container errors.
var (
	ErrInvalidHeaderSize   = errors.New("invalid header size")
	ErrUnrecognizedStream  = errors.New("unrecognized stream: magic mismatch")
	ErrInvalidEnvelope     = errors.New("invalid envelope header")
	ErrChecksumMismatch    = errors.New("stream checksum mismatch")
	ErrInvalidCompression  = errors.New("invalid compression type")
	ErrInvalidSampleFormat = errors.New("invalid sample format")
)

// Bit stream errors.
var (
	// ErrShortStream is returned when a read runs past the end of the input.
	ErrShortStream = errors.New("stream is truncated")
	// ErrCorruptStream is returned when decoded values are impossible for a valid stream.
	ErrCorruptStream = errors.New("stream is corrupt")
	// ErrBufferOverflow is returned when a write runs past the end of the output buffer.
	ErrBufferOverflow = errors.New("bit writer buffer overflow")
	// ErrInvalidBitWidth is returned for integer widths outside 0..64.
	ErrInvalidBitWidth = errors.New("invalid bit width")
)

// Resource errors.
var (
	// ErrStreamTooLarge is returned when a stream would need more memory than allowed.
	ErrStreamTooLarge = errors.New("stream exceeds size limit")
)
