package section

import "math"

// Magic numbers, packed little-endian as 32-bit words.
const (
	// Magic identifies a raw btw stream: the ASCII bytes 'b', 't', 'w', 'f'.
	Magic uint32 = uint32('b') | uint32('t')<<8 | uint32('w')<<16 | uint32('f')<<24
	// EnvelopeMagic identifies an enveloped stream: the ASCII bytes 'b', 't', 'w', 'z'.
	EnvelopeMagic uint32 = uint32('b') | uint32('t')<<8 | uint32('w')<<16 | uint32('z')<<24
)

// Stream header layout, in bytes.
const (
	HeaderSize = 20 // fixed stream header size in bytes

	MagicOffset         = 0  // 4 bytes
	SampleCountOffset   = 4  // 8 bytes
	ChannelCountOffset  = 12 // 2 bytes
	BitsPerSampleOffset = 14 // 2 bytes
	SampleRateOffset    = 16 // 4 bytes
)

// BlockSize is the number of frames per block record; the last block may be shorter.
const BlockSize = 512

// Limits imposed by the header field widths.
const (
	MaxChannels      = math.MaxUint16
	MaxBitsPerSample = 32
)

// Envelope header layout, in bytes.
const (
	EnvelopeHeaderSize = 24

	EnvelopeFlagChecksum uint8 = 0x01 // bit 0: xxHash64 checksum of the raw stream is valid
	envelopeFlagsMask    uint8 = EnvelopeFlagChecksum
)
