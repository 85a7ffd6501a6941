// Package section defines the fixed binary structures of the btw container format.
//
// # Stream Layout
//
// A raw stream is a 20-byte header followed by bit-packed block records:
//
//	┌──────────────────────────────────────────────────────────┐
//	│ Header (20 bytes, little-endian, byte-aligned)           │
//	│  - Magic 'b','t','w','f' (4 bytes)                       │
//	│  - SampleCount (8 bytes)                                 │
//	│  - Channels (2 bytes)                                    │
//	│  - BitsPerSample (2 bytes)                               │
//	│  - SampleRate (4 bytes)                                  │
//	├──────────────────────────────────────────────────────────┤
//	│ Block 0: one record per channel, bit-packed              │
//	│  - Rice parameter (BitsPerRiceLen bits)                  │
//	│  - One codeword per sample                               │
//	│  - Zero padding to the next byte boundary                │
//	├──────────────────────────────────────────────────────────┤
//	│ Block 1 ...                                              │
//	└──────────────────────────────────────────────────────────┘
//
// Every block (all channels of up to 512 frames) starts on a byte boundary. Records of the
// channels inside a block are packed without padding.
//
// # Envelope
//
// An enveloped stream wraps a raw stream with an EnvelopeHeader (24 bytes) carrying the
// compression type, the raw length and an optional xxHash64 checksum.
package section
