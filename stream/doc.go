// Package stream encodes interleaved PCM samples into btw streams and decodes them back.
//
// A raw stream is a 20-byte header followed by one block record per (block, channel)
// pair, block-major and channel-minor. Every block starts on a byte boundary:
//
//	+--------+------------------------+------------------------+-----+
//	| header | block 0: ch0 ch1 ... | | block 1: ch0 ch1 ... | | ... |
//	+--------+------------------------+------------------------+-----+
//	                                 ^ zero padding to the next byte
//
// The encoder runs two passes. The analysis pass picks the Rice parameter of every
// record and computes its exact size, so the output buffer is allocated once at its
// final length. The write pass then fills each block into its own byte range, which
// lets both passes run in parallel across blocks (see WithConcurrency).
//
// An encoder may also wrap the raw stream in an envelope that adds general-purpose
// compression and an xxHash64 checksum (see WithCompression and WithChecksum). The
// decoder recognizes both forms by their magic number.
package stream
