// Package endian provides byte order utilities for the btw container and raw PCM I/O.
//
// The stream header and the envelope header are always little-endian. Raw PCM files
// handled by the command-line tool may use either byte order, selected by name:
//
//	engine, err := endian.ParseEngine("native")
//	v := engine.Uint16(buf)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() EndianEngine {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ParseEngine returns the engine for "little", "big" or "native" (case-insensitive).
func ParseEngine(name string) (EndianEngine, error) {
	switch strings.ToLower(name) {
	case "", "little", "le":
		return GetLittleEndianEngine(), nil
	case "big", "be":
		return GetBigEndianEngine(), nil
	case "native":
		return CheckEndianness(), nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", name)
	}
}
