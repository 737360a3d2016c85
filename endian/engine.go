// Package endian provides the single byte-order engine used to read and
// write the wisent image.
//
// spec.md §1 states the format is native-endian and intended for single-host
// shared memory: there is no endianness negotiation, and no per-image flag
// records which order was used. Every region of an Image is written with
// Native(), and every reader must run on the same-endian host that wrote it.
// This package exists only so arena/image/column code has one place to get
// "whatever binary.ByteOrder matches this host" without repeating the
// CheckEndianness trick at every call site.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into one interface, satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness inspects a live value's memory layout to determine the
// host's native byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the running host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// Native returns the EndianEngine matching this host's byte order. Every
// wisent writer and reader uses this engine; the format carries no
// endianness flag to negotiate against.
func Native() EndianEngine {
	if IsNativeLittleEndian() {
		return binary.LittleEndian
	}

	return binary.BigEndian
}
