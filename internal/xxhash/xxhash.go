// Package xxhash wraps github.com/cespare/xxhash/v2 for the place the core
// needs a fast non-cryptographic hash: the ColumnEncoder's per-page
// distinct-value sets (SPEC_FULL.md §4.4).
package xxhash

import "github.com/cespare/xxhash/v2"

// String hashes a string for use as an intern-map or distinct-set key.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Bytes hashes an arbitrary byte slice, used for BYTE_ARRAY column values
// and opaque blob leaves.
func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Uint64 hashes the 8-byte little/native representation of an int64 or
// float64 bit pattern, used for INT64/DOUBLE column distinct-sets without
// allocating a byte slice per value.
func Uint64(v uint64) uint64 {
	var buf [8]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	buf[4] = byte(v >> 32)
	buf[5] = byte(v >> 40)
	buf[6] = byte(v >> 48)
	buf[7] = byte(v >> 56)

	return xxhash.Sum64(buf[:])
}
