package flatten

import (
	"unsafe"

	"github.com/wisentfmt/wisent/endian"
)

func nativeEndian() endian.EndianEngine {
	return endian.Native()
}

// baseAddress reports the Arena-backed slice's current base address, used
// to populate Header.OriginalBaseAddress (spec.md §3.2.1): equality at read
// time confirms the image has not been relocated since serialization.
func baseAddress(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&b[0])))
}
