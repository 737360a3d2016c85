package segment

import "unsafe"

// baseAddress reports a byte slice's current base address, mirroring
// flatten.baseAddress but returning uintptr to match Provider.BaseAddress's
// signature.
func baseAddress(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
