//go:build !cgo

package codec

import "fmt"

// gozstdCustom falls back to a clear error when cgo is disabled: the
// "custom:gozstd" backend wraps github.com/valyala/gozstd, which requires
// cgo. Callers on a cgo-disabled toolchain should select "custom:zstd" or
// "custom:lz4" instead.
type gozstdCustom struct{}

var _ Codec = gozstdCustom{}

func (gozstdCustom) Compress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("codec: custom:gozstd requires a cgo-enabled build")
}

func (gozstdCustom) Decompress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("codec: custom:gozstd requires a cgo-enabled build")
}
