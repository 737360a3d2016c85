//go:build cgo

package codec

import "github.com/valyala/gozstd"

// gozstdCustom is the "custom:gozstd" pipeline backend (SPEC_FULL.md §4.2):
// cgo zstd bindings offered as a higher-throughput alternative to the pure
// Go zstdCustom backend for BYTE_ARRAY column pages, matching the teacher's
// compress/zstd_cgo.go. Only available in cgo builds; without cgo,
// custom_gozstd_nocgo.go's backend returns an error.
type gozstdCustom struct{}

var _ Codec = gozstdCustom{}

func (gozstdCustom) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

func (gozstdCustom) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	return gozstd.Decompress(nil, data)
}
