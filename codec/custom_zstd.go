package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCustom is the "custom:zstd" pipeline backend (SPEC_FULL.md §4.2): a
// pure-Go zstd implementation, portable across platforms without cgo,
// matching the teacher's pooled-encoder/decoder pattern
// (compress/zstd.go + compress/zstd_pure.go) for allocation-free reuse.
type zstdCustom struct{}

var _ Codec = zstdCustom{}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("codec: failed to create zstd encoder: %v", err))
		}

		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("codec: failed to create zstd decoder: %v", err))
		}

		return dec
	},
}

func (zstdCustom) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zstdCustom) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd decompression failed: %w", err)
	}

	return out, nil
}
