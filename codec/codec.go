// Package codec implements the five mandatory compression codecs
// (spec.md §4.2: RLE, Delta, LZ77, Huffman, FSE), the `none` passthrough,
// and the `custom` extension slot that binds the rest of the teacher's
// compression stack (SPEC_FULL.md §4.2 "Custom codec backends").
//
// Every codec satisfies the Codec interface and obeys the round-trip law:
// Decompress(Compress(x)) == x for every non-empty x the codec admits.
// Empty input is rejected with errs.ErrEmptyInput.
package codec

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
)

// Codec is a pure compress/decompress pair, matching the teacher's
// compress.Codec interface (compress/codec.go) generalized to the byte-level
// codecs this spec mandates.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ParseTag parses one of the case-insensitive pipeline tags named in
// spec.md §6.3. It never returns format.CodecCustom's sub-name; callers
// that need the custom backend name should parse "custom:<name>" with
// SplitCustomTag first.
func ParseTag(s string) (format.CodecTag, error) {
	switch lower(s) {
	case "none":
		return format.CodecNone, nil
	case "rle":
		return format.CodecRLE, nil
	case "huffman":
		return format.CodecHuffman, nil
	case "lz77":
		return format.CodecLZ77, nil
	case "fse":
		return format.CodecFSE, nil
	case "delta":
		return format.CodecDelta, nil
	case "custom":
		return format.CodecCustom, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownCodec, s)
	}
}

// SplitCustomTag splits a pipeline entry of the form "custom:<name>" into
// its backend name. If s has no colon, name is "" and ok is false.
func SplitCustomTag(s string) (name string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[i+1:], true
		}
	}

	return "", false
}

func lower(s string) string {
	buf := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf[i] = c
	}

	return string(buf)
}

// ByTag returns the built-in Codec for tag. For format.CodecCustom, name
// selects the backend ("zstd", "gozstd", or "lz4" per
// SPEC_FULL.md §4.2); an empty name defaults to "zstd", and any other name
// fails with errs.ErrUnknownCodec.
func ByTag(tag format.CodecTag, name string) (Codec, error) {
	switch tag {
	case format.CodecNone:
		return NoOp{}, nil
	case format.CodecRLE:
		return RLE{}, nil
	case format.CodecDelta:
		return Delta{}, nil
	case format.CodecLZ77:
		return NewLZ77(DefaultWindow, DefaultLookahead), nil
	case format.CodecHuffman:
		return Huffman{}, nil
	case format.CodecFSE:
		return NewFSE(DefaultTableLog), nil
	case format.CodecCustom:
		return customByName(name)
	default:
		return nil, fmt.Errorf("%w: tag %d", errs.ErrUnknownCodec, tag)
	}
}
