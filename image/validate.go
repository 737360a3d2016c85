package image

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
)

// Validate checks the structural invariants from spec.md §8 (testable
// properties 4-9) against an already-viewed Image.
func Validate(img *Image) error {
	argCount := img.Header.ArgumentCount

	for i := uint64(0); i < img.Header.ExpressionCount; i++ {
		se := img.SubExpressionAt(i)
		if se.StartArg > se.EndArg || se.EndArg > argCount {
			return fmt.Errorf("%w: sub-expression %d has invalid arg range [%d,%d) over %d arguments", errs.ErrCorrupt, i, se.StartArg, se.EndArg, argCount)
		}
		if se.StartType > se.EndType || se.EndType > argCount {
			return fmt.Errorf("%w: sub-expression %d has invalid type range [%d,%d) over %d arguments", errs.ErrCorrupt, i, se.StartType, se.EndType, argCount)
		}
	}

	types := img.ArgTypes()
	dictSlots := img.Header.DictionaryBytes / 8

	// Each run reserves TypeReservation(n, rle, dict) bytes: one marker (1,
	// 5, or 13 bytes) optionally followed by unread padding out to the
	// reservation boundary. Runs can never overlap since every step jumps
	// straight to the next run's start; there is no backtracking to check.
	i := 0
	for i < len(types) && uint64(i) < argCount {
		parsed := ParseTypeByte(types[i])
		if uint8(parsed.Variant) > 10 {
			return fmt.Errorf("%w: type byte at slot %d has variant tag %d > 10", errs.ErrCorrupt, i, parsed.Variant)
		}

		consumed := 1
		var n uint64 = 1
		if parsed.RLE {
			if i+5 > len(types) {
				return fmt.Errorf("%w: RLE marker at slot %d missing its 4-byte length", errs.ErrTruncated, i)
			}
			n = uint64(decodeLEUint32(types[i+1 : i+5]))
			if n == 0 {
				return fmt.Errorf("%w: RLE marker at slot %d declares a zero-length run", errs.ErrCorrupt, i)
			}
			consumed += 4
		}
		if parsed.Dict {
			dictFieldStart := i + consumed
			if dictFieldStart+8 > len(types) {
				return fmt.Errorf("%w: DICT marker at slot %d missing its 8-byte base index", errs.ErrTruncated, i)
			}
			base := decodeLEUint64(types[dictFieldStart : dictFieldStart+8])
			if dictSlots > 0 && base >= dictSlots {
				return fmt.Errorf("%w: DICT base index %d >= dictionary region size %d", errs.ErrInvalidDictOffset, base, dictSlots)
			}
			consumed += 8
		}
		if !parsed.RLE {
			n = 1
		}

		reservation := uint64(consumed)
		if reservation < n {
			reservation = n
		}
		i += int(reservation)
	}

	if img.Header.StringBytesWritten > uint64(len(img.StringRegion())) {
		return fmt.Errorf("%w: string_bytes_written %d exceeds region length %d", errs.ErrCorrupt, img.Header.StringBytesWritten, len(img.StringRegion()))
	}

	return nil
}

// DecodeLEUint64 decodes the explicitly little-endian DICT base-index field
// (spec.md §6.1), independent of the image's native byte order. Exported for
// lazyview's identical forward scan over the type array.
func DecodeLEUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func decodeLEUint64(b []byte) uint64 { return DecodeLEUint64(b) }

// DecodeLEUint32 decodes the explicitly little-endian RLE run-length field
// (spec.md §6.1).
func DecodeLEUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func decodeLEUint32(b []byte) uint32 { return DecodeLEUint32(b) }
