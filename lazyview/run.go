package lazyview

import (
	"fmt"
	"math"

	"github.com/wisentfmt/wisent/endian"
	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/image"
)

// Run is one decoded maximal same-variant span within a Cursor's children,
// the unit counter.Run/flatten.writeRun produced it from (spec.md §4.6).
type Run struct {
	Variant  format.Variant
	Len      int
	RLE      bool
	Dict     bool
	DictBase uint64

	img      *image.Image
	argStart uint64
}

// decodeRuns forward-scans a sub-expression's [StartType,EndType) range,
// reconstructing the run boundaries flatten.writeRun laid out: one
// reserved counter.TypeReservation(n, rle, dict) byte window per run.
func decodeRuns(img *image.Image, se image.SubExpression) ([]Run, error) {
	types := img.ArgTypes()
	i := se.StartType
	argCursor := se.StartArg

	var runs []Run
	for i < se.EndType {
		if i >= uint64(len(types)) {
			return nil, fmt.Errorf("%w: type cursor %d beyond type array of length %d", errs.ErrCorrupt, i, len(types))
		}
		parsed := image.ParseTypeByte(types[i])

		consumed := uint64(1)
		n := uint64(1)
		if parsed.RLE {
			if i+5 > uint64(len(types)) {
				return nil, fmt.Errorf("%w: RLE marker at %d missing its length", errs.ErrTruncated, i)
			}
			n = uint64(image.DecodeLEUint32(types[i+1 : i+5]))
			consumed += 4
		}
		var dictBase uint64
		if parsed.Dict {
			if i+consumed+8 > uint64(len(types)) {
				return nil, fmt.Errorf("%w: DICT marker at %d missing its base index", errs.ErrTruncated, i)
			}
			dictBase = image.DecodeLEUint64(types[i+consumed : i+consumed+8])
			consumed += 8
		}
		if !parsed.RLE && !parsed.Dict {
			// A plain run is written as n identical inline type bytes.
			for i+n < se.EndType && i+n < uint64(len(types)) && types[i+n] == types[i] {
				n++
			}
			consumed = n
		}

		reservation := consumed
		if reservation < n {
			reservation = n
		}

		slots := slotsForDecodedRun(parsed.Variant, n, parsed.Dict)

		runs = append(runs, Run{
			Variant:  parsed.Variant,
			Len:      int(n),
			RLE:      parsed.RLE,
			Dict:     parsed.Dict,
			DictBase: dictBase,
			img:      img,
			argStart: argCursor,
		})

		argCursor += slots
		i += reservation
	}
	return runs, nil
}

func slotsForDecodedRun(v format.Variant, n uint64, dict bool) uint64 {
	if dict {
		return ceilDiv(n, 8)
	}
	w := uint64(v.Width())
	if w < 8 {
		return ceilDiv(n, 8/w)
	}
	return n
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// expressionIndexAt reads the sub-expression index stored at logical
// position i within an Expression-variant run (one full 8-byte slot per
// value; Expression runs are never dictionary-encoded since dictOK only
// considers Long/Double/String/Symbol).
func (r Run) expressionIndexAt(i int) (uint64, error) {
	if r.Variant != format.Expression {
		return 0, fmt.Errorf("%w: run is variant %s, not Expression", errs.ErrTypeMismatch, r.Variant)
	}
	slot := r.argStart + uint64(i)
	return readSlot(r.img, slot), nil
}

func readSlot(img *image.Image, slot uint64) uint64 {
	values := img.ArgValues()
	off := slot * 8
	return endian.Native().Uint64(values[off : off+8])
}

// Value is one materialized scalar or sub-expression reference.
//
// ByteArray is the one variant Str does not carry a decoded payload for:
// the string region stores ByteArray payloads completely unframed (no NUL,
// no length prefix, per the original WisentSerializer's storeBytes), so
// there is no length to recover from the region alone. For ByteArray, Int
// instead carries the raw string-region offset; callers pair it with the
// length tracked by the enclosing column/page metadata (e.g. a sibling
// "compressed_size"/"uncompressed_size" key) and read the bytes via
// image.Image.BytesAt.
type Value struct {
	Variant format.Variant
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Expr    *Cursor
}

// At decodes the logical value at position i within the run, honoring
// bit-packing and dictionary encoding (spec.md §4.7's as_span_at: "O(1)
// random access... honoring bit-packing and DICT").
func (r Run) At(i int) (Value, error) {
	if i < 0 || i >= r.Len {
		return Value{}, fmt.Errorf("%w: span index %d >= length %d", errs.ErrOutOfRange, i, r.Len)
	}

	if r.Dict {
		slot := r.argStart + uint64(i)/8
		within := i % 8
		raw := r.img.ArgValues()
		off := slot*8 + uint64(within)
		dictIdx := r.DictBase + uint64(raw[off])
		return r.dictValue(dictIdx)
	}

	if r.Variant == format.Expression {
		idx := readSlot(r.img, r.argStart+uint64(i))
		c, err := forSubExpression(r.img, idx)
		if err != nil {
			return Value{}, err
		}
		return Value{Variant: format.Expression, Expr: &c}, nil
	}

	w := r.Variant.Width()
	if w < 8 {
		valsPerSlot := 8 / w
		slot := r.argStart + uint64(i)/uint64(valsPerSlot)
		within := (i % valsPerSlot) * w
		raw := r.img.ArgValues()
		off := slot*8 + uint64(within)
		return r.narrowValue(raw[off : off+uint64(w)])
	}

	raw := readSlot(r.img, r.argStart+uint64(i))
	return r.wideValue(raw)
}

func (r Run) dictValue(dictIdx uint64) (Value, error) {
	raw := r.img.DictEntry(dictIdx)
	switch r.Variant {
	case format.Long:
		return Value{Variant: format.Long, Int: int64(raw)}, nil
	case format.Double:
		return Value{Variant: format.Double, Float: math.Float64frombits(raw)}, nil
	case format.String, format.Symbol:
		s, err := r.img.StringAt(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Variant: r.Variant, Str: s}, nil
	default:
		// ByteArray is never dictionary-encoded (counter.dictOK only
		// considers Long/Double/String/Symbol).
		return Value{}, fmt.Errorf("%w: variant %s cannot be dictionary-decoded", errs.ErrUnknownLeafType, r.Variant)
	}
}

func (r Run) wideValue(raw uint64) (Value, error) {
	switch r.Variant {
	case format.Long:
		return Value{Variant: format.Long, Int: int64(raw)}, nil
	case format.Double:
		return Value{Variant: format.Double, Float: math.Float64frombits(raw)}, nil
	case format.String, format.Symbol:
		s, err := r.img.StringAt(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Variant: r.Variant, Str: s}, nil
	case format.ByteArray:
		// Unframed in the region; the caller supplies the length from
		// sibling column/page metadata and reads via Image.BytesAt.
		return Value{Variant: format.ByteArray, Int: int64(raw)}, nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported wide variant %s", errs.ErrUnknownLeafType, r.Variant)
	}
}

func (r Run) narrowValue(b []byte) (Value, error) {
	switch r.Variant {
	case format.Bool:
		return Value{Variant: format.Bool, Bool: b[0] != 0}, nil
	case format.Char:
		return Value{Variant: format.Char, Int: int64(int8(b[0]))}, nil
	case format.Short:
		return Value{Variant: format.Short, Int: int64(int16(uint16(b[0]) | uint16(b[1])<<8))}, nil
	case format.Int:
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		return Value{Variant: format.Int, Int: int64(int32(v))}, nil
	case format.Float:
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		return Value{Variant: format.Float, Float: float64(math.Float32frombits(v))}, nil
	default:
		return Value{}, fmt.Errorf("%w: variant %s has no narrow decoding", errs.ErrUnknownLeafType, r.Variant)
	}
}
