// Package image implements the region-offset layout of a wisent Image
// (spec.md §3.2, §6.1): header, argument-value array, argument-type array,
// sub-expression table, dictionary region, string region, all in one
// contiguous native-endian allocation.
package image

import (
	"fmt"

	"github.com/wisentfmt/wisent/endian"
	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
)

// HeaderSize is the fixed byte size of the Header region (six u64 fields).
const HeaderSize = 48

// SubExpressionSize is the byte size of one sub-expression table record.
const SubExpressionSize = 40 // 5 x u64

// Type-byte flag bits (spec.md §6.1).
const (
	FlagRLE      = 0x80
	FlagDict     = 0x40
	FlagDictWide = 0x20
)

// RLEMin is the minimum run length (spec.md §3.3) below which RLE never
// pays for itself over inline type bytes.
const RLEMin = 13

// Header is the fixed-size prefix of every Image (spec.md §3.2.1).
//
// ArgumentCount is the length of the argument-type array: the sum, over
// every span, of the bytes that span reserves there (one per logical value,
// or the RLE/DICT marker length when that is larger, as
// counter.TypeReservation computes). ArgumentBytes is the physical size of
// the argument-value array, smaller than ArgumentCount*8 whenever a span was
// bit-packed or dictionary-encoded.
type Header struct {
	ArgumentCount        uint64
	ArgumentBytes        uint64
	ExpressionCount      uint64
	DictionaryBytes      uint64
	OriginalBaseAddress  uint64
	StringBytesWritten   uint64
}

// Encode writes the header fields into the first HeaderSize bytes of dst.
func (h Header) Encode(dst []byte) {
	e := endian.Native()
	e.PutUint64(dst[0:8], h.ArgumentCount)
	e.PutUint64(dst[8:16], h.ArgumentBytes)
	e.PutUint64(dst[16:24], h.ExpressionCount)
	e.PutUint64(dst[24:32], h.DictionaryBytes)
	e.PutUint64(dst[32:40], h.OriginalBaseAddress)
	e.PutUint64(dst[40:48], h.StringBytesWritten)
}

// DecodeHeader reads a Header from the first HeaderSize bytes of src.
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, fmt.Errorf("%w: image shorter than header (%d < %d)", errs.ErrInvalidHeaderSize, len(src), HeaderSize)
	}
	e := endian.Native()
	return Header{
		ArgumentCount:       e.Uint64(src[0:8]),
		ArgumentBytes:       e.Uint64(src[8:16]),
		ExpressionCount:     e.Uint64(src[16:24]),
		DictionaryBytes:     e.Uint64(src[24:32]),
		OriginalBaseAddress: e.Uint64(src[32:40]),
		StringBytesWritten:  e.Uint64(src[40:48]),
	}, nil
}

// typeArrayPadded returns the argument-type array length padded up to a
// multiple of 8 bytes, per spec.md §3.2.3 ("one byte per argument slot,
// padded to 8 bytes"): every span reserves one type-array byte per logical
// value it represents, or its RLE/DICT marker length when that is larger,
// so this is sized from ArgumentCount rather than ArgumentBytes/8.
func typeArrayPadded(argumentCount uint64) uint64 {
	return (argumentCount + 7) / 8 * 8
}

// Layout computes the byte offset of every region given the counts a
// Counter pass produced. All offsets are relative to the Image's base.
type Layout struct {
	ArgValuesOffset  uint64
	ArgTypesOffset   uint64
	SubExprOffset    uint64
	DictOffset       uint64
	StringOffset     uint64
	TotalSize        uint64
}

// ComputeLayout lays out the six regions back to back in the order spec.md
// §3.2 mandates.
func ComputeLayout(h Header) Layout {
	argValues := uint64(HeaderSize)
	argTypes := argValues + h.ArgumentBytes
	subExpr := argTypes + typeArrayPadded(h.ArgumentCount)
	dict := subExpr + h.ExpressionCount*SubExpressionSize
	str := dict + h.DictionaryBytes
	total := str + h.StringBytesWritten

	return Layout{
		ArgValuesOffset: argValues,
		ArgTypesOffset:  argTypes,
		SubExprOffset:   subExpr,
		DictOffset:      dict,
		StringOffset:    str,
		TotalSize:       total,
	}
}

// SubExpression is one record of the sub-expression table (spec.md §3.2.4).
type SubExpression struct {
	Head      uint64
	StartArg  uint64
	EndArg    uint64
	StartType uint64
	EndType   uint64
}

// Encode writes the record into dst[0:SubExpressionSize].
func (s SubExpression) Encode(dst []byte) {
	e := endian.Native()
	e.PutUint64(dst[0:8], s.Head)
	e.PutUint64(dst[8:16], s.StartArg)
	e.PutUint64(dst[16:24], s.EndArg)
	e.PutUint64(dst[24:32], s.StartType)
	e.PutUint64(dst[32:40], s.EndType)
}

// DecodeSubExpression reads one record from src[0:SubExpressionSize].
func DecodeSubExpression(src []byte) SubExpression {
	e := endian.Native()
	return SubExpression{
		Head:      e.Uint64(src[0:8]),
		StartArg:  e.Uint64(src[8:16]),
		EndArg:    e.Uint64(src[16:24]),
		StartType: e.Uint64(src[24:32]),
		EndType:   e.Uint64(src[32:40]),
	}
}

// MakeTypeByte packs a variant tag plus the RLE/DICT/DICT-width flags into
// one type byte (spec.md §6.1's bit layout).
func MakeTypeByte(v format.Variant, rle, dict, dictWide bool) byte {
	b := byte(v) & format.VariantMask
	if rle {
		b |= FlagRLE
	}
	if dict {
		b |= FlagDict
	}
	if dictWide {
		b |= FlagDictWide
	}
	return b
}

// ParsedTypeByte is the decomposed form of one type byte.
type ParsedTypeByte struct {
	Variant  format.Variant
	RLE      bool
	Dict     bool
	DictWide bool
}

// ParseTypeByte decomposes a type byte into its variant tag and flags.
func ParseTypeByte(b byte) ParsedTypeByte {
	return ParsedTypeByte{
		Variant:  format.Variant(b & format.VariantMask),
		RLE:      b&FlagRLE != 0,
		Dict:     b&FlagDict != 0,
		DictWide: b&FlagDictWide != 0,
	}
}

// Image is a read view over a fully-written byte region: a Layout plus the
// backing bytes. It does not own the bytes — arena.Arena does.
type Image struct {
	Header Header
	Layout Layout
	Bytes  []byte
}

// View wraps a backing slice that has already been populated by the
// Flattener into a read-oriented Image.
func View(b []byte) (*Image, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	layout := ComputeLayout(h)
	if uint64(len(b)) < layout.TotalSize {
		return nil, fmt.Errorf("%w: image is %d bytes, layout requires %d", errs.ErrTruncated, len(b), layout.TotalSize)
	}
	return &Image{Header: h, Layout: layout, Bytes: b}, nil
}

// ArgValues returns the argument-value array's raw bytes.
func (img *Image) ArgValues() []byte {
	return img.Bytes[img.Layout.ArgValuesOffset:img.Layout.ArgTypesOffset]
}

// ArgTypes returns the argument-type array's raw bytes (padded region).
func (img *Image) ArgTypes() []byte {
	return img.Bytes[img.Layout.ArgTypesOffset:img.Layout.SubExprOffset]
}

// SubExpressionAt decodes the i'th sub-expression table record.
func (img *Image) SubExpressionAt(i uint64) SubExpression {
	off := img.Layout.SubExprOffset + i*SubExpressionSize
	return DecodeSubExpression(img.Bytes[off : off+SubExpressionSize])
}

// DictEntry reads the i'th 8-byte dictionary-region entry as a raw u64.
func (img *Image) DictEntry(i uint64) uint64 {
	off := img.Layout.DictOffset + i*8
	return endian.Native().Uint64(img.Bytes[off : off+8])
}

// StringRegion returns the string/byte-array region's raw bytes.
func (img *Image) StringRegion() []byte {
	return img.Bytes[img.Layout.StringOffset : img.Layout.StringOffset+img.Header.StringBytesWritten]
}

// StringAt reads a NUL-terminated UTF-8 string starting at byte offset off
// within the string region (spec.md §3.5): it scans forward for the
// terminating 0x00 and returns everything before it. Used for interned
// String/Symbol values and key names, which never contain an embedded NUL.
func (img *Image) StringAt(off uint64) (string, error) {
	region := img.StringRegion()
	if off > uint64(len(region)) {
		return "", fmt.Errorf("%w: string offset %d beyond region of length %d", errs.ErrOutOfRange, off, len(region))
	}
	end := off
	for end < uint64(len(region)) && region[end] != 0x00 {
		end++
	}
	if end >= uint64(len(region)) {
		return "", fmt.Errorf("%w: string at offset %d has no NUL terminator within region of length %d", errs.ErrInvalidStringBytes, off, len(region))
	}
	return string(region[off:end]), nil
}

// BytesAt reads length raw, unframed bytes starting at byte offset off
// within the string region. Unlike StringAt, it performs no NUL scan: it is
// the read side of a ByteArray payload, which the original WisentSerializer
// stores as a completely unframed blob (storeBytes) with the length tracked
// by the caller's own column/page metadata rather than by the region itself.
func (img *Image) BytesAt(off, length uint64) ([]byte, error) {
	region := img.StringRegion()
	if off+length > uint64(len(region)) {
		return nil, fmt.Errorf("%w: byte array at offset %d (length %d) exceeds region of length %d", errs.ErrInvalidStringBytes, off, length, len(region))
	}
	return region[off : off+length], nil
}
