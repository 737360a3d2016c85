// Package format defines the closed set of tags shared by every layer of the
// wisent image: expression variant tags, per-column encodings, and codec
// identifiers. It has no dependencies on the rest of the module so that
// arena, codec, column and image can all import it without a cycle.
package format

// Variant is the 4-bit tag stored in the low bits of an argument-type byte.
// It identifies the payload kind of one argument slot (spec.md §3.1, §6.1).
type Variant uint8

const (
	Bool       Variant = 0
	Char       Variant = 1
	Short      Variant = 2
	Int        Variant = 3
	Long       Variant = 4
	Float      Variant = 5
	Double     Variant = 6
	String     Variant = 7
	Symbol     Variant = 8
	Expression Variant = 9
	ByteArray  Variant = 10

	// VariantMask isolates the variant tag from the RLE/DICT/offset-width
	// bits packed into the rest of a type byte.
	VariantMask = 0x1F
)

// Width returns the in-slot byte width of a variant when it is not
// dictionary-encoded. Long, Double, Expression, String, Symbol and ByteArray
// are one full 8-byte slot each; everything else packs multiple values per
// slot per spec.md §4.6 rule 4.
func (v Variant) Width() int {
	switch v {
	case Bool, Char:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	default:
		return 8
	}
}

func (v Variant) String() string {
	switch v {
	case Bool:
		return "Bool"
	case Char:
		return "Char"
	case Short:
		return "Short"
	case Int:
		return "Int"
	case Long:
		return "Long"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case String:
		return "String"
	case Symbol:
		return "Symbol"
	case Expression:
		return "Expression"
	case ByteArray:
		return "ByteArray"
	default:
		return "Unknown"
	}
}

// Valid reports whether the variant is one of the eleven tags defined by
// spec.md §6.1 (testable property 5).
func (v Variant) Valid() bool {
	return v <= ByteArray
}

// PhysicalType is the columnar physical type carried by ColumnMetaData
// (spec.md §3.4).
type PhysicalType uint8

const (
	PhysicalInt64     PhysicalType = 1
	PhysicalDouble    PhysicalType = 2
	PhysicalByteArray PhysicalType = 3
	PhysicalBoolean   PhysicalType = 4
)

func (p PhysicalType) String() string {
	switch p {
	case PhysicalInt64:
		return "INT64"
	case PhysicalDouble:
		return "DOUBLE"
	case PhysicalByteArray:
		return "BYTE_ARRAY"
	case PhysicalBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// ColumnEncoding is the encoding_type field of ColumnMetaData (spec.md §3.4).
type ColumnEncoding uint8

const (
	EncodingPlain      ColumnEncoding = 1
	EncodingRLE        ColumnEncoding = 2
	EncodingBitPacked  ColumnEncoding = 3
	EncodingDictionary ColumnEncoding = 4
	EncodingDeltaPlain ColumnEncoding = 5
	EncodingDeltaBP    ColumnEncoding = 6
)

func (e ColumnEncoding) String() string {
	switch e {
	case EncodingPlain:
		return "PLAIN"
	case EncodingRLE:
		return "RLE"
	case EncodingBitPacked:
		return "BIT_PACKED"
	case EncodingDictionary:
		return "DICTIONARY"
	case EncodingDeltaPlain:
		return "DELTA_PLAIN"
	case EncodingDeltaBP:
		return "DELTA_BINARY_PACKED"
	default:
		return "UNKNOWN"
	}
}

// CodecTag is the closed sum type of recognized compression pipeline
// entries (spec.md §6.3). Tag comparisons are case-insensitive at the
// parsing boundary (codec.ParseTag); once parsed, a CodecTag value is
// already normalized.
type CodecTag uint8

const (
	CodecNone CodecTag = iota
	CodecRLE
	CodecHuffman
	CodecLZ77
	CodecFSE
	CodecDelta
	CodecCustom
)

func (t CodecTag) String() string {
	switch t {
	case CodecNone:
		return "none"
	case CodecRLE:
		return "rle"
	case CodecHuffman:
		return "huffman"
	case CodecLZ77:
		return "lz77"
	case CodecFSE:
		return "fse"
	case CodecDelta:
		return "delta"
	case CodecCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// PageType distinguishes a DATA page from a DICTIONARY page inside a
// ColumnMetaData (spec.md §3.4).
type PageType uint8

const (
	PageData       PageType = 1
	PageDictionary PageType = 2
)

func (p PageType) String() string {
	switch p {
	case PageData:
		return "DATA"
	case PageDictionary:
		return "DICTIONARY"
	default:
		return "UNKNOWN"
	}
}
