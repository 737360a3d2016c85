// Package column implements the ColumnEncoder (spec.md §3.4, §4.4): it
// splits a typed column into fixed-budget pages with per-page statistics,
// then the caller runs a pipeline.Pipeline over each page's bytes.
package column

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/internal/pool"
	"github.com/wisentfmt/wisent/internal/xxhash"
)

// DefaultPageSize is DEFAULT_PAGE_SIZE from spec.md §4.4: a page is filled
// until adding the next value would exceed this many bytes.
const DefaultPageSize = 1024 * 1024

// Statistics holds the per-page {null_count, distinct_count, min, max} from
// spec.md §3.4. Min/Max are populated for INT64/DOUBLE pages only; for
// BYTE_ARRAY pages they are left at their zero value.
type Statistics struct {
	NullCount    int64
	DistinctCount int64
	MinInt       int64
	MaxInt       int64
	MinDouble    float64
	MaxDouble    float64
}

// PageHeader is one page's metadata (spec.md §3.4).
type PageHeader struct {
	PageType         format.PageType
	NumValues        int
	FirstRowIndex    int64
	UncompressedSize int
	CompressedSize   int
	Stats            Statistics
	IsDictPage       bool
	ByteArray        []byte // populated by the caller after running the Pipeline
}

// MetaData is the ColumnMetaData record (spec.md §3.4), built by the
// ColumnEncoder and then mutated by the Pipeline (fills CompressedSize and
// ByteArray on every PageHeader).
type MetaData struct {
	ColumnName        string
	TotalValues        int
	TotalUncompressed   int
	TotalCompressed     int
	PhysicalType        format.PhysicalType
	EncodingType        format.ColumnEncoding
	CompressionPipeline []format.CodecTag
	Pages               []*PageHeader
}

// EncodeInt64 pages a column of INT64 values, one fixed-width little-endian
// value per 8 bytes.
func EncodeInt64(name string, values []int64) (*MetaData, [][]byte, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: empty int64 column %q", errs.ErrEmptyInput, name)
	}

	meta := &MetaData{
		ColumnName:   name,
		PhysicalType: format.PhysicalInt64,
		EncodingType: format.EncodingPlain,
	}

	var pages [][]byte
	buf := pool.GetPageBuffer()
	defer pool.PutPageBuffer(buf)

	firstRow := int64(0)
	pageStart := 0

	flush := func(end int) {
		if end <= pageStart {
			return
		}
		page := values[pageStart:end]
		stats := statsInt64(page)
		hdr := &PageHeader{
			PageType:         format.PageData,
			NumValues:        len(page),
			FirstRowIndex:    firstRow,
			UncompressedSize: len(page) * 8,
			Stats:            stats,
		}
		meta.Pages = append(meta.Pages, hdr)

		raw := make([]byte, len(page)*8)
		for i, v := range page {
			binary.LittleEndian.PutUint64(raw[i*8:], uint64(v))
		}
		pages = append(pages, raw)

		meta.TotalUncompressed += len(raw)
		meta.TotalValues += len(page)
		firstRow += int64(len(page))
		pageStart = end
	}

	bytesInPage := 0
	for i := range values {
		if bytesInPage+8 > DefaultPageSize && i > pageStart {
			flush(i)
			bytesInPage = 0
		}
		bytesInPage += 8
	}
	flush(len(values))

	return meta, pages, nil
}

// EncodeDouble pages a column of DOUBLE values analogously to EncodeInt64.
func EncodeDouble(name string, values []float64) (*MetaData, [][]byte, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: empty double column %q", errs.ErrEmptyInput, name)
	}

	meta := &MetaData{
		ColumnName:   name,
		PhysicalType: format.PhysicalDouble,
		EncodingType: format.EncodingPlain,
	}

	var pages [][]byte
	firstRow := int64(0)
	pageStart := 0

	flush := func(end int) {
		if end <= pageStart {
			return
		}
		page := values[pageStart:end]
		stats := statsDouble(page)
		hdr := &PageHeader{
			PageType:         format.PageData,
			NumValues:        len(page),
			FirstRowIndex:    firstRow,
			UncompressedSize: len(page) * 8,
			Stats:            stats,
		}
		meta.Pages = append(meta.Pages, hdr)

		raw := make([]byte, len(page)*8)
		for i, v := range page {
			binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
		}
		pages = append(pages, raw)

		meta.TotalUncompressed += len(raw)
		meta.TotalValues += len(page)
		firstRow += int64(len(page))
		pageStart = end
	}

	bytesInPage := 0
	for i := range values {
		if bytesInPage+8 > DefaultPageSize && i > pageStart {
			flush(i)
			bytesInPage = 0
		}
		bytesInPage += 8
	}
	flush(len(values))

	return meta, pages, nil
}

// EncodeByteArray pages a column of opaque byte strings as (u32 length,
// bytes) tuples, per spec.md §4.4.
func EncodeByteArray(name string, values [][]byte) (*MetaData, [][]byte, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: empty byte_array column %q", errs.ErrEmptyInput, name)
	}

	meta := &MetaData{
		ColumnName:   name,
		PhysicalType: format.PhysicalByteArray,
		EncodingType: format.EncodingPlain,
	}

	var pages [][]byte
	firstRow := int64(0)
	pageStart := 0
	pageBytes := 0

	flush := func(end int) {
		if end <= pageStart {
			return
		}
		page := values[pageStart:end]
		stats := statsByteArray(page)

		var raw []byte
		for _, v := range page {
			var lenBuf [4]byte
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
			raw = append(raw, lenBuf[:]...)
			raw = append(raw, v...)
		}

		hdr := &PageHeader{
			PageType:         format.PageData,
			NumValues:        len(page),
			FirstRowIndex:    firstRow,
			UncompressedSize: len(raw),
			Stats:            stats,
		}
		meta.Pages = append(meta.Pages, hdr)
		pages = append(pages, raw)

		meta.TotalUncompressed += len(raw)
		meta.TotalValues += len(page)
		firstRow += int64(len(page))
		pageStart = end
	}

	for i, v := range values {
		entrySize := 4 + len(v)
		if pageBytes+entrySize > DefaultPageSize && i > pageStart {
			flush(i)
			pageBytes = 0
		}
		pageBytes += entrySize
	}
	flush(len(values))

	return meta, pages, nil
}

func statsInt64(page []int64) Statistics {
	distinct := make(map[uint64]struct{}, len(page))
	minV, maxV := page[0], page[0]
	for _, v := range page {
		distinct[xxhash.Uint64(uint64(v))] = struct{}{}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return Statistics{DistinctCount: int64(len(distinct)), MinInt: minV, MaxInt: maxV}
}

func statsDouble(page []float64) Statistics {
	distinct := make(map[uint64]struct{}, len(page))
	minV, maxV := page[0], page[0]
	for _, v := range page {
		distinct[xxhash.Uint64(math.Float64bits(v))] = struct{}{}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return Statistics{DistinctCount: int64(len(distinct)), MinDouble: minV, MaxDouble: maxV}
}

func statsByteArray(page [][]byte) Statistics {
	distinct := make(map[uint64]struct{}, len(page))
	for _, v := range page {
		distinct[xxhash.Bytes(v)] = struct{}{}
	}
	return Statistics{DistinctCount: int64(len(distinct))}
}
