// Package flatten implements the second pass of the serializer (spec.md
// §4.6): given the same parsed tree counter.Count already sized, it writes
// values into the region offsets the Counter computed, interning strings,
// applying per-span RLE and dictionary packing, and bit-packing narrow
// element types.
package flatten

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wisentfmt/wisent/arena"
	"github.com/wisentfmt/wisent/counter"
	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/image"
)

// Result is the completed Image plus any non-fatal warnings collected along
// the way, matching the driver's "report one error kind... and a list of
// non-fatal warnings" contract (spec.md §7).
type Result struct {
	Image    *image.Image
	Warnings []string
}

// Write runs the Flattener over root using a into a freshly-alloc'd Arena
// region sized by counter.Count. On any error the Arena is freed and the
// error is returned, per spec.md §4.6's failure policy.
func Write(root *counter.Node, opts counter.Options, a *arena.Arena) (*Result, error) {
	sizes := counter.Count(root, opts)

	header := image.Header{
		ArgumentCount:      sizes.ArgumentCount,
		ArgumentBytes:      sizes.ArgumentBytes,
		ExpressionCount:    sizes.ExpressionCount,
		DictionaryBytes:    sizes.DictionaryBytes,
		StringBytesWritten: sizes.StringBytesWritten,
	}
	layout := image.ComputeLayout(header)

	buf, err := a.Alloc(int(layout.TotalSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAllocationFailed, err)
	}

	header.OriginalBaseAddress = baseAddress(buf)
	header.Encode(buf)

	fl := &flattener{
		buf:           buf,
		layout:        layout,
		opts:          opts,
		stringOffsets: make(map[string]uint64),
	}

	if _, err := fl.writeContainer(root); err != nil {
		a.Free()
		return nil, err
	}

	fl.commitSubExpressions()
	fl.commitDictionary()
	fl.commitStrings()

	img, err := image.View(fl.buf)
	if err != nil {
		a.Free()
		return nil, err
	}
	if err := image.Validate(img); err != nil {
		a.Free()
		return nil, err
	}

	return &Result{Image: img, Warnings: fl.warnings}, nil
}

type flattener struct {
	buf    []byte
	layout image.Layout
	opts   counter.Options

	argCursor  uint64
	typeCursor uint64

	subExprs []image.SubExpression

	dictEntries []uint64

	stringBuf     []byte
	stringOffsets map[string]uint64

	warnings []string
}

func (fl *flattener) writeContainer(n *counter.Node) (uint64, error) {
	idx := uint64(len(fl.subExprs))
	fl.subExprs = append(fl.subExprs, image.SubExpression{})

	headOffset, err := fl.internString(headName(n))
	if err != nil {
		return 0, err
	}

	startArg := fl.argCursor
	startType := fl.typeCursor

	if err := fl.writeRuns(n.Children); err != nil {
		return 0, err
	}

	fl.subExprs[idx] = image.SubExpression{
		Head:      headOffset,
		StartArg:  startArg,
		EndArg:    fl.argCursor,
		StartType: startType,
		EndType:   fl.typeCursor,
	}

	return idx, nil
}

func headName(n *counter.Node) string {
	switch n.Kind {
	case counter.NodeObject:
		return "Object"
	case counter.NodeArray:
		return "List"
	case counter.NodeKey:
		return n.Head
	default:
		return ""
	}
}

func (fl *flattener) writeRuns(children []*counter.Node) error {
	for _, run := range counter.GroupRuns(children) {
		if err := fl.writeRun(run); err != nil {
			return err
		}
	}
	return nil
}

func (fl *flattener) writeRun(run counter.Run) error {
	_, rle, dict, _ := counter.SlotsForRun(run, fl.opts)
	n := len(run.Nodes)

	var baseDictIdx uint64
	var dictIndexOf map[string]int
	if dict {
		baseDictIdx = uint64(len(fl.dictEntries))
		dictIndexOf = make(map[string]int)
		for _, node := range run.Nodes {
			key := counter.LeafKey(node)
			if _, ok := dictIndexOf[key]; ok {
				continue
			}
			dictIndexOf[key] = len(fl.dictEntries) - int(baseDictIdx)
			val, err := fl.dictValue(node)
			if err != nil {
				return err
			}
			fl.dictEntries = append(fl.dictEntries, val)
		}
	}

	// Type bytes: a run reserves exactly TypeReservation(n, rle, dict)
	// bytes in the argument-type array: one per logical value, or the length
	// of the RLE/DICT marker when that is larger (spec.md §4.6, §6.1). The
	// reservation is never smaller than the marker it holds, so any slack
	// beyond the marker is left as unread padding rather than spilling
	// into the next run.
	// dict is only ever true alongside rle (see counter.slotsForRun), so a
	// plain inline run (the else branch) is never dictionary-encoded.
	typeStart := fl.typeCursor
	if rle {
		fl.writeTypeByte(image.MakeTypeByte(run.Variant, true, dict, false))
		fl.writeRLELength(uint32(n))
		if dict {
			fl.writeDictBase(baseDictIdx)
		}
	} else {
		plain := image.MakeTypeByte(run.Variant, false, false, false)
		for i := 0; i < n; i++ {
			fl.writeTypeByte(plain)
		}
	}
	fl.padTypeBytes(typeStart + counter.TypeReservation(n, rle, dict))

	switch {
	case dict:
		offsets := make([]byte, n)
		for i, node := range run.Nodes {
			offsets[i] = byte(dictIndexOf[counter.LeafKey(node)])
		}
		fl.writePacked(offsets, 1)

	case run.Variant == format.Expression:
		for _, node := range run.Nodes {
			childIdx, err := fl.writeContainer(node)
			if err != nil {
				return err
			}
			fl.writeSlot(childIdx)
		}

	default:
		w := run.Variant.Width()
		if w < 8 {
			raw := make([]byte, 0, n*w)
			for _, node := range run.Nodes {
				b, err := narrowBytes(node, w)
				if err != nil {
					return err
				}
				raw = append(raw, b...)
			}
			fl.writePacked(raw, w)
		} else {
			for _, node := range run.Nodes {
				val, err := fl.wideValue(node)
				if err != nil {
					return err
				}
				fl.writeSlot(val)
			}
		}
	}

	return nil
}

func (fl *flattener) dictValue(n *counter.Node) (uint64, error) {
	switch n.Variant {
	case format.Long:
		return uint64(n.Int), nil
	case format.Double:
		return math.Float64bits(n.Float), nil
	case format.String, format.Symbol:
		return fl.internString(n.Str)
	default:
		// ByteArray is never dictionary-encoded (counter.dictOK only
		// considers Long/Double/String/Symbol).
		return 0, fmt.Errorf("%w: variant %s cannot be dictionary-encoded", errs.ErrUnknownLeafType, n.Variant)
	}
}

func (fl *flattener) wideValue(n *counter.Node) (uint64, error) {
	switch n.Variant {
	case format.Long:
		return uint64(n.Int), nil
	case format.Double:
		return math.Float64bits(n.Float), nil
	case format.String, format.Symbol:
		return fl.internString(n.Str)
	case format.ByteArray:
		return fl.internBytes(n.Str)
	default:
		return 0, fmt.Errorf("%w: unsupported leaf variant %s", errs.ErrUnknownLeafType, n.Variant)
	}
}

func narrowBytes(n *counter.Node, w int) ([]byte, error) {
	switch n.Variant {
	case format.Bool:
		if n.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case format.Char:
		return []byte{byte(n.Int)}, nil
	case format.Short:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(n.Int)))
		return b, nil
	case format.Int:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(n.Int)))
		return b, nil
	case format.Float:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(n.Float)))
		return b, nil
	default:
		return nil, fmt.Errorf("%w: variant %s has no narrow encoding (width %d)", errs.ErrUnknownLeafType, n.Variant, w)
	}
}

// writePacked packs len(raw)/w elements of width w into 8-byte argument
// slots, zero-padding the final slot's unused sub-slots.
func (fl *flattener) writePacked(raw []byte, w int) {
	valsPerSlot := 8 / w
	chunkSize := valsPerSlot * w

	for off := 0; off < len(raw); off += chunkSize {
		end := off + chunkSize
		if end > len(raw) {
			end = len(raw)
		}
		var slot [8]byte
		copy(slot[:], raw[off:end])
		fl.writeRawSlot(slot[:])
	}
}

func (fl *flattener) writeSlot(v uint64) {
	offset := fl.layout.ArgValuesOffset + fl.argCursor*8
	nativeEndian().PutUint64(fl.buf[offset:offset+8], v)
	fl.argCursor++
}

func (fl *flattener) writeRawSlot(b []byte) {
	offset := fl.layout.ArgValuesOffset + fl.argCursor*8
	copy(fl.buf[offset:offset+8], b)
	fl.argCursor++
}

func (fl *flattener) writeTypeByte(b byte) {
	offset := fl.layout.ArgTypesOffset + fl.typeCursor
	fl.buf[offset] = b
	fl.typeCursor++
}

func (fl *flattener) writeRLELength(n uint32) {
	offset := fl.layout.ArgTypesOffset + fl.typeCursor
	binary.LittleEndian.PutUint32(fl.buf[offset:offset+4], n)
	fl.typeCursor += 4
}

func (fl *flattener) writeDictBase(idx uint64) {
	offset := fl.layout.ArgTypesOffset + fl.typeCursor
	binary.LittleEndian.PutUint64(fl.buf[offset:offset+8], idx)
	fl.typeCursor += 8
}

// padTypeBytes zero-fills any unused bytes between the current type cursor
// and target (a run's reservation boundary) and advances the cursor to it.
// Arena buffers are pool-recycled, so the slack is zeroed explicitly rather
// than relied upon to already be clear; readers never touch it regardless,
// since they recompute the same reservation and skip over it.
func (fl *flattener) padTypeBytes(target uint64) {
	if target > fl.typeCursor {
		start := fl.layout.ArgTypesOffset + fl.typeCursor
		end := fl.layout.ArgTypesOffset + target
		for i := start; i < end; i++ {
			fl.buf[i] = 0
		}
	}
	fl.typeCursor = target
}

// internString appends s to the string region as raw UTF-8 bytes followed
// by a single trailing NUL (spec.md §3.5; image.Image.StringAt's mirror),
// deduplicating identical strings when DictEncodeStrings is set.
func (fl *flattener) internString(s string) (uint64, error) {
	if fl.opts.DictEncodeStrings {
		if off, ok := fl.stringOffsets[s]; ok {
			return off, nil
		}
	}

	offset := uint64(len(fl.stringBuf))
	fl.stringBuf = append(fl.stringBuf, []byte(s)...)
	fl.stringBuf = append(fl.stringBuf, 0x00)

	if fl.opts.DictEncodeStrings {
		fl.stringOffsets[s] = offset
	}

	return offset, nil
}

// internBytes appends a ByteArray payload to the string region completely
// unframed — no NUL terminator, no length prefix — matching the original
// WisentSerializer's storeBytes, which tracks the blob's length via the
// caller's own column/page metadata rather than the region itself. Unlike
// internString, occurrences are never deduplicated: storeBytes never
// consulted a dictionary either, and equality between two opaque byte
// blobs isn't implied by DictEncodeStrings's string-interning semantics.
func (fl *flattener) internBytes(s string) (uint64, error) {
	offset := uint64(len(fl.stringBuf))
	fl.stringBuf = append(fl.stringBuf, []byte(s)...)

	return offset, nil
}

func (fl *flattener) commitSubExpressions() {
	for i, se := range fl.subExprs {
		off := fl.layout.SubExprOffset + uint64(i)*image.SubExpressionSize
		se.Encode(fl.buf[off : off+image.SubExpressionSize])
	}
}

func (fl *flattener) commitDictionary() {
	e := nativeEndian()
	for i, v := range fl.dictEntries {
		off := fl.layout.DictOffset + uint64(i)*8
		e.PutUint64(fl.buf[off:off+8], v)
	}
}

func (fl *flattener) commitStrings() {
	copy(fl.buf[fl.layout.StringOffset:], fl.stringBuf)
}
