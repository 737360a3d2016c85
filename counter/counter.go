package counter

import (
	"strconv"

	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/image"
)

// RLEMin is the minimum run length before the RLE bit pays for itself
// (spec.md §3.3); re-exported from image so callers need only import
// counter.
const RLEMin = image.RLEMin

// Options are the driver-level switches from spec.md §6.4 that the Counter
// and Flattener both consult.
type Options struct {
	DisableRLE         bool
	DisableCSV         bool
	DictEncodeStrings  bool
	DictEncodeNumeric  bool
}

// Sizes is the Counter's output: the exact byte size of every Image region,
// used to Arena.Alloc before the Flattener runs.
//
// ArgumentCount sizes the argument-type array (the sum of every run's
// TypeReservation: one reserved byte per logical value, or the RLE/DICT
// marker length when that is larger); ArgumentBytes sizes the argument-value array (one
// 8-byte slot per packed value, fewer than ArgumentCount when a span was
// bit-packed).
type Sizes struct {
	ArgumentCount      uint64
	ArgumentBytes      uint64
	ExpressionCount    uint64
	DictionaryBytes    uint64
	StringBytesWritten uint64
}

// Run is a maximal sequence of sibling nodes sharing one EffectiveVariant —
// the unit the span-emission algorithm (spec.md §4.6) operates on. Counter
// and flatten.Flattener group children into Runs identically so their
// argument-slot accounting agrees.
type Run struct {
	Variant format.Variant
	Nodes   []*Node
}

// GroupRuns splits children into maximal same-EffectiveVariant runs,
// preserving order.
func GroupRuns(children []*Node) []Run {
	var runs []Run
	for _, c := range children {
		v := c.EffectiveVariant()
		if len(runs) > 0 && runs[len(runs)-1].Variant == v {
			last := &runs[len(runs)-1]
			last.Nodes = append(last.Nodes, c)
			continue
		}
		runs = append(runs, Run{Variant: v, Nodes: []*Node{c}})
	}
	return runs
}

// dictEligible reports whether a run of n values with the given number of
// distinct values qualifies for dictionary encoding (spec.md §4.6 rule 3:
// |unique| < n/2 and |unique| <= 255), and if so the offset width in bytes
// (1 for an 8-bit offset, since the 255 cap always fits in one byte).
func dictEligible(n, distinct int) (eligible bool, offsetWidthBytes int) {
	if distinct < n/2 && distinct <= 255 {
		return true, 1
	}
	return false, 0
}

// SlotsForRun computes how many 8-byte argument slots a Run consumes and
// whether it qualifies for RLE and/or dictionary encoding, following the
// span-emission algorithm of spec.md §4.6. flatten.Flattener calls this
// with the same Options Counter used so the two passes agree exactly.
func SlotsForRun(r Run, opts Options) (slots uint64, rle bool, dict bool, dictSize int) {
	return slotsForRun(r, opts)
}

func slotsForRun(r Run, opts Options) (slots uint64, rle bool, dict bool, dictSize int) {
	n := len(r.Nodes)
	w := r.Variant.Width()

	if dictOK(r, opts) {
		distinct := distinctCount(r)
		if eligible, offsetWidth := dictEligible(n, distinct); eligible {
			valsPerSlot := 8 / offsetWidth
			slots = ceilDiv(uint64(n), uint64(valsPerSlot))
			dict = true
			dictSize = distinct

			// DICT's 8-byte base index is only recoverable by a reader if
			// the marker also carries RLE's explicit 4-byte length field —
			// without it, a reader has no way to know how many logical
			// values a short non-repeating marker covers once the run's
			// reserved bytes exceed the marker itself. So DICT always
			// implies RLE framing, regardless of DisableRLE or run length.
			rle = true
			return slots, rle, dict, dictSize
		}
	}

	if w < 8 {
		valsPerSlot := 8 / w
		slots = ceilDiv(uint64(n), uint64(valsPerSlot))
	} else {
		slots = uint64(n)
	}

	if !opts.DisableRLE && n >= RLEMin {
		rle = true
	}

	return slots, rle, dict, dictSize
}

// dictOK reports whether dictionary encoding is even considered for this
// run's variant under the given options: strings/symbols gated by
// DictEncodeStrings-independent logic is wrong — dictionary packing of
// span *values* (as opposed to global string interning) is gated by
// DictEncodeNumeric for Long/Double and is always considered for
// String/Symbol spans, matching spec.md §6.4's numeric-specific option.
func dictOK(r Run, opts Options) bool {
	switch r.Variant {
	case format.Long, format.Double:
		return opts.DictEncodeNumeric
	case format.String, format.Symbol:
		return true
	default:
		return false
	}
}

func distinctCount(r Run) int {
	seen := make(map[string]struct{}, len(r.Nodes))
	for _, n := range r.Nodes {
		seen[leafKey(n)] = struct{}{}
	}
	return len(seen)
}

// LeafKey returns a string uniquely identifying a leaf node's logical value,
// used by both Counter's distinct-count pass and flatten.Flattener's
// dictionary-entry deduplication so they agree on what counts as "the same
// value" within a run.
func LeafKey(n *Node) string {
	return leafKey(n)
}

func leafKey(n *Node) string {
	switch n.Variant {
	case format.Long:
		return "i:" + strconv.FormatInt(n.Int, 10)
	case format.Double:
		return "f:" + strconv.FormatFloat(n.Float, 'g', -1, 64)
	default:
		return "s:" + n.Str
	}
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// TypeReservation returns how many argument-type array bytes a run of n
// logical values reserves: normally one byte per value (spec.md §3.2.3), but
// never fewer than the marker framing a run's flags require (1 controlling
// byte, +4 for an RLE length, +8 for a DICT base index) — a run's physical
// marker always fits inside its own reserved bytes, with any slack beyond
// the marker left as unused padding rather than spilling into the next
// run's bytes. flatten.Flattener advances its type-array cursor by exactly
// this amount after writing each run's marker (or inline bytes).
func TypeReservation(n int, rle, dict bool) uint64 {
	consumed := uint64(1)
	if rle {
		consumed += 4
	}
	if dict {
		consumed += 8
	}
	if consumed > uint64(n) {
		return consumed
	}
	return uint64(n)
}

// Count runs the Counter over a parsed tree, producing exact region sizes.
func Count(root *Node, opts Options) Sizes {
	c := &counting{opts: opts, strings: make(map[string]struct{})}
	c.walk(root)
	return c.sizes
}

type counting struct {
	opts    Options
	sizes   Sizes
	strings map[string]struct{}
}

func (c *counting) walk(n *Node) {
	switch n.Kind {
	case NodeObject, NodeArray:
		c.sizes.ExpressionCount++
		if n.Kind == NodeObject {
			c.internString("Object")
		} else {
			c.internString("List")
		}
		c.accountRuns(n.Children)
		for _, child := range n.Children {
			c.walk(child)
		}

	case NodeKey:
		c.sizes.ExpressionCount++
		c.internString(n.Head)
		c.accountRuns(n.Children)
		c.walk(n.Children[0])

	case NodeLeaf:
		switch n.Variant {
		case format.String, format.Symbol:
			c.internString(n.Str)
		case format.ByteArray:
			c.internBytes(n.Str)
		}
	}
}

func (c *counting) accountRuns(children []*Node) {
	for _, run := range GroupRuns(children) {
		slots, rle, dict, dictSize := slotsForRun(run, c.opts)
		c.sizes.ArgumentCount += TypeReservation(len(run.Nodes), rle, dict)
		c.sizes.ArgumentBytes += slots * 8
		if dict {
			c.sizes.DictionaryBytes += uint64(dictSize) * 8
		}
	}
}

// internString accounts for one NUL-terminated String/Symbol entry
// (spec.md §3.9: "length of every distinct interned string + 1 (NUL)... ;
// otherwise sum of every string occurrence + 1"), deduplicating identical
// strings when DictEncodeStrings is set.
func (c *counting) internString(s string) {
	if c.opts.DictEncodeStrings {
		if _, seen := c.strings[s]; seen {
			return
		}
		c.strings[s] = struct{}{}
	}
	c.sizes.StringBytesWritten += uint64(len(s)) + 1
}

// internBytes accounts for one unframed ByteArray payload: no NUL, no
// length prefix, and never deduplicated, matching flatten.internBytes.
func (c *counting) internBytes(s string) {
	c.sizes.StringBytesWritten += uint64(len(s))
}
