package lazyview

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
)

// TypedSpan is a whole run materialized into an owned, random-access
// sequence (spec.md §4.7's as_span result). Exactly one of the typed slices
// is populated, selected by Variant; Expression-variant spans populate Exprs
// instead. ByteArray populates Ints with each value's raw string-region
// offset (see Value's doc comment) rather than Strs, since the region
// stores ByteArray payloads unframed and the span has no way to recover
// their length on its own.
type TypedSpan struct {
	Variant format.Variant
	Bools   []bool
	Ints    []int64
	Floats  []float64
	Strs    []string
	Exprs   []Cursor
}

// Len reports how many values the span holds.
func (s TypedSpan) Len() int {
	switch s.Variant {
	case format.Bool:
		return len(s.Bools)
	case format.Char, format.Short, format.Int, format.Long, format.ByteArray:
		return len(s.Ints)
	case format.Float, format.Double:
		return len(s.Floats)
	case format.String, format.Symbol:
		return len(s.Strs)
	case format.Expression:
		return len(s.Exprs)
	default:
		return 0
	}
}

// AsSpan materializes the whole run into an owned TypedSpan, decoding DICT
// and bit-packing as needed (spec.md §4.7).
func (r Run) AsSpan() (TypedSpan, error) {
	span := TypedSpan{Variant: r.Variant}
	switch r.Variant {
	case format.Bool:
		span.Bools = make([]bool, r.Len)
	case format.Char, format.Short, format.Int, format.Long, format.ByteArray:
		span.Ints = make([]int64, r.Len)
	case format.Float, format.Double:
		span.Floats = make([]float64, r.Len)
	case format.String, format.Symbol:
		span.Strs = make([]string, r.Len)
	case format.Expression:
		span.Exprs = make([]Cursor, r.Len)
	}

	for i := 0; i < r.Len; i++ {
		v, err := r.At(i)
		if err != nil {
			return TypedSpan{}, err
		}
		switch r.Variant {
		case format.Bool:
			span.Bools[i] = v.Bool
		case format.Char, format.Short, format.Int, format.Long, format.ByteArray:
			span.Ints[i] = v.Int
		case format.Float, format.Double:
			span.Floats[i] = v.Float
		case format.String, format.Symbol:
			span.Strs[i] = v.Str
		case format.Expression:
			span.Exprs[i] = *v.Expr
		}
	}
	return span, nil
}

// AsSpanAt is O(1) random access into the run at index i, honoring
// bit-packing and DICT (spec.md §4.7's as_span_at).
func (r Run) AsSpanAt(i int) (Value, error) {
	return r.At(i)
}

// AsSpanWithIndices gathers the values at the given indices into a
// TypedSpan (spec.md §4.7's as_span_with_indices).
func (r Run) AsSpanWithIndices(indices []int) (TypedSpan, error) {
	span := TypedSpan{Variant: r.Variant}
	for _, i := range indices {
		v, err := r.At(i)
		if err != nil {
			return TypedSpan{}, err
		}
		switch r.Variant {
		case format.Bool:
			span.Bools = append(span.Bools, v.Bool)
		case format.Char, format.Short, format.Int, format.Long, format.ByteArray:
			span.Ints = append(span.Ints, v.Int)
		case format.Float, format.Double:
			span.Floats = append(span.Floats, v.Float)
		case format.String, format.Symbol:
			span.Strs = append(span.Strs, v.Str)
		case format.Expression:
			span.Exprs = append(span.Exprs, *v.Expr)
		}
	}
	return span, nil
}

// Runs exposes the Cursor's decoded run list for callers that want to
// materialize spans directly rather than navigating child by child.
func (c Cursor) Runs() []Run {
	return c.runs
}

// AsSpanAt is the Cursor-level equivalent of Run.AsSpanAt, addressing a
// child by its logical position across all of the Cursor's runs.
func (c Cursor) AsSpanAt(i int) (Value, error) {
	r, within, err := c.runAt(i)
	if err != nil {
		return Value{}, err
	}
	return r.At(within)
}

// AsSpanWithIndices gathers values at the given global logical indices; all
// indices must fall within the same run, since a TypedSpan carries one
// Variant.
func (c Cursor) AsSpanWithIndices(indices []int) (TypedSpan, error) {
	if len(indices) == 0 {
		return TypedSpan{}, fmt.Errorf("%w: empty index list", errs.ErrOutOfRange)
	}
	r, first, err := c.runAt(indices[0])
	if err != nil {
		return TypedSpan{}, err
	}
	within := make([]int, len(indices))
	within[0] = first
	for j := 1; j < len(indices); j++ {
		rj, w, err := c.runAt(indices[j])
		if err != nil {
			return TypedSpan{}, err
		}
		if rj.argStart != r.argStart {
			return TypedSpan{}, fmt.Errorf("%w: indices span more than one run", errs.ErrTypeMismatch)
		}
		within[j] = w
	}
	return r.AsSpanWithIndices(within)
}
