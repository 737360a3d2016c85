// Package lazyview implements the consumer side of an Image (spec.md §4.7):
// a Cursor that materializes values, sub-expressions, and spans on demand
// from the region layout flatten.Flattener wrote, decoding RLE and DICT
// runs lazily rather than walking the whole image up front.
package lazyview

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/image"
)

// Cursor addresses one ComplexExpression's child sequence — the argument
// and type ranges flatten.Flattener wrote for one container. Per spec.md
// §4.7's ordering guarantee, every read through a Cursor sees a consistent
// snapshot since the underlying Image is immutable after serialization.
//
// err, when set, makes the Cursor an error-expression (spec.md §4.7/§7):
// OutOfRange and TypeMismatch are surfaced as values rather than unwinding
// the walk, so a Cursor produced by a failed Child/ChildByKey call still
// carries the failure and propagates it unchanged through any further
// navigation instead of panicking on a zero-value Cursor.
type Cursor struct {
	img  *image.Image
	head string
	se   image.SubExpression
	runs []Run
	err  error
}

// Err returns the error this Cursor carries, if it is an error-expression.
func (c Cursor) Err() error { return c.err }

// IsError reports whether this Cursor is an error-expression.
func (c Cursor) IsError() bool { return c.err != nil }

// Root returns a Cursor over the image's root expression: sub-expression 0,
// always the first container flatten.Write emits.
func Root(img *image.Image) (Cursor, error) {
	return forSubExpression(img, 0)
}

func forSubExpression(img *image.Image, idx uint64) (Cursor, error) {
	if idx >= img.Header.ExpressionCount {
		return Cursor{}, fmt.Errorf("%w: sub-expression index %d >= %d", errs.ErrOutOfRange, idx, img.Header.ExpressionCount)
	}
	se := img.SubExpressionAt(idx)
	head, err := img.StringAt(se.Head)
	if err != nil {
		return Cursor{}, err
	}
	runs, err := decodeRuns(img, se)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{img: img, head: head, se: se, runs: runs}, nil
}

// Head returns the expression's interned head string: "Object", "List", or
// (for a key wrapper) the key name.
func (c Cursor) Head() string { return c.head }

// Len reports the total number of logical child values this Cursor spans,
// across all of its runs.
func (c Cursor) Len() int {
	n := 0
	for _, r := range c.runs {
		n += r.Len
	}
	return n
}

// runAt locates the Run covering logical child position i, and i's offset
// within that run.
func (c Cursor) runAt(i int) (Run, int, error) {
	if i < 0 {
		return Run{}, 0, fmt.Errorf("%w: child index %d is negative", errs.ErrOutOfRange, i)
	}
	base := 0
	for _, r := range c.runs {
		if i < base+r.Len {
			return r, i - base, nil
		}
		base += r.Len
	}
	return Run{}, 0, fmt.Errorf("%w: child index %d >= length %d", errs.ErrOutOfRange, i, base)
}

// CurrentType reports the variant tag governing child position i.
func (c Cursor) CurrentType(i int) (format.Variant, error) {
	r, _, err := c.runAt(i)
	if err != nil {
		return 0, err
	}
	return r.Variant, nil
}

// IsRLE reports the run length at child position i if that run is
// RLE-encoded, else 0 — matching spec.md §4.7's "is_rle() -> run length or
// 0".
func (c Cursor) IsRLE(i int) (int, error) {
	r, _, err := c.runAt(i)
	if err != nil {
		return 0, err
	}
	if !r.RLE {
		return 0, nil
	}
	return r.Len, nil
}

// IsDictEncoded reports the dictionary base index and offset width at child
// position i, or (0, 0) if that run is not dictionary-encoded.
func (c Cursor) IsDictEncoded(i int) (baseDictIndex uint64, offsetWidth int, err error) {
	r, _, err := c.runAt(i)
	if err != nil {
		return 0, 0, err
	}
	if !r.Dict {
		return 0, 0, nil
	}
	return r.DictBase, 1, nil
}

// Child navigates into the i'th logical value when it is itself a
// sub-expression (an Object/List/key wrapper). Returns TypeMismatch as a
// value, not an error a caller must branch on before continuing, per
// spec.md §4.7's "surfaced as values... so callers can continue walking" —
// callers test the returned error with errors.Is.
func (c Cursor) Child(i int) (Cursor, error) {
	if c.err != nil {
		return c, c.err
	}
	r, within, err := c.runAt(i)
	if err != nil {
		return Cursor{err: err}, err
	}
	if r.Variant != format.Expression {
		err := fmt.Errorf("%w: child %d is variant %s, not an expression", errs.ErrTypeMismatch, i, r.Variant)
		return Cursor{err: err}, err
	}
	idx, err := r.expressionIndexAt(within)
	if err != nil {
		return Cursor{err: err}, err
	}
	return forSubExpression(c.img, idx)
}

// GetExpression is an alias for Child, matching spec.md §4.7's named
// operation.
func (c Cursor) GetExpression(i int) (Cursor, error) {
	return c.Child(i)
}

// ChildByKey finds the key-wrapper child whose head equals name (an Object
// container's children are all NodeKey-style single-value wrappers) and
// returns a Cursor over it. The returned Cursor itself wraps exactly one
// logical value, reachable via Child(0) (if a container) or AsSpanAt(0) (if
// a scalar span).
func (c Cursor) ChildByKey(name string) (Cursor, error) {
	if c.err != nil {
		return c, c.err
	}
	for i := 0; i < c.Len(); i++ {
		r, within, err := c.runAt(i)
		if err != nil {
			return Cursor{err: err}, err
		}
		if r.Variant != format.Expression {
			continue
		}
		idx, err := r.expressionIndexAt(within)
		if err != nil {
			return Cursor{err: err}, err
		}
		child, err := forSubExpression(c.img, idx)
		if err != nil {
			return Cursor{err: err}, err
		}
		if child.head == name {
			return child, nil
		}
	}
	err := fmt.Errorf("%w: no key %q among %d children", errs.ErrOutOfRange, name, c.Len())
	return Cursor{err: err}, err
}
