package lazyview

import (
	"errors"
	"strings"
	"testing"

	"github.com/wisentfmt/wisent/arena"
	"github.com/wisentfmt/wisent/counter"
	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/flatten"
	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/image"
	"github.com/wisentfmt/wisent/sax"
)

func buildImage(t *testing.T, src string, opts counter.Options) *image.Image {
	t.Helper()
	root, err := counter.Parse(sax.NewJSON(strings.NewReader(src)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := flatten.Write(root, opts, arena.New())
	if err != nil {
		t.Fatal(err)
	}
	return res.Image
}

func TestRootNavigatesObjectByKey(t *testing.T) {
	img := buildImage(t, `{"a": 1, "b": [true, false, true]}`, counter.Options{})

	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	if root.Head() != "Object" {
		t.Fatalf("expected root head Object, got %q", root.Head())
	}
	if root.Len() != 2 {
		t.Fatalf("expected 2 children, got %d", root.Len())
	}

	a, err := root.ChildByKey("a")
	if err != nil {
		t.Fatal(err)
	}
	if a.Head() != "a" {
		t.Fatalf("expected key-wrapper head 'a', got %q", a.Head())
	}
	v, err := a.AsSpanAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Variant != format.Long || v.Int != 1 {
		t.Fatalf("expected Long(1), got %+v", v)
	}

	b, err := root.ChildByKey("b")
	if err != nil {
		t.Fatal(err)
	}
	bList, err := b.Child(0)
	if err != nil {
		t.Fatal(err)
	}
	if bList.Head() != "List" {
		t.Fatalf("expected List, got %q", bList.Head())
	}
	if bList.Len() != 3 {
		t.Fatalf("expected 3 bools, got %d", bList.Len())
	}
	typ, err := bList.CurrentType(0)
	if err != nil {
		t.Fatal(err)
	}
	if typ != format.Bool {
		t.Fatalf("expected Bool variant, got %s", typ)
	}
}

func TestChildByKeyMissingKeyReturnsOutOfRange(t *testing.T) {
	img := buildImage(t, `{"a": 1}`, counter.Options{})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	_, err = root.ChildByKey("missing")
	if !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestChildOnScalarReturnsTypeMismatch(t *testing.T) {
	img := buildImage(t, `{"a": 1}`, counter.Options{})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	a, err := root.ChildByKey("a")
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Child(0)
	if !errors.Is(err, errs.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestIsRLEReportsRunLengthForLongSpan(t *testing.T) {
	img := buildImage(t, `[[1,2,3,4,5,6,7,8,9,10,11,12,13]]`, counter.Options{})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	inner, err := root.Child(0)
	if err != nil {
		t.Fatal(err)
	}
	if inner.Len() != 13 {
		t.Fatalf("expected 13 elements, got %d", inner.Len())
	}
	n, err := inner.IsRLE(0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 13 {
		t.Fatalf("expected RLE run length 13, got %d", n)
	}

	span, err := inner.Runs()[0].AsSpan()
	if err != nil {
		t.Fatal(err)
	}
	if span.Len() != 13 {
		t.Fatalf("expected span length 13, got %d", span.Len())
	}
	for i, want := range []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13} {
		if span.Ints[i] != want {
			t.Fatalf("span[%d] = %d, want %d", i, span.Ints[i], want)
		}
	}
}

func TestIsDictEncodedReportsBaseIndex(t *testing.T) {
	img := buildImage(t, `[7,7,7,7,5,5,5,5]`, counter.Options{DictEncodeNumeric: true})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	base, width, err := root.IsDictEncoded(0)
	if err != nil {
		t.Fatal(err)
	}
	if width != 1 {
		t.Fatalf("expected offset width 1, got %d", width)
	}
	_ = base

	for i, want := range []int64{7, 7, 7, 7, 5, 5, 5, 5} {
		v, err := root.AsSpanAt(i)
		if err != nil {
			t.Fatal(err)
		}
		if v.Int != want {
			t.Fatalf("value[%d] = %d, want %d", i, v.Int, want)
		}
	}
}

func TestAsSpanWithIndicesGathersSubset(t *testing.T) {
	img := buildImage(t, `[10,20,30,40,50]`, counter.Options{})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	span, err := root.AsSpanWithIndices([]int{0, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{10, 30, 50}
	if span.Len() != len(want) {
		t.Fatalf("expected %d gathered values, got %d", len(want), span.Len())
	}
	for i, w := range want {
		if span.Ints[i] != w {
			t.Fatalf("gathered[%d] = %d, want %d", i, span.Ints[i], w)
		}
	}
}

func TestNestedExpressionNavigation(t *testing.T) {
	img := buildImage(t, `{"outer": {"inner": 42}}`, counter.Options{})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := root.ChildByKey("outer")
	if err != nil {
		t.Fatal(err)
	}
	outerObj, err := outer.Child(0)
	if err != nil {
		t.Fatal(err)
	}
	inner, err := outerObj.ChildByKey("inner")
	if err != nil {
		t.Fatal(err)
	}
	v, err := inner.AsSpanAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 42 {
		t.Fatalf("expected 42, got %d", v.Int)
	}
}

func TestStringSpanRoundTrips(t *testing.T) {
	img := buildImage(t, `["alpha","beta","gamma"]`, counter.Options{})
	root, err := Root(img)
	if err != nil {
		t.Fatal(err)
	}
	span, err := root.Runs()[0].AsSpan()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, w := range want {
		if span.Strs[i] != w {
			t.Fatalf("span[%d] = %q, want %q", i, span.Strs[i], w)
		}
	}
}
