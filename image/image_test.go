package image

import (
	"testing"

	"github.com/wisentfmt/wisent/format"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		ArgumentCount:       3,
		ArgumentBytes:       24,
		ExpressionCount:     1,
		DictionaryBytes:     0,
		OriginalBaseAddress: 0xdeadbeef,
		StringBytesWritten:  0,
	}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, h)
	}
}

func TestComputeLayoutOrdering(t *testing.T) {
	h := Header{ArgumentCount: 13, ArgumentBytes: 104, ExpressionCount: 2, DictionaryBytes: 16, StringBytesWritten: 10}
	l := ComputeLayout(h)

	if l.ArgValuesOffset != HeaderSize {
		t.Fatalf("expected arg values right after header, got %d", l.ArgValuesOffset)
	}
	if l.ArgTypesOffset <= l.ArgValuesOffset {
		t.Fatal("expected arg types after arg values")
	}
	if l.SubExprOffset <= l.ArgTypesOffset {
		t.Fatal("expected sub-expressions after arg types")
	}
	if l.DictOffset <= l.SubExprOffset {
		t.Fatal("expected dictionary after sub-expressions")
	}
	if l.StringOffset <= l.DictOffset {
		t.Fatal("expected string region after dictionary")
	}
	if l.TotalSize <= l.StringOffset {
		t.Fatal("expected total size to cover string region")
	}

	// argument-type array is padded to a multiple of 8.
	if (l.SubExprOffset-l.ArgTypesOffset)%8 != 0 {
		t.Fatalf("expected padded type array, got length %d", l.SubExprOffset-l.ArgTypesOffset)
	}
}

func TestTypeByteRoundTrip(t *testing.T) {
	b := MakeTypeByte(format.Long, true, true, false)
	parsed := ParseTypeByte(b)
	if parsed.Variant != format.Long || !parsed.RLE || !parsed.Dict || parsed.DictWide {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestSubExpressionRoundTrip(t *testing.T) {
	se := SubExpression{Head: 10, StartArg: 1, EndArg: 5, StartType: 1, EndType: 5}
	buf := make([]byte, SubExpressionSize)
	se.Encode(buf)
	got := DecodeSubExpression(buf)
	if got != se {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, se)
	}
}

func TestViewRejectsTruncatedImage(t *testing.T) {
	h := Header{ArgumentCount: 1, ArgumentBytes: 8, ExpressionCount: 0, StringBytesWritten: 0}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	if _, err := View(buf); err == nil {
		t.Fatal("expected truncation error for header-only buffer")
	}
}

func TestViewValidImage(t *testing.T) {
	h := Header{ArgumentCount: 1, ArgumentBytes: 8, ExpressionCount: 0, StringBytesWritten: 0}
	layout := ComputeLayout(h)
	buf := make([]byte, layout.TotalSize)
	h.Encode(buf)

	img, err := View(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(img); err != nil {
		t.Fatalf("expected valid empty image, got %v", err)
	}
}
