package counter

import (
	"strings"
	"testing"

	"github.com/wisentfmt/wisent/sax"
)

func TestParseAndCountS1(t *testing.T) {
	// S1 from spec.md §8: {"a": 1, "b": [true, false, true]}
	src := sax.NewJSON(strings.NewReader(`{"a": 1, "b": [true, false, true]}`))
	root, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if root.Kind != NodeObject {
		t.Fatalf("expected root object, got %v", root.Kind)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(root.Children))
	}

	boolArray := root.Children[1].Children[0]
	if boolArray.Kind != NodeArray || len(boolArray.Children) != 3 {
		t.Fatalf("expected 3-element bool array, got %+v", boolArray)
	}

	sizes := Count(root, Options{})

	// The bool span of length 3 with width 1 packs into a single 8-byte
	// slot (valsPerSlot = 8).
	boolRuns := GroupRuns(boolArray.Children)
	if len(boolRuns) != 1 {
		t.Fatalf("expected one homogeneous bool run, got %d", len(boolRuns))
	}
	slots, rle, dict, _ := slotsForRun(boolRuns[0], Options{})
	if slots != 1 {
		t.Fatalf("expected bool span to bit-pack into 1 slot, got %d", slots)
	}
	if rle || dict {
		t.Fatalf("expected neither RLE nor dict for a 3-element run")
	}

	if sizes.ExpressionCount == 0 {
		t.Fatal("expected at least one expression counted")
	}
	if sizes.ArgumentCount == 0 {
		t.Fatal("expected at least one argument slot counted")
	}
}

func TestCountS2RLEOnLongSpan(t *testing.T) {
	// S2: thirteen int64 values in one span, each Long (8 bytes, one
	// slot per value), qualifying for RLE at n == RLEMin.
	src := sax.NewJSON(strings.NewReader(`[[1,2,3,4,5,6,7,8,9,10,11,12,13]]`))
	root, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}

	inner := root.Children[0]
	if inner.Kind != NodeArray || len(inner.Children) != 13 {
		t.Fatalf("expected 13-element inner array, got %+v", inner)
	}

	runs := GroupRuns(inner.Children)
	if len(runs) != 1 {
		t.Fatalf("expected one homogeneous Long run, got %d", len(runs))
	}

	slots, rle, _, _ := slotsForRun(runs[0], Options{})
	if slots != 13 {
		t.Fatalf("expected 13 slots (one per Long value), got %d", slots)
	}
	if !rle {
		t.Fatal("expected RLE at run length == RLEMin")
	}
}

func TestCountS6DictEncodingEligibility(t *testing.T) {
	// S6: int64 [7,7,7,7,5,5,5,5] with dict-encoding enabled: 2 distinct
	// values over 8, satisfying unique < n/2.
	src := sax.NewJSON(strings.NewReader(`[7,7,7,7,5,5,5,5]`))
	root, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}

	runs := GroupRuns(root.Children)
	if len(runs) != 1 {
		t.Fatalf("expected one homogeneous run, got %d", len(runs))
	}

	opts := Options{DictEncodeNumeric: true}
	slots, _, dict, dictSize := slotsForRun(runs[0], opts)
	if !dict {
		t.Fatal("expected dict encoding to be eligible")
	}
	if dictSize != 2 {
		t.Fatalf("expected 2 distinct values, got %d", dictSize)
	}
	// 8-bit offsets pack 8 per slot; 8 values need exactly 1 slot.
	if slots != 1 {
		t.Fatalf("expected 1 slot for 8 dict-packed offsets, got %d", slots)
	}
}

func TestStringInterningDedup(t *testing.T) {
	src := sax.NewJSON(strings.NewReader(`["dup","dup","dup"]`))
	root, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}

	deduped := Count(root, Options{DictEncodeStrings: true})
	verbatim := Count(root, Options{DictEncodeStrings: false})

	if deduped.StringBytesWritten >= verbatim.StringBytesWritten {
		t.Fatalf("expected deduped string bytes (%d) < verbatim (%d)", deduped.StringBytesWritten, verbatim.StringBytesWritten)
	}
}
