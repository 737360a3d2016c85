package codec

import (
	"testing"

	"github.com/wisentfmt/wisent/format"
)

func TestParseTagCaseInsensitive(t *testing.T) {
	tag, err := ParseTag("LZ77")
	if err != nil {
		t.Fatal(err)
	}
	if tag != format.CodecLZ77 {
		t.Fatalf("expected CodecLZ77, got %v", tag)
	}
}

func TestParseTagUnknown(t *testing.T) {
	if _, err := ParseTag("bzip2"); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestSplitCustomTag(t *testing.T) {
	name, ok := SplitCustomTag("custom:lz4")
	if !ok || name != "lz4" {
		t.Fatalf("got name=%q ok=%v", name, ok)
	}

	_, ok = SplitCustomTag("custom")
	if ok {
		t.Fatal("expected no split for bare 'custom'")
	}
}

func TestByTagAllBuiltins(t *testing.T) {
	tags := []format.CodecTag{
		format.CodecNone, format.CodecRLE, format.CodecDelta,
		format.CodecLZ77, format.CodecHuffman, format.CodecFSE, format.CodecCustom,
	}
	for _, tag := range tags {
		c, err := ByTag(tag, "zstd")
		if err != nil {
			t.Fatalf("tag %v: %v", tag, err)
		}
		if c == nil {
			t.Fatalf("tag %v: nil codec", tag)
		}
	}
}

func TestByTagUnknownCustomName(t *testing.T) {
	if _, err := ByTag(format.CodecCustom, "brotli"); err == nil {
		t.Fatal("expected error for unknown custom backend")
	}
}
