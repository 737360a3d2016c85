package codec

import (
	"bytes"
	"testing"

	"github.com/wisentfmt/wisent/errs"
)

func TestRLE_S4(t *testing.T) {
	input := []byte{0x41, 0x41, 0x41, 0x41, 0x41}

	out, err := RLE{}.Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0x05, 0x41}) {
		t.Fatalf("got %v, want [5 0x41]", out)
	}

	back, err := RLE{}.Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatalf("round-trip mismatch: got %v want %v", back, input)
	}
}

func TestRLE_EmptyInputRejected(t *testing.T) {
	if _, err := (RLE{}).Compress(nil); err != errs.ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRLE_OddLengthDecompressFails(t *testing.T) {
	if _, err := (RLE{}).Decompress([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error on odd-length input")
	}
}

func TestRLE_RunCapsAt255(t *testing.T) {
	input := bytes.Repeat([]byte{0x09}, 300)
	out, err := (RLE{}).Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 {
		t.Fatalf("expected two run-pairs for 300 bytes, got %d bytes of output", len(out))
	}

	back, err := (RLE{}).Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatal("round-trip mismatch across run cap boundary")
	}
}
