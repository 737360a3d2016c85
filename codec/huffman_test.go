package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestHuffmanRoundTrip(t *testing.T) {
	inputs := []string{
		"a",
		"aaaaaaaaaaaa",
		"abracadabra",
		strings.Repeat("hello world ", 30),
	}
	for _, in := range inputs {
		enc, err := (Huffman{}).Compress([]byte(in))
		if err != nil {
			t.Fatalf("compress %q: %v", in, err)
		}
		dec, err := (Huffman{}).Decompress(enc)
		if err != nil {
			t.Fatalf("decompress %q: %v", in, err)
		}
		if !bytes.Equal(dec, []byte(in)) {
			t.Fatalf("round-trip mismatch for %q: got %q", in, dec)
		}
	}
}

func TestHuffmanSkewedDistributionCompresses(t *testing.T) {
	input := bytes.Repeat([]byte{'a'}, 1000)
	input = append(input, 'b')

	out, err := (Huffman{}).Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) >= len(input) {
		t.Fatalf("expected compression on skewed input, got %d >= %d", len(out), len(input))
	}
}

// TestHuffmanLargeRandomishRoundTrip exercises a near-uniform distribution
// over the full byte range, the same shape as fse_test.go's
// TestFSELargeRandomish. A 257-symbol alphabet (256 byte values + EOF) this
// flat routinely yields Huffman codes past 8 bits, which a fixed-width
// code-bits field in the header would silently truncate.
func TestHuffmanLargeRandomishRoundTrip(t *testing.T) {
	var input []byte
	x := uint32(12345)
	for i := 0; i < 5000; i++ {
		x = x*1664525 + 1013904223
		input = append(input, byte(x>>24))
	}

	enc, err := (Huffman{}).Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := (Huffman{}).Decompress(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, input) {
		t.Fatal("round-trip mismatch on large near-uniform input")
	}
}
