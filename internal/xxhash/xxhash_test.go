package xxhash

import "testing"

func TestStringDeterministic(t *testing.T) {
	if String("abc") != String("abc") {
		t.Fatal("expected deterministic hash")
	}
	if String("abc") == String("abd") {
		t.Fatal("expected different hashes for different strings")
	}
}

func TestUint64MatchesBytes(t *testing.T) {
	v := uint64(0x0102030405060708)
	if Uint64(v) != Bytes([]byte{8, 7, 6, 5, 4, 3, 2, 1}) {
		t.Fatal("Uint64 should hash the little-endian byte representation")
	}
}
