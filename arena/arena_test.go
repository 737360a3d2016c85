package arena

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wisentfmt/wisent/errs"
)

func TestAllocTransitionsToLoaded(t *testing.T) {
	a := New()
	if a.Loaded() {
		t.Fatal("expected Empty before Alloc")
	}

	buf, err := a.Alloc(64)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(buf))
	}
	if !a.Loaded() {
		t.Fatal("expected Loaded after Alloc")
	}
}

func TestDoubleAllocFails(t *testing.T) {
	a := New()
	if _, err := a.Alloc(16); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Alloc(16); !errors.Is(err, errs.ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed, got %v", err)
	}
}

func TestReallocPreservesPrefix(t *testing.T) {
	a := New()
	buf, err := a.Alloc(8)
	if err != nil {
		t.Fatal(err)
	}
	copy(buf, []byte("abcdefgh"))

	grown, err := a.Realloc(256)
	if err != nil {
		t.Fatal(err)
	}
	if len(grown) != 256 {
		t.Fatalf("expected 256 bytes, got %d", len(grown))
	}
	if !bytes.Equal(grown[:8], []byte("abcdefgh")) {
		t.Fatalf("expected prefix preserved, got %q", grown[:8])
	}
}

func TestReallocShrink(t *testing.T) {
	a := New()
	if _, err := a.Alloc(100); err != nil {
		t.Fatal(err)
	}
	shrunk, err := a.Realloc(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(shrunk) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(shrunk))
	}
}

func TestReallocWithoutAllocFails(t *testing.T) {
	a := New()
	if _, err := a.Realloc(10); !errors.Is(err, errs.ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed, got %v", err)
	}
}

func TestFreeResetsToEmpty(t *testing.T) {
	a := New()
	if _, err := a.Alloc(32); err != nil {
		t.Fatal(err)
	}
	a.Free()
	if a.Loaded() {
		t.Fatal("expected Empty after Free")
	}
	if a.Base() != nil {
		t.Fatal("expected nil Base after Free")
	}
	if a.Size() != 0 {
		t.Fatal("expected zero Size after Free")
	}
}

func TestFreeIsIdempotentBeforeAlloc(t *testing.T) {
	a := New()
	a.Free()
	a.Free()
	if a.Loaded() {
		t.Fatal("expected Empty")
	}
}
