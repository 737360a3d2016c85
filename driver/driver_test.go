package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wisentfmt/wisent/image"
	"github.com/wisentfmt/wisent/segment"
)

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProducesValidImage(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceFile(t, dir, "doc.json", `{"a": 1, "b": [true, false, true]}`)

	reg := segment.NewRegistry()
	opts, err := NewOptions()
	if err != nil {
		t.Fatal(err)
	}

	handle, warnings, err := Load(context.Background(), src, "seg-a", dir, opts, nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if err := image.Validate(handle.Image); err != nil {
		t.Fatalf("expected valid image, got %v", err)
	}
	if handle.Image.Header.ExpressionCount == 0 {
		t.Fatal("expected nonzero expression count")
	}
}

func TestLoadReturnsCachedHandleWithoutForceReload(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceFile(t, dir, "doc.json", `{"a": 1}`)

	reg := segment.NewRegistry()
	opts, err := NewOptions()
	if err != nil {
		t.Fatal(err)
	}

	first, _, err := Load(context.Background(), src, "seg-b", dir, opts, nil, reg)
	if err != nil {
		t.Fatal(err)
	}

	// Overwrite the source on disk; without ForceReload, Load must return
	// the already-serialized segment rather than re-parsing it.
	writeSourceFile(t, dir, "doc.json", `{"a": 1, "b": 2, "c": 3}`)

	second, _, err := Load(context.Background(), src, "seg-b", dir, opts, nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	if second.Image.Header.ExpressionCount != first.Image.Header.ExpressionCount {
		t.Fatalf("expected cached handle (ExpressionCount %d), got %d",
			first.Image.Header.ExpressionCount, second.Image.Header.ExpressionCount)
	}
}

func TestLoadForceReloadReserializes(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceFile(t, dir, "doc.json", `{"a": 1}`)

	reg := segment.NewRegistry()
	opts, err := NewOptions()
	if err != nil {
		t.Fatal(err)
	}

	first, _, err := Load(context.Background(), src, "seg-c", dir, opts, nil, reg)
	if err != nil {
		t.Fatal(err)
	}

	writeSourceFile(t, dir, "doc.json", `{"a": 1, "b": 2, "c": 3}`)

	reloadOpts, err := NewOptions(ForceReload())
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := Load(context.Background(), src, "seg-c", dir, reloadOpts, nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	if second.Image.Header.ExpressionCount == first.Image.Header.ExpressionCount {
		t.Fatal("expected ForceReload to produce a different expression count")
	}
}

func TestFreeErasesSegment(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceFile(t, dir, "doc.json", `{"a": 1}`)

	reg := segment.NewRegistry()
	opts, err := NewOptions()
	if err != nil {
		t.Fatal(err)
	}

	handle, _, err := Load(context.Background(), src, "seg-d", dir, opts, nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	if err := handle.Free(); err != nil {
		t.Fatal(err)
	}

	p := segment.NewInProcess(reg)
	if p.Exists("seg-d") {
		t.Fatal("expected segment to be erased")
	}
}
