package counter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/pipeline"
	"github.com/wisentfmt/wisent/sax"
)

func writeTempCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandCSVPlainColumn(t *testing.T) {
	dir := t.TempDir()
	writeTempCSV(t, dir, "data.csv", "id,name\n1,alice\n2,bob\n")

	root, err := Parse(sax.NewJSON(strings.NewReader(`{"file": "data.csv"}`)))
	if err != nil {
		t.Fatal(err)
	}

	expanded, warnings, err := ExpandCSV(root, dir, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings for an uncompressed column, got %v", warnings)
	}

	table := expanded.Children[0].Children[0]
	if table.Kind != NodeObject || len(table.Children) != 2 {
		t.Fatalf("expected a 2-column table, got %+v", table)
	}
}

func TestExpandCSVDisabled(t *testing.T) {
	root, err := Parse(sax.NewJSON(strings.NewReader(`{"file": "data.csv"}`)))
	if err != nil {
		t.Fatal(err)
	}

	expanded, _, err := ExpandCSV(root, "/nonexistent", Options{DisableCSV: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	leaf := expanded.Children[0].Children[0]
	if leaf.Kind != NodeLeaf || leaf.Variant != format.String {
		t.Fatalf("expected string left untouched when CSV disabled, got %+v", leaf)
	}
}

func TestExpandCSVWithPipelineCompressesColumn(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < 50; i++ {
		sb.WriteString("42\n")
	}
	writeTempCSV(t, dir, "data.csv", sb.String())

	root, err := Parse(sax.NewJSON(strings.NewReader(`{"file": "data.csv"}`)))
	if err != nil {
		t.Fatal(err)
	}

	pipelines := map[string][]pipeline.Entry{"n": {{Tag: format.CodecRLE}}}
	expanded, warnings, err := ExpandCSV(root, dir, Options{}, pipelines)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning describing the compression, got %v", warnings)
	}

	table := expanded.Children[0].Children[0]
	col := table.Children[0]
	if col.Head != "n" {
		t.Fatalf("expected column 'n', got %q", col.Head)
	}
	meta := col.Children[0]
	if meta.Kind != NodeObject || len(meta.Children) != KeyValuePairsPerColumnMetaData {
		t.Fatalf("expected %d-field ColumnMetaData, got %d fields", KeyValuePairsPerColumnMetaData, len(meta.Children))
	}
}
