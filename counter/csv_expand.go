package counter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wisentfmt/wisent/column"
	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/pipeline"
	"github.com/wisentfmt/wisent/sax"
)

// KeyValuePairsPerColumnMetaData is spec.md §4.5's
// KEY_VALUE_PAIR_PER_COLUMNMETADATA: the seven fields a compressed column's
// ColumnMetaData subtree carries.
const KeyValuePairsPerColumnMetaData = 7

// ExpressionCountPerPageHeader is spec.md §4.5's
// EXPRESSION_COUNT_PER_PAGE_HEADER: the eleven fields a compressed column's
// per-page subtree carries.
const ExpressionCountPerPageHeader = 11

// ExpandCSV walks root replacing every String leaf whose value ends ".csv"
// with the parsed contents of that file under csvRoot: a plain Table
// subtree for columns with no configured pipeline, or a ColumnMetaData
// subtree (spec.md §3.4 lifecycle: built by ColumnEncoder, mutated by
// Pipeline) for columns named in pipelines. Disabled entirely when
// opts.DisableCSV is set, per spec.md §6.4.
func ExpandCSV(root *Node, csvRoot string, opts Options, pipelines map[string][]pipeline.Entry) (*Node, []string, error) {
	if opts.DisableCSV {
		return root, nil, nil
	}

	var warnings []string
	out, err := expandNode(root, csvRoot, pipelines, &warnings)
	if err != nil {
		return nil, warnings, err
	}
	return out, warnings, nil
}

func expandNode(n *Node, csvRoot string, pipelines map[string][]pipeline.Entry, warnings *[]string) (*Node, error) {
	switch n.Kind {
	case NodeLeaf:
		if n.Variant == format.String && strings.HasSuffix(n.Str, ".csv") {
			return expandCSVFile(filepath.Join(csvRoot, n.Str), pipelines, warnings)
		}
		return n, nil

	case NodeKey:
		child, err := expandNode(n.Children[0], csvRoot, pipelines, warnings)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeKey, Head: n.Head, Children: []*Node{child}}, nil

	case NodeObject, NodeArray:
		children := make([]*Node, len(n.Children))
		for i, c := range n.Children {
			expanded, err := expandNode(c, csvRoot, pipelines, warnings)
			if err != nil {
				return nil, err
			}
			children[i] = expanded
		}
		return &Node{Kind: n.Kind, Children: children}, nil

	default:
		return n, nil
	}
}

func expandCSVFile(path string, pipelines map[string][]pipeline.Entry, warnings *[]string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCsvOpen, err)
	}
	defer f.Close()

	src, err := sax.NewCSV(f)
	if err != nil {
		return nil, err
	}

	table, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCsvOpen, err)
	}

	// table is a NodeObject of NodeKey{column name -> NodeArray of leaves}.
	cols := make([]*Node, 0, len(table.Children))
	for _, keyNode := range table.Children {
		colName := keyNode.Head
		values := keyNode.Children[0]

		entries, hasPipeline := pipelines[colName]
		if !hasPipeline {
			cols = append(cols, keyNode)
			continue
		}

		meta, err := compressColumn(colName, values, entries)
		if err != nil {
			return nil, err
		}
		*warnings = append(*warnings, fmt.Sprintf("column %s: compressed %d bytes to %d bytes", colName, meta.TotalUncompressed, meta.TotalCompressed))

		cols = append(cols, &Node{Kind: NodeKey, Head: colName, Children: []*Node{metaToNode(meta)}})
	}

	return &Node{Kind: NodeObject, Children: cols}, nil
}

// compressColumn runs the ColumnEncoder and Pipeline over one CSV column's
// already-parsed leaf values (spec.md §4.5: "For columns named in the
// compression pipeline map, run ColumnEncoder immediately").
func compressColumn(name string, values *Node, entries []pipeline.Entry) (*column.MetaData, error) {
	pl, err := pipeline.New(entries)
	if err != nil {
		return nil, err
	}

	var meta *column.MetaData
	var pages [][]byte

	switch inferVariant(values.Children) {
	case format.Long:
		ints := make([]int64, len(values.Children))
		for i, v := range values.Children {
			ints[i] = v.Int
		}
		meta, pages, err = column.EncodeInt64(name, ints)
	case format.Double:
		doubles := make([]float64, len(values.Children))
		for i, v := range values.Children {
			doubles[i] = v.Float
		}
		meta, pages, err = column.EncodeDouble(name, doubles)
	default:
		bytesCols := make([][]byte, len(values.Children))
		for i, v := range values.Children {
			bytesCols[i] = []byte(v.Str)
		}
		meta, pages, err = column.EncodeByteArray(name, bytesCols)
	}
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		meta.CompressionPipeline = append(meta.CompressionPipeline, e.Tag)
	}

	for i, page := range pages {
		compressed, err := pl.Compress(page)
		if err != nil {
			return nil, fmt.Errorf("column %s page %d: %w", name, i, err)
		}
		meta.Pages[i].CompressedSize = len(compressed)
		meta.Pages[i].ByteArray = compressed
		meta.TotalCompressed += len(compressed)
	}

	return meta, nil
}

func inferVariant(leaves []*Node) format.Variant {
	if len(leaves) == 0 {
		return format.String
	}
	return leaves[0].Variant
}

// metaToNode lowers a ColumnMetaData into the expression subtree spec.md
// §3.4's lifecycle note describes: "column/ pages / PageHeader(...)".
func metaToNode(meta *column.MetaData) *Node {
	pageNodes := make([]*Node, len(meta.Pages))
	for i, p := range meta.Pages {
		pageNodes[i] = pageHeaderNode(p)
	}

	return &Node{
		Kind: NodeObject,
		Children: []*Node{
			keyLeaf("column_name", format.String, meta.ColumnName),
			keyLeafInt("total_values", int64(meta.TotalValues)),
			keyLeafInt("total_uncompressed", int64(meta.TotalUncompressed)),
			keyLeafInt("total_compressed", int64(meta.TotalCompressed)),
			keyLeafInt("physical_type", int64(meta.PhysicalType)),
			keyLeafInt("encoding_type", int64(meta.EncodingType)),
			{Kind: NodeKey, Head: "pages", Children: []*Node{{Kind: NodeArray, Children: pageNodes}}},
		},
	}
}

func pageHeaderNode(p *column.PageHeader) *Node {
	return &Node{
		Kind: NodeObject,
		Children: []*Node{
			keyLeafInt("page_type", int64(p.PageType)),
			keyLeafInt("num_values", int64(p.NumValues)),
			keyLeafInt("first_row_index", p.FirstRowIndex),
			keyLeafInt("uncompressed_size", int64(p.UncompressedSize)),
			keyLeafInt("compressed_size", int64(p.CompressedSize)),
			keyLeafInt("null_count", p.Stats.NullCount),
			keyLeafInt("distinct_count", p.Stats.DistinctCount),
			keyLeafFloat("min", statMin(p)),
			keyLeafFloat("max", statMax(p)),
			keyLeafInt("is_dict_page", boolToInt(p.IsDictPage)),
			{Kind: NodeKey, Head: "byte_array", Children: []*Node{{Kind: NodeLeaf, Variant: format.ByteArray, Str: string(p.ByteArray)}}},
		},
	}
}

func statMin(p *column.PageHeader) float64 {
	if p.Stats.MinDouble != 0 {
		return p.Stats.MinDouble
	}
	return float64(p.Stats.MinInt)
}

func statMax(p *column.PageHeader) float64 {
	if p.Stats.MaxDouble != 0 {
		return p.Stats.MaxDouble
	}
	return float64(p.Stats.MaxInt)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func keyLeaf(key string, variant format.Variant, s string) *Node {
	return &Node{Kind: NodeKey, Head: key, Children: []*Node{{Kind: NodeLeaf, Variant: variant, Str: s}}}
}

func keyLeafInt(key string, v int64) *Node {
	return &Node{Kind: NodeKey, Head: key, Children: []*Node{{Kind: NodeLeaf, Variant: format.Long, Int: v}}}
}

func keyLeafFloat(key string, v float64) *Node {
	return &Node{Kind: NodeKey, Head: key, Children: []*Node{{Kind: NodeLeaf, Variant: format.Double, Float: v}}}
}
