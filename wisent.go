// Package wisent converts hierarchical, schema-flexible documents —
// JSON-like trees whose leaves may reference tabular CSV payloads — into a
// single contiguous, self-describing binary image suitable for placement
// in a shared-memory segment and consumption by multiple processes
// without further parsing.
//
// # Core features
//
//   - A region-offset Image layout (argument values, argument types,
//     sub-expressions, dictionary, strings) in one contiguous allocation.
//   - Per-span RLE and dictionary encoding, bit-packing of narrow scalar
//     types.
//   - Per-column compression pipelines (RLE, LZ77, FSE, Huffman, Delta,
//     custom) for CSV columns expanded under a configured root directory.
//   - Lazy, offset-based random access into an already-built Image via
//     lazyview.Cursor: walk subtrees, materialize spans, index into packed
//     runs without rebuilding intermediate structures.
//
// # Basic usage
//
//	reg := segment.NewRegistry()
//	opts, _ := wisent.NewOptions(wisent.DictEncodeStrings())
//	handle, warnings, err := wisent.Load(ctx, "doc.json", "my-segment", "./csv", opts, nil, reg)
//	if err != nil {
//	    // handle err
//	}
//	root, err := lazyview.Root(handle.Image)
//
// # Package structure
//
// This file provides convenient top-level re-exports around the driver
// package's entry point. For advanced usage — custom segment providers,
// per-column pipelines, direct Counter/Flattener control — use the
// counter, flatten, driver, and segment packages directly.
package wisent

import (
	"context"

	"github.com/wisentfmt/wisent/driver"
	"github.com/wisentfmt/wisent/pipeline"
	"github.com/wisentfmt/wisent/segment"
)

// Options are the driver-level switches from spec.md §6.4.
type Options = driver.Options

// Option configures an Options value.
type Option = driver.Option

// ImageHandle is the live result of a Load.
type ImageHandle = driver.ImageHandle

// NewOptions builds an Options value from the given Option values.
func NewOptions(opts ...Option) (Options, error) {
	return driver.NewOptions(opts...)
}

// DisableRLE turns off RLE framing (spec.md §6.4).
func DisableRLE() Option { return driver.DisableRLE() }

// DisableCSV keeps ".csv"-suffixed leaves as plain strings (spec.md §6.4).
func DisableCSV() Option { return driver.DisableCSV() }

// ForceReload discards and re-serializes an already-loaded segment
// (spec.md §6.4).
func ForceReload() Option { return driver.ForceReload() }

// DictEncodeStrings interns strings globally (spec.md §6.4).
func DictEncodeStrings() Option { return driver.DictEncodeStrings() }

// DictEncodeNumeric enables per-span dictionary encoding for numeric spans
// (spec.md §6.4).
func DictEncodeNumeric() Option { return driver.DictEncodeNumeric() }

// Load parses sourcePath, expands CSV columns under csvRoot, and attaches
// the resulting Image to segmentName through registry. See
// driver.Load for the full contract.
func Load(
	ctx context.Context,
	sourcePath, segmentName, csvRoot string,
	opts Options,
	pipelines map[string][]pipeline.Entry,
	registry *segment.Registry,
) (ImageHandle, []string, error) {
	return driver.Load(ctx, sourcePath, segmentName, csvRoot, opts, pipelines, registry)
}
