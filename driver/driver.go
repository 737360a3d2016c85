// Package driver implements the SerializerDriver (spec.md §4.8, §6.2): the
// single synchronous entry point that sequences source parsing, CSV-column
// expansion, Arena sizing, and flattening into one Image, then places it in
// a named shared-memory segment for attach by other processes.
package driver

import (
	"context"
	"fmt"
	"os"

	"github.com/wisentfmt/wisent/arena"
	"github.com/wisentfmt/wisent/counter"
	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/flatten"
	"github.com/wisentfmt/wisent/image"
	"github.com/wisentfmt/wisent/pipeline"
	"github.com/wisentfmt/wisent/sax"
	"github.com/wisentfmt/wisent/segment"
)

// Load parses sourcePath, expands any ".csv"-suffixed leaves found under
// csvRoot, sizes and serializes the result into a single Image, and
// attaches it to segmentName through registry's Provider. On a segment
// that is already loaded, Load returns the existing handle unchanged
// unless opts.ForceReload is set (spec.md §6.4).
//
// ctx is checked at each blocking step — source open/read, CSV expansion,
// Arena allocation — so a caller can abandon a Load in progress; none of
// these are genuinely asynchronous, but threading ctx through matches how
// the rest of the Go ecosystem represents cancellable I/O (spec.md §5's
// suspension points).
func Load(
	ctx context.Context,
	sourcePath, segmentName, csvRoot string,
	opts Options,
	pipelines map[string][]pipeline.Entry,
	registry *segment.Registry,
) (ImageHandle, []string, error) {
	if err := ctx.Err(); err != nil {
		return ImageHandle{}, nil, err
	}

	provider := segment.NewInProcess(registry)

	if !opts.ForceReload && provider.Exists(segmentName) && provider.IsLoaded(segmentName) {
		buf, err := provider.Load(segmentName)
		if err != nil {
			return ImageHandle{}, nil, err
		}
		img, err := image.View(buf)
		if err != nil {
			return ImageHandle{}, nil, err
		}
		return ImageHandle{Image: img, SegmentName: segmentName, provider: provider}, nil, nil
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return ImageHandle{}, nil, fmt.Errorf("%w: %v", errs.ErrIo, err)
	}
	defer f.Close()

	root, err := counter.Parse(sax.NewJSON(f))
	if err != nil {
		return ImageHandle{}, nil, err
	}

	if err := ctx.Err(); err != nil {
		return ImageHandle{}, nil, err
	}

	root, warnings, err := counter.ExpandCSV(root, csvRoot, opts.Options, pipelines)
	if err != nil {
		return ImageHandle{}, warnings, err
	}

	if err := ctx.Err(); err != nil {
		return ImageHandle{}, warnings, err
	}

	a := arena.New()
	res, err := flatten.Write(root, opts.Options, a)
	if err != nil {
		return ImageHandle{}, warnings, err
	}

	if opts.ForceReload && provider.Exists(segmentName) {
		if err := provider.Free(segmentName); err != nil {
			a.Free()
			return ImageHandle{}, warnings, err
		}
	}

	seg, err := provider.Malloc(segmentName, len(res.Image.Bytes))
	if err != nil {
		a.Free()
		return ImageHandle{}, warnings, err
	}
	copy(seg, res.Image.Bytes)
	a.Free()

	img, err := image.View(seg)
	if err != nil {
		return ImageHandle{}, warnings, err
	}

	return ImageHandle{Image: img, SegmentName: segmentName, provider: provider}, append(warnings, res.Warnings...), nil
}
