package codec

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
)

// customByName resolves the backend for pipeline tag "custom:<name>"
// (SPEC_FULL.md §4.2). An empty name defaults to the portable zstd backend.
func customByName(name string) (Codec, error) {
	switch name {
	case "", "zstd":
		return zstdCustom{}, nil
	case "gozstd":
		return gozstdCustom{}, nil
	case "lz4":
		return lz4Custom{}, nil
	default:
		return nil, fmt.Errorf("%w: custom:%s", errs.ErrUnknownCodec, name)
	}
}
