package driver

import (
	"github.com/wisentfmt/wisent/counter"
	"github.com/wisentfmt/wisent/internal/options"
)

// Options are the driver-level switches from spec.md §6.4. Options embeds
// counter.Options directly since four of the five driver options
// (disable_rle, disable_csv, dict_encode_strings, dict_encode_numeric;
// disable_csv is consumed by counter.ExpandCSV) are exactly the switches
// Counter and Flattener already consult — Load passes the embedded
// opts.Options through unchanged rather than re-declaring those four fields
// under new names.
type Options struct {
	counter.Options

	// ForceReload discards and re-serializes a segment that is already
	// loaded, rather than returning the existing handle.
	ForceReload bool
}

// Option configures an Options value, following the teacher's
// internal/options generic functional-option pattern (options.New,
// options.Apply) — see blob/numeric_encoder_config.go for the pattern this
// mirrors.
type Option = options.Option[*Options]

// NewOptions builds an Options value by applying opts in order.
func NewOptions(opts ...Option) (Options, error) {
	var o Options
	if err := options.Apply(&o, opts...); err != nil {
		return Options{}, err
	}
	return o, nil
}

// DisableRLE turns off RLE framing: type bytes are written inline even for
// long runs (spec.md §6.4).
func DisableRLE() Option {
	return options.NoError[*Options](func(o *Options) { o.Options.DisableRLE = true })
}

// DisableCSV keeps String leaves ending ".csv" as plain strings instead of
// expanding them (spec.md §6.4).
func DisableCSV() Option {
	return options.NoError[*Options](func(o *Options) { o.Options.DisableCSV = true })
}

// ForceReload discards an already-loaded segment and re-serializes it
// (spec.md §6.4).
func ForceReload() Option {
	return options.NoError[*Options](func(o *Options) { o.ForceReload = true })
}

// DictEncodeStrings interns strings globally so equal strings share one
// string-region offset (spec.md §6.4).
func DictEncodeStrings() Option {
	return options.NoError[*Options](func(o *Options) { o.Options.DictEncodeStrings = true })
}

// DictEncodeNumeric enables per-span dictionary encoding for INT64/DOUBLE
// spans meeting the §4.6 thresholds (spec.md §6.4).
func DictEncodeNumeric() Option {
	return options.NoError[*Options](func(o *Options) { o.Options.DictEncodeNumeric = true })
}
