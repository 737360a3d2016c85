// Package errs defines the sentinel errors shared across the wisent module,
// following the taxonomy in spec.md §7. Call sites wrap these with
// fmt.Errorf("%w: ...", errs.ErrXxx, ...) to attach diagnostic context;
// callers compare with errors.Is.
package errs

import "errors"

var (
	// Parse: source document is not well-formed.
	ErrParse = errors.New("wisent: source document is not well-formed")

	// Io: source stream unreadable, CSV open failed.
	ErrIo          = errors.New("wisent: source stream unreadable")
	ErrCsvOpen     = errors.New("wisent: csv open failed")
	ErrSegmentGone = errors.New("wisent: shared-memory segment not loaded")

	// AllocationFailed: Arena could not grow.
	ErrAllocationFailed = errors.New("wisent: arena allocation failed")
	ErrDoubleFree       = errors.New("wisent: arena double free on live memory")

	// UnknownCodec(name), UnknownLeafType, UnsupportedPhysicalType.
	ErrUnknownCodec            = errors.New("wisent: unknown codec")
	ErrUnknownLeafType         = errors.New("wisent: unknown leaf type")
	ErrUnsupportedPhysicalType = errors.New("wisent: unsupported physical type")

	// Codec-internal errors.
	ErrEmptyInput    = errors.New("wisent: empty input")
	ErrCorrupt       = errors.New("wisent: corrupt codec input")
	ErrTruncated     = errors.New("wisent: truncated codec input")
	ErrUseRLEInstead = errors.New("wisent: single-symbol input, use RLE instead")

	// Reader-side errors.
	ErrTypeMismatch = errors.New("wisent: type mismatch")
	ErrOutOfRange   = errors.New("wisent: index out of range")

	// Structural validation (spec.md §8 properties 4-9).
	ErrInvalidRange       = errors.New("wisent: argument/type range out of bounds")
	ErrOverlappingRLE     = errors.New("wisent: overlapping RLE run")
	ErrInvalidDictOffset  = errors.New("wisent: dictionary offset out of range")
	ErrInvalidStringBytes = errors.New("wisent: string region shorter than string_bytes_written")
	ErrInvalidHeaderSize  = errors.New("wisent: invalid header size")
	ErrRelocated          = errors.New("wisent: image base address changed since serialization")
)
