// Package sax defines the pull-iterator event source the Counter and
// Flattener both consume, replacing the original SAX-callback design per
// spec.md §9 REDESIGN FLAGS ("Coroutines / SAX callbacks"): events are
// pulled one at a time out of a parser state machine instead of being
// pushed into mutable callback state.
package sax

import "github.com/wisentfmt/wisent/format"

// Kind discriminates the shape of one Event.
type Kind int

const (
	ObjectStart Kind = iota
	ObjectEnd
	ArrayStart
	ArrayEnd
	Key
	Value
)

// Event is one step of the document walk. Counter and Flattener dispatch on
// Kind, then on a Value event's Variant.
type Event struct {
	Kind    Kind
	Key     string        // set for Kind == Key
	Variant format.Variant // set for Kind == Value
	Bool    bool
	Int     int64
	Float   float64
	Str     string
}

// Source is a pull iterator: each call to Next returns the next Event in
// document order, or io.EOF when the document is exhausted.
type Source interface {
	// Next returns the next event. It returns (Event{}, io.EOF) once the
	// document is exhausted.
	Next() (Event, error)
}
