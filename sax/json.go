package sax

import (
	"encoding/json"
	"io"

	"github.com/wisentfmt/wisent/format"
)

type containerKind int

const (
	containerObject containerKind = iota
	containerArray
)

type frame struct {
	kind      containerKind
	expectKey bool
}

// JSONSource adapts encoding/json.Decoder.Token into a sax.Source, one of
// the two minimal real collaborators needed to exercise the Counter and
// Flattener end to end (spec.md §4.5's out-of-scope JSON tokenization,
// stubbed here rather than left unimplemented).
type JSONSource struct {
	dec   *json.Decoder
	stack []frame
}

// NewJSON wraps r as a pull source of Events in document order. JSON
// numbers are reported as Variant.Long when they parse as an integer and
// Variant.Double otherwise.
func NewJSON(r io.Reader) *JSONSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &JSONSource{dec: dec}
}

// Next returns the next Event, or io.EOF once the document is exhausted.
func (s *JSONSource) Next() (Event, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Event{}, err
	}

	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			s.stack = append(s.stack, frame{kind: containerObject, expectKey: true})
			return Event{Kind: ObjectStart}, nil
		case '}':
			s.pop()
			return Event{Kind: ObjectEnd}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: containerArray})
			return Event{Kind: ArrayStart}, nil
		case ']':
			s.pop()
			return Event{Kind: ArrayEnd}, nil
		}
	}

	if len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.kind == containerObject {
			if top.expectKey {
				top.expectKey = false
				key, _ := tok.(string)
				return Event{Kind: Key, Key: key}, nil
			}
			top.expectKey = true
		}
	}

	return valueEvent(tok), nil
}

func (s *JSONSource) pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	// A closed container inside an object was that key's value.
	if len(s.stack) > 0 && s.stack[len(s.stack)-1].kind == containerObject {
		s.stack[len(s.stack)-1].expectKey = true
	}
}

func valueEvent(tok any) Event {
	switch v := tok.(type) {
	case bool:
		return Event{Kind: Value, Variant: format.Bool, Bool: v}
	case json.Number:
		if iv, err := v.Int64(); err == nil {
			return Event{Kind: Value, Variant: format.Long, Int: iv}
		}
		fv, _ := v.Float64()
		return Event{Kind: Value, Variant: format.Double, Float: fv}
	case string:
		return Event{Kind: Value, Variant: format.String, Str: v}
	case nil:
		return Event{Kind: Value, Variant: format.Symbol, Str: "null"}
	default:
		return Event{Kind: Value, Variant: format.Symbol, Str: ""}
	}
}
