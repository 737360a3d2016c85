package sax

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/format"
)

// CSVSource adapts an encoding/csv.Reader into a sax.Source emitting a
// Table wrapper: an object whose keys are column names and whose values
// are arrays of per-row values, each column's element type inferred from
// its values (spec.md §4.5's out-of-scope CSV parsing / column-type
// inference, stubbed here as the minimal real collaborator needed to
// exercise the CSV-leaf-expansion path end to end).
type CSVSource struct {
	events []Event
	pos    int
}

// NewCSV reads all of r eagerly (first row is the header) and precomputes
// the Table's event sequence.
func NewCSV(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCsvOpen, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: csv has no header row", errs.ErrCsvOpen)
	}

	header := rows[0]
	data := rows[1:]

	events := []Event{{Kind: ObjectStart}}
	for col, name := range header {
		column := make([]string, len(data))
		for i, row := range data {
			if col < len(row) {
				column[i] = row[col]
			}
		}

		events = append(events, Event{Kind: Key, Key: name})
		events = append(events, Event{Kind: ArrayStart})
		for _, cell := range column {
			events = append(events, inferCell(cell))
		}
		events = append(events, Event{Kind: ArrayEnd})
	}
	events = append(events, Event{Kind: ObjectEnd})

	return &CSVSource{events: events}, nil
}

func inferCell(cell string) Event {
	if iv, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return Event{Kind: Value, Variant: format.Long, Int: iv}
	}
	if fv, err := strconv.ParseFloat(cell, 64); err == nil {
		return Event{Kind: Value, Variant: format.Double, Float: fv}
	}
	return Event{Kind: Value, Variant: format.String, Str: cell}
}

// Next returns the next precomputed Event, or io.EOF once exhausted.
func (s *CSVSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

// NumColumns reports how many columns the Table wraps, for callers that
// need it before walking (e.g. the Counter's KEY_VALUE_PAIR_PER_COLUMNMETADATA
// bookkeeping).
func (s *CSVSource) NumColumns() int {
	count := 0
	for _, e := range s.events {
		if e.Kind == Key {
			count++
		}
	}
	return count
}
