package sax

import (
	"io"
	"strings"
	"testing"

	"github.com/wisentfmt/wisent/format"
)

func drain(t *testing.T, s Source) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJSONSourceObjectWithArray(t *testing.T) {
	// S1 from spec.md §8: {"a": 1, "b": [true, false, true]}
	src := NewJSON(strings.NewReader(`{"a": 1, "b": [true, false, true]}`))
	events := drain(t, src)

	if events[0].Kind != ObjectStart {
		t.Fatalf("expected ObjectStart first, got %+v", events[0])
	}
	if events[1].Kind != Key || events[1].Key != "a" {
		t.Fatalf("expected key 'a', got %+v", events[1])
	}
	if events[2].Kind != Value || events[2].Variant != format.Long || events[2].Int != 1 {
		t.Fatalf("expected int value 1, got %+v", events[2])
	}
	if events[3].Kind != Key || events[3].Key != "b" {
		t.Fatalf("expected key 'b', got %+v", events[3])
	}
	if events[4].Kind != ArrayStart {
		t.Fatalf("expected ArrayStart, got %+v", events[4])
	}
	for i, want := range []bool{true, false, true} {
		ev := events[5+i]
		if ev.Kind != Value || ev.Variant != format.Bool || ev.Bool != want {
			t.Fatalf("expected bool %v at index %d, got %+v", want, i, ev)
		}
	}
	if events[8].Kind != ArrayEnd {
		t.Fatalf("expected ArrayEnd, got %+v", events[8])
	}
	if events[9].Kind != ObjectEnd {
		t.Fatalf("expected ObjectEnd, got %+v", events[9])
	}
}

func TestJSONSourceFloat(t *testing.T) {
	src := NewJSON(strings.NewReader(`{"x": 1.5}`))
	events := drain(t, src)
	if events[2].Variant != format.Double || events[2].Float != 1.5 {
		t.Fatalf("expected double 1.5, got %+v", events[2])
	}
}

func TestCSVSourceInfersColumnTypes(t *testing.T) {
	src, err := NewCSV(strings.NewReader("id,name,score\n1,alice,9.5\n2,bob,8.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if src.NumColumns() != 3 {
		t.Fatalf("expected 3 columns, got %d", src.NumColumns())
	}

	events := drain(t, src)
	if events[0].Kind != ObjectStart {
		t.Fatal("expected ObjectStart wrapper")
	}
	if events[1].Kind != Key || events[1].Key != "id" {
		t.Fatalf("expected key 'id', got %+v", events[1])
	}
	if events[2].Kind != ArrayStart {
		t.Fatal("expected ArrayStart for id column")
	}
	if events[3].Variant != format.Long || events[3].Int != 1 {
		t.Fatalf("expected inferred int64 for id column, got %+v", events[3])
	}
}

func TestCSVSourceEmptyFails(t *testing.T) {
	if _, err := NewCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty csv")
	}
}
