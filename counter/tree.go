// Package counter implements the two-pass serializer's first pass
// (spec.md §4.5): given a sax.Source, it parses the document into an
// in-memory expression tree once and sizes every region exactly so the
// driver can size-and-alloc the Arena before the Flattener writes it.
//
// Parsing the sax.Source into a Node tree up front — rather than re-asking
// a streaming source twice — is what lets Counter and flatten.Flattener
// walk the exact same structure: the source document itself is read once,
// the two passes are two tree walks.
package counter

import (
	"fmt"

	"github.com/wisentfmt/wisent/format"
	"github.com/wisentfmt/wisent/sax"
)

// NodeKind discriminates the shape of one tree Node.
type NodeKind int

const (
	NodeObject NodeKind = iota
	NodeArray
	NodeKey // single-child wrapper: head = key name, child = the value
	NodeLeaf
)

// Node is one vertex of the parsed expression tree. Object children are
// always NodeKey wrappers; Array children are values directly.
type Node struct {
	Kind     NodeKind
	Head     string // key name for NodeKey
	Children []*Node

	// Leaf payload, valid when Kind == NodeLeaf.
	Variant format.Variant
	Bool    bool
	Int     int64
	Float   float64
	Str     string
}

// EffectiveVariant returns the Variant this node occupies in the
// argument-value array: a leaf's own Variant, or format.Expression for any
// container (Object, Array, or Key wrapper), since each of those writes a
// single Expression-typed argument slot in its parent frame.
func (n *Node) EffectiveVariant() format.Variant {
	if n.Kind == NodeLeaf {
		return n.Variant
	}
	return format.Expression
}

// Parse reads src to exhaustion and returns the root Node.
func Parse(src sax.Source) (*Node, error) {
	ev, err := src.Next()
	if err != nil {
		return nil, err
	}
	node, err := parseValue(src, ev)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func parseValue(src sax.Source, ev sax.Event) (*Node, error) {
	switch ev.Kind {
	case sax.ObjectStart:
		node := &Node{Kind: NodeObject}
		for {
			next, err := src.Next()
			if err != nil {
				return nil, err
			}
			if next.Kind == sax.ObjectEnd {
				return node, nil
			}
			if next.Kind != sax.Key {
				return nil, fmt.Errorf("expected key or object end, got event kind %d", next.Kind)
			}

			valEv, err := src.Next()
			if err != nil {
				return nil, err
			}
			value, err := parseValue(src, valEv)
			if err != nil {
				return nil, err
			}

			node.Children = append(node.Children, &Node{
				Kind:     NodeKey,
				Head:     next.Key,
				Children: []*Node{value},
			})
		}

	case sax.ArrayStart:
		node := &Node{Kind: NodeArray}
		for {
			next, err := src.Next()
			if err != nil {
				return nil, err
			}
			if next.Kind == sax.ArrayEnd {
				return node, nil
			}
			child, err := parseValue(src, next)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}

	case sax.Value:
		return &Node{
			Kind:    NodeLeaf,
			Variant: ev.Variant,
			Bool:    ev.Bool,
			Int:     ev.Int,
			Float:   ev.Float,
			Str:     ev.Str,
		}, nil

	default:
		return nil, fmt.Errorf("unexpected event kind %d where a value was expected", ev.Kind)
	}
}
