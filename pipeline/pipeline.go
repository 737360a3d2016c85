// Package pipeline chains codecs into an ordered CompressionPipeline: the
// teacher's compress.Codec chaining generalized to an explicit, reusable
// slice type instead of ad hoc composition at each call site.
package pipeline

import (
	"fmt"

	"github.com/wisentfmt/wisent/codec"
	"github.com/wisentfmt/wisent/format"
)

// Entry names one stage of a Pipeline: the codec tag plus, for
// format.CodecCustom, which backend to resolve (zstd/gozstd/lz4).
type Entry struct {
	Tag        format.CodecTag
	CustomName string
}

// Pipeline applies an ordered list of codecs left-to-right on Compress and
// right-to-left on Decompress. An empty Pipeline is a no-op.
type Pipeline struct {
	entries []Entry
	codecs  []codec.Codec
}

// New resolves each entry's codec tag to a concrete codec.Codec and
// returns the ready-to-use Pipeline.
func New(entries []Entry) (*Pipeline, error) {
	codecs := make([]codec.Codec, 0, len(entries))
	for _, e := range entries {
		c, err := codec.ByTag(e.Tag, e.CustomName)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		codecs = append(codecs, c)
	}

	return &Pipeline{entries: entries, codecs: codecs}, nil
}

// Tags returns the codec tag list as stored in ColumnMetaData.compression_pipeline,
// so a reader knows which sequence to invert.
func (p *Pipeline) Tags() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Compress runs every stage in order, feeding each stage's output to the next.
func (p *Pipeline) Compress(data []byte) ([]byte, error) {
	cur := data
	for i, c := range p.codecs {
		out, err := c.Compress(cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d (%s): %w", i, p.entries[i].Tag, err)
		}
		cur = out
	}
	return cur, nil
}

// Decompress runs every stage in reverse order.
func (p *Pipeline) Decompress(data []byte) ([]byte, error) {
	cur := data
	for i := len(p.codecs) - 1; i >= 0; i-- {
		out, err := p.codecs[i].Decompress(cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d (%s): %w", i, p.entries[i].Tag, err)
		}
		cur = out
	}
	return cur, nil
}

// Len reports the number of stages.
func (p *Pipeline) Len() int {
	return len(p.codecs)
}
