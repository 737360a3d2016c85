package codec

// NoOp is the `none` codec tag: it bypasses compression entirely, matching
// the teacher's NoOpCompressor (compress/noop.go). It still rejects empty
// input because every codec shares that precondition (spec.md §4.2).
type NoOp struct{}

var _ Codec = NoOp{}

func (NoOp) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	return data, nil
}

func (NoOp) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	return data, nil
}
