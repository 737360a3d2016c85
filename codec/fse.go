package codec

import (
	"encoding/binary"
	"math/bits"

	"github.com/wisentfmt/wisent/errs"
)

// DefaultTableLog is the maximum table-log FSE will choose unless the input
// is small enough to need fewer states (spec.md §4.2.5).
const DefaultTableLog = 15

const minTableLog = 5

// fseLowerBound is the rANS renormalization lower bound (the "L" constant
// of Fabian Giesen's ryg_rans scheme, which this package's tANS/rANS hybrid
// follows for its state-transition arithmetic).
const fseLowerBound = uint64(1) << 23

// FSE implements the finite-state-entropy codec of spec.md §4.2.5 as a
// byte-wise rANS (range asymmetric numeral system) coder: count symbols,
// choose a table log, normalize frequencies to sum to exactly 2^tableLog,
// then encode from the tail forward maintaining one rANS state.
//
// The spec's "two interleaved states" optimization (which shortens the
// dependency chain between successive encode steps) is not implemented —
// it only affects throughput, not the wire format or round-trip guarantee,
// and a single-state coder is materially simpler to get right.
type FSE struct {
	maxTableLog int
}

var _ Codec = FSE{}

// NewFSE creates an FSE codec that chooses tableLog in [5, maxTableLog].
func NewFSE(maxTableLog int) FSE {
	return FSE{maxTableLog: maxTableLog}
}

func chooseTableLog(n, maxTableLog int) int {
	if n <= 2 {
		return minTableLog
	}

	log := bits.Len(uint(n - 1))
	if log < minTableLog {
		log = minTableLog
	}
	if log > maxTableLog {
		log = maxTableLog
	}

	return log
}

// normalize scales raw counts to sum exactly to 1<<tableLog, giving every
// symbol that occurs at least 1 slot, using largest-remainder rounding
// ("rest-to-beat" per spec.md §4.2.5) to fix up the sum.
func normalize(counts [256]int, total, tableLog int) [256]int {
	target := 1 << tableLog
	var norm [256]int
	var remainders [256]float64
	assigned := 0

	for s := 0; s < 256; s++ {
		if counts[s] == 0 {
			continue
		}
		exact := float64(counts[s]) * float64(target) / float64(total)
		n := int(exact)
		if n < 1 {
			n = 1
		}
		norm[s] = n
		remainders[s] = exact - float64(n)
		assigned += n
	}

	for assigned > target {
		// Steal a slot from whichever present symbol currently has the
		// most slots and still has more than 1 (never starve a symbol to 0).
		worst := -1
		for s := 0; s < 256; s++ {
			if norm[s] > 1 && (worst < 0 || norm[s] > norm[worst]) {
				worst = s
			}
		}
		norm[worst]--
		assigned--
	}
	for assigned < target {
		best := -1
		for s := 0; s < 256; s++ {
			if counts[s] == 0 {
				continue
			}
			if best < 0 || remainders[s] > remainders[best] {
				best = s
			}
		}
		norm[best]++
		remainders[best] = -1 // don't pick the same symbol twice in a row unnecessarily
		assigned++
	}

	return norm
}

func (f FSE) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	for _, c := range counts {
		if c == len(data) {
			return nil, errs.ErrUseRLEInstead
		}
	}

	maxLog := f.maxTableLog
	if maxLog <= 0 {
		maxLog = DefaultTableLog
	}

	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}

	tableLog := chooseTableLog(len(data), maxLog)
	// The normalized table must have at least one slot per distinct symbol;
	// widen the table if the length-derived estimate is too small.
	for (1<<uint(tableLog)) < distinct && tableLog < maxLog {
		tableLog++
	}
	norm := normalize(counts, len(data), tableLog)

	var start, freq [256]int
	cum := 0
	for s := 0; s < 256; s++ {
		start[s] = cum
		freq[s] = norm[s]
		cum += norm[s]
	}

	x := fseLowerBound
	var emitted []byte
	for i := len(data) - 1; i >= 0; i-- {
		s := data[i]
		fs := uint64(freq[s])
		maxX := ((fseLowerBound >> uint(tableLog)) << 8) * fs
		for x >= maxX {
			emitted = append(emitted, byte(x&0xFF))
			x >>= 8
		}
		x = (x/fs)<<uint(tableLog) + (x % fs) + uint64(start[s])
	}

	// emitted was built processing data tail-to-head, so it is in reverse
	// stream order; reverse it back so a forward-reading decoder sees the
	// bytes in the order rANS expects.
	for i, j := 0, len(emitted)-1; i < j; i, j = i+1, j-1 {
		emitted[i], emitted[j] = emitted[j], emitted[i]
	}

	out := make([]byte, 0, len(emitted)+256*3+16)
	out = append(out, byte(tableLog))

	var lenBuf [8]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(data)))
	out = append(out, lenBuf[:n]...)

	var countBuf [2]byte
	binary.LittleEndian.PutUint16(countBuf[:], uint16(distinct))
	out = append(out, countBuf[:]...)
	for s := 0; s < 256; s++ {
		if norm[s] == 0 {
			continue
		}
		var nb [4]byte
		nn := binary.PutUvarint(nb[:], uint64(norm[s]))
		out = append(out, byte(s))
		out = append(out, nb[:nn]...)
	}

	var stateBuf [8]byte
	binary.LittleEndian.PutUint64(stateBuf[:], x)
	out = append(out, stateBuf[:]...)
	out = append(out, emitted...)

	return out, nil
}

func (f FSE) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}
	if len(data) < 1+2+8 {
		return nil, errTruncated("fse header too short")
	}

	tableLog := int(data[0])
	pos := 1

	origLen, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return nil, errCorrupt("fse original-length varint invalid")
	}
	pos += n

	if pos+2 > len(data) {
		return nil, errTruncated("fse distinct-count truncated")
	}
	distinct := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
	pos += 2

	var norm [256]int
	for i := 0; i < distinct; i++ {
		if pos+1 > len(data) {
			return nil, errTruncated("fse symbol table truncated")
		}
		s := data[pos]
		pos++
		cnt, cn := binary.Uvarint(data[pos:])
		if cn <= 0 {
			return nil, errCorrupt("fse symbol count varint invalid")
		}
		pos += cn
		norm[s] = int(cnt)
	}

	var start, freq [256]int
	R := 1 << uint(tableLog)
	cum := 0
	for s := 0; s < 256; s++ {
		start[s] = cum
		freq[s] = norm[s]
		cum += norm[s]
	}
	if cum != R {
		return nil, errCorrupt("fse normalized counts sum to %d, want %d", cum, R)
	}

	lut := make([]byte, R)
	for s := 0; s < 256; s++ {
		for k := 0; k < freq[s]; k++ {
			lut[start[s]+k] = byte(s)
		}
	}

	if pos+8 > len(data) {
		return nil, errTruncated("fse final state truncated")
	}
	x := binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8

	stream := data[pos:]
	streamPos := 0
	readByte := func() (byte, error) {
		if streamPos >= len(stream) {
			return 0, errTruncated("fse bitstream exhausted")
		}
		b := stream[streamPos]
		streamPos++

		return b, nil
	}

	out := make([]byte, origLen)
	mask := uint64(R - 1)
	for i := uint64(0); i < origLen; i++ {
		slot := x & mask
		s := lut[slot]
		fs := uint64(freq[s])
		x = fs*(x>>uint(tableLog)) + slot - uint64(start[s])
		for x < fseLowerBound {
			b, err := readByte()
			if err != nil {
				return nil, err
			}
			x = x<<8 | uint64(b)
		}
		out[i] = s
	}

	return out, nil
}
