// Package arena implements the single growable byte region that backs one
// Image: alloc is called once per image (sized by the Counter), realloc
// extends the region during string interning when the estimate undershoots,
// and free releases it back to the pool.
package arena

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
	"github.com/wisentfmt/wisent/internal/pool"
)

// state is the Arena's lifecycle: Empty -> Loaded (alloc) -> Empty (free).
// Loaded -> Loaded on realloc.
type state int

const (
	stateEmpty state = iota
	stateLoaded
)

// Arena owns one growable byte region. The Serializer and Image it backs
// live inside this single allocation; realloc may move the base pointer, so
// callers must re-derive region pointers from Base() after every Realloc.
type Arena struct {
	buf   *pool.ByteBuffer
	state state
}

// New returns an empty Arena. Call Alloc before using it.
func New() *Arena {
	return &Arena{state: stateEmpty}
}

// Alloc reserves n bytes and transitions Empty -> Loaded. Calling Alloc on
// an already-Loaded Arena is a precondition violation per the Arena
// contract (alloc is called exactly once per image).
func (a *Arena) Alloc(n int) ([]byte, error) {
	if a.state == stateLoaded {
		return nil, fmt.Errorf("%w: alloc on already-loaded arena", errs.ErrAllocationFailed)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrAllocationFailed, n)
	}

	buf := pool.GetArenaBuffer()
	buf.ExtendOrGrow(n)
	a.buf = buf
	a.state = stateLoaded

	return a.buf.Bytes(), nil
}

// Realloc grows the live region to n bytes, extending in place when the
// pooled buffer has spare capacity and copying into a fresh buffer
// otherwise. It returns the (possibly relocated) backing slice; callers
// must re-derive all region offsets from its start.
func (a *Arena) Realloc(n int) ([]byte, error) {
	if a.state != stateLoaded {
		return nil, fmt.Errorf("%w: realloc on unallocated arena", errs.ErrAllocationFailed)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrAllocationFailed, n)
	}

	cur := a.buf.Len()
	if n <= cur {
		a.buf.SetLength(n)
		return a.buf.Bytes(), nil
	}

	grow := n - cur
	if a.buf.Extend(grow) {
		return a.buf.Bytes(), nil
	}

	fresh := pool.GetArenaBuffer()
	fresh.ExtendOrGrow(n)
	copy(fresh.Bytes(), a.buf.Bytes())

	old := a.buf
	a.buf = fresh
	pool.PutArenaBuffer(old)

	return a.buf.Bytes(), nil
}

// Free releases the region back to the pool and transitions Loaded ->
// Empty. Free is idempotent only before Alloc; calling Free twice without
// an intervening Alloc is a no-op by design (double-free on genuinely live
// memory is the fatal case the errs.ErrDoubleFree sentinel names, reserved
// for callers that track their own liveness on top of Arena).
func (a *Arena) Free() {
	if a.state != stateLoaded {
		return
	}

	pool.PutArenaBuffer(a.buf)
	a.buf = nil
	a.state = stateEmpty
}

// Base returns the current backing slice. Its address may change across a
// Realloc; it is nil when the Arena is Empty.
func (a *Arena) Base() []byte {
	if a.state != stateLoaded {
		return nil
	}
	return a.buf.Bytes()
}

// Size returns the current length of the live region, or 0 when Empty.
func (a *Arena) Size() int {
	if a.state != stateLoaded {
		return 0
	}
	return a.buf.Len()
}

// Loaded reports whether the Arena currently backs live data.
func (a *Arena) Loaded() bool {
	return a.state == stateLoaded
}
