// Package segment implements the shared-memory segment provider named as
// an out-of-scope collaborator by spec.md §1/§6.2
// ("malloc(size)/realloc(ptr,size)/free(ptr)/load/unload/erase/
// base_address/size/exists/is_loaded"). Provider is the collaborator's
// interface; InProcess is a real, minimal implementation good enough to let
// driver.Load round-trip without a genuine OS shared-memory mapping.
//
// REDESIGN FLAGS §9 singles out the source's process-wide segment registry
// as global mutable state to remove: Registry replaces it with an explicit
// value the caller constructs and threads through driver.Load, never a
// package-level map.
package segment

import (
	"fmt"
	"sync"

	"github.com/wisentfmt/wisent/errs"
)

// Provider is the shared-memory collaborator spec.md §6.2 names. Malloc
// allocates a fresh segment; Realloc grows (and may relocate) one already
// loaded; Free releases it. Load/Unload/Erase manage a segment's named
// binding independent of its backing memory; Exists/IsLoaded/BaseAddress/
// Size are read-only queries.
type Provider interface {
	Malloc(name string, size int) ([]byte, error)
	Realloc(name string, size int) ([]byte, error)
	Free(name string) error

	Load(name string) ([]byte, error)
	Unload(name string) error
	Erase(name string) error

	Exists(name string) bool
	IsLoaded(name string) bool
	BaseAddress(name string) (uintptr, error)
	Size(name string) (int, error)
}

// Registry holds the live segments one Provider instance is tracking. It is
// constructed explicitly by the caller (driver.Load's registry parameter)
// rather than reached for as a package global, per REDESIGN FLAGS §9.
type Registry struct {
	mu       sync.RWMutex
	segments map[string]*entry
}

type entry struct {
	buf    []byte
	loaded bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{segments: make(map[string]*entry)}
}

// InProcess is a Registry-backed Provider: segments are ordinary Go byte
// slices rather than an OS shared-memory mapping, since nothing in this
// module's scope needs cross-process sharing to exercise the driver.
type InProcess struct {
	reg *Registry
}

// NewInProcess returns a Provider backed by reg. Multiple InProcess values
// sharing one Registry see each other's segments, mirroring how several
// driver.Load callers in the same process would share one shared-memory
// mapping.
func NewInProcess(reg *Registry) *InProcess {
	return &InProcess{reg: reg}
}

func (p *InProcess) Malloc(name string, size int) ([]byte, error) {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	if _, ok := p.reg.segments[name]; ok {
		return nil, fmt.Errorf("%w: segment %q already allocated", errs.ErrAllocationFailed, name)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrAllocationFailed, size)
	}
	e := &entry{buf: make([]byte, size), loaded: true}
	p.reg.segments[name] = e
	return e.buf, nil
}

func (p *InProcess) Realloc(name string, size int) ([]byte, error) {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	e, ok := p.reg.segments[name]
	if !ok {
		return nil, fmt.Errorf("%w: segment %q", errs.ErrSegmentGone, name)
	}
	grown := make([]byte, size)
	copy(grown, e.buf)
	e.buf = grown
	return e.buf, nil
}

func (p *InProcess) Free(name string) error {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	e, ok := p.reg.segments[name]
	if !ok {
		return fmt.Errorf("%w: segment %q", errs.ErrSegmentGone, name)
	}
	if !e.loaded {
		return fmt.Errorf("%w: segment %q", errs.ErrDoubleFree, name)
	}
	delete(p.reg.segments, name)
	return nil
}

// Load marks an existing segment as attached for reading, matching how a
// consumer process would map an already-serialized shared-memory segment.
func (p *InProcess) Load(name string) ([]byte, error) {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	e, ok := p.reg.segments[name]
	if !ok {
		return nil, fmt.Errorf("%w: segment %q", errs.ErrSegmentGone, name)
	}
	e.loaded = true
	return e.buf, nil
}

// Unload detaches a segment's binding without freeing its backing memory,
// so a later Load can reattach (driver.Options.ForceReload's counterpart).
func (p *InProcess) Unload(name string) error {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	e, ok := p.reg.segments[name]
	if !ok {
		return fmt.Errorf("%w: segment %q", errs.ErrSegmentGone, name)
	}
	e.loaded = false
	return nil
}

// Erase removes a segment's binding and its backing memory entirely.
func (p *InProcess) Erase(name string) error {
	return p.Free(name)
}

func (p *InProcess) Exists(name string) bool {
	p.reg.mu.RLock()
	defer p.reg.mu.RUnlock()
	_, ok := p.reg.segments[name]
	return ok
}

func (p *InProcess) IsLoaded(name string) bool {
	p.reg.mu.RLock()
	defer p.reg.mu.RUnlock()
	e, ok := p.reg.segments[name]
	return ok && e.loaded
}

func (p *InProcess) BaseAddress(name string) (uintptr, error) {
	p.reg.mu.RLock()
	defer p.reg.mu.RUnlock()
	e, ok := p.reg.segments[name]
	if !ok {
		return 0, fmt.Errorf("%w: segment %q", errs.ErrSegmentGone, name)
	}
	return baseAddress(e.buf), nil
}

func (p *InProcess) Size(name string) (int, error) {
	p.reg.mu.RLock()
	defer p.reg.mu.RUnlock()
	e, ok := p.reg.segments[name]
	if !ok {
		return 0, fmt.Errorf("%w: segment %q", errs.ErrSegmentGone, name)
	}
	return len(e.buf), nil
}
