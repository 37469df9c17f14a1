// Package fault implements the direct-mapped cache's fault-service
// algorithm (the Cache Engine) and the dedicated goroutine that drives it
// off an OS event-multiplex wait (the Fault Handler Thread).
package fault

import (
	"fmt"
	"log"
	"sync/atomic"
	"unsafe"

	"github.com/ashlandtech/uffdcache/tagtable"
)

// Source is the subset of *uffd.Channel the engine needs to service a
// fault: re-arming a remapped page for future faults, and installing
// resolved page contents. Mocked in tests via go.uber.org/mock.
type Source interface {
	Register(addr, length uintptr) error
	Copy(dst, src uintptr, length uintptr) error
}

// Remapper tears down and recreates the anonymous mapping for a single
// evicted page, so the frontend's address range stays contiguous while the
// page returns to the "will fault" state. Mocked in tests.
type Remapper interface {
	RemapAnonymousFixed(addr, length uintptr) error
}

// Recorder observes load and evict decisions, for an optional persistent
// event log (see the store package). Implementations must not block the
// Fault Handler Thread for long; a slow Recorder serializes every fault.
type Recorder interface {
	RecordLoad(slot, page, offset uint64)
	RecordEvict(slot, page, offset uint64)
}

// Engine holds the data model of §3/§4.4: the tag table, the backend and
// frontend byte views, and a page-sized staging buffer. It is driven
// exclusively by the single Fault Handler Thread goroutine; see §9.
type Engine struct {
	frontendBase uintptr
	frontend     []byte
	backend      []byte
	pageSize     uint64
	tags         *tagtable.Table
	scratch      []byte
	source       Source
	remap        Remapper
	recorder     Recorder

	Debug bool

	faults    atomic.Uint64
	evictions atomic.Uint64
}

// Stats is a snapshot of an Engine's lifetime fault-handling counters.
type Stats struct {
	Faults    uint64
	Evictions uint64
}

// Stats returns the engine's current counters. Safe to call concurrently
// with the Fault Handler Thread; the counters are read with atomic loads.
func (e *Engine) Stats() Stats {
	return Stats{
		Faults:    e.faults.Load(),
		Evictions: e.evictions.Load(),
	}
}

// SetRecorder attaches an event recorder. Call it only before the handler
// driving this engine is started, since Recorder is read without
// synchronization from the service path.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// NewEngine builds a Cache Engine over an already-reserved frontend region.
// frontend and backend must both have length backendSize; the pageSize-byte
// staging buffer is allocated here.
func NewEngine(
	frontendBase uintptr,
	frontend, backend []byte,
	pageSize uint64,
	tags *tagtable.Table,
	source Source,
	remap Remapper,
) *Engine {
	return &Engine{
		frontendBase: frontendBase,
		frontend:     frontend,
		backend:      backend,
		pageSize:     pageSize,
		tags:         tags,
		scratch:      make([]byte, pageSize),
		source:       source,
		remap:        remap,
	}
}

// Service resolves one faulting address per §4.4: evicting the slot's
// current tenant if occupied, loading the requested backend page into the
// staging buffer, and installing it at the faulting address. It returns an
// error only when the install step itself fails — the one unrecoverable
// per-fault condition described in §4.4's edge cases; eviction/
// re-registration failures are logged and do not prevent the load+install
// from proceeding.
func (e *Engine) Service(faultAddr uintptr) error {
	e.faults.Add(1)

	alignedAddr := faultAddr &^ (uintptr(e.pageSize) - 1)
	offset := uint64(alignedAddr - e.frontendBase)
	pageIndex := offset >> e.tags.PageShift()
	slot := e.tags.SlotIndex(pageIndex)

	entry := e.tags.Lookup(slot)
	if entry.Valid {
		e.evict(slot, entry.Page)
	}

	e.load(slot, pageIndex, offset)

	scratchAddr := uintptr(unsafe.Pointer(&e.scratch[0]))
	if err := e.source.Copy(alignedAddr, scratchAddr, uintptr(e.pageSize)); err != nil {
		return fmt.Errorf("fault: install at %#x: %w", alignedAddr, err)
	}

	return nil
}

func (e *Engine) evict(slot, stolenPage uint64) {
	e.evictions.Add(1)

	evictOffset := stolenPage << e.tags.PageShift()
	size := e.pageSize

	if e.Debug {
		log.Printf("fault: FLUSH slot=%d page=%d offset=%#x", slot, stolenPage, evictOffset)
	}

	copy(e.backend[evictOffset:evictOffset+size], e.frontend[evictOffset:evictOffset+size])

	evictAddr := e.frontendBase + uintptr(evictOffset)
	if err := e.remap.RemapAnonymousFixed(evictAddr, uintptr(size)); err != nil {
		log.Printf("fault: remap evicted page %#x: %v", evictAddr, err)
	}
	if err := e.source.Register(evictAddr, uintptr(size)); err != nil {
		log.Printf("fault: re-register evicted page %#x: %v", evictAddr, err)
	}

	if e.recorder != nil {
		e.recorder.RecordEvict(slot, stolenPage, evictOffset)
	}
}

func (e *Engine) load(slot, pageIndex, offset uint64) {
	size := e.pageSize

	if e.Debug {
		log.Printf("fault: FILL slot=%d page=%d offset=%#x", slot, pageIndex, offset)
	}

	copy(e.scratch, e.backend[offset:offset+size])
	e.tags.Store(slot, pageIndex)

	if e.recorder != nil {
		e.recorder.RecordLoad(slot, pageIndex, offset)
	}
}
