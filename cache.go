// Package uffdcache implements a user-mode, page-granular, direct-mapped
// write-back cache over a caller-supplied backend memory region, using
// Linux's userfaultfd(2) facility to demand-page a smaller in-memory cache
// into a frontend virtual range the same size as the backend.
package uffdcache

import (
	"fmt"
	"log"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ashlandtech/uffdcache/fault"
	"github.com/ashlandtech/uffdcache/store"
	"github.com/ashlandtech/uffdcache/tagtable"
	"github.com/ashlandtech/uffdcache/uffd"
	"github.com/ashlandtech/uffdcache/wakeup"
)

// Builder configures and constructs a Cache. Its zero value (via MakeBuilder)
// is ready to use; every With* method returns a modified copy so calls
// chain the way github.com/sarchlab/akita/v4/mem/vm/mmu's Builder does.
type Builder struct {
	debug        bool
	eventLogPath string
}

// MakeBuilder returns a Builder with defaults: debug logging of the
// fault-handling trail (WAIT/PAGEFAULT/FLUSH/FILL) disabled.
func MakeBuilder() Builder {
	return Builder{}
}

// WithDebug enables the diagnostic log trail carried over from the original
// implementation's fault_handler (see SPEC_FULL.md's supplemented
// features).
func (b Builder) WithDebug(enabled bool) Builder {
	b.debug = enabled
	return b
}

// WithEventLog enables a persistent SQLite-backed log of load/evict events
// (see the store package), written to the database at path. An empty path
// leaves event logging disabled, the default.
func (b Builder) WithEventLog(path string) Builder {
	b.eventLogPath = path
	return b
}

// Build validates cacheSize and backend and constructs a Cache over them.
// Precondition violations (cacheSize not a positive, power-of-two multiple
// of the OS page size; backend shorter than cacheSize, not a page multiple,
// or not page-aligned) are programmer error and panic. Failure to acquire
// an OS resource (userfaultfd, the frontend mapping, registration) is not a
// precondition violation: Build still returns a non-nil *Cache, but with
// Ready() == false; no error is returned, matching §7 of the base spec.
func (b Builder) Build(cacheSize int, backend []byte) *Cache {
	pageSize := uint64(unix.Getpagesize())
	backendSize := uint64(len(backend))

	checkPreconditions(cacheSize, backend, pageSize, backendSize)

	c := &Cache{
		pageSize:     pageSize,
		cacheSize:    uint64(cacheSize),
		backend:      backend,
		backendSize:  backendSize,
		debug:        b.debug,
		eventLogPath: b.eventLogPath,
	}
	c.build()
	return c
}

func checkPreconditions(cacheSize int, backend []byte, pageSize, backendSize uint64) {
	if cacheSize <= 0 {
		panic("uffdcache: cache_size must be positive")
	}
	if uint64(cacheSize)%pageSize != 0 {
		panic("uffdcache: cache_size must be a multiple of the page size")
	}
	if n := uint64(cacheSize) / pageSize; n&(n-1) != 0 {
		panic("uffdcache: cache_size must be a power-of-two multiple of the page size")
	}
	if backendSize < uint64(cacheSize) {
		panic("uffdcache: backend_size must be >= cache_size")
	}
	if backendSize%pageSize != 0 {
		panic("uffdcache: backend_size must be a multiple of the page size")
	}
	if len(backend) == 0 {
		panic("uffdcache: backend must not be empty")
	}
	if uintptr(unsafe.Pointer(&backend[0]))%uintptr(pageSize) != 0 {
		panic("uffdcache: backend must be page-aligned (see AllocAligned)")
	}
}

// Cache is the facade described in §4.2: constructing it validates inputs,
// reserves the frontend virtual range, registers it for fault interception,
// and spawns the single fault handler goroutine. Destroying it (Close)
// signals shutdown, joins the handler, and releases OS resources in the
// reverse order they were acquired.
type Cache struct {
	pageSize     uint64
	cacheSize    uint64
	backendSize  uint64
	backend      []byte
	debug        bool
	eventLogPath string

	ready bool

	shutdown     *wakeup.Signal
	channel      *uffd.Channel
	frontendBase uintptr
	frontend     []byte
	tags         *tagtable.Table
	handler      *fault.Handler
	events       *store.EventWriter
}

// New builds a Cache with default settings. Equivalent to
// MakeBuilder().Build(cacheSize, backend).
func New(cacheSize int, backend []byte) *Cache {
	return MakeBuilder().Build(cacheSize, backend)
}

// build performs the construction steps of §4.2, rolling back whatever it
// already acquired if a later step fails. On return, c.ready reports
// whether every step succeeded.
func (c *Cache) build() {
	shutdown, err := wakeup.New()
	if err != nil {
		log.Printf("uffdcache: create shutdown signal: %v", err)
		return
	}
	c.shutdown = shutdown

	channel, err := uffd.Open()
	if err != nil {
		log.Printf("uffdcache: open fault channel: %v", err)
		c.rollback()
		return
	}
	c.channel = channel

	frontendBase, err := uffd.ReserveAnonymous(uintptr(c.backendSize))
	if err != nil {
		log.Printf("uffdcache: reserve frontend: %v", err)
		c.rollback()
		return
	}
	c.frontendBase = frontendBase
	c.frontend = unsafe.Slice((*byte)(unsafe.Pointer(frontendBase)), c.backendSize)

	if err := c.channel.Register(frontendBase, uintptr(c.backendSize)); err != nil {
		log.Printf("uffdcache: register frontend: %v", err)
		c.rollback()
		return
	}

	c.tags = tagtable.New(c.cacheSize, c.pageSize)

	engine := fault.NewEngine(
		c.frontendBase, c.frontend, c.backend, c.pageSize, c.tags,
		c.channel, realRemapper{},
	)
	engine.Debug = c.debug

	if c.eventLogPath != "" {
		c.events = store.NewEventWriter(c.eventLogPath)
		c.events.Init()
		engine.SetRecorder(eventRecorder{c.events})
	}

	c.handler = fault.NewHandler(c.channel, c.shutdown, engine)
	c.handler.Start()

	c.ready = true
}

// rollback releases whatever resources were already acquired, in reverse
// order, after a mid-construction failure. It never leaves a handler
// goroutine running: build only spawns the handler once every earlier step
// has already succeeded.
func (c *Cache) rollback() {
	if c.frontend != nil {
		_ = uffd.Unmap(c.frontendBase, uintptr(c.backendSize))
		c.frontend = nil
		c.frontendBase = 0
	}
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.shutdown != nil {
		_ = c.shutdown.Close()
		c.shutdown = nil
	}
}

// Ready reports whether construction fully succeeded. This is the only
// failure signal this package surfaces at runtime (§7).
func (c *Cache) Ready() bool {
	return c.ready
}

// Stats returns lifetime fault-handling counters for this cache: how many
// faults have been serviced and how many of those required evicting
// (flushing) the page already resident in the slot first. Safe to call at
// any time: a cache that never became ready reports the zero value, and
// after Close it reports the final counts.
func (c *Cache) Stats() fault.Stats {
	if c.handler == nil {
		return fault.Stats{}
	}
	return c.handler.Stats()
}

// Frontend returns the caller-accessible memory backing this cache: a
// []byte of len(backend) bytes. Reads and writes through it transparently
// fault pages into the cache. There is no bounds-checked accessor beyond
// what the slice itself provides — the frontend is ordinary memory.
func (c *Cache) Frontend() []byte {
	return c.frontend
}

// Close signals the handler goroutine to shut down, waits for it to exit,
// and releases the frontend mapping and fault channel. Close must only be
// called once no caller thread is touching the frontend (§5): any access
// in flight when shutdown is observed will block forever.
func (c *Cache) Close() error {
	if !c.ready {
		c.rollback()
		return nil
	}

	if err := c.shutdown.Put(); err != nil {
		return fmt.Errorf("uffdcache: signal shutdown: %w", err)
	}
	<-c.handler.Done()

	var errs []error
	if err := uffd.Unmap(c.frontendBase, uintptr(c.backendSize)); err != nil {
		errs = append(errs, err)
	}
	if err := c.channel.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.shutdown.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.events != nil {
		c.events.Flush()
		if err := c.events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.ready = false

	if len(errs) > 0 {
		return fmt.Errorf("uffdcache: close: %v", errs)
	}
	return nil
}

// realRemapper adapts the package-level uffd mmap helpers to fault.Remapper.
type realRemapper struct{}

func (realRemapper) RemapAnonymousFixed(addr, length uintptr) error {
	return uffd.RemapAnonymousFixed(addr, length)
}

// eventRecorder adapts a *store.EventWriter to fault.Recorder.
type eventRecorder struct {
	w *store.EventWriter
}

func (r eventRecorder) RecordLoad(slot, page, offset uint64) {
	r.w.Write(store.Event{Kind: store.KindLoad, Slot: slot, Page: page, Offset: offset, TimeNanos: time.Now().UnixNano()})
}

func (r eventRecorder) RecordEvict(slot, page, offset uint64) {
	r.w.Write(store.Event{Kind: store.KindEvict, Slot: slot, Page: page, Offset: offset, TimeNanos: time.Now().UnixNano()})
}

// AllocAligned returns a freshly allocated, zeroed, page-aligned []byte of
// exactly size bytes, suitable for use as a Cache's backend. size must be a
// multiple of the OS page size. Callers that already own page-aligned
// memory (e.g. from their own mmap) do not need this helper.
func AllocAligned(size int) []byte {
	pageSize := unix.Getpagesize()
	if size <= 0 || size%pageSize != 0 {
		panic("uffdcache: AllocAligned size must be a positive multiple of the page size")
	}

	raw := make([]byte, size+pageSize)
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (base + uintptr(pageSize) - 1) &^ (uintptr(pageSize) - 1)
	offset := aligned - base

	return raw[offset : offset+uintptr(size) : offset+uintptr(size)]
}
