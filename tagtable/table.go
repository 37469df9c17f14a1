// Package tagtable implements the direct-mapped tag table that tracks,
// for each cache slot, which backend page (if any) currently occupies it.
package tagtable

import "fmt"

const validBit = uint64(1) << 63
const payloadMask = validBit - 1

// Table is the ordered sequence of cache-slot tags. A slot's index in the
// table is the low-order bits of the backend page index it may hold; the
// tag's payload is the full backend page index, which modulo NumLines must
// equal the slot index (the direct-mapping invariant).
type Table struct {
	pageSize  uint64
	numLines  uint64
	pageShift uint
	indexMask uint64
	slots     []uint64
}

// New builds a tag table for a cache of cacheSize bytes made of pageSize-
// byte lines. cacheSize must be a positive multiple of pageSize and a
// power of two; violations panic, matching the precondition-is-programmer-
// error policy used across this module.
func New(cacheSize, pageSize uint64) *Table {
	if pageSize == 0 || cacheSize == 0 {
		panic("tagtable: pageSize and cacheSize must be positive")
	}
	if cacheSize%pageSize != 0 {
		panic("tagtable: cacheSize must be a multiple of pageSize")
	}
	if !isPowerOfTwo(cacheSize) {
		panic("tagtable: cacheSize must be a power of two")
	}

	numLines := cacheSize / pageSize
	return &Table{
		pageSize:  pageSize,
		numLines:  numLines,
		pageShift: bits(pageSize) - 1,
		indexMask: numLines - 1,
		slots:     make([]uint64, numLines),
	}
}

// NumLines returns the number of cache slots.
func (t *Table) NumLines() uint64 { return t.numLines }

// PageShift returns log2(pageSize).
func (t *Table) PageShift() uint { return t.pageShift }

// SlotIndex returns the direct-mapped slot for a backend page index.
func (t *Table) SlotIndex(pageIndex uint64) uint64 {
	return pageIndex & t.indexMask
}

// Entry is the decoded state of one slot.
type Entry struct {
	Valid bool
	Page  uint64
}

// Lookup returns the current occupant of a slot.
func (t *Table) Lookup(slot uint64) Entry {
	tag := t.slots[slot]
	return Entry{
		Valid: tag&validBit != 0,
		Page:  tag & payloadMask,
	}
}

// Store records that a slot now holds the given backend page. It panics if
// pageIndex does not map to slot — callers must have already resolved the
// direct-mapping arithmetic correctly.
func (t *Table) Store(slot, pageIndex uint64) {
	if t.SlotIndex(pageIndex) != slot {
		panic(fmt.Sprintf("tagtable: page %d does not map to slot %d", pageIndex, slot))
	}
	t.slots[slot] = validBit | (pageIndex & payloadMask)
}

// Clear marks a slot empty.
func (t *Table) Clear(slot uint64) {
	t.slots[slot] = 0
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// bits returns the number of bits needed to represent n, i.e. the 1-indexed
// position of its highest set bit (log2(n)+1 for n a power of two). This
// mirrors utility.hpp's bits() helper from the original implementation.
func bits(n uint64) uint {
	var i uint
	for ; n > 0; n >>= 1 {
		i++
	}
	return i
}
