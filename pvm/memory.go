// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package pvm

// AddressRange is a half-open range [Start, Start+Size) in the guest's
// 32-bit address space.
type AddressRange struct {
	Start uint32
	Size  uint32
}

// End returns the first address past the range.
func (r AddressRange) End() uint32 { return r.Start + r.Size }

// Contains reports whether addr falls within the range.
func (r AddressRange) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End()
}

// MemoryConfig describes the three contiguous, non-overlapping address
// ranges that partition a module's guest address space (data model §3,
// invariant 4). The loader that assigns and page-aligns these ranges is
// out of scope; the core only consumes the resulting layout.
type MemoryConfig struct {
	RoDataRange AddressRange
	HeapRange   AddressRange
	StackRange  AddressRange
}

// regionKind identifies which of the three regions an address resolved
// to; see Design Notes §9, "a small function find_region(addr) is
// cleaner than repeated range tests."
type regionKind uint8

const (
	regionNone regionKind = iota
	regionRO
	regionHeap
	regionStack
)

// Memory is the per-instance memory model (component C1): one read-only
// slice shared with the owning module, plus a heap and a stack buffer
// exclusively owned by this instance. It is grounded on the teacher's
// probe-lang/lang/vm/memory.go allocator, replacing that package's
// dynamic bump allocator with three statically-sized, bounds-checked
// regions — this guest ISA has no runtime alloc/free opcode, so a live
// allocation table has no job to do here.
type Memory struct {
	config MemoryConfig
	ro     []byte // shared with the module; never mutated
	heap   []byte
	stack  []byte
}

// newMemory allocates a fresh heap and stack sized per config and wires
// in the module's shared read-only data. The caller must still call
// reset before first use (NewInstance does this).
func newMemory(config MemoryConfig, roData []byte) *Memory {
	return &Memory{
		config: config,
		ro:     roData,
		heap:   make([]byte, config.HeapRange.Size),
		stack:  make([]byte, config.StackRange.Size),
	}
}

// reset rebuilds the heap as rwData padded with zeros to HeapRange.Size,
// and zeros the stack, per spec §4.5 reset_memory.
func (m *Memory) reset(rwData []byte) {
	n := copy(m.heap, rwData)
	for i := n; i < len(m.heap); i++ {
		m.heap[i] = 0
	}
	for i := range m.stack {
		m.stack[i] = 0
	}
}

// find resolves addr to the region that contains it, returning the
// region's kind, its address range, and its backing buffer.
func (m *Memory) find(addr uint32) (regionKind, AddressRange, []byte) {
	switch {
	case m.config.RoDataRange.Contains(addr):
		return regionRO, m.config.RoDataRange, m.ro
	case m.config.HeapRange.Contains(addr):
		return regionHeap, m.config.HeapRange, m.heap
	case m.config.StackRange.Contains(addr):
		return regionStack, m.config.StackRange, m.stack
	default:
		return regionNone, AddressRange{}, nil
	}
}

// Slice returns a read-only view of length bytes starting at addr.
// It succeeds iff the whole range [addr, addr+length) lies within a
// single region; the read-only, heap, and stack regions are all
// readable. A zero length succeeds iff addr itself lies in a region.
func (m *Memory) Slice(addr, length uint32) ([]byte, bool) {
	kind, rng, buf := m.find(addr)
	if kind == regionNone {
		return nil, false
	}
	if uint64(addr)+uint64(length) > uint64(rng.End()) {
		return nil, false
	}
	offset := addr - rng.Start
	return buf[offset : offset+length], true
}

// SliceMut returns a mutable view of length bytes starting at addr. It
// succeeds under the same range rule as Slice, except the read-only
// region is never writable.
func (m *Memory) SliceMut(addr, length uint32) ([]byte, bool) {
	kind, rng, buf := m.find(addr)
	if kind == regionNone || kind == regionRO {
		return nil, false
	}
	if uint64(addr)+uint64(length) > uint64(rng.End()) {
		return nil, false
	}
	offset := addr - rng.Start
	return buf[offset : offset+length], true
}
