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

import "testing"

func testConfig() MemoryConfig {
	return MemoryConfig{
		RoDataRange: AddressRange{Start: 0x1000, Size: 0x100},
		HeapRange:   AddressRange{Start: 0x2000, Size: 0x100},
		StackRange:  AddressRange{Start: 0x3000, Size: 0x100},
	}
}

func TestMemorySliceWithinRegion(t *testing.T) {
	m := newMemory(testConfig(), make([]byte, 0x100))
	m.reset(nil)

	if _, ok := m.Slice(0x2000, 0x10); !ok {
		t.Fatalf("expected read at heap start to succeed")
	}
	if _, ok := m.Slice(0x20F8, 0x10); ok {
		t.Fatalf("expected read crossing heap end to fail")
	}
	if _, ok := m.Slice(0x5000, 1); ok {
		t.Fatalf("expected read in unmapped address to fail")
	}
}

func TestMemoryZeroLengthRequiresMappedAddress(t *testing.T) {
	m := newMemory(testConfig(), make([]byte, 0x100))
	m.reset(nil)

	if _, ok := m.Slice(0x2000, 0); !ok {
		t.Fatalf("zero-length read at a mapped address should succeed")
	}
	if _, ok := m.Slice(0x9999, 0); ok {
		t.Fatalf("zero-length read at an unmapped address should fail")
	}
}

func TestMemoryReadOnlyRegionRejectsWrites(t *testing.T) {
	m := newMemory(testConfig(), make([]byte, 0x100))
	m.reset(nil)

	if _, ok := m.Slice(0x1000, 4); !ok {
		t.Fatalf("expected read-only region to be readable")
	}
	if _, ok := m.SliceMut(0x1000, 4); ok {
		t.Fatalf("expected read-only region to reject writes")
	}
}

func TestMemoryHeapAndStackAreWritable(t *testing.T) {
	m := newMemory(testConfig(), make([]byte, 0x100))
	m.reset(nil)

	for _, addr := range []uint32{0x2000, 0x3000} {
		slice, ok := m.SliceMut(addr, 4)
		if !ok {
			t.Fatalf("expected address 0x%x to be writable", addr)
		}
		slice[0] = 0xAB
		readBack, _ := m.Slice(addr, 4)
		if readBack[0] != 0xAB {
			t.Fatalf("write at 0x%x did not round-trip", addr)
		}
	}
}

func TestMemoryResetRestoresInitialHeapAndZeroesStack(t *testing.T) {
	m := newMemory(testConfig(), make([]byte, 0x100))
	m.reset(nil)

	heap, _ := m.SliceMut(0x2000, 4)
	heap[0] = 0xFF
	stack, _ := m.SliceMut(0x3000, 4)
	stack[0] = 0xFF

	rwData := []byte{1, 2, 3}
	m.reset(rwData)

	heapAfter, _ := m.Slice(0x2000, 0x100)
	if heapAfter[0] != 1 || heapAfter[1] != 2 || heapAfter[2] != 3 {
		t.Fatalf("reset did not restore initial heap contents: %v", heapAfter[:4])
	}
	for _, b := range heapAfter[3:] {
		if b != 0 {
			t.Fatalf("reset did not zero-pad the remainder of the heap")
		}
	}

	stackAfter, _ := m.Slice(0x3000, 0x100)
	for _, b := range stackAfter {
		if b != 0 {
			t.Fatalf("reset did not zero the stack")
		}
	}
	if len(heapAfter) != 0x100 || len(stackAfter) != 0x100 {
		t.Fatalf("reset must not change region lengths")
	}
}

func TestAddressRangeWraparoundSafety(t *testing.T) {
	// A region ending near the top of the 32-bit space must not let a
	// length computed in 32-bit arithmetic wrap around and falsely
	// appear in range; Slice compares in uint64.
	cfg := MemoryConfig{
		HeapRange: AddressRange{Start: 0xFFFFFF00, Size: 0x100},
	}
	m := newMemory(cfg, nil)
	m.reset(nil)

	if _, ok := m.Slice(0xFFFFFF00, 0xFFFFFFFF); ok {
		t.Fatalf("a length that wraps the 32-bit address space must not be accepted")
	}
}
