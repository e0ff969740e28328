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

func TestModuleBuilderRejectsOverlappingRegions(t *testing.T) {
	b := NewModuleBuilder(MemoryConfig{
		HeapRange:  AddressRange{Start: 0x1000, Size: 0x200},
		StackRange: AddressRange{Start: 0x1100, Size: 0x200},
	})
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected overlapping heap/stack regions to be rejected")
	}
}

func TestModuleBuilderRejectsOversizedData(t *testing.T) {
	b := NewModuleBuilder(MemoryConfig{
		RoDataRange: AddressRange{Start: 0x1000, Size: 4},
	})
	b.SetData(make([]byte, 8), nil)
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected read-only data larger than its region to be rejected")
	}
}

func TestJumpTableRoundTrip(t *testing.T) {
	b := NewModuleBuilder(testMemoryConfig())
	block := b.AddBasicBlock(0, Fallthrough())
	index := b.AddJumpTableEntry(block)
	module, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	resolved, ok := module.BasicBlockByJumpTableIndex(index)
	if !ok || resolved != block {
		t.Fatalf("BasicBlockByJumpTableIndex(%d) = (%d, %v), want (%d, true)", index, resolved, ok, block)
	}
	if _, ok := module.BasicBlockByJumpTableIndex(0); ok {
		t.Fatalf("jump-table index 0 must always miss")
	}

	backIndex, ok := module.JumpTableIndexByBasicBlock(block)
	if !ok || backIndex != index {
		t.Fatalf("JumpTableIndexByBasicBlock(%d) = (%d, %v), want (%d, true)", block, backIndex, ok, index)
	}
}

func TestExportLookup(t *testing.T) {
	b := NewModuleBuilder(testMemoryConfig())
	block := b.AddBasicBlock(0, Fallthrough())
	b.AddExport("entry", block)
	module, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	export, ok := module.ExportByName("entry")
	if !ok || export.Address != block {
		t.Fatalf("ExportByName(entry) = (%+v, %v)", export, ok)
	}
	if _, ok := module.ExportByName("missing"); ok {
		t.Fatalf("expected lookup of an unregistered export to fail")
	}
}
