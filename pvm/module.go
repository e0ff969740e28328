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

import "fmt"

// Export names an entry point a host can call into: a basic block index
// reachable by symbolic name, grounded on original_source's
// Module::get_export/ProgramExport.
type Export struct {
	Name    string
	Address BlockIndex
}

// Module is the immutable, already-validated program a host runs
// against the interpreter: its instruction stream, memory layout, gas
// costs, jump table, and exports. Building or parsing a module from a
// binary container format is explicitly out of scope (spec §1
// Non-goals); callers construct one with ModuleBuilder.
type Module struct {
	instructions          []Instruction
	basicBlockStart       []uint32 // index into instructions, one entry per basic block
	jumpTable             []BlockIndex
	gasCostForBasicBlock  []uint32
	memoryConfig          MemoryConfig
	roData                []byte
	rwData                []byte
	exports               []Export
	gasMetering           GasMetering
	jumpTableIndexOf      map[BlockIndex]uint32
}

// Instructions returns the module's flat instruction stream.
func (m *Module) Instructions() []Instruction { return m.instructions }

// MemoryConfig returns the module's three-region memory layout.
func (m *Module) MemoryConfig() MemoryConfig { return m.memoryConfig }

// GasMeteringMode reports whether and how the module was compiled with
// gas accounting.
func (m *Module) GasMeteringMode() GasMetering { return m.gasMetering }

// RoData returns the module's read-only data segment.
func (m *Module) RoData() []byte { return m.roData }

// RwData returns the module's initial heap contents (the data
// reset_memory recopies into the heap).
func (m *Module) RwData() []byte { return m.rwData }

// Export returns the i'th export, or false if i is out of range.
func (m *Module) Export(i int) (Export, bool) {
	if i < 0 || i >= len(m.exports) {
		return Export{}, false
	}
	return m.exports[i], true
}

// ExportByName looks up an export by its symbolic name.
func (m *Module) ExportByName(name string) (Export, bool) {
	for _, e := range m.exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// InstructionByBasicBlock resolves a basic block index to the index of
// its first instruction in the flat instruction stream (external
// interfaces §6). A block index past the end reports false.
func (m *Module) InstructionByBasicBlock(block BlockIndex) (uint32, bool) {
	if int(block) >= len(m.basicBlockStart) {
		return 0, false
	}
	return m.basicBlockStart[block], true
}

// BasicBlockByJumpTableIndex resolves a jump-table index — as used by a
// dynamic jump or call-indirect instruction — to a basic block. A
// miss (index zero, or past the table's end) reports false; the caller
// traps.
func (m *Module) BasicBlockByJumpTableIndex(index uint32) (BlockIndex, bool) {
	if index == 0 || int(index) > len(m.jumpTable) {
		return 0, false
	}
	return m.jumpTable[index-1], true
}

// JumpTableIndexByBasicBlock is the inverse of BasicBlockByJumpTableIndex:
// it resolves a basic block to the jump-table index that a dynamic jump
// must use to reach it. Used to compute a call instruction's return
// address, which must itself be a valid dynamic-jump target. A block
// never registered in the jump table (one a call can never return into)
// reports false.
func (m *Module) JumpTableIndexByBasicBlock(block BlockIndex) (uint32, bool) {
	index, ok := m.jumpTableIndexOf[block]
	return index, ok
}

// GasCostForBasicBlock returns the precomputed gas cost of entering
// block.
func (m *Module) GasCostForBasicBlock(block BlockIndex) uint32 {
	if int(block) >= len(m.gasCostForBasicBlock) {
		return 0
	}
	return m.gasCostForBasicBlock[block]
}

// ModuleBuilder programmatically assembles a Module. It exists in
// place of a binary-format loader (explicitly out of scope per spec §1)
// so tests and embedding hosts can construct modules directly in Go,
// the way the teacher's own lang/vm package builds programs from an AST
// rather than from a serialized container.
type ModuleBuilder struct {
	instructions []Instruction
	blockStarts  []uint32
	jumpTable    []BlockIndex
	gasCosts     []uint32
	memoryConfig MemoryConfig
	roData       []byte
	rwData       []byte
	exports      []Export
	gasMetering  GasMetering
}

// NewModuleBuilder creates an empty builder for a module with the given
// memory layout.
func NewModuleBuilder(memoryConfig MemoryConfig) *ModuleBuilder {
	return &ModuleBuilder{memoryConfig: memoryConfig}
}

// SetGasMetering selects the module's gas accounting mode.
func (b *ModuleBuilder) SetGasMetering(mode GasMetering) *ModuleBuilder {
	b.gasMetering = mode
	return b
}

// SetData installs the module's read-only data and initial heap
// contents (the rw_data that reset_memory recopies into the heap).
func (b *ModuleBuilder) SetData(roData, rwData []byte) *ModuleBuilder {
	b.roData = roData
	b.rwData = rwData
	return b
}

// AddBasicBlock appends a basic block of instructions, returning its
// block index. gasCost is the block's precomputed metered cost
// (ignored when the module disables gas metering).
func (b *ModuleBuilder) AddBasicBlock(gasCost uint32, instructions ...Instruction) BlockIndex {
	block := BlockIndex(len(b.blockStarts))
	b.blockStarts = append(b.blockStarts, uint32(len(b.instructions)))
	b.instructions = append(b.instructions, instructions...)
	b.gasCosts = append(b.gasCosts, gasCost)
	return block
}

// AddJumpTableEntry registers block as reachable via dynamic jump at
// the returned one-based index (index zero is reserved: it always
// misses, per original_source's VM_ADDR_RETURN_TO_HOST-adjacent jump
// table convention).
func (b *ModuleBuilder) AddJumpTableEntry(block BlockIndex) uint32 {
	b.jumpTable = append(b.jumpTable, block)
	return uint32(len(b.jumpTable))
}

// AddExport registers a named entry point at block.
func (b *ModuleBuilder) AddExport(name string, block BlockIndex) {
	b.exports = append(b.exports, Export{Name: name, Address: block})
}

// Build validates and returns the finished Module.
func (b *ModuleBuilder) Build() (*Module, error) {
	if err := b.memoryConfig.validate(); err != nil {
		return nil, err
	}
	if uint32(len(b.roData)) > b.memoryConfig.RoDataRange.Size {
		return nil, fmt.Errorf("pvm: read-only data (%d bytes) exceeds configured region size (%d bytes)", len(b.roData), b.memoryConfig.RoDataRange.Size)
	}
	if uint32(len(b.rwData)) > b.memoryConfig.HeapRange.Size {
		return nil, fmt.Errorf("pvm: initial heap data (%d bytes) exceeds configured heap size (%d bytes)", len(b.rwData), b.memoryConfig.HeapRange.Size)
	}
	roData := make([]byte, b.memoryConfig.RoDataRange.Size)
	copy(roData, b.roData)

	jumpTableIndexOf := make(map[BlockIndex]uint32, len(b.jumpTable))
	for i, block := range b.jumpTable {
		jumpTableIndexOf[block] = uint32(i + 1)
	}

	return &Module{
		instructions:         append([]Instruction(nil), b.instructions...),
		basicBlockStart:      append([]uint32(nil), b.blockStarts...),
		jumpTable:            append([]BlockIndex(nil), b.jumpTable...),
		gasCostForBasicBlock: append([]uint32(nil), b.gasCosts...),
		memoryConfig:         b.memoryConfig,
		roData:               roData,
		rwData:               append([]byte(nil), b.rwData...),
		exports:              append([]Export(nil), b.exports...),
		gasMetering:          b.gasMetering,
		jumpTableIndexOf:     jumpTableIndexOf,
	}, nil
}

// validate checks that the three memory regions are non-overlapping, a
// prerequisite the loader guarantees in the original system and that
// ModuleBuilder re-asserts since it stands in for that loader here.
func (c MemoryConfig) validate() error {
	ranges := []AddressRange{c.RoDataRange, c.HeapRange, c.StackRange}
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			if overlaps(ranges[i], ranges[j]) {
				return fmt.Errorf("pvm: memory regions overlap: [%d,%d) and [%d,%d)",
					ranges[i].Start, ranges[i].End(), ranges[j].Start, ranges[j].End())
			}
		}
	}
	return nil
}

func overlaps(a, b AddressRange) bool {
	return a.Start < b.End() && b.Start < a.End()
}
