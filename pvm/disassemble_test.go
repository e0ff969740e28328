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

import (
	"strings"
	"testing"
)

func buildDisassembleFixture(t *testing.T) *Module {
	t.Helper()
	b := NewModuleBuilder(testMemoryConfig())
	loop := b.AddBasicBlock(1,
		AddImm(1, 1, 1),
		BranchLessUnsignedImm(1, 10, 0),
	)
	b.AddBasicBlock(1, StoreU32(1, 0x10000), JumpIndirect(12, 0))
	b.AddExport("main", loop)

	module, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return module
}

func TestDisassembleProducesOneLinePerInstruction(t *testing.T) {
	module := buildDisassembleFixture(t)
	out := Disassemble(module)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(module.Instructions()) {
		t.Fatalf("got %d lines, want %d", len(lines), len(module.Instructions()))
	}
}

func TestDisassembleFormatsImmediateAndBranchOperands(t *testing.T) {
	module := buildDisassembleFixture(t)
	out := Disassemble(module)

	if !strings.Contains(out, "add_imm r1, r1, 0x1") {
		t.Fatalf("expected an add_imm line, got:\n%s", out)
	}
	if !strings.Contains(out, "branch_lt_u_imm r1, 0xa, @0") {
		t.Fatalf("expected a branch line targeting block 0, got:\n%s", out)
	}
}

func TestDisassembleFormatsStoreAndJumpIndirect(t *testing.T) {
	module := buildDisassembleFixture(t)
	out := Disassemble(module)

	if !strings.Contains(out, "store_u32 [0x10000], r1") {
		t.Fatalf("expected a store line with an absolute address, got:\n%s", out)
	}
	if !strings.Contains(out, "jump_indirect [r12+0x0]") {
		t.Fatalf("expected a jump_indirect line, got:\n%s", out)
	}
}

func TestDisassembleTrapAndFallthroughHaveNoOperands(t *testing.T) {
	b := NewModuleBuilder(testMemoryConfig())
	b.AddBasicBlock(0, TrapInstruction(), Fallthrough())
	module, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := Disassemble(module)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], "trap") || !strings.HasSuffix(lines[1], "fallthrough") {
		t.Fatalf("expected bare trap/fallthrough mnemonics, got:\n%s", out)
	}
}
