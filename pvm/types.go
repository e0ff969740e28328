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

// Package pvm implements the sandboxed execution core for a 32-bit
// register-based guest instruction set: a basic-block-structured
// interpreter with bounded memory regions, host-call trampolines, and
// deterministic gas metering.
//
// Unlike the PROBE language's own register VM (256 general-purpose
// 64-bit registers, a 4-byte fixed encoding, no memory regions), this
// package interprets a guest ISA with 13 32-bit registers, a partitioned
// address space (read-only data, heap, stack), and an indirection layer
// — the jump table — that mediates every dynamic control transfer so a
// guest can never branch into the middle of a basic block or into host
// memory.
package pvm

// NumRegisters is the number of general-purpose guest registers (spec
// data model §3). Register #0 is the producer's conventional zero
// register, but the core itself treats all 13 registers uniformly.
const NumRegisters = 13

// BlockIndex identifies a basic block within a module's instruction
// stream.
type BlockIndex = uint32

// ReturnToHost is the distinguished guest address that, when used as a
// dynamic jump target, ends a call successfully. It lies outside all
// three memory regions and is never a valid jump-table index.
const ReturnToHost uint32 = 0xFFFF_0000

// CodeAddressAlignment is the fixed power-of-two scaling factor between
// jump-table indices and the guest-visible code addresses built from
// them (external interfaces §6, "code address alignment"). It is part
// of the guest ABI, not a tunable.
const CodeAddressAlignment uint32 = 4

// RegImm is an instruction operand that is either a register index or a
// 32-bit immediate, mirroring PolkaVM's own utils::RegImm (see
// original_source/crates/polkavm/src/interpreter.rs, Visitor::get).
type RegImm struct {
	IsImm bool
	Reg   uint8
	Imm   uint32
}

// RegOperand builds a register-valued operand.
func RegOperand(reg uint8) RegImm { return RegImm{Reg: reg} }

// ImmOperand builds an immediate-valued operand.
func ImmOperand(value uint32) RegImm { return RegImm{IsImm: true, Imm: value} }
