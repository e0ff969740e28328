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

// Registers is the guest register file (component C2): 13 32-bit
// general-purpose registers. Unlike the teacher PROBE VM's 256-register
// file, which hard-wires register 0 as a discard/zero register at the
// storage layer, Registers treats every index uniformly (spec data
// model §3) — register 0's zero-register convention, if any, belongs to
// the producer that emits guest code, not to this core.
//
// A register write observer is *not* stored here: spec Design Notes §9
// places on_set_reg on the execution Context, since it must not outlive
// a single Run/StepOnce call. The dispatcher invokes it explicitly
// after calling Set.
type Registers struct {
	values [NumRegisters]uint32
}

// Get returns the current value of register reg.
func (r *Registers) Get(reg uint8) uint32 {
	return r.values[reg]
}

// Set writes value to register reg.
func (r *Registers) Set(reg uint8, value uint32) {
	r.values[reg] = value
}

// CopyFrom replaces every register with the corresponding entry of init,
// used by PrepareForCall to seed a fresh call's arguments.
func (r *Registers) CopyFrom(init [NumRegisters]uint32) {
	r.values = init
}

// Snapshot returns a copy of the register file's current contents.
func (r *Registers) Snapshot() [NumRegisters]uint32 {
	return r.values
}
