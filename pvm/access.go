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

// Access is the bounded handle an Instance lends to a host callback for
// the duration of a single ecalli. It is grounded on original_source's
// InterpretedAccess, which borrows the interpreter for exactly the
// callback's lifetime; Go has no borrow checker to enforce that
// statically, so Access instead poisons itself the instant the callback
// returns and panics on any later use — a host that stashes the handle
// finds out immediately, rather than silently corrupting a later call.
type Access struct {
	inst *Instance
	live bool
}

func newAccess(inst *Instance) *Access {
	return &Access{inst: inst, live: true}
}

// release poisons the handle; called once by the instance right after
// the host callback returns.
func (a *Access) release() {
	a.live = false
}

func (a *Access) checkLive() {
	if !a.live {
		panic("pvm: Access used after its host call returned")
	}
}

// GetReg returns the current value of register reg.
func (a *Access) GetReg(reg uint8) uint32 {
	a.checkLive()
	return a.inst.regs.Get(reg)
}

// SetReg writes value directly into register reg. Unlike a guest
// instruction's own register write, this bypasses the execution
// Context's on_set_reg observer, exactly mirroring
// InterpretedAccess::set_reg in the original interpreter.
func (a *Access) SetReg(reg uint8, value uint32) {
	a.checkLive()
	a.inst.regs.Set(reg, value)
}

// ReadMemoryInto copies len(buf) bytes starting at address into buf.
// An out-of-range read returns an ordinary error (not a TrapError)
// rather than panicking, since an out-of-range host read is a
// recoverable condition rather than API misuse.
func (a *Access) ReadMemoryInto(address uint32, buf []byte) error {
	a.checkLive()
	src, ok := a.inst.memory.Slice(address, uint32(len(buf)))
	if !ok {
		return fmt.Errorf("pvm: host read out of range: address=0x%x length=%d", address, len(buf))
	}
	copy(buf, src)
	return nil
}

// WriteMemory copies data into guest memory starting at address.
func (a *Access) WriteMemory(address uint32, data []byte) error {
	a.checkLive()
	dst, ok := a.inst.memory.SliceMut(address, uint32(len(data)))
	if !ok {
		return fmt.Errorf("pvm: host write out of range: address=0x%x length=%d", address, len(data))
	}
	copy(dst, data)
	return nil
}

// ProgramCounter returns the index, within the module's instruction
// stream, of the ecalli instruction that invoked the current callback.
func (a *Access) ProgramCounter() uint32 {
	a.checkLive()
	return a.inst.nthInstruction
}

// GasRemaining returns the instance's gas balance as visible to a host,
// clamped to zero (error handling design §7). The second result is
// false when the module has gas metering disabled, mirroring
// original_source's InterpretedAccess::gas_remaining() -> Option<Gas>:
// "disabled" and "exactly zero remaining" are distinct conditions and
// must not collapse to the same reported value.
func (a *Access) GasRemaining() (uint64, bool) {
	a.checkLive()
	return a.inst.gas.ReportedRemainingOption()
}

// ConsumeGas debits n units from the instance's gas balance. It never
// fails synchronously: exhausting the balance here saturates the
// counter, per the spec's pinned checked_sub_unsigned semantics, and
// the ecalli that invoked the callback reports ErrOutOfGas as soon as
// the callback returns.
func (a *Access) ConsumeGas(n uint64) {
	a.checkLive()
	a.inst.gas.Consume(n)
}
