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

func TestRegistersGetSet(t *testing.T) {
	var r Registers
	r.Set(3, 0xDEADBEEF)
	if got := r.Get(3); got != 0xDEADBEEF {
		t.Fatalf("Get(3) = 0x%x, want 0xDEADBEEF", got)
	}
	if got := r.Get(0); got != 0 {
		t.Fatalf("register 0 of a fresh file must read back zero, got 0x%x", got)
	}
}

func TestRegistersCopyFromAndSnapshot(t *testing.T) {
	var r Registers
	var init [NumRegisters]uint32
	init[5] = 42
	r.CopyFrom(init)

	snap := r.Snapshot()
	if snap[5] != 42 {
		t.Fatalf("Snapshot()[5] = %d, want 42", snap[5])
	}

	r.Set(5, 1)
	if snap[5] != 42 {
		t.Fatalf("a prior Snapshot must not alias live register storage")
	}
}
