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
	"errors"
	"testing"
)

func TestTrapErrorsCompareEqualRegardlessOfReason(t *testing.T) {
	a := Trap("misaligned jump")
	b := Trap("store out of range")

	if !errors.Is(a, ErrTrap) || !errors.Is(b, ErrTrap) {
		t.Fatalf("every TrapError must match the ErrTrap sentinel")
	}
	if !IsTrap(a) || !IsTrap(b) {
		t.Fatalf("IsTrap must recognize any TrapError")
	}
}

func TestTrapErrorMessageOmittedWhenReasonEmpty(t *testing.T) {
	if got := Trap("").Error(); got != "pvm: trap" {
		t.Fatalf("Error() = %q, want %q", got, "pvm: trap")
	}
}

func TestIsOutOfGas(t *testing.T) {
	if !IsOutOfGas(ErrOutOfGas) {
		t.Fatalf("IsOutOfGas must recognize ErrOutOfGas")
	}
	if IsOutOfGas(ErrHalted) {
		t.Fatalf("IsOutOfGas must not match unrelated sentinels")
	}
}
