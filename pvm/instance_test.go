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

func testMemoryConfig() MemoryConfig {
	return MemoryConfig{
		HeapRange:  AddressRange{Start: 0x10000, Size: 0x1000},
		StackRange: AddressRange{Start: 0x20000, Size: 0x1000},
	}
}

// buildReturningModule builds a single-export module whose one basic
// block runs the given instructions and then returns to the host via a
// dynamic jump through register 12 (by convention, seeded to
// ReturnToHost by the test).
func buildReturningModule(t *testing.T, mode GasMetering, gasCost uint32, instructions ...Instruction) *Module {
	t.Helper()
	b := NewModuleBuilder(testMemoryConfig())
	b.SetGasMetering(mode)
	all := append(append([]Instruction{}, instructions...), JumpIndirect(12, 0))
	block := b.AddBasicBlock(gasCost, all...)
	b.AddExport("main", block)
	module, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return module
}

func TestRunHostCallRoundTrip(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0, Ecalli(7), AddImm(1, 1, 1))

	inst := NewInstance(module)
	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost

	var observedIndex uint32
	ctx := Context{
		OnHostCall: func(hostCallIndex uint32, access *Access) error {
			observedIndex = hostCallIndex
			access.SetReg(1, 100)
			return nil
		},
	}

	if err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, ctx); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if observedIndex != 7 {
		t.Fatalf("host call index = %d, want 7", observedIndex)
	}
	if got := inst.Registers()[1]; got != 101 {
		t.Fatalf("r1 = %d, want 101 (100 set by host, then +1)", got)
	}
}

func TestRunGasExhaustionAtBlockEntry(t *testing.T) {
	module := buildReturningModule(t, GasMeteringSync, 1000, AddImm(1, 1, 1))
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost
	gas := int64(10)

	err := inst.Call(0, ExecutionConfig{InitialRegisters: initial, Gas: &gas}, Context{})
	if !IsOutOfGas(err) {
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
	if inst.Registers()[1] != 0 {
		t.Fatalf("no instruction of the exhausted block should have executed")
	}
}

func TestRunGasBudgetInheritedAcrossCalls(t *testing.T) {
	module := buildReturningModule(t, GasMeteringSync, 3, AddImm(1, 1, 1))
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost
	gas := int64(10)

	if err := inst.Call(0, ExecutionConfig{InitialRegisters: initial, Gas: &gas}, Context{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if got, ok := inst.GasRemaining(); !ok || got != 7 {
		t.Fatalf("gas remaining after first call = (%d, %v), want (7, true)", got, ok)
	}

	// A second call with no new gas figure inherits the prior balance.
	if err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, Context{}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got, ok := inst.GasRemaining(); !ok || got != 4 {
		t.Fatalf("gas remaining after second call = (%d, %v), want (4, true)", got, ok)
	}
}

func TestRunGasRemainingAbsentWhenMeteringDisabled(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0, AddImm(1, 1, 1))
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost

	if err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, Context{}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if got, ok := inst.GasRemaining(); ok {
		t.Fatalf("GasRemaining() = (%d, true), want absent when metering is disabled", got)
	}
}

func TestRunHostCallbackGasConsumption(t *testing.T) {
	for _, n := range []uint64{1, 2, 3} {
		module := buildReturningModule(t, GasMeteringSync, 1, Ecalli(0))
		inst := NewInstance(module)

		var initial [NumRegisters]uint32
		initial[12] = ReturnToHost
		gas := int64(2)

		ctx := Context{OnHostCall: func(hostCallIndex uint32, access *Access) error {
			access.ConsumeGas(n)
			return nil
		}}

		err := inst.Call(0, ExecutionConfig{InitialRegisters: initial, Gas: &gas}, ctx)
		if n >= 2 {
			if !IsOutOfGas(err) {
				t.Fatalf("n=%d: expected ErrOutOfGas, got %v", n, err)
			}
		} else if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
	}
}

func TestRunStoreOutOfRangeTraps(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0, StoreImmU32(0xDEADBEEF, 0x99999))
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost

	err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, Context{})
	if !IsTrap(err) {
		t.Fatalf("expected a trap for an out-of-range store, got %v", err)
	}
}

func TestRunDynamicJumpToReturnToHost(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0)
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost

	if err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, Context{}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestRunTrapInstructionCannotBeMaskedByErrorsIs(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0, TrapInstruction())
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost

	err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, Context{})
	if !errors.Is(err, ErrTrap) {
		t.Fatalf("expected errors.Is(err, ErrTrap) to hold, got %v", err)
	}
}

func TestStepOnceAdvancesOneInstructionAtATime(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0, AddImm(1, 1, 1), AddImm(1, 1, 1))
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost
	if err := inst.PrepareForCall(0, ExecutionConfig{InitialRegisters: initial}); err != nil {
		t.Fatalf("PrepareForCall: %v", err)
	}

	if err := inst.StepOnce(Context{}); err != nil {
		t.Fatalf("first StepOnce: %v", err)
	}
	if got := inst.Registers()[1]; got != 1 {
		t.Fatalf("after one step, r1 = %d, want 1", got)
	}
	if err := inst.StepOnce(Context{}); err != nil {
		t.Fatalf("second StepOnce: %v", err)
	}
	if got := inst.Registers()[1]; got != 2 {
		t.Fatalf("after two steps, r1 = %d, want 2", got)
	}
}

func TestHaltedInstanceRejectsFurtherSteps(t *testing.T) {
	module := buildReturningModule(t, GasMeteringNone, 0)
	inst := NewInstance(module)

	var initial [NumRegisters]uint32
	initial[12] = ReturnToHost
	if err := inst.Call(0, ExecutionConfig{InitialRegisters: initial}, Context{}); err != nil {
		t.Fatalf("Call: %v", err)
	}

	if err := inst.StepOnce(Context{}); !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted after the instance already returned, got %v", err)
	}
}
