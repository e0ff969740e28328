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

// HostCallFunc handles a guest ecalli. It receives the host-call index
// encoded in the instruction and a short-lived Access handle; any error
// it returns becomes a trap that aborts the call.
type HostCallFunc func(hostCallIndex uint32, access *Access) error

// SetRegFunc observes every register write a guest instruction makes
// (but not Access.SetReg, which bypasses it, mirroring the original
// interpreter's InterpretedAccess::set_reg). Returning an error traps
// the instance.
type SetRegFunc func(reg uint8, value uint32) error

// StoreFunc observes every successful guest memory store, receiving the
// address and the bytes written. Returning an error traps the instance.
type StoreFunc func(address uint32, data []byte) error

// Context bundles the optional callbacks for a single Run, Call, or
// StepOnce invocation, grounded on original_source's InterpreterContext.
// A zero Context runs with no host-call handler: any ecalli then traps.
type Context struct {
	OnHostCall HostCallFunc
	OnSetReg   SetRegFunc
	OnStore    StoreFunc
}

// ExecutionConfig configures a call into one of a module's exports.
type ExecutionConfig struct {
	InitialRegisters [NumRegisters]uint32
	// Gas, when non-nil and the module has gas metering enabled, seeds
	// the gas counter. A nil Gas on a re-entrant call leaves the
	// previous call's remaining balance in place.
	Gas *int64
	// ResetMemoryAfterExecution, when true, makes Call restore the
	// heap and stack to their initial contents once the call returns
	// (successfully or not).
	ResetMemoryAfterExecution bool
}

// Instance is the sandboxed execution core (component C5): one
// module's program counter, registers, memory, and gas balance, driven
// one call or one instruction at a time.
type Instance struct {
	module *Module
	memory *Memory
	regs   Registers

	nthInstruction uint32
	nthBasicBlock  BlockIndex
	returnToHost   bool
	inNewExecution bool
	cycleCounter   uint64

	gas GasMeter
}

// NewInstance creates an instance bound to module, with a freshly reset
// heap and stack.
func NewInstance(module *Module) *Instance {
	inst := &Instance{
		module:         module,
		memory:         newMemory(module.memoryConfig, module.roData),
		nthInstruction: ReturnToHost,
		returnToHost:   true,
	}
	inst.gas.mode = module.gasMetering
	inst.ResetMemory()
	return inst
}

// ResetMemory restores the heap to the module's initial rw_data
// (zero-padded) and zeros the stack, per spec §4.5.
func (inst *Instance) ResetMemory() {
	inst.memory.reset(inst.module.rwData)
}

// CycleCounter returns the number of instructions dispatched so far
// across this instance's lifetime.
func (inst *Instance) CycleCounter() uint64 {
	return inst.cycleCounter
}

// ProgramCounter returns the index of the next instruction to execute.
func (inst *Instance) ProgramCounter() uint32 {
	return inst.nthInstruction
}

// GasRemaining reports the instance's current gas balance, clamped to
// zero. The second result is false when the module has gas metering
// disabled (spec §3 invariant: gas_remaining is present iff gas
// metering is enabled), matching original_source's
// InterpretedAccess::gas_remaining() -> Option<Gas>.
func (inst *Instance) GasRemaining() (uint64, bool) {
	return inst.gas.ReportedRemainingOption()
}

// Registers returns a snapshot of the instance's current register
// values.
func (inst *Instance) Registers() [NumRegisters]uint32 {
	return inst.regs.Snapshot()
}

// PrepareForCall rewinds the instance to the start of the export named
// by exportIndex, seeding registers and (if config.Gas is non-nil) the
// gas counter, without running anything yet.
func (inst *Instance) PrepareForCall(exportIndex int, config ExecutionConfig) error {
	export, ok := inst.module.Export(exportIndex)
	if !ok {
		return fmt.Errorf("pvm: invalid export index %d", exportIndex)
	}
	nthInstruction, ok := inst.module.InstructionByBasicBlock(export.Address)
	if !ok {
		return fmt.Errorf("pvm: export %q points at an invalid basic block %d", export.Name, export.Address)
	}

	inst.returnToHost = false
	inst.regs.CopyFrom(config.InitialRegisters)
	inst.nthInstruction = nthInstruction
	inst.nthBasicBlock = export.Address

	if inst.gas.Enabled() {
		inst.gas.Seed(config.Gas)
	} else {
		inst.gas.remaining = 0
	}

	inst.inNewExecution = true
	return nil
}

// Run executes instructions until the guest transfers control back to
// the host (a RETURN_TO_HOST dynamic jump) or an error interrupts it.
func (inst *Instance) Run(ctx Context) error {
	if err := inst.enterPendingBasicBlock(); err != nil {
		return err
	}

	for {
		if err := inst.stepInstruction(ctx); err != nil {
			return err
		}
		if inst.returnToHost {
			return nil
		}
	}
}

// StepOnce executes exactly one instruction.
func (inst *Instance) StepOnce(ctx Context) error {
	if err := inst.enterPendingBasicBlock(); err != nil {
		return err
	}
	return inst.stepInstruction(ctx)
}

// Call is the convenience entry point combining PrepareForCall and Run,
// optionally resetting memory afterwards, grounded on
// InterpretedInstance::call.
func (inst *Instance) Call(exportIndex int, config ExecutionConfig, ctx Context) error {
	if err := inst.PrepareForCall(exportIndex, config); err != nil {
		return err
	}
	result := inst.Run(ctx)
	if config.ResetMemoryAfterExecution {
		inst.ResetMemory()
	}
	return result
}

func (inst *Instance) enterPendingBasicBlock() error {
	if inst.returnToHost && !inst.inNewExecution {
		return ErrHalted
	}
	if inst.inNewExecution {
		inst.inNewExecution = false
		return inst.onStartNewBasicBlock()
	}
	return nil
}

func (inst *Instance) stepInstruction(ctx Context) error {
	inst.cycleCounter++
	instructions := inst.module.Instructions()
	if int(inst.nthInstruction) >= len(instructions) {
		return Trap("")
	}
	instruction := instructions[inst.nthInstruction]
	return inst.execute(ctx, instruction)
}

// onStartNewBasicBlock debits the block's precomputed gas cost before
// its first instruction runs (gas accounting §5, "debited ... at the
// moment execution enters a basic block").
func (inst *Instance) onStartNewBasicBlock() error {
	return inst.gas.ChargeBlock(inst.module.GasCostForBasicBlock(inst.nthBasicBlock))
}

// checkGas reports ErrOutOfGas if a host callback has driven the
// balance negative (ecalli rechecks this immediately after the
// callback returns, per original_source's Visitor::ecalli).
func (inst *Instance) checkGas() error {
	if inst.gas.Enabled() && inst.gas.Remaining() < 0 {
		return ErrOutOfGas
	}
	return nil
}
