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

// execute dispatches a single decoded instruction. Per the spec's
// Design Notes §9, this is one mutable-environment switch rather than a
// method per operation on an open instruction hierarchy; every branch
// is grounded on the matching InstructionVisitor method in
// original_source/crates/polkavm/src/interpreter.rs.
func (inst *Instance) execute(ctx Context, in Instruction) error {
	switch in.Op {
	case OpTrap:
		return Trap("")
	case OpFallthrough:
		inst.nthInstruction++
		inst.nthBasicBlock++
		return inst.onStartNewBasicBlock()
	case OpEcalli:
		return inst.ecalli(ctx, in.Imm)

	case OpAdd:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a + b })
	case OpSub:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a - b })
	case OpAnd:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a & b })
	case OpOr:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a | b })
	case OpXor:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a ^ b })
	case OpMul:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a * b })
	case OpMulUpperSignedSigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(mulUpperSignedSigned(int32(a), int32(b)))
		})
	case OpMulUpperUnsignedUnsigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, mulUpperUnsignedUnsigned)
	case OpMulUpperSignedUnsigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(mulUpperSignedUnsigned(int32(a), b))
		})
	case OpDivUnsigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, divUnsigned)
	case OpDivSigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(divSigned(int32(a), int32(b)))
		})
	case OpRemUnsigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, remUnsigned)
	case OpRemSigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(remSigned(int32(a), int32(b)))
		})
	case OpShiftLogicalLeft:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a << (b & 31) })
	case OpShiftLogicalRight:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a >> (b & 31) })
	case OpShiftArithmeticRight:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(int32(a) >> (b & 31))
		})
	case OpSetLessThanUnsigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return boolToU32(a < b) })
	case OpSetLessThanSigned:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return boolToU32(int32(a) < int32(b))
		})
	case OpMoveReg:
		return inst.set3(ctx, in.Dst, in.Src1, ImmOperand(0), func(a, _ uint32) uint32 { return a })
	case OpCmovIfZero, OpCmovIfNotZero:
		if (inst.get(in.Src2) == 0) == (in.Op == OpCmovIfZero) {
			if err := inst.set(ctx, in.Dst, inst.get(in.Src1)); err != nil {
				return err
			}
		}
		inst.nthInstruction++
		return nil

	case OpAddImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a + b })
	case OpNegateAndAddImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return b - a })
	case OpMulImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a * b })
	case OpMulUpperSignedSignedImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(mulUpperSignedSigned(int32(a), int32(b)))
		})
	case OpMulUpperUnsignedUnsignedImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, mulUpperUnsignedUnsigned)
	case OpOrImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a | b })
	case OpAndImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a & b })
	case OpXorImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a ^ b })
	case OpSetLessThanUnsignedImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return boolToU32(a < b) })
	case OpSetGreaterThanUnsignedImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return boolToU32(a > b) })
	case OpSetLessThanSignedImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return boolToU32(int32(a) < int32(b))
		})
	case OpSetGreaterThanSignedImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return boolToU32(int32(a) > int32(b))
		})
	case OpShiftLogicalLeftImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a << (b & 31) })
	case OpShiftLogicalLeftImmAlt:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return b << (a & 31) })
	case OpShiftLogicalRightImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return a >> (b & 31) })
	case OpShiftLogicalRightImmAlt:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 { return b >> (a & 31) })
	case OpShiftArithmeticRightImm:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(int32(a) >> (b & 31))
		})
	case OpShiftArithmeticRightImmAlt:
		return inst.set3(ctx, in.Dst, in.Src1, in.Src2, func(a, b uint32) uint32 {
			return uint32(int32(b) >> (a & 31))
		})
	case OpLoadImm:
		return inst.set1(ctx, in.Dst, in.Imm)

	case OpLoadU8:
		return inst.load(ctx, in.Dst, false, 0, in.Offset, 1, false)
	case OpLoadI8:
		return inst.load(ctx, in.Dst, false, 0, in.Offset, 1, true)
	case OpLoadU16:
		return inst.load(ctx, in.Dst, false, 0, in.Offset, 2, false)
	case OpLoadI16:
		return inst.load(ctx, in.Dst, false, 0, in.Offset, 2, true)
	case OpLoadU32:
		return inst.load(ctx, in.Dst, false, 0, in.Offset, 4, false)
	case OpLoadIndirectU8:
		return inst.load(ctx, in.Dst, true, in.Base, in.Offset, 1, false)
	case OpLoadIndirectI8:
		return inst.load(ctx, in.Dst, true, in.Base, in.Offset, 1, true)
	case OpLoadIndirectU16:
		return inst.load(ctx, in.Dst, true, in.Base, in.Offset, 2, false)
	case OpLoadIndirectI16:
		return inst.load(ctx, in.Dst, true, in.Base, in.Offset, 2, true)
	case OpLoadIndirectU32:
		return inst.load(ctx, in.Dst, true, in.Base, in.Offset, 4, false)

	case OpStoreU8:
		return inst.store(ctx, in.Src1, false, 0, in.Offset, 1)
	case OpStoreU16:
		return inst.store(ctx, in.Src1, false, 0, in.Offset, 2)
	case OpStoreU32:
		return inst.store(ctx, in.Src1, false, 0, in.Offset, 4)
	case OpStoreImmU8:
		return inst.store(ctx, in.Src1, false, 0, in.Offset, 1)
	case OpStoreImmU16:
		return inst.store(ctx, in.Src1, false, 0, in.Offset, 2)
	case OpStoreImmU32:
		return inst.store(ctx, in.Src1, false, 0, in.Offset, 4)
	case OpStoreIndirectU8:
		return inst.store(ctx, in.Src1, true, in.Base, in.Offset, 1)
	case OpStoreIndirectU16:
		return inst.store(ctx, in.Src1, true, in.Base, in.Offset, 2)
	case OpStoreIndirectU32:
		return inst.store(ctx, in.Src1, true, in.Base, in.Offset, 4)
	case OpStoreImmIndirectU8:
		return inst.store(ctx, in.Src1, true, in.Base, in.Offset, 1)
	case OpStoreImmIndirectU16:
		return inst.store(ctx, in.Src1, true, in.Base, in.Offset, 2)
	case OpStoreImmIndirectU32:
		return inst.store(ctx, in.Src1, true, in.Base, in.Offset, 4)

	case OpBranchEq:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a == b })
	case OpBranchEqImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a == b })
	case OpBranchNotEq:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a != b })
	case OpBranchNotEqImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a != b })
	case OpBranchLessUnsigned:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a < b })
	case OpBranchLessUnsignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a < b })
	case OpBranchLessSigned:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return int32(a) < int32(b) })
	case OpBranchLessSignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return int32(a) < int32(b) })
	case OpBranchGreaterOrEqualUnsigned:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a >= b })
	case OpBranchGreaterOrEqualUnsignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a >= b })
	case OpBranchGreaterOrEqualSigned:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return int32(a) >= int32(b) })
	case OpBranchGreaterOrEqualSignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return int32(a) >= int32(b) })
	case OpBranchLessOrEqualUnsignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a <= b })
	case OpBranchLessOrEqualSignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return int32(a) <= int32(b) })
	case OpBranchGreaterUnsignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return a > b })
	case OpBranchGreaterSignedImm:
		return inst.branch(in.Src1, in.Src2, in.Target, func(a, b uint32) bool { return int32(a) > int32(b) })

	case OpJump:
		return inst.jump(in.Target)
	case OpJumpIndirect:
		return inst.dynamicJump(ctx, nil, in.Base, in.Offset)
	case OpCall:
		returnAddress, err := inst.returnAddress()
		if err != nil {
			return err
		}
		if err := inst.set(ctx, in.Dst, returnAddress); err != nil {
			return err
		}
		return inst.jump(in.Target)
	case OpCallIndirect:
		returnAddress, err := inst.returnAddress()
		if err != nil {
			return err
		}
		return inst.dynamicJump(ctx, &callReturn{reg: in.Dst, address: returnAddress}, in.Base, in.Offset)

	default:
		return Trap("unimplemented opcode")
	}
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// get resolves an operand to its runtime value.
func (inst *Instance) get(operand RegImm) uint32 {
	if operand.IsImm {
		return operand.Imm
	}
	return inst.regs.Get(operand.Reg)
}

// set writes value to register dst and, unless ctx suppresses it,
// invokes the register-write observer before reporting success.
func (inst *Instance) set(ctx Context, dst uint8, value uint32) error {
	inst.regs.Set(dst, value)
	if ctx.OnSetReg != nil {
		if err := ctx.OnSetReg(dst, value); err != nil {
			return Trap(err.Error())
		}
	}
	return nil
}

// set1 writes an immediate directly to dst (load_imm) and advances the
// program counter by one instruction.
func (inst *Instance) set1(ctx Context, dst uint8, value uint32) error {
	if err := inst.set(ctx, dst, value); err != nil {
		return err
	}
	inst.nthInstruction++
	return nil
}

// set3 is the workhorse for every register-register and
// register-immediate arithmetic or logic instruction.
func (inst *Instance) set3(ctx Context, dst uint8, s1, s2 RegImm, op func(a, b uint32) uint32) error {
	a := inst.get(s1)
	b := inst.get(s2)
	if err := inst.set(ctx, dst, op(a, b)); err != nil {
		return err
	}
	inst.nthInstruction++
	return nil
}

// branch evaluates cmp and either falls through to the next basic block
// or transfers to target, then charges the newly entered block's gas
// cost.
func (inst *Instance) branch(s1, s2 RegImm, target BlockIndex, cmp func(a, b uint32) bool) error {
	a := inst.get(s1)
	b := inst.get(s2)
	if cmp(a, b) {
		nthInstruction, ok := inst.module.InstructionByBasicBlock(target)
		if !ok {
			return Trap("branch target is not a valid basic block")
		}
		inst.nthInstruction = nthInstruction
		inst.nthBasicBlock = target
	} else {
		inst.nthInstruction++
		inst.nthBasicBlock++
	}
	return inst.onStartNewBasicBlock()
}

// load reads a width-byte value (1, 2, or 4) from base+offset
// (base defaults to zero when hasBase is false), sign-extending when
// signed is true, and advances the program counter.
func (inst *Instance) load(ctx Context, dst uint8, hasBase bool, base uint8, offset uint32, width int, signed bool) error {
	address := offset
	if hasBase {
		address = inst.regs.Get(base) + offset
	}
	slice, ok := inst.memory.Slice(address, uint32(width))
	if !ok {
		return Trap("load out of range")
	}
	value := decodeLoad(slice, width, signed)
	if err := inst.set(ctx, dst, value); err != nil {
		return err
	}
	inst.nthInstruction++
	return nil
}

func decodeLoad(slice []byte, width int, signed bool) uint32 {
	switch width {
	case 1:
		if signed {
			return uint32(int32(int8(slice[0])))
		}
		return uint32(slice[0])
	case 2:
		v := uint16(slice[0]) | uint16(slice[1])<<8
		if signed {
			return uint32(int32(int16(v)))
		}
		return uint32(v)
	default:
		return uint32(slice[0]) | uint32(slice[1])<<8 | uint32(slice[2])<<16 | uint32(slice[3])<<24
	}
}

// store writes a width-byte value to base+offset, invoking the store
// observer on success, and advances the program counter.
func (inst *Instance) store(ctx Context, src RegImm, hasBase bool, base uint8, offset uint32, width int) error {
	address := offset
	if hasBase {
		address = inst.regs.Get(base) + offset
	}
	value := inst.get(src)
	slice, ok := inst.memory.SliceMut(address, uint32(width))
	if !ok {
		return Trap("store out of range")
	}
	encodeStore(slice, value, width)

	if ctx.OnStore != nil {
		if err := ctx.OnStore(address, slice); err != nil {
			return Trap(err.Error())
		}
	}
	inst.nthInstruction++
	return nil
}

func encodeStore(slice []byte, value uint32, width int) {
	switch width {
	case 1:
		slice[0] = byte(value)
	case 2:
		slice[0] = byte(value)
		slice[1] = byte(value >> 8)
	default:
		slice[0] = byte(value)
		slice[1] = byte(value >> 8)
		slice[2] = byte(value >> 16)
		slice[3] = byte(value >> 24)
	}
}

// returnAddress computes the dynamic-jump-encoded address of the basic
// block immediately following the current one, the address a call
// instruction writes into its link register.
func (inst *Instance) returnAddress() (uint32, error) {
	index, ok := inst.module.JumpTableIndexByBasicBlock(inst.nthBasicBlock + 1)
	if !ok {
		return 0, Trap("call has no valid return basic block")
	}
	return index * CodeAddressAlignment, nil
}

// jump transfers control unconditionally to target and charges its gas
// cost.
func (inst *Instance) jump(target BlockIndex) error {
	nthInstruction, ok := inst.module.InstructionByBasicBlock(target)
	if !ok {
		return Trap("jump target is not a valid basic block")
	}
	inst.nthBasicBlock = target
	inst.nthInstruction = nthInstruction
	return inst.onStartNewBasicBlock()
}

// callReturn carries the link register and precomputed return address
// for a call_indirect. dynamicJump writes it before resolving the
// target, so it is set even when the jump resolves to RETURN_TO_HOST.
type callReturn struct {
	reg     uint8
	address uint32
}

// dynamicJump resolves base+offset to a basic block through the
// module's jump table. The check order is pinned exactly from
// original_source's Visitor::dynamic_jump: RETURN_TO_HOST sentinel,
// then zero target, then alignment, then jump-table miss.
func (inst *Instance) dynamicJump(ctx Context, call *callReturn, base uint8, offset uint32) error {
	target := inst.regs.Get(base) + offset
	if call != nil {
		if err := inst.set(ctx, call.reg, call.address); err != nil {
			return err
		}
	}

	if target == ReturnToHost {
		inst.returnToHost = true
		return nil
	}
	if target == 0 {
		return Trap("dynamic jump to address zero")
	}
	if target%CodeAddressAlignment != 0 {
		return Trap("dynamic jump to a misaligned address")
	}

	block, ok := inst.module.BasicBlockByJumpTableIndex(target / CodeAddressAlignment)
	if !ok {
		return Trap("dynamic jump missed the jump table")
	}
	nthInstruction, ok := inst.module.InstructionByBasicBlock(block)
	if !ok {
		return Trap("dynamic jump target is not a valid basic block")
	}

	inst.nthBasicBlock = block
	inst.nthInstruction = nthInstruction
	return inst.onStartNewBasicBlock()
}

// ecalli invokes the host callback registered for hostCallIndex.
func (inst *Instance) ecalli(ctx Context, hostCallIndex uint32) error {
	if ctx.OnHostCall == nil {
		return Trap("ecalli with no host-call handler installed")
	}
	access := newAccess(inst)
	err := ctx.OnHostCall(hostCallIndex, access)
	access.release()
	if err != nil {
		return Trap(err.Error())
	}
	inst.nthInstruction++
	return inst.checkGas()
}
