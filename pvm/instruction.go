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

// Instruction is a single decoded guest operation. Rather than modeling
// the guest ISA as a tagged union with one Go type per operation (the
// spec's Design Notes §9 explicitly steers away from an open class
// hierarchy), every operation is represented by this one flat struct,
// with Op selecting which fields apply — mirroring how the teacher's
// own fixed 4-byte [opcode|a|b|c] word is reinterpreted per opcode, and
// how original_source's Visitor::get resolves a RegImm lazily rather
// than branching on an enum of operand shapes.
type Instruction struct {
	Op Opcode

	Dst  uint8
	Src1 RegImm
	Src2 RegImm

	Base    uint8
	HasBase bool
	Offset  uint32

	// Target is the basic block a branch, jump, or call transfers
	// control to on success; it is a block index, resolved to that
	// block's first instruction by the module when the instruction
	// executes.
	Target BlockIndex

	// Imm carries ecalli's host-call index and load_imm's constant.
	Imm uint32
}

func reg2(op Opcode, dst uint8, s1, s2 uint8) Instruction {
	return Instruction{Op: op, Dst: dst, Src1: RegOperand(s1), Src2: RegOperand(s2)}
}

func regImm(op Opcode, dst uint8, s1 uint8, imm uint32) Instruction {
	return Instruction{Op: op, Dst: dst, Src1: RegOperand(s1), Src2: ImmOperand(imm)}
}

// Register-register arithmetic and logic.

func Add(dst, s1, s2 uint8) Instruction                  { return reg2(OpAdd, dst, s1, s2) }
func Sub(dst, s1, s2 uint8) Instruction                  { return reg2(OpSub, dst, s1, s2) }
func And(dst, s1, s2 uint8) Instruction                  { return reg2(OpAnd, dst, s1, s2) }
func Or(dst, s1, s2 uint8) Instruction                   { return reg2(OpOr, dst, s1, s2) }
func Xor(dst, s1, s2 uint8) Instruction                  { return reg2(OpXor, dst, s1, s2) }
func Mul(dst, s1, s2 uint8) Instruction                  { return reg2(OpMul, dst, s1, s2) }
func MulUpperSignedSigned(dst, s1, s2 uint8) Instruction { return reg2(OpMulUpperSignedSigned, dst, s1, s2) }
func MulUpperUnsignedUnsigned(dst, s1, s2 uint8) Instruction {
	return reg2(OpMulUpperUnsignedUnsigned, dst, s1, s2)
}
func MulUpperSignedUnsigned(dst, s1, s2 uint8) Instruction {
	return reg2(OpMulUpperSignedUnsigned, dst, s1, s2)
}
func DivUnsigned(dst, s1, s2 uint8) Instruction       { return reg2(OpDivUnsigned, dst, s1, s2) }
func DivSigned(dst, s1, s2 uint8) Instruction         { return reg2(OpDivSigned, dst, s1, s2) }
func RemUnsigned(dst, s1, s2 uint8) Instruction       { return reg2(OpRemUnsigned, dst, s1, s2) }
func RemSigned(dst, s1, s2 uint8) Instruction         { return reg2(OpRemSigned, dst, s1, s2) }
func ShiftLogicalLeft(dst, s1, s2 uint8) Instruction  { return reg2(OpShiftLogicalLeft, dst, s1, s2) }
func ShiftLogicalRight(dst, s1, s2 uint8) Instruction { return reg2(OpShiftLogicalRight, dst, s1, s2) }
func ShiftArithmeticRight(dst, s1, s2 uint8) Instruction {
	return reg2(OpShiftArithmeticRight, dst, s1, s2)
}
func SetLessThanUnsigned(dst, s1, s2 uint8) Instruction { return reg2(OpSetLessThanUnsigned, dst, s1, s2) }
func SetLessThanSigned(dst, s1, s2 uint8) Instruction   { return reg2(OpSetLessThanSigned, dst, s1, s2) }
func MoveReg(dst, src uint8) Instruction {
	return Instruction{Op: OpMoveReg, Dst: dst, Src1: RegOperand(src)}
}
func CmovIfZero(dst, src, cond uint8) Instruction {
	return Instruction{Op: OpCmovIfZero, Dst: dst, Src1: RegOperand(src), Src2: RegOperand(cond)}
}
func CmovIfNotZero(dst, src, cond uint8) Instruction {
	return Instruction{Op: OpCmovIfNotZero, Dst: dst, Src1: RegOperand(src), Src2: RegOperand(cond)}
}

// Register-immediate arithmetic and logic.

func AddImm(dst, s1 uint8, imm uint32) Instruction { return regImm(OpAddImm, dst, s1, imm) }
func NegateAndAddImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpNegateAndAddImm, dst, s1, imm)
}
func MulImm(dst, s1 uint8, imm uint32) Instruction { return regImm(OpMulImm, dst, s1, imm) }
func MulUpperSignedSignedImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpMulUpperSignedSignedImm, dst, s1, imm)
}
func MulUpperUnsignedUnsignedImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpMulUpperUnsignedUnsignedImm, dst, s1, imm)
}
func OrImm(dst, s1 uint8, imm uint32) Instruction  { return regImm(OpOrImm, dst, s1, imm) }
func AndImm(dst, s1 uint8, imm uint32) Instruction { return regImm(OpAndImm, dst, s1, imm) }
func XorImm(dst, s1 uint8, imm uint32) Instruction { return regImm(OpXorImm, dst, s1, imm) }
func SetLessThanUnsignedImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpSetLessThanUnsignedImm, dst, s1, imm)
}
func SetGreaterThanUnsignedImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpSetGreaterThanUnsignedImm, dst, s1, imm)
}
func SetLessThanSignedImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpSetLessThanSignedImm, dst, s1, imm)
}
func SetGreaterThanSignedImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpSetGreaterThanSignedImm, dst, s1, imm)
}
func ShiftLogicalLeftImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpShiftLogicalLeftImm, dst, s1, imm)
}

// ShiftLogicalLeftImmAlt computes imm << s1 — the reversed-operand
// shift variant where the immediate is the value and the register
// supplies the shift amount (original_source's *_imm_alt family).
func ShiftLogicalLeftImmAlt(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpShiftLogicalLeftImmAlt, dst, s1, imm)
}
func ShiftLogicalRightImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpShiftLogicalRightImm, dst, s1, imm)
}
func ShiftLogicalRightImmAlt(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpShiftLogicalRightImmAlt, dst, s1, imm)
}
func ShiftArithmeticRightImm(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpShiftArithmeticRightImm, dst, s1, imm)
}
func ShiftArithmeticRightImmAlt(dst, s1 uint8, imm uint32) Instruction {
	return regImm(OpShiftArithmeticRightImmAlt, dst, s1, imm)
}
func LoadImm(dst uint8, imm uint32) Instruction {
	return Instruction{Op: OpLoadImm, Dst: dst, Imm: imm}
}

// Direct loads and stores (offset only).

func load(op Opcode, dst uint8, offset uint32) Instruction {
	return Instruction{Op: op, Dst: dst, Offset: offset}
}
func store(op Opcode, src uint8, offset uint32) Instruction {
	return Instruction{Op: op, Src1: RegOperand(src), Offset: offset}
}
func storeImm(op Opcode, value, offset uint32) Instruction {
	return Instruction{Op: op, Src1: ImmOperand(value), Offset: offset}
}

func LoadU8(dst uint8, offset uint32) Instruction    { return load(OpLoadU8, dst, offset) }
func LoadI8(dst uint8, offset uint32) Instruction    { return load(OpLoadI8, dst, offset) }
func LoadU16(dst uint8, offset uint32) Instruction   { return load(OpLoadU16, dst, offset) }
func LoadI16(dst uint8, offset uint32) Instruction   { return load(OpLoadI16, dst, offset) }
func LoadU32(dst uint8, offset uint32) Instruction   { return load(OpLoadU32, dst, offset) }
func StoreU8(src uint8, offset uint32) Instruction   { return store(OpStoreU8, src, offset) }
func StoreU16(src uint8, offset uint32) Instruction  { return store(OpStoreU16, src, offset) }
func StoreU32(src uint8, offset uint32) Instruction  { return store(OpStoreU32, src, offset) }
func StoreImmU8(value, offset uint32) Instruction    { return storeImm(OpStoreImmU8, value, offset) }
func StoreImmU16(value, offset uint32) Instruction   { return storeImm(OpStoreImmU16, value, offset) }
func StoreImmU32(value, offset uint32) Instruction   { return storeImm(OpStoreImmU32, value, offset) }

// Indirect loads and stores (base register plus offset).

func loadIndirect(op Opcode, dst, base uint8, offset uint32) Instruction {
	return Instruction{Op: op, Dst: dst, Base: base, HasBase: true, Offset: offset}
}
func storeIndirect(op Opcode, src, base uint8, offset uint32) Instruction {
	return Instruction{Op: op, Src1: RegOperand(src), Base: base, HasBase: true, Offset: offset}
}
func storeImmIndirect(op Opcode, base uint8, offset, value uint32) Instruction {
	return Instruction{Op: op, Src1: ImmOperand(value), Base: base, HasBase: true, Offset: offset}
}

func LoadIndirectU8(dst, base uint8, offset uint32) Instruction {
	return loadIndirect(OpLoadIndirectU8, dst, base, offset)
}
func LoadIndirectI8(dst, base uint8, offset uint32) Instruction {
	return loadIndirect(OpLoadIndirectI8, dst, base, offset)
}
func LoadIndirectU16(dst, base uint8, offset uint32) Instruction {
	return loadIndirect(OpLoadIndirectU16, dst, base, offset)
}
func LoadIndirectI16(dst, base uint8, offset uint32) Instruction {
	return loadIndirect(OpLoadIndirectI16, dst, base, offset)
}
func LoadIndirectU32(dst, base uint8, offset uint32) Instruction {
	return loadIndirect(OpLoadIndirectU32, dst, base, offset)
}
func StoreIndirectU8(src, base uint8, offset uint32) Instruction {
	return storeIndirect(OpStoreIndirectU8, src, base, offset)
}
func StoreIndirectU16(src, base uint8, offset uint32) Instruction {
	return storeIndirect(OpStoreIndirectU16, src, base, offset)
}
func StoreIndirectU32(src, base uint8, offset uint32) Instruction {
	return storeIndirect(OpStoreIndirectU32, src, base, offset)
}
func StoreImmIndirectU8(base uint8, offset, value uint32) Instruction {
	return storeImmIndirect(OpStoreImmIndirectU8, base, offset, value)
}
func StoreImmIndirectU16(base uint8, offset, value uint32) Instruction {
	return storeImmIndirect(OpStoreImmIndirectU16, base, offset, value)
}
func StoreImmIndirectU32(base uint8, offset, value uint32) Instruction {
	return storeImmIndirect(OpStoreImmIndirectU32, base, offset, value)
}

// Conditional branches. target identifies the basic block taken when
// the condition holds; falling through to the next block is implicit.

func branchReg(op Opcode, s1, s2 uint8, target BlockIndex) Instruction {
	return Instruction{Op: op, Src1: RegOperand(s1), Src2: RegOperand(s2), Target: target}
}
func branchImm(op Opcode, s1 uint8, imm uint32, target BlockIndex) Instruction {
	return Instruction{Op: op, Src1: RegOperand(s1), Src2: ImmOperand(imm), Target: target}
}

func BranchEq(s1, s2 uint8, target BlockIndex) Instruction { return branchReg(OpBranchEq, s1, s2, target) }
func BranchNotEq(s1, s2 uint8, target BlockIndex) Instruction {
	return branchReg(OpBranchNotEq, s1, s2, target)
}
func BranchLessUnsigned(s1, s2 uint8, target BlockIndex) Instruction {
	return branchReg(OpBranchLessUnsigned, s1, s2, target)
}
func BranchLessSigned(s1, s2 uint8, target BlockIndex) Instruction {
	return branchReg(OpBranchLessSigned, s1, s2, target)
}
func BranchGreaterOrEqualUnsigned(s1, s2 uint8, target BlockIndex) Instruction {
	return branchReg(OpBranchGreaterOrEqualUnsigned, s1, s2, target)
}
func BranchGreaterOrEqualSigned(s1, s2 uint8, target BlockIndex) Instruction {
	return branchReg(OpBranchGreaterOrEqualSigned, s1, s2, target)
}

func BranchEqImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchEqImm, s1, imm, target)
}
func BranchNotEqImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchNotEqImm, s1, imm, target)
}
func BranchLessUnsignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchLessUnsignedImm, s1, imm, target)
}
func BranchLessSignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchLessSignedImm, s1, imm, target)
}
func BranchGreaterOrEqualUnsignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchGreaterOrEqualUnsignedImm, s1, imm, target)
}
func BranchGreaterOrEqualSignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchGreaterOrEqualSignedImm, s1, imm, target)
}
func BranchLessOrEqualUnsignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchLessOrEqualUnsignedImm, s1, imm, target)
}
func BranchLessOrEqualSignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchLessOrEqualSignedImm, s1, imm, target)
}
func BranchGreaterUnsignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchGreaterUnsignedImm, s1, imm, target)
}
func BranchGreaterSignedImm(s1 uint8, imm uint32, target BlockIndex) Instruction {
	return branchImm(OpBranchGreaterSignedImm, s1, imm, target)
}

// Static and dynamic control transfer.

// Jump transfers control unconditionally to target.
func Jump(target BlockIndex) Instruction {
	return Instruction{Op: OpJump, Target: target}
}

// JumpIndirect resolves its target at run time via base+offset through
// the module's jump table (external interfaces §6).
func JumpIndirect(base uint8, offset uint32) Instruction {
	return Instruction{Op: OpJumpIndirect, Base: base, HasBase: true, Offset: offset}
}

// Call transfers control to target, first writing the return address
// into ra.
func Call(ra uint8, target BlockIndex) Instruction {
	return Instruction{Op: OpCall, Dst: ra, Target: target}
}

// CallIndirect resolves its target at run time like JumpIndirect, and
// additionally writes a return address into ra before transferring
// control.
func CallIndirect(ra, base uint8, offset uint32) Instruction {
	return Instruction{Op: OpCallIndirect, Dst: ra, Base: base, HasBase: true, Offset: offset}
}

// TrapInstruction builds the guest's explicit trap instruction. Named
// distinctly from the package-level Trap error constructor: this value
// is guest bytecode, not a Go error.
func TrapInstruction() Instruction {
	return Instruction{Op: OpTrap}
}

// Fallthrough marks a basic block that ends without any explicit
// control-flow instruction, falling into the next block in program
// order.
func Fallthrough() Instruction {
	return Instruction{Op: OpFallthrough}
}

// Ecalli invokes the host function registered under hostCallIndex.
func Ecalli(hostCallIndex uint32) Instruction {
	return Instruction{Op: OpEcalli, Imm: hostCallIndex}
}
