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
	"fmt"
	"strings"
)

// Disassemble renders a module's instruction stream as one line per
// instruction, grounded on the teacher's own Disassemble helper in
// probe-lang/lang/vm/opcodes.go, adapted to this package's operand
// shapes.
func Disassemble(m *Module) string {
	var b strings.Builder
	for i, in := range m.Instructions() {
		fmt.Fprintf(&b, "%5d: %s\n", i, formatInstruction(in))
	}
	return b.String()
}

func formatInstruction(in Instruction) string {
	switch in.Op {
	case OpTrap, OpFallthrough:
		return in.Op.String()
	case OpEcalli:
		return fmt.Sprintf("%s %d", in.Op, in.Imm)
	case OpLoadImm:
		return fmt.Sprintf("%s r%d, %#x", in.Op, in.Dst, in.Imm)
	case OpMoveReg:
		return fmt.Sprintf("%s r%d, %s", in.Op, in.Dst, formatOperand(in.Src1))
	case OpJump:
		return fmt.Sprintf("%s @%d", in.Op, in.Target)
	case OpCall:
		return fmt.Sprintf("%s r%d, @%d", in.Op, in.Dst, in.Target)
	case OpJumpIndirect:
		return fmt.Sprintf("%s [r%d+%#x]", in.Op, in.Base, in.Offset)
	case OpCallIndirect:
		return fmt.Sprintf("%s r%d, [r%d+%#x]", in.Op, in.Dst, in.Base, in.Offset)
	}

	if isBranchOp(in.Op) {
		return fmt.Sprintf("%s %s, %s, @%d", in.Op, formatOperand(in.Src1), formatOperand(in.Src2), in.Target)
	}
	if isLoadOp(in.Op) {
		if in.HasBase {
			return fmt.Sprintf("%s r%d, [r%d+%#x]", in.Op, in.Dst, in.Base, in.Offset)
		}
		return fmt.Sprintf("%s r%d, [%#x]", in.Op, in.Dst, in.Offset)
	}
	if isStoreOp(in.Op) {
		if in.HasBase {
			return fmt.Sprintf("%s [r%d+%#x], %s", in.Op, in.Base, in.Offset, formatOperand(in.Src1))
		}
		return fmt.Sprintf("%s [%#x], %s", in.Op, in.Offset, formatOperand(in.Src1))
	}
	return fmt.Sprintf("%s r%d, %s, %s", in.Op, in.Dst, formatOperand(in.Src1), formatOperand(in.Src2))
}

func formatOperand(r RegImm) string {
	if r.IsImm {
		return fmt.Sprintf("%#x", r.Imm)
	}
	return fmt.Sprintf("r%d", r.Reg)
}

func isBranchOp(op Opcode) bool {
	switch op {
	case OpBranchEq, OpBranchEqImm, OpBranchNotEq, OpBranchNotEqImm,
		OpBranchLessUnsigned, OpBranchLessUnsignedImm, OpBranchLessSigned, OpBranchLessSignedImm,
		OpBranchGreaterOrEqualUnsigned, OpBranchGreaterOrEqualUnsignedImm,
		OpBranchGreaterOrEqualSigned, OpBranchGreaterOrEqualSignedImm,
		OpBranchLessOrEqualUnsignedImm, OpBranchLessOrEqualSignedImm,
		OpBranchGreaterUnsignedImm, OpBranchGreaterSignedImm:
		return true
	}
	return false
}

func isLoadOp(op Opcode) bool {
	switch op {
	case OpLoadU8, OpLoadI8, OpLoadU16, OpLoadI16, OpLoadU32,
		OpLoadIndirectU8, OpLoadIndirectI8, OpLoadIndirectU16, OpLoadIndirectI16, OpLoadIndirectU32:
		return true
	}
	return false
}

func isStoreOp(op Opcode) bool {
	switch op {
	case OpStoreU8, OpStoreU16, OpStoreU32, OpStoreImmU8, OpStoreImmU16, OpStoreImmU32,
		OpStoreIndirectU8, OpStoreIndirectU16, OpStoreIndirectU32,
		OpStoreImmIndirectU8, OpStoreImmIndirectU16, OpStoreImmIndirectU32:
		return true
	}
	return false
}
