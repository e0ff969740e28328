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

// divUnsigned implements RISC-V's divu: division by zero yields the
// all-ones value rather than trapping.
func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

// remUnsigned implements RISC-V's remu: remainder by zero yields the
// dividend unchanged.
func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}

// divSigned implements RISC-V's div: division by zero yields -1, and
// the two's-complement overflow case INT_MIN / -1 yields INT_MIN
// instead of trapping or wrapping through undefined behavior.
func divSigned(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -2147483648 && b == -1 {
		return a
	}
	return a / b
}

// remSigned implements RISC-V's rem: remainder by zero yields the
// dividend, and INT_MIN % -1 yields 0.
func remSigned(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -2147483648 && b == -1 {
		return 0
	}
	return a % b
}

// mulUpperSignedSigned computes the upper 32 bits of a full 64-bit
// signed*signed multiplication (mulh).
func mulUpperSignedSigned(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 32)
}

// mulUpperUnsignedUnsigned computes the upper 32 bits of a full 64-bit
// unsigned*unsigned multiplication (mulhu).
func mulUpperUnsignedUnsigned(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

// mulUpperSignedUnsigned computes the upper 32 bits of a full 64-bit
// signed*unsigned multiplication (mulhsu), treating a as signed and b
// as unsigned.
func mulUpperSignedUnsigned(a int32, b uint32) int32 {
	wide := int64(a) * int64(b)
	return int32(wide >> 32)
}
