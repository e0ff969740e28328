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

package main

import (
	"fmt"

	"github.com/probeum/pvm-core/pvm"
)

// fixture is a small, self-contained program used to exercise pvmrun
// without needing a binary-format loader, which is out of this core's
// scope.
type fixture struct {
	initialRegisters [pvm.NumRegisters]uint32
	build            func() (*pvm.Module, error)
	hostCall         func(access *pvm.Access, index uint32) error
}

var fixtures = map[string]fixture{
	"counter": {
		initialRegisters: counterInitialRegisters(),
		build:            buildCounterFixture,
		hostCall:         noopHostCall,
	},
	"hostcall": {
		initialRegisters: counterInitialRegisters(),
		build:            buildHostCallFixture,
		hostCall:         echoHostCall,
	},
}

func counterInitialRegisters() [pvm.NumRegisters]uint32 {
	var regs [pvm.NumRegisters]uint32
	regs[12] = pvm.ReturnToHost
	return regs
}

// buildCounterFixture builds a program that increments r1 ten times in
// a loop driven by a conditional branch back to the loop head, then
// returns through a dynamic jump to RETURN_TO_HOST.
func buildCounterFixture() (*pvm.Module, error) {
	b := pvm.NewModuleBuilder(pvm.MemoryConfig{
		HeapRange:  pvm.AddressRange{Start: 0x10000, Size: 0x1000},
		StackRange: pvm.AddressRange{Start: 0x20000, Size: 0x1000},
	})
	b.SetGasMetering(pvm.GasMeteringSync)

	loop := b.AddBasicBlock(1,
		pvm.AddImm(1, 1, 1),
		pvm.BranchLessUnsignedImm(1, 10, 0),
	)
	b.AddBasicBlock(1, pvm.JumpIndirect(12, 0))
	b.AddExport("main", loop)

	return b.Build()
}

// buildHostCallFixture builds a program that invokes host call 1, then
// returns.
func buildHostCallFixture() (*pvm.Module, error) {
	b := pvm.NewModuleBuilder(pvm.MemoryConfig{
		HeapRange:  pvm.AddressRange{Start: 0x10000, Size: 0x1000},
		StackRange: pvm.AddressRange{Start: 0x20000, Size: 0x1000},
	})
	b.SetGasMetering(pvm.GasMeteringSync)

	block := b.AddBasicBlock(1, pvm.Ecalli(1), pvm.JumpIndirect(12, 0))
	b.AddExport("main", block)

	return b.Build()
}

func noopHostCall(*pvm.Access, uint32) error { return nil }

func echoHostCall(access *pvm.Access, index uint32) error {
	value := access.GetReg(1)
	fmt.Printf("host call %d: r1 = %d\n", index, value)
	access.ConsumeGas(1)
	return nil
}
