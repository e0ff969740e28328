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

// Command pvmdebug is an interactive single-step debugger for the pvm
// execution core: it steps one instruction per "n", or free-runs at a
// throttled rate with "r".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/time/rate"

	"github.com/probeum/pvm-core/pvm"
)

const historyFile = ".pvmdebug_history"

func main() {
	fixtureName := flag.String("fixture", "counter", "fixture program to debug")
	rateHz := flag.Float64("rate", 20, "instructions per second during free-run")
	flag.Parse()

	module, err := buildDebugFixture(*fixtureName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	inst := pvm.NewInstance(module)
	var initial [pvm.NumRegisters]uint32
	initial[12] = pvm.ReturnToHost
	if err := inst.PrepareForCall(0, pvm.ExecutionConfig{InitialRegisters: initial}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("pvmdebug: n=step, r=run (throttled), p=print registers, q=quit")
	limiter := rate.NewLimiter(rate.Limit(*rateHz), 1)

	for {
		input, err := line.Prompt(fmt.Sprintf("pc=%d> ", inst.ProgramCounter()))
		if err != nil {
			return
		}
		line.AppendHistory(input)

		switch cmd := strings.TrimSpace(input); {
		case cmd == "q":
			return
		case cmd == "p":
			printRegisters(inst)
		case cmd == "n" || cmd == "":
			if err := inst.StepOnce(pvm.Context{}); err != nil {
				fmt.Printf("stopped: %v\n", err)
			}
		case cmd == "r":
			runThrottled(inst, limiter)
		case strings.HasPrefix(cmd, "n "):
			n, _ := strconv.Atoi(strings.TrimSpace(cmd[2:]))
			for i := 0; i < n; i++ {
				if err := inst.StepOnce(pvm.Context{}); err != nil {
					fmt.Printf("stopped after %d steps: %v\n", i+1, err)
					break
				}
			}
		default:
			fmt.Printf("unrecognized command %q\n", cmd)
		}
	}
}

func runThrottled(inst *pvm.Instance, limiter *rate.Limiter) {
	ctx := context.Background()
	for {
		if err := limiter.Wait(ctx); err != nil {
			fmt.Println(err)
			return
		}
		if err := inst.StepOnce(pvm.Context{}); err != nil {
			fmt.Printf("stopped: %v\n", err)
			return
		}
	}
}

func printRegisters(inst *pvm.Instance) {
	regs := inst.Registers()
	for i, v := range regs {
		fmt.Printf("r%-2d = %10d (0x%08x)\n", i, v, v)
	}
	if gas, ok := inst.GasRemaining(); ok {
		fmt.Printf("gas remaining = %d\n", gas)
	} else {
		fmt.Println("gas remaining = n/a (metering disabled)")
	}
}

func buildDebugFixture(name string) (*pvm.Module, error) {
	b := pvm.NewModuleBuilder(pvm.MemoryConfig{
		HeapRange:  pvm.AddressRange{Start: 0x10000, Size: 0x1000},
		StackRange: pvm.AddressRange{Start: 0x20000, Size: 0x1000},
	})
	switch name {
	case "counter":
		loop := b.AddBasicBlock(1,
			pvm.AddImm(1, 1, 1),
			pvm.BranchLessUnsignedImm(1, 10, 0),
		)
		b.AddBasicBlock(1, pvm.JumpIndirect(12, 0))
		b.AddExport("main", loop)
	default:
		return nil, fmt.Errorf("unknown fixture %q", name)
	}

	return b.Build()
}
