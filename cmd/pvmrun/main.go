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

// Command pvmrun loads a fixture program, runs it to completion against
// the sandboxed execution core, and reports its exit condition and
// trace.
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/probeum/pvm-core/internal/xlog"
	"github.com/probeum/pvm-core/pvm"
)

var (
	fixtureFlag     = cli.StringFlag{Name: "fixture", Usage: "name of the built-in fixture program to run"}
	gasFlag         = cli.Int64Flag{Name: "gas", Usage: "initial gas budget", Value: 10000}
	verboseFlag     = cli.BoolFlag{Name: "verbose", Usage: "dump the final register file as a table and as a go-spew listing"}
	logLevel        = cli.StringFlag{Name: "loglevel", Usage: "trace, debug, info, warn, error", Value: "info"}
	configFlag      = cli.StringFlag{Name: "config", Usage: "path to a TOML file of default flag values"}
	fingerprintFlag = cli.BoolFlag{Name: "fingerprint", Usage: "print a SHA3-256 fingerprint of the module instead of its listing"}
)

func main() {
	app := cli.NewApp()
	app.Name = "pvmrun"
	app.Usage = "run a fixture program against the pvm execution core"
	app.Flags = []cli.Flag{fixtureFlag, gasFlag, verboseFlag, logLevel, configFlag}
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "run a fixture to completion",
			Flags:  app.Flags,
			Action: runAction,
		},
		{
			Name:   "disasm",
			Usage:  "disassemble a fixture program",
			Flags:  []cli.Flag{fixtureFlag, fingerprintFlag},
			Action: disasmAction,
		},
	}
	app.Action = runAction

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String(configFlag.Name))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevelName := c.String(logLevel.Name)
	if !c.IsSet(logLevel.Name) && cfg.LogLevel != "" {
		logLevelName = cfg.LogLevel
	}
	log := xlog.New(os.Stderr, xlog.ParseLevel(logLevelName))
	runID := uuid.New()
	log = log.With("run", runID.String())

	name := c.String(fixtureFlag.Name)
	if name == "" {
		name = cfg.Fixture
	}
	if name == "" {
		name = "counter"
	}
	fixture, ok := fixtures[name]
	if !ok {
		return fmt.Errorf("unknown fixture %q (available: %s)", name, availableFixtures())
	}

	module, err := fixture.build()
	if err != nil {
		return fmt.Errorf("building fixture %q: %w", name, err)
	}

	instance := pvm.NewInstance(module)
	config := pvm.ExecutionConfig{InitialRegisters: fixture.initialRegisters}
	gas := c.Int64(gasFlag.Name)
	if !c.IsSet(gasFlag.Name) && cfg.Gas > 0 {
		gas = cfg.Gas
	}
	if gas > 0 {
		config.Gas = &gas
	}

	log.Info("starting run", "fixture", name, "gas", gas)
	ctx := pvm.Context{
		OnHostCall: func(index uint32, access *pvm.Access) error {
			log.Debug("ecalli", "index", index, "pc", access.ProgramCounter())
			return fixture.hostCall(access, index)
		},
	}

	runErr := instance.Call(0, config, ctx)
	if runErr != nil {
		log.Error("run ended with an error", "err", runErr)
	} else {
		log.Info("run completed", "cycles", instance.CycleCounter())
	}

	if c.Bool(verboseFlag.Name) {
		dumpRegisters(instance)
		fmt.Println(spew.Sdump(instance.Registers()))
	}

	return runErr
}

func disasmAction(c *cli.Context) error {
	name := c.String(fixtureFlag.Name)
	if name == "" {
		name = "counter"
	}
	fixture, ok := fixtures[name]
	if !ok {
		return fmt.Errorf("unknown fixture %q (available: %s)", name, availableFixtures())
	}
	module, err := fixture.build()
	if err != nil {
		return err
	}
	if c.Bool(fingerprintFlag.Name) {
		fmt.Println(fingerprint(module))
		return nil
	}
	fmt.Print(pvm.Disassemble(module))
	return nil
}

func dumpRegisters(instance *pvm.Instance) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"register", "value", "hex"})
	regs := instance.Registers()
	for i, v := range regs {
		table.Append([]string{fmt.Sprintf("r%d", i), fmt.Sprintf("%d", v), fmt.Sprintf("0x%x", v)})
	}
	table.Render()
}

func availableFixtures() string {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	return fmt.Sprintf("%v", names)
}
