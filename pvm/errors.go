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
	"fmt"
)

// ErrOutOfGas is returned by Run, Call, and StepOnce when the gas budget
// is exhausted while entering a basic block or after a host callback
// consumes gas. The instance remains reusable afterwards (error handling
// design §7): a fresh ResetMemory and gas budget must succeed if the
// program would otherwise run to completion.
var ErrOutOfGas = errors.New("pvm: out of gas")

// ErrHalted is returned by StepOnce when called on an instance that has
// already set its return flag and has nothing left to execute.
var ErrHalted = errors.New("pvm: instance has already returned to the host")

// TrapError reports that the guest executed an illegal operation. The
// core carries no error message beyond the kind (error handling design
// §7); Reason is a short internal label for logging only and is never
// part of the error's identity — use errors.Is(err, ErrTrap) or IsTrap.
//
// Per the spec's own open question, a fetch past the end of the
// instruction stream is indistinguishable from an explicit trap
// instruction; both produce a TrapError with an empty Reason.
type TrapError struct {
	Reason string
}

// ErrTrap is the sentinel all TrapError values compare equal to via
// errors.Is, regardless of Reason.
var ErrTrap = &TrapError{}

func (e *TrapError) Error() string {
	if e.Reason == "" {
		return "pvm: trap"
	}
	return fmt.Sprintf("pvm: trap: %s", e.Reason)
}

// Is reports whether target is any *TrapError (the ErrTrap sentinel
// included), so that errors.Is(err, ErrTrap) holds for any TrapError
// regardless of reason.
func (e *TrapError) Is(target error) bool {
	_, ok := target.(*TrapError)
	return ok
}

// Trap constructs a TrapError carrying a diagnostic reason. Hosts may
// pair it with an instance's CycleCounter and ProgramCounter for
// debugging; the reason itself is not part of the spec's error
// taxonomy and must not be used for control flow.
func Trap(reason string) error {
	return &TrapError{Reason: reason}
}

// IsTrap reports whether err is a TrapError.
func IsTrap(err error) bool {
	var t *TrapError
	return errors.As(err, &t)
}

// IsOutOfGas reports whether err is ErrOutOfGas.
func IsOutOfGas(err error) bool {
	return errors.Is(err, ErrOutOfGas)
}
