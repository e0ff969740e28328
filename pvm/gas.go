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

// GasMetering selects whether and how a module's basic blocks are
// charged for execution.
type GasMetering uint8

const (
	// GasMeteringNone disables gas accounting entirely; ChargeBlock and
	// Consume are no-ops and GasRemaining is meaningless.
	GasMeteringNone GasMetering = iota
	// GasMeteringSync charges each basic block's precomputed cost the
	// instant execution enters it, before its first instruction runs.
	GasMeteringSync
	// GasMeteringAsync charges the same costs at the same points; the
	// interpreter treats it exactly like Sync.
	GasMeteringAsync
)

// GasMeter is the per-instance gas accounting component (C3): a signed
// 64-bit counter debited at basic-block entry and by host callbacks,
// with saturating-at-minus-one consumption semantics mirroring the
// original interpreter's checked_sub_unsigned(...).unwrap_or(-1).
type GasMeter struct {
	mode      GasMetering
	remaining int64
}

// Enabled reports whether this instance's module requested gas
// metering.
func (g *GasMeter) Enabled() bool {
	return g.mode != GasMeteringNone
}

// Seed sets the counter to *gas. A nil gas leaves the counter
// untouched, supporting the "budget inherited" re-call case where
// PrepareForCall is invoked again without a fresh figure and the
// previous run's remaining balance must carry forward. A no-op when
// metering is disabled.
func (g *GasMeter) Seed(gas *int64) {
	if !g.Enabled() || gas == nil {
		return
	}
	g.remaining = *gas
}

// ChargeBlock debits cost for entering a basic block. It returns
// ErrOutOfGas, leaving the counter negative, if cost exceeds the
// balance; the instance's Run loop must stop immediately in that case
// without executing any instruction of the block.
func (g *GasMeter) ChargeBlock(cost uint32) error {
	if !g.Enabled() {
		return nil
	}
	g.remaining -= int64(cost)
	if g.remaining < 0 {
		return ErrOutOfGas
	}
	return nil
}

// Consume debits n units on behalf of a host callback's ConsumeGas.
// Unlike ChargeBlock, it never reports failure to the caller: it
// saturates the counter to -1 when n exceeds the balance, exactly as
// the original interpreter's checked_sub_unsigned(...).unwrap_or(-1),
// leaving detection of exhaustion to the instance's gas check that
// ecalli runs right after the host callback returns. A no-op when
// metering is disabled.
func (g *GasMeter) Consume(n uint64) {
	if !g.Enabled() {
		return
	}
	if n > uint64(1)<<63-1 {
		g.remaining = -1
		return
	}
	signed := int64(n)
	if signed > g.remaining {
		g.remaining = -1
		return
	}
	g.remaining -= signed
}

// Remaining returns the raw internal counter, which may be negative
// immediately after a ChargeBlock failure or a saturating Consume.
func (g *GasMeter) Remaining() int64 {
	return g.remaining
}

// ReportedRemaining returns the counter clamped to a minimum of zero,
// the value a host callback or external caller should observe (error
// handling design §7: the core never exposes a negative gas figure).
func (g *GasMeter) ReportedRemaining() uint64 {
	if g.remaining < 0 {
		return 0
	}
	return uint64(g.remaining)
}

// ReportedRemainingOption mirrors original_source's
// InterpretedAccess::gas_remaining, which returns Option<Gas>: the
// second result is false when the module has gas metering disabled,
// in which case the remaining figure is meaningless and must not be
// confused with a metered balance of exactly zero.
func (g *GasMeter) ReportedRemainingOption() (uint64, bool) {
	if !g.Enabled() {
		return 0, false
	}
	return g.ReportedRemaining(), true
}
