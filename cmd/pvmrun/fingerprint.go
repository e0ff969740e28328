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
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/probeum/pvm-core/pvm"
)

// fingerprint hashes a module's read-only data, initial heap contents,
// and disassembled instruction stream into a stable identifier, so two
// runs of pvmrun disasm against the same fixture can be compared
// without diffing the full listing. The module loader that would
// normally own content-addressing is out of this core's scope; this is
// a debug-only convenience built on top of the text representation
// pvmrun already produces.
func fingerprint(module *pvm.Module) string {
	h := sha3.New256()
	h.Write(module.RoData())
	h.Write(module.RwData())

	var lengthPrefix [4]byte
	instructions := pvm.Disassemble(module)
	binary.BigEndian.PutUint32(lengthPrefix[:], uint32(len(instructions)))
	h.Write(lengthPrefix[:])
	h.Write([]byte(instructions))

	return fmt.Sprintf("%x", h.Sum(nil))
}
