// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/definition/atari2600"
	"github.com/multiconsole/corefab/definition/atarilynx"
	"github.com/multiconsole/corefab/definition/chip8"
	"github.com/multiconsole/corefab/definition/nes"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
)

// manifestFunc normalizes every console's Manifest function into one shape:
// given a rom id and the store it came from, stage a fresh builder and
// return it along with the address space a caller drives the machine
// through. nes.Manifest's extra busConflict parameter and its second, PPU
// address space return are adapted away here (busConflict defaults off,
// matching NROM's real-world default) rather than bent into the other three
// consoles' shared signature.
type manifestFunc func(rom romid.RomId, store *program.Store) (*builder.Builder, addressspace.AddressSpaceId)

// manifests dispatches a program.ProgramId.MachineId to its manifestFunc.
var manifests = map[string]manifestFunc{
	atari2600.MachineId: func(rom romid.RomId, store *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
		return atari2600.Manifest(builder.New(), rom, store)
	},
	atarilynx.MachineId: func(rom romid.RomId, store *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
		return atarilynx.Manifest(builder.New(), rom, store)
	},
	chip8.MachineId: func(rom romid.RomId, store *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
		return chip8.Manifest(builder.New(), rom, store)
	},
	nes.MachineId: func(rom romid.RomId, store *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
		b, cpuSpace, _ := nes.Manifest(builder.New(), rom, store, false)
		return b, cpuSpace
	},
}
