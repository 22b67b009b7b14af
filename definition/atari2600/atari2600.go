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

// Package atari2600 is the boundary-level Atari 2600 machine definition
// (§13), grounded on original_source/definition/atari2600/src/lib.rs: a
// 13-bit CPU address space, a 6507 processor, and a cartridge occupying
// 0x1000-0x1fff. TIA/RIOT peripheral chip emulation is an explicit Non-goal
// (§14 "per-machine peripheral chip emulation"); this package wires only
// what the Builder/AddressSpace/Scheduler/Persistence/Program contracts
// need exercised, not a playable console.
package atari2600

import (
	"math/big"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/definition/mos6502"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
	"github.com/multiconsole/corefab/scheduler"
)

// MachineId identifies this console in program.ProgramId.MachineId and the
// ROM store's directory layout.
const MachineId = "atari2600"

// cpuAddressSpaceWidth is the 6507's address bus width (13 lines, §13).
const cpuAddressSpaceWidth = 13

// cpuFrequency is the NTSC 2600's CPU clock, in Hz.
var cpuFrequency = big.NewRat(1190000, 1)

// Buttons is the joystick's declarative button set (§13 "gamepad button
// set"); it is metadata only -- no RIOT/SWCHA bit wiring, which would be
// peripheral chip emulation (§14 Non-goal).
var Buttons = []string{"Up", "Down", "Left", "Right", "Fire"}

// Paths, within the assembled Machine, of the components Manifest builds.
var (
	ProcessorPath, _ = paths.NewComponentPath(":component/processor")
	CartridgePath, _ = paths.NewComponentPath(":component/cartridge")
)

// Manifest builds an Atari 2600 machine definition on top of an empty
// Builder: an address space, a cartridge mapped over rom, and a 6507
// processor. It mirrors original_source's manifest() function shape (one
// linear sequence of insert_address_space/insert_component calls) adapted
// onto this module's staged Builder.
func Manifest(b *builder.Builder, rom romid.RomId, romStore *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
	b, space := b.InsertAddressSpace(cpuAddressSpaceWidth)

	b, _ = b.InsertComponent(CartridgePath, scheduler.OnDemand, nil, CartridgeConfig{
		Rom:          rom,
		RomStore:     romStore,
		AddressSpace: space,
	})

	period := new(big.Rat).Inv(cpuFrequency)
	b, _ = b.InsertComponent(ProcessorPath, scheduler.SchedulerDriven, period, mos6502.Config{
		AddressSpace: space,
		Frequency:    cpuFrequency,
		Kind:         mos6502.Kind6507,
	})

	return b, space
}
