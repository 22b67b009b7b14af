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

// Package nes is the boundary-level Nintendo Entertainment System machine
// definition (§13), grounded on original_source/definition/nes/src/lib.rs: a
// 16-bit CPU address space and a separate 16-bit PPU address space, an
// NROM-class cartridge (mapper 0 only; any other iNES mapper number is
// rejected, matching construct_mapper's unimplemented!() on unknown
// mappers), 2KiB of work RAM mirrored up to 0x1fff, and a 6502-class
// processor. PPU/APU peripheral chip emulation is an explicit Non-goal
// (§14); CHR ROM is mapped but never decoded into pixels here.
package nes

import (
	"math/big"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/definition/misc"
	"github.com/multiconsole/corefab/definition/mos6502"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
	"github.com/multiconsole/corefab/scheduler"
)

// MachineId identifies this console in program.ProgramId.MachineId.
const MachineId = "nes"

const cpuAddressSpaceWidth = 16
const ppuAddressSpaceWidth = 16

// cpuFrequency is the NTSC RP2A03's clock (original_source's TimingMode::Ntsc
// branch); PAL/Dendy timing variants are carried in ines.rs, which was not
// in the retrieval pack, so only NTSC timing is modelled here.
var cpuFrequency = big.NewRat(1789773, 1)

// Buttons is the standard NES controller's declarative button set (§13
// "gamepad button set"); metadata only.
var Buttons = []string{"Up", "Down", "Left", "Right", "A", "B", "Select", "Start"}

var (
	CartridgePath = mustPath(":component/cartridge")
	WorkramPath   = mustPath(":component/workram")
	ProcessorPath = mustPath(":component/processor")
)

func mustPath(s string) paths.ComponentPath {
	p, err := paths.NewComponentPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Manifest builds an NES machine: an NROM cartridge, mirrored work RAM, and
// a 6502-class processor. busConflict opts the cartridge's PRG window into
// §9 OQ3's ANDMerge bus-contention policy.
func Manifest(b *builder.Builder, rom romid.RomId, romStore *program.Store, busConflict bool) (*builder.Builder, addressspace.AddressSpaceId, addressspace.AddressSpaceId) {
	b, cpuSpace := b.InsertAddressSpace(cpuAddressSpaceWidth)
	b, ppuSpace := b.InsertAddressSpace(ppuAddressSpaceWidth)

	b, _ = b.InsertComponent(CartridgePath, scheduler.OnDemand, nil, CartridgeConfig{
		Rom:             rom,
		RomStore:        romStore,
		CPUAddressSpace: cpuSpace,
		PPUAddressSpace: ppuSpace,
		BusConflict:     busConflict,
	})

	b, _ = b.InsertComponent(WorkramPath, scheduler.OnDemand, nil, misc.RAMConfig{
		AddressSpace: cpuSpace,
		Range:        addressspace.Range{Start: 0x0000, End: 0x07ff},
		Fill:         0,
	})
	b = b.MemoryMapMirror(cpuSpace,
		addressspace.Range{Start: 0x0800, End: 0x1fff},
		addressspace.Range{Start: 0x0000, End: 0x07ff},
		addressspace.RW)

	period := new(big.Rat).Inv(cpuFrequency)
	b, _ = b.InsertComponent(ProcessorPath, scheduler.SchedulerDriven, period, mos6502.Config{
		AddressSpace: cpuSpace,
		Frequency:    cpuFrequency,
		Kind:         mos6502.Kind6502,
	})

	return b, cpuSpace, ppuSpace
}
