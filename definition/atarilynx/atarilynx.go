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

// Package atarilynx is the boundary-level Atari Lynx machine definition
// (§13), grounded on original_source/definition/atarilynx/src/lib.rs: a
// 16-bit address space, RAM shadowed selectively by Suzy/Mikey/a boot-vector
// window under Mapctl's control, and a bootstrap ROM. Mikey/Suzy chip
// internals (the real source of 65SC02-driven video and sound) are an
// explicit Non-goal (§14 "per-machine peripheral chip emulation"); only the
// mapper-control re-mapping boundary (§9 OQ2) is modelled.
package atarilynx

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
const MachineId = "atarilynx"

const cpuAddressSpaceWidth = 16

// cpuFrequency is the Lynx's 65SC02-derived system clock, in Hz.
var cpuFrequency = big.NewRat(4000000, 1)

// Buttons is the Lynx's declarative button set (§13 "gamepad button set");
// metadata only, no Suzy input-register wiring.
var Buttons = []string{"Up", "Down", "Left", "Right", "A", "B", "Option1", "Option2", "Pause"}

var (
	RAMPath       = mustPath(":component/ram")
	SuzyPath      = mustPath(":component/suzy")
	MikeyPath     = mustPath(":component/mikey")
	VectorPath    = mustPath(":component/vector")
	ReservedPath  = mustPath(":component/reserved")
	BootstrapPath = mustPath(":component/bootstrap")
	MapctlPath    = mustPath(":component/mapctl")
	ProcessorPath = mustPath(":component/processor")
)

func mustPath(s string) paths.ComponentPath {
	p, err := paths.NewComponentPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Manifest builds an Atari Lynx machine: RAM filled 0xff (the original's
// "a good portion of this will be initially shadowed"), a bootstrap ROM at
// the top of the address space, Mapctl's switchable Suzy/Mikey/vector
// windows, and a 65SC02-class processor modelled here by mos6502.Config
// (boundary only; Kind6502, not the Lynx's actual extended instruction
// set, which is out of scope per §14).
func Manifest(b *builder.Builder, bootstrapRom romid.RomId, romStore *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
	b, space := b.InsertAddressSpace(cpuAddressSpaceWidth)

	b, _ = b.InsertComponent(RAMPath, scheduler.OnDemand, nil, misc.RAMConfig{
		AddressSpace: space,
		Range:        ramRange,
		Fill:         0xff,
	})
	b, _ = b.InsertComponent(SuzyPath, scheduler.OnDemand, nil, regBlockConfig{size: int(suzyRange.End - suzyRange.Start + 1)})
	b, _ = b.InsertComponent(MikeyPath, scheduler.OnDemand, nil, regBlockConfig{size: int(mikeyRange.End - mikeyRange.Start + 1)})
	b, _ = b.InsertComponent(VectorPath, scheduler.OnDemand, nil, regBlockConfig{size: int(vectorRange.End - vectorRange.Start + 1)})
	b, _ = b.InsertComponent(ReservedPath, scheduler.OnDemand, nil, regBlockConfig{size: int(reservedRange.End - reservedRange.Start + 1)})

	b, _ = b.InsertComponent(BootstrapPath, scheduler.OnDemand, nil, misc.ROMConfig{
		Rom:          bootstrapRom,
		RomStore:     romStore,
		AddressSpace: space,
		Range:        addressspace.Range{Start: 0xfe00, End: 0xffff},
	})

	b, _ = b.InsertComponent(MapctlPath, scheduler.OnDemand, nil, MapctlConfig{
		AddressSpace: space,
		RAMPath:      RAMPath,
		SuzyPath:     SuzyPath,
		MikeyPath:    MikeyPath,
		VectorPath:   VectorPath,
		ReservedPath: ReservedPath,
	})

	period := new(big.Rat).Inv(cpuFrequency)
	b, _ = b.InsertComponent(ProcessorPath, scheduler.SchedulerDriven, period, mos6502.Config{
		AddressSpace: space,
		Frequency:    cpuFrequency,
		Kind:         mos6502.Kind6502,
	})

	return b, space
}
