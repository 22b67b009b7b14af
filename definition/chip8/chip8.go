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

// Package chip8 is the boundary-level CHIP-8 machine definition (§13),
// grounded on original_source/definition/chip8/src/lib.rs: a 12-bit address
// space, a single flat work-RAM region preloaded with the font and the
// loaded program, a delay/sound timer register, and a CPU bus master.
// Display/audio backends and instruction decode/execution are explicit
// Non-goals (§14); this package wires only the Builder/AddressSpace/
// Scheduler/Persistence/Program boundary the original's MachineFactory
// exercises before any opcode is interpreted.
package chip8

import (
	"math/big"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
	"github.com/multiconsole/corefab/scheduler"
)

// MachineId identifies this console in program.ProgramId.MachineId.
const MachineId = "chip8"

const cpuAddressSpaceWidth = 12

// cpuFrequency mirrors original_source's Chip8ProcessorConfig.frequency, a
// conventional choice rather than a value any real CHIP-8 hardware fixed.
var cpuFrequency = big.NewRat(1000, 1)

// Buttons is CHIP-8's 16-key hex keypad (§13 "gamepad button set"); metadata
// only, no virtual-gamepad binding table (input.rs was not in the retrieval
// pack, and binding tables are outside this framework's boundary regardless).
var Buttons = []string{
	"0", "1", "2", "3", "4", "5", "6", "7",
	"8", "9", "A", "B", "C", "D", "E", "F",
}

var (
	WorkramPath   = mustPath(":component/workram")
	TimerPath     = mustPath(":component/timer")
	ProcessorPath = mustPath(":component/processor")
)

func mustPath(s string) paths.ComponentPath {
	p, err := paths.NewComponentPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Manifest builds a CHIP-8 machine: work RAM preloaded with the font and
// rom, a delay/sound timer register, and a CPU bus master.
func Manifest(b *builder.Builder, rom romid.RomId, romStore *program.Store) (*builder.Builder, addressspace.AddressSpaceId) {
	b, space := b.InsertAddressSpace(cpuAddressSpaceWidth)

	b, _ = b.InsertComponent(WorkramPath, scheduler.OnDemand, nil, WorkramConfig{
		AddressSpace: space,
		Rom:          rom,
		RomStore:     romStore,
	})

	b, _ = b.InsertComponent(TimerPath, scheduler.OnDemand, nil, TimerConfig{})

	period := new(big.Rat).Inv(cpuFrequency)
	b, _ = b.InsertComponent(ProcessorPath, scheduler.SchedulerDriven, period, Config{
		AddressSpace: space,
		Frequency:    cpuFrequency,
	})

	return b, space
}
