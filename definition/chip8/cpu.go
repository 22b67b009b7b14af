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

package chip8

import (
	"math/big"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
)

// Registers is CHIP-8's register file (§13, grounded on
// original_source/definition/chip8/src/processor/mod.rs's
// Chip8ProcessorRegisters/ProcessorState), not an execution model: sixteen
// 8-bit work registers V0-VF, the 16-bit index register I, the program
// counter, and the subroutine-return stack. Instruction fetch/decode is an
// explicit Non-goal (§14); Suzy/Mikey-style "AwaitingKeyPress"/"AwaitingVsync"
// execution states belong to the interpreter loop this boundary doesn't
// model.
type Registers struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	Stack [16]uint16
	SP    uint8
}

// Config builds a CHIP-8 CPU boundary component.
type Config struct {
	AddressSpace addressspace.AddressSpaceId
	Frequency    *big.Rat
}

// CPU is the boundary-level CHIP-8 processor: bus master of AddressSpace,
// never a bus target.
type CPU struct {
	path         paths.ComponentPath
	addressSpace addressspace.AddressSpaceId
	frequency    *big.Rat
	period       *big.Rat
	registers    Registers
	cycles       uint64
}

func (c *CPU) Path() paths.ComponentPath { return c.path }

// Registers returns a copy of the current register file.
func (c *CPU) Registers() Registers { return c.registers }

// Cycles returns the number of scheduler ticks allocated to this CPU so far.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Synchronize advances the cycle counter by whatever the scheduler
// allocates for this tick. No instruction is fetched or decoded (§14).
func (c *CPU) Synchronize(ctx component.SynchronizationContext, delta *big.Rat) error {
	n := ctx.Allocate(c.period, delta)
	c.cycles += uint64(n)
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg Config) BuildComponent(ctx *builder.Context) (component.Component, error) {
	period := new(big.Rat).Inv(cfg.Frequency)
	return &CPU{
		path:         ctx.Path(),
		addressSpace: cfg.AddressSpace,
		frequency:    cfg.Frequency,
		period:       period,
		registers: Registers{
			PC: programBase,
		},
	}, nil
}
