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

// Package intel8080 is the boundary-level definition of an Intel 8080
// processor (§13 "def/intel8080" / "definition/intel8080" in
// original_source), the same shape as definition/mos6502 but with the 8080's
// own register file. Instruction decoding/execution is an explicit Non-goal
// (§14); Synchronize only advances a cycle counter against the declared
// frequency.
package intel8080

import (
	"math/big"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
)

// Registers is the 8080 register file (§13 boundary description, not an
// execution model).
type Registers struct {
	A, B, C, D, E, H, L uint8
	SP, PC              uint16
	Flags               uint8
}

// Config builds a CPU boundary component.
type Config struct {
	AddressSpace addressspace.AddressSpaceId
	Frequency    *big.Rat
	Initial      Registers
}

// CPU is the boundary-level 8080 component: bus master, not a bus target.
type CPU struct {
	path         paths.ComponentPath
	addressSpace addressspace.AddressSpaceId
	period       *big.Rat
	registers    Registers
	cycles       uint64
}

func (c *CPU) Path() paths.ComponentPath { return c.path }

// Registers returns a copy of the current register file.
func (c *CPU) Registers() Registers { return c.registers }

// Cycles returns the number of scheduler ticks allocated to this CPU so far.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Synchronize advances the cycle counter only; no instruction is fetched or
// decoded (§14 Non-goals).
func (c *CPU) Synchronize(ctx component.SynchronizationContext, delta *big.Rat) error {
	n := ctx.Allocate(c.period, delta)
	c.cycles += uint64(n)
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg Config) BuildComponent(ctx *builder.Context) (component.Component, error) {
	return &CPU{
		path:         ctx.Path(),
		addressSpace: cfg.AddressSpace,
		period:       new(big.Rat).Inv(cfg.Frequency),
		registers:    cfg.Initial,
	}, nil
}
