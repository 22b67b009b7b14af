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

// Package mos6502 is the boundary-level definition of a 6502-family
// processor (§13 "def/mos6502", "definition/m6502" in original_source):
// register file, address space it is bus master on, and scheduler
// registration, shared by any console whose cartridge definition wires a
// 6502 derivative (definition/atari2600's "6507", definition/nes's plain
// "6502"). Instruction decoding/execution is an explicit Non-goal (§14);
// Synchronize only advances a cycle counter against the declared frequency,
// the same boundary original_source/definition/m6502/src/lib.rs exposes to
// its callers before any instruction is actually interpreted.
package mos6502

import (
	"math/big"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
)

// Kind distinguishes the pin-compatible 6502 variants the pack's consoles
// use: the 2600's 6507 (13 address lines, no decimal mode wired out) and the
// plain 6502 NES's RP2A03 approximates.
type Kind string

const (
	Kind6502 Kind = "6502"
	Kind6507 Kind = "6507"
)

// Registers is the 6502 register file (§13 boundary description, not an
// execution model).
type Registers struct {
	A, X, Y, SP uint8
	PC          uint16
	Status      uint8
}

// Config builds a CPU boundary component.
type Config struct {
	AddressSpace addressspace.AddressSpaceId
	Frequency    *big.Rat
	Kind         Kind
	Initial      Registers
}

// CPU is the boundary-level 6502 component: it is the bus master of
// AddressSpace, not a bus target, so it never maps memory of its own.
type CPU struct {
	path         paths.ComponentPath
	addressSpace addressspace.AddressSpaceId
	kind         Kind
	frequency    *big.Rat
	period       *big.Rat
	registers    Registers
	cycles       uint64
}

func (c *CPU) Path() paths.ComponentPath { return c.path }

// Registers returns a copy of the current register file.
func (c *CPU) Registers() Registers { return c.registers }

// Cycles returns the number of scheduler ticks allocated to this CPU so
// far, the only observable "execution" a CPU-less boundary definition can
// report.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Synchronize advances the cycle counter by whatever the scheduler
// allocates for this tick. No instruction is fetched or decoded (§14
// Non-goals); this is bookkeeping only, sized so a real decoder could later
// slot in without changing the component boundary.
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
		kind:         cfg.Kind,
		frequency:    cfg.Frequency,
		period:       period,
		registers:    cfg.Initial,
	}, nil
}
