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

package atari2600

import (
	"io"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
	"github.com/multiconsole/corefab/scheduler"
)

// cartridgeRange is where a 2600 cartridge is mapped on the CPU bus (§13,
// original_source/def/atari2600/src/cartridge.rs maps the same 0x1000-0x1fff
// window).
var cartridgeRange = addressspace.Range{Start: 0x1000, End: 0x1fff}

// CartridgeConfig builds a Cartridge from a ROM already present in romStore.
// Only a flat, unbanked image is supported (original_source's Banking1k/2k/4k
// variants are left `todo!()` upstream too); any image whose size isn't a
// power of two is rejected, matching original_source's assertion.
type CartridgeConfig struct {
	Rom          romid.RomId
	RomStore     *program.Store
	AddressSpace addressspace.AddressSpaceId
}

// Cartridge is a flat, read-only ROM image mirrored across cartridgeRange.
type Cartridge struct {
	path paths.ComponentPath
	rom  []byte
}

func (c *Cartridge) Path() paths.ComponentPath { return c.path }

// ReadMemory mirrors the ROM image across the mapped range; address is
// already component-local (§9 "component polymorphism" -- the fabric
// subtracts the region's base before dispatching).
func (c *Cartridge) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	return c.rom[int(address)%len(c.rom)], nil
}

// NeedsWork/Synchronize are no-ops: a flat ROM image has no internal clock
// of its own (§4.D state machine requires every registered component to
// answer one of the two scheduling contracts).
func (c *Cartridge) NeedsWork(delta *scheduler.Period) bool { return false }

func (c *Cartridge) Synchronize(ctx component.SynchronizationContext, delta *scheduler.Period) error {
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg CartridgeConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	r, err := cfg.RomStore.OpenRom(cfg.Rom, program.Required)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rom, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf("atari2600: %s", err)
	}
	if len(rom) == 0 || len(rom)&(len(rom)-1) != 0 {
		return nil, curated.Errorf("atari2600: cartridge image of %d bytes is not a power of two", len(rom))
	}

	c := &Cartridge{path: ctx.Path(), rom: rom}
	if err := ctx.Fabric().Map(cfg.AddressSpace, c, cartridgeRange, addressspace.R); err != nil {
		return nil, err
	}
	return c, nil
}
