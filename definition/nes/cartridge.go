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

package nes

import (
	"io"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
)

// supportedMapper is the only iNES mapper number this definition carves a
// bus layout for, matching original_source's construct_mapper, whose match
// on ines.mapper panics with unimplemented!() for anything but 000.
const supportedMapper = 0

// CartridgeConfig builds the NROM-class cartridge (§13, grounded on
// original_source/definition/nes/src/cartridge/{mod,mapper,mapper/nrom}.rs):
// a PRG ROM window on the CPU address space (mirrored across 0xc000-0xffff
// for 16KiB "NROM-128" images, spanning 0x8000-0xffff directly for 32KiB
// "NROM-256" images) and a CHR ROM window on the PPU address space.
//
// BusConflict opts the PRG window into §9 OQ3's bus-contention policy
// (grounded on mapper.rs's MemoryCallbacks.bus_conflict field, which the
// nesdev wiki describes as the incoming write ANDing with whatever byte the
// ROM itself is simultaneously driving onto the bus -- real on mappers with
// a writable bank-select register sharing the PRG window, never true for
// plain NROM, but the mechanism this definition demonstrates independently
// of which mapper eventually needs it). When enabled, the PRG window and a
// companion busLatch component (seeded from the same bytes, standing in for
// a mapper register) are both mapped addressspace.ANDMerge over the PRG
// range(s), so a write merges with both the fixed ROM byte and the latch's
// own evolving byte exactly like two drivers contending for the same bus
// line.
type CartridgeConfig struct {
	Rom             romid.RomId
	RomStore        *program.Store
	CPUAddressSpace addressspace.AddressSpaceId
	PPUAddressSpace addressspace.AddressSpaceId
	BusConflict     bool
}

// prgRom is the PRG ROM window; a Writer only so it can participate in an
// ANDMerge group when BusConflict is set (writes are otherwise meaningless
// against fixed ROM content and are discarded).
type prgRom struct {
	path paths.ComponentPath
	data []byte
}

func (r *prgRom) Path() paths.ComponentPath { return r.path }

func (r *prgRom) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	if int(address) >= len(r.data) {
		return 0, curated.Errorf("nes: prg read out of range at %#x", address)
	}
	return r.data[address], nil
}

func (r *prgRom) WriteMemory(address uint32, value uint8) error { return nil }

func (r *prgRom) NeedsWork(delta *component.Period) bool { return false }

func (r *prgRom) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// busLatch is the bus-conflict companion: a mutable copy of prgRom's bytes,
// present only so a second, independently-writable driver genuinely
// overlaps the PRG range when BusConflict is set.
type busLatch struct {
	path paths.ComponentPath
	data []byte
}

func (l *busLatch) Path() paths.ComponentPath { return l.path }

func (l *busLatch) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	if int(address) >= len(l.data) {
		return 0, curated.Errorf("nes: bus latch read out of range at %#x", address)
	}
	return l.data[address], nil
}

func (l *busLatch) WriteMemory(address uint32, value uint8) error {
	if int(address) >= len(l.data) {
		return curated.Errorf("nes: bus latch write out of range at %#x", address)
	}
	l.data[address] = value
	return nil
}

func (l *busLatch) NeedsWork(delta *component.Period) bool { return false }

func (l *busLatch) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// chrRom is the CHR ROM window on the PPU address space. CHR bank-switching
// and the PPU itself are per-machine peripheral chip emulation, an explicit
// Non-goal (§14); this is a flat read-only window only.
type chrRom struct {
	path paths.ComponentPath
	data []byte
}

func (r *chrRom) Path() paths.ComponentPath { return r.path }

func (r *chrRom) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	if int(address) >= len(r.data) {
		return 0, curated.Errorf("nes: chr read out of range at %#x", address)
	}
	return r.data[address], nil
}

func (r *chrRom) NeedsWork(delta *component.Period) bool { return false }

func (r *chrRom) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// BuildComponent implements builder.ComponentConfig. It maps both PRG and
// CHR windows and returns the PRG component as the registered component at
// this path; the latch and CHR window, if any, are mapped directly against
// the fabric and never registered under their own path (mirroring the
// original's mapper constructors, which register buffers and map them
// without a second top-level component identity).
func (cfg CartridgeConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	f, err := cfg.RomStore.OpenRom(cfg.Rom, program.Required)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, curated.Errorf("nes: %s", err)
	}

	header, prg, chr, err := parseINes(raw)
	if err != nil {
		return nil, err
	}
	if header.Mapper != supportedMapper {
		return nil, curated.Errorf("nes: unsupported mapper %d", header.Mapper)
	}

	prgData := make([]byte, len(prg))
	copy(prgData, prg)
	prgComponent := &prgRom{path: ctx.Path(), data: prgData}

	var prgRanges []addressspace.Range
	switch header.PRGBanks {
	case 1: // NROM-128: 16KiB, mirrored across the top half of the window.
		prgRanges = []addressspace.Range{{Start: 0x8000, End: 0xbfff}}
		if err := mapPRG(ctx, cfg, prgComponent, prgData, prgRanges[0]); err != nil {
			return nil, err
		}
		if err := ctx.Fabric().MapMirror(cfg.CPUAddressSpace,
			addressspace.Range{Start: 0xc000, End: 0xffff},
			addressspace.Range{Start: 0x8000, End: 0xbfff},
			addressspace.R); err != nil {
			return nil, err
		}
	case 2: // NROM-256: 32KiB, covers the whole window directly.
		prgRanges = []addressspace.Range{{Start: 0x8000, End: 0xffff}}
		if err := mapPRG(ctx, cfg, prgComponent, prgData, prgRanges[0]); err != nil {
			return nil, err
		}
	default:
		return nil, curated.Errorf("nes: unsupported PRG ROM size for NROM mapper (%d banks)", header.PRGBanks)
	}

	chrData := make([]byte, len(chr))
	copy(chrData, chr)
	chrComponent := &chrRom{path: ctx.Path(), data: chrData}
	if err := ctx.Fabric().Map(cfg.PPUAddressSpace, chrComponent,
		addressspace.Range{Start: 0x0000, End: 0x1fff}, addressspace.R); err != nil {
		return nil, err
	}

	return prgComponent, nil
}

// mapPRG maps prgComponent over rng, and, if cfg.BusConflict is set, also
// maps a fresh busLatch over the same range, both addressspace.ANDMerge.
func mapPRG(ctx *builder.Context, cfg CartridgeConfig, prgComponent *prgRom, prgData []byte, rng addressspace.Range) error {
	if !cfg.BusConflict {
		return ctx.Fabric().Map(cfg.CPUAddressSpace, prgComponent, rng, addressspace.R)
	}

	if err := ctx.Fabric().MapWithPolicy(cfg.CPUAddressSpace, prgComponent, rng, addressspace.RW, addressspace.ANDMerge); err != nil {
		return err
	}

	latchData := make([]byte, len(prgData))
	copy(latchData, prgData)
	latch := &busLatch{path: ctx.Path(), data: latchData}
	return ctx.Fabric().MapWithPolicy(cfg.CPUAddressSpace, latch, rng, addressspace.RW, addressspace.ANDMerge)
}
