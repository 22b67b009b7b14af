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

// Package misc holds the plain, machine-agnostic memory components every
// console definition needs and none of them own: flat RAM, a ROM image
// mapped straight off the program store, and a no-op placeholder for
// address-space holes. Grounded on
// original_source/definition/misc/src/memory/{standard,rom,null}.rs, which
// is its own crate in original_source for exactly this reason -- these are
// not console-specific.
package misc

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
)

// RAMConfig builds a flat, byte-addressable read/write buffer, initialized
// to Fill, and maps it over Range. It implements SnapshotVersion (full
// runtime state belongs in save states) but not SaveVersion (RAM does not
// survive a power cycle, unlike a cartridge's battery-backed RAM, which a
// console definition should model as its own component instead of reusing
// this one).
type RAMConfig struct {
	AddressSpace addressspace.AddressSpaceId
	Range        addressspace.Range
	Fill         uint8
}

// RAM is the component RAMConfig builds.
type RAM struct {
	path paths.ComponentPath
	mu   sync.RWMutex
	data []byte
}

func (m *RAM) Path() paths.ComponentPath { return m.path }

func (m *RAM) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(address) >= len(m.data) {
		return 0, curated.Errorf("misc: read out of range at %#x", address)
	}
	return m.data[address], nil
}

func (m *RAM) WriteMemory(address uint32, value uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(address) >= len(m.data) {
		return curated.Errorf("misc: write out of range at %#x", address)
	}
	m.data[address] = value
	return nil
}

// NeedsWork/Synchronize are no-ops: RAM has no clock of its own (every
// registered component must answer one of the scheduler's two contracts;
// RAM is registered OnDemand).
func (m *RAM) NeedsWork(delta *component.Period) bool { return false }

func (m *RAM) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

const ramSnapshotVersion = 1

func (m *RAM) SnapshotVersion() *uint64 {
	v := uint64(ramSnapshotVersion)
	return &v
}

func (m *RAM) StoreSnapshot(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	length := uint32(len(m.data))
	if err := binary.Write(w, binary.LittleEndian, length); err != nil {
		return err
	}
	_, err := w.Write(m.data)
	return err
}

func (m *RAM) LoadSnapshot(version uint64, r io.Reader) error {
	if version != ramSnapshotVersion {
		return curated.Errorf("misc: unsupported RAM snapshot version %d", version)
	}
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return err
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg RAMConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	size := cfg.Range.End - cfg.Range.Start + 1
	data := make([]byte, size)
	for i := range data {
		data[i] = cfg.Fill
	}

	m := &RAM{path: ctx.Path(), data: data}
	if err := ctx.Fabric().Map(cfg.AddressSpace, m, cfg.Range, addressspace.RW); err != nil {
		return nil, err
	}
	return m, nil
}

// ROMConfig maps a ROM opened from a program.Store, read-only, over Range.
// Unlike definition/atari2600's Cartridge, it makes no assumption about
// image size (no power-of-two requirement): the image is zero-padded or
// truncated to exactly fit Range.
type ROMConfig struct {
	Rom          romid.RomId
	RomStore     *program.Store
	AddressSpace addressspace.AddressSpaceId
	Range        addressspace.Range
}

// ROM is the component ROMConfig builds.
type ROM struct {
	path paths.ComponentPath
	data []byte
}

func (r *ROM) Path() paths.ComponentPath { return r.path }

func (r *ROM) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	if int(address) >= len(r.data) {
		return 0, curated.Errorf("misc: rom read out of range at %#x", address)
	}
	return r.data[address], nil
}

func (r *ROM) NeedsWork(delta *component.Period) bool { return false }

func (r *ROM) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg ROMConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	f, err := cfg.RomStore.OpenRom(cfg.Rom, program.Required)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, curated.Errorf("misc: %s", err)
	}

	size := int(cfg.Range.End - cfg.Range.Start + 1)
	data := make([]byte, size)
	copy(data, raw)

	r := &ROM{path: ctx.Path(), data: data}
	if err := ctx.Fabric().Map(cfg.AddressSpace, r, cfg.Range, addressspace.R); err != nil {
		return nil, err
	}
	return r, nil
}

// NullConfig maps an address range to a component that always reads zero
// -- a documented hole, rather than an access the fabric rejects outright.
// With Writable set, writes are silently discarded; otherwise the range is
// mapped read-only and the fabric rejects writes to it.
type NullConfig struct {
	AddressSpace addressspace.AddressSpaceId
	Range        addressspace.Range
	Writable     bool
}

// Null is the component NullConfig builds.
type Null struct {
	path paths.ComponentPath
}

func (n *Null) Path() paths.ComponentPath                                       { return n.path }
func (n *Null) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) { return 0, nil }
func (n *Null) WriteMemory(address uint32, value uint8) error                   { return nil }
func (n *Null) NeedsWork(delta *component.Period) bool                          { return false }
func (n *Null) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg NullConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	perm := addressspace.R
	if cfg.Writable {
		perm = addressspace.RW
	}
	n := &Null{path: ctx.Path()}
	if err := ctx.Fabric().Map(cfg.AddressSpace, n, cfg.Range, perm); err != nil {
		return nil, err
	}
	return n, nil
}
