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

package atarilynx

import (
	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/definition/misc"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/registry"
)

// Memory windows Mapctl arbitrates (§9 OQ2), grounded on
// original_source/definition/atarilynx/src/mapctl.rs.
var (
	ramRange      = addressspace.Range{Start: 0x0000, End: 0xffff}
	suzyRange     = addressspace.Range{Start: 0xfc00, End: 0xfcff}
	mikeyRange    = addressspace.Range{Start: 0xfd00, End: 0xfdff}
	vectorRange   = addressspace.Range{Start: 0xfffa, End: 0xfffe}
	reservedRange = addressspace.Range{Start: 0xfff8, End: 0xfff8}
	mapctlRange   = addressspace.Range{Start: 0xfff9, End: 0xfff9}
)

// MapctlStatus is the decoded control byte: which of Suzy, Mikey and the
// boot vector currently shadow RAM. rom/sequentialDisable are carried for
// byte-fidelity with the original control register but have no mapping
// effect here (boot-ROM banking and sequential DMA disable are hardware
// behaviour below this framework's boundary).
type MapctlStatus struct {
	Suzy              bool
	Mikey             bool
	Rom               bool
	Vector            bool
	Reserved          uint8 // 3 bits
	SequentialDisable bool
}

// StatusFromByte decodes a control byte (bit 0 = suzy, bit 1 = mikey, bit 2
// = rom, bit 3 = vector, bits 4-6 = reserved, bit 7 = sequential disable).
func StatusFromByte(b uint8) MapctlStatus {
	return MapctlStatus{
		Suzy:              b&(1<<0) != 0,
		Mikey:             b&(1<<1) != 0,
		Rom:               b&(1<<2) != 0,
		Vector:            b&(1<<3) != 0,
		Reserved:          (b >> 4) & 0x7,
		SequentialDisable: b&(1<<7) != 0,
	}
}

// ToByte packs the status back into a control byte.
func (s MapctlStatus) ToByte() uint8 {
	var b uint8
	if s.Suzy {
		b |= 1 << 0
	}
	if s.Mikey {
		b |= 1 << 1
	}
	if s.Rom {
		b |= 1 << 2
	}
	if s.Vector {
		b |= 1 << 3
	}
	b |= (s.Reserved & 0x7) << 4
	if s.SequentialDisable {
		b |= 1 << 7
	}
	return b
}

// MapctlConfig builds the Mapctl component (§9 OQ2).
type MapctlConfig struct {
	AddressSpace addressspace.AddressSpaceId
	RAMPath      paths.ComponentPath
	SuzyPath     paths.ComponentPath
	MikeyPath    paths.ComponentPath
	VectorPath   paths.ComponentPath
	ReservedPath paths.ComponentPath
}

// Mapctl is the Atari Lynx memory-map control register: every write
// re-derives which chip windows shadow RAM and re-asserts the whole overlay
// atomically, including its own control-byte mapping, through a weak handle
// to itself (self would otherwise retain-cycle: Mapctl -> Handle[*Mapctl] ->
// Mapctl).
type Mapctl struct {
	path   paths.ComponentPath
	cfg    MapctlConfig
	space  addressspace.AddressSpaceId
	status MapctlStatus

	self     registry.WeakHandle[*Mapctl]
	ram      component.Component
	suzy     component.Component
	mikey    component.Component
	vector   component.Component
	reserved component.Component

	fabric *addressspace.Fabric
}

func (m *Mapctl) Path() paths.ComponentPath { return m.path }

// Status returns the currently decoded control byte.
func (m *Mapctl) Status() MapctlStatus { return m.status }

func (m *Mapctl) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	return m.status.ToByte(), nil
}

func (m *Mapctl) WriteMemory(address uint32, value uint8) error {
	m.status = StatusFromByte(value)
	return m.remap()
}

// remap re-derives the overlay in one pass, mirroring mapctl.rs's
// memory_write: RAM's full-range claim and Mapctl's own control byte are
// always re-asserted; Suzy/Mikey/the vector window are added only while
// their status bit is set, and dropped (an empty command batch) otherwise.
func (m *Mapctl) remap() error {
	if err := m.fabric.Remap(m.space, m.ram, []addressspace.MapCommand{
		{Range: ramRange, Permission: addressspace.RW},
	}); err != nil {
		return err
	}

	if err := remapToggle(m.fabric, m.space, m.suzy, suzyRange, m.status.Suzy); err != nil {
		return err
	}
	if err := remapToggle(m.fabric, m.space, m.mikey, mikeyRange, m.status.Mikey); err != nil {
		return err
	}
	if err := remapToggle(m.fabric, m.space, m.vector, vectorRange, m.status.Vector); err != nil {
		return err
	}

	if err := m.fabric.Remap(m.space, m.reserved, []addressspace.MapCommand{
		{Range: reservedRange, Permission: addressspace.RW},
	}); err != nil {
		return err
	}

	// Re-assert Mapctl's own mapping last, through the weak self-handle:
	// Upgrade panics if the owning Machine has been torn down, which is the
	// correct failure mode for a write arriving after teardown rather than
	// silently no-op-ing.
	self := m.self.Upgrade()
	selfComponent := registry.Interact(self, func(c *Mapctl) component.Component { return c })
	return m.fabric.Remap(m.space, selfComponent, []addressspace.MapCommand{
		{Range: mapctlRange, Permission: addressspace.RW},
	})
}

func remapToggle(f *addressspace.Fabric, space addressspace.AddressSpaceId, target component.Component, rng addressspace.Range, enabled bool) error {
	if !enabled {
		return f.Remap(space, target, nil)
	}
	return f.Remap(space, target, []addressspace.MapCommand{
		{Range: rng, Permission: addressspace.RW},
	})
}

func (m *Mapctl) NeedsWork(delta *component.Period) bool { return false }

func (m *Mapctl) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// BindSelf implements builder.SelfBinder. It fires immediately after Mapctl
// is inserted into reg, by which point Manifest has already inserted RAM,
// Suzy, Mikey, the vector block and the reserved byte (it orders them
// before Mapctl for exactly this reason) -- so every sibling this component
// needs to remap resolves here, all at once, instead of BuildComponent
// needing registry access it was never given.
func (m *Mapctl) BindSelf(reg *registry.Registry, path paths.ComponentPath) {
	self, err := registry.HandleFor[*Mapctl](reg, path)
	if err != nil {
		panic(curated.Errorf("atarilynx: %s", err))
	}
	m.self = registry.Weaken(self)

	ramH, err := registry.HandleFor[*misc.RAM](reg, m.cfg.RAMPath)
	if err != nil {
		panic(curated.Errorf("atarilynx: %s", err))
	}
	m.ram = registry.Interact(ramH, func(c *misc.RAM) component.Component { return c })

	m.suzy = resolveRegBlock(reg, m.cfg.SuzyPath)
	m.mikey = resolveRegBlock(reg, m.cfg.MikeyPath)
	m.vector = resolveRegBlock(reg, m.cfg.VectorPath)
	m.reserved = resolveRegBlock(reg, m.cfg.ReservedPath)
}

func resolveRegBlock(reg *registry.Registry, path paths.ComponentPath) component.Component {
	h, err := registry.HandleFor[*regBlock](reg, path)
	if err != nil {
		panic(curated.Errorf("atarilynx: %s", err))
	}
	return registry.Interact(h, func(c *regBlock) component.Component { return c })
}

// BuildComponent implements builder.ComponentConfig. Sibling components are
// resolved later, in BindSelf -- Context exposes no registry access during
// construction.
func (cfg MapctlConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	m := &Mapctl{
		path:   ctx.Path(),
		cfg:    cfg,
		space:  cfg.AddressSpace,
		fabric: ctx.Fabric(),
	}

	if err := ctx.Fabric().Map(cfg.AddressSpace, m, mapctlRange, addressspace.RW); err != nil {
		return nil, err
	}
	return m, nil
}
