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

// Package addressspace implements the bus fabric (§4.C): indexed address
// spaces with width-bit wraparound, overlapping component and mirror
// regions, and a lazily-built, page-granular lookup table. It generalises
// the teacher's hardware/memory/bus package (CPUBus.Read/Write dispatching
// through a single VCSMemory map of fixed TIA/RAM/RIOT/Cartridge regions,
// see hardware/memory/memorymap) into an arbitrary number of spaces of
// arbitrary width, with runtime-reconfigurable maps instead of the Atari
// 2600's fixed decode table.
package addressspace

import (
	"sync"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/errors"
)

// Permission is a bitmask of the ways a region may be accessed.
type Permission int

const (
	R Permission = 1 << iota
	W
	RW = R | W
)

func (p Permission) has(q Permission) bool { return p&q == q }

// ConflictPolicy governs what happens when two writable regions legitimately
// overlap the same address (§9 OQ3). The default, LastWins, is what most
// memory maps want: the most recently inserted region shadows earlier ones.
// ANDMerge opts a region into bus-contention behaviour, where an address
// covered by more than one ANDMerge region reads/writes the bitwise AND of
// every contending component's byte, modelling two chips driving the same
// bus line simultaneously.
type ConflictPolicy int

const (
	LastWins ConflictPolicy = iota
	ANDMerge
)

// Range is an inclusive address range, local to the address space it is
// used within.
type Range struct {
	Start, End uint64
}

func (r Range) contains(addr uint64) bool { return addr >= r.Start && addr <= r.End }

// AddressSpaceId identifies one address space within a Fabric.
type AddressSpaceId int

const maxAddressSpaces = 1 << 16

type regionKind int

const (
	kindComponent regionKind = iota
	kindMirror
)

type region struct {
	rng    Range
	perm   Permission
	kind   regionKind
	policy ConflictPolicy
	target component.Component // kindComponent only
	dest   Range                // kindMirror only: where the source redirects to
	order  int
}

// MapCommand is one entry of an atomic Remap batch.
type MapCommand struct {
	Range          Range
	Permission     Permission
	ConflictPolicy ConflictPolicy

	// MirrorDest, if non-nil, makes this command a mirror: Range redirects to
	// *MirrorDest, preserving offset, instead of addressing Target directly.
	MirrorDest *Range
}

const pageSize = 4096

// resolved is one concrete, non-overlapping span within a page: either a
// single component target (len(members) == 1) or an AND-merge conflict
// group (len(members) > 1).
type resolved struct {
	rng     Range
	members []member
}

type member struct {
	target    component.Component
	localBase uint64 // target-local address of rng.Start
}

type page struct {
	entries []resolved // sorted by rng.Start, non-overlapping
}

// AddressSpace is one indexed bus within a Fabric.
type AddressSpace struct {
	id   AddressSpaceId
	mask uint64

	mu      sync.RWMutex
	read    []region
	write   []region
	seq     int
	generation uint64

	pagesMu sync.Mutex
	readPages  map[uint64]*builtPage
	writePages map[uint64]*builtPage
}

type builtPage struct {
	generation uint64
	p          page
}

func newAddressSpace(id AddressSpaceId, widthBits uint) *AddressSpace {
	mask := uint64(1)<<widthBits - 1
	return &AddressSpace{
		id:         id,
		mask:       mask,
		readPages:  make(map[uint64]*builtPage),
		writePages: make(map[uint64]*builtPage),
	}
}

// Mask returns the address mask for this space (2^width - 1).
func (as *AddressSpace) Mask() uint64 { return as.mask }

// Fabric owns every address space in a machine.
type Fabric struct {
	mu     sync.RWMutex
	spaces []*AddressSpace
}

// New creates an empty Fabric.
func New() *Fabric {
	return &Fabric{}
}

// InsertAddressSpace registers a new width_bits-wide space.
func (f *Fabric) InsertAddressSpace(widthBits uint) (AddressSpaceId, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.spaces) >= maxAddressSpaces {
		return 0, errors.NewBuildError(errors.CauseAddressSpaceLimit, "cannot insert more than %d address spaces", maxAddressSpaces)
	}
	if widthBits == 0 || widthBits > 64 {
		return 0, curated.Errorf("addressspace: invalid width %d bits", widthBits)
	}

	id := AddressSpaceId(len(f.spaces))
	f.spaces = append(f.spaces, newAddressSpace(id, widthBits))
	return id, nil
}

func (f *Fabric) space(id AddressSpaceId) (*AddressSpace, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(f.spaces) {
		return nil, curated.Errorf("addressspace: no such address space %d", int(id))
	}
	return f.spaces[id], nil
}

// Space returns the address space registered under id, for callers that
// want to use the typed generic helpers (ReadLEValue et al.) directly.
func (f *Fabric) Space(id AddressSpaceId) (*AddressSpace, error) {
	return f.space(id)
}

// Read is Fabric-level sugar for Space(id).Read.
func (f *Fabric) Read(id AddressSpaceId, address uint64, avoidSideEffects bool, buf []byte) error {
	as, err := f.space(id)
	if err != nil {
		return err
	}
	return as.Read(address, avoidSideEffects, buf)
}

// Write is Fabric-level sugar for Space(id).Write.
func (f *Fabric) Write(id AddressSpaceId, address uint64, buf []byte) error {
	as, err := f.space(id)
	if err != nil {
		return err
	}
	return as.Write(address, buf)
}

// Map adds a region addressing target directly.
func (f *Fabric) Map(id AddressSpaceId, target component.Component, rng Range, perm Permission) error {
	return f.MapWithPolicy(id, target, rng, perm, LastWins)
}

// MapWithPolicy is Map, explicitly choosing a ConflictPolicy (§9 OQ3).
func (f *Fabric) MapWithPolicy(id AddressSpaceId, target component.Component, rng Range, perm Permission, policy ConflictPolicy) error {
	as, err := f.space(id)
	if err != nil {
		return err
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	r := region{rng: rng, perm: perm, kind: kindComponent, policy: policy, target: target, order: as.seq}
	as.seq++
	if perm.has(R) {
		as.read = append(as.read, r)
	}
	if perm.has(W) {
		as.write = append(as.write, r)
	}
	as.invalidate()
	return nil
}

// MapMirror redirects sourceRange onto destRange, preserving offset.
func (f *Fabric) MapMirror(id AddressSpaceId, sourceRange, destRange Range, perm Permission) error {
	as, err := f.space(id)
	if err != nil {
		return err
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	r := region{rng: sourceRange, perm: perm, kind: kindMirror, dest: destRange, order: as.seq}
	as.seq++
	if perm.has(R) {
		as.read = append(as.read, r)
	}
	if perm.has(W) {
		as.write = append(as.write, r)
	}
	as.invalidate()
	return nil
}

// Remap atomically replaces target's existing regions in the permissions
// named by commands with the new regions described by commands, in order.
func (f *Fabric) Remap(id AddressSpaceId, target component.Component, commands []MapCommand) error {
	as, err := f.space(id)
	if err != nil {
		return err
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	var touched Permission
	for _, c := range commands {
		touched |= c.Permission
	}

	prune := func(regions []region) []region {
		out := regions[:0:0]
		for _, r := range regions {
			if r.kind == kindComponent && r.target == target && r.perm&touched != 0 {
				continue
			}
			out = append(out, r)
		}
		return out
	}
	as.read = prune(as.read)
	as.write = prune(as.write)

	for _, c := range commands {
		var r region
		if c.MirrorDest != nil {
			r = region{rng: c.Range, perm: c.Permission, kind: kindMirror, dest: *c.MirrorDest, order: as.seq}
		} else {
			r = region{rng: c.Range, perm: c.Permission, kind: kindComponent, policy: c.ConflictPolicy, target: target, order: as.seq}
		}
		as.seq++
		if c.Permission.has(R) {
			as.read = append(as.read, r)
		}
		if c.Permission.has(W) {
			as.write = append(as.write, r)
		}
	}

	as.invalidate()
	return nil
}

// invalidate bumps the generation counter so that every page is rebuilt the
// next time it is touched. Must be called with as.mu held.
func (as *AddressSpace) invalidate() {
	as.pagesMu.Lock()
	as.generation++
	as.pagesMu.Unlock()
}
