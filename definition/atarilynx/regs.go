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
	"sync"

	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
)

// regBlockConfig builds a fixed-size byte-addressable register block that is
// NOT mapped onto any bus by itself: Suzy, Mikey, the boot vector and the
// single reserved byte are all instances of this, and Mapctl is the only
// component that ever places them on the CPU address space, by address
// range, in response to its own control-register writes (§9 OQ2). Chip-level
// register semantics (what each Suzy/Mikey address actually does) are
// per-machine peripheral chip emulation and an explicit Non-goal; this is
// the boundary only -- a byte array a mapper can point the bus at.
type regBlockConfig struct {
	size int
}

type regBlock struct {
	path paths.ComponentPath
	mu   sync.RWMutex
	data []byte
}

func (r *regBlock) Path() paths.ComponentPath { return r.path }

func (r *regBlock) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(address) >= len(r.data) {
		return 0, curated.Errorf("atarilynx: register read out of range at %#x", address)
	}
	return r.data[address], nil
}

func (r *regBlock) WriteMemory(address uint32, value uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(address) >= len(r.data) {
		return curated.Errorf("atarilynx: register write out of range at %#x", address)
	}
	r.data[address] = value
	return nil
}

func (r *regBlock) NeedsWork(delta *component.Period) bool { return false }

func (r *regBlock) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

func (cfg regBlockConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	return &regBlock{path: ctx.Path(), data: make([]byte, cfg.size)}, nil
}
