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

// Package registry owns every component instance in a machine (§4.B). It
// replaces inter-component owning pointers (which would make the CPU ↔
// memory ↔ mapper reference cycles described in §9 impossible to express
// safely) with arena-style integer ids resolved through typed handles at
// call time, the way the teacher's hardware/instance package separates "the
// parts that vary between instances" from direct struct embedding, and the
// way hardware/memory/bus's CPUBus/ChipBus interfaces let the VCS dispatch
// to a chip without the caller ever holding a concrete pointer to it.
package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/multiconsole/corefab/assert"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
)

// ComponentId is the arena index of a registered component.
type ComponentId int

type entry struct {
	path      paths.ComponentPath
	component component.Component
	mu        sync.RWMutex

	// owner is the id of the goroutine currently holding mu exclusively, or 0
	// if unlocked. Used only to turn a same-goroutine reentrant InteractMut
	// call -- which would otherwise deadlock silently on mu.Lock() -- into an
	// immediate panic.
	owner atomic.Uint64
}

// Registry owns every component instance in one machine. The zero value is
// not usable; construct with New.
type Registry struct {
	// mu protects the maps below (insertion/lookup), not the components
	// themselves -- each entry has its own lock for that.
	mu       sync.RWMutex
	byPath   map[string]ComponentId
	entries  []*entry
	alive    bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byPath: make(map[string]ComponentId),
		alive:  true,
	}
}

// Insert registers a new component at path. Fails if the path is already
// occupied.
func (r *Registry) Insert(path paths.ComponentPath, c component.Component) (ComponentId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := path.String()
	if _, ok := r.byPath[key]; ok {
		return 0, curated.Errorf("registry: duplicate component path %q", key)
	}

	id := ComponentId(len(r.entries))
	r.entries = append(r.entries, &entry{path: path, component: c})
	r.byPath[key] = id

	return id, nil
}

// Handle is a typed reference into the registry: an id plus the registry it
// belongs to. It is safe to copy and to hold across calls into other
// components, since it carries no lock.
type Handle[C any] struct {
	reg *Registry
	id  ComponentId
}

// HandleFor materialises a typed handle for path, failing if the path is
// missing or the stored component does not implement/assert to C.
func HandleFor[C any](r *Registry, path paths.ComponentPath) (Handle[C], error) {
	r.mu.RLock()
	id, ok := r.byPath[path.String()]
	r.mu.RUnlock()

	if !ok {
		return Handle[C]{}, curated.Errorf("registry: no component at path %q", path.String())
	}

	e := r.entries[id]
	e.mu.RLock()
	_, assertable := e.component.(C)
	e.mu.RUnlock()

	if !assertable {
		return Handle[C]{}, curated.Errorf("registry: component at %q does not implement the requested type", path.String())
	}

	return Handle[C]{reg: r, id: id}, nil
}

// Path returns the component path the handle was resolved from.
func (h Handle[C]) Path() paths.ComponentPath {
	return h.reg.entries[h.id].path
}

// WeakHandle is an upgradeable-only-while-alive reference, used for the
// re-entrant mapper-control pattern in §9 OQ2 (the Atari Lynx mapper control
// component writing back through a weak self-reference to re-trigger a
// remap). Upgrade succeeds while the owning Machine is alive and panics
// otherwise, per the decision recorded in DESIGN.md: "treat the weak as
// always upgradeable during run and fail loudly otherwise".
type WeakHandle[C any] struct {
	h Handle[C]
}

// Weaken produces a WeakHandle from a live Handle.
func Weaken[C any](h Handle[C]) WeakHandle[C] {
	return WeakHandle[C]{h: h}
}

// Upgrade returns the underlying Handle, panicking if the registry has been
// torn down.
func (w WeakHandle[C]) Upgrade() Handle[C] {
	w.h.reg.mu.RLock()
	alive := w.h.reg.alive
	w.h.reg.mu.RUnlock()

	if !alive {
		panic(fmt.Sprintf("registry: weak handle to %q upgraded after machine teardown", w.h.Path().String()))
	}
	return w.h
}

// Interact takes a shared lock on the handle's component and invokes fn with
// it. Multiple Interact calls to disjoint components may proceed
// concurrently; the registry itself does no locking beyond per-component
// (§8 "concurrent readers of disjoint components never serialize").
func Interact[C any, T any](h Handle[C], fn func(c C) T) T {
	e := h.reg.entries[h.id]
	e.mu.RLock()
	defer e.mu.RUnlock()
	c := e.component.(C)
	return fn(c)
}

// InteractMut takes an exclusive lock on the handle's component and invokes
// fn with it. The lock is held while fn runs and released before
// InteractMut returns. fn may call Interact/InteractMut for a different
// handle, which then takes that component's own lock while this one is still
// held; the registry does not prevent that nesting. A same-goroutine
// reentrant InteractMut on the same handle would otherwise deadlock silently
// on mu.Lock(); it panics instead.
func InteractMut[C any, T any](h Handle[C], fn func(c C) T) T {
	e := h.reg.entries[h.id]

	gid := assert.GetGoRoutineID()
	if e.owner.Load() == gid {
		panic(fmt.Sprintf("registry: reentrant InteractMut on %q from the same goroutine", h.Path().String()))
	}

	e.mu.Lock()
	e.owner.Store(gid)
	defer func() {
		e.owner.Store(0)
		e.mu.Unlock()
	}()
	c := e.component.(C)
	return fn(c)
}

// InteractErr is Interact for functions that can fail.
func InteractErr[C any](h Handle[C], fn func(c C) error) error {
	e := h.reg.entries[h.id]
	e.mu.RLock()
	defer e.mu.RUnlock()
	c := e.component.(C)
	return fn(c)
}

// InteractMutErr is InteractMut for functions that can fail.
func InteractMutErr[C any](h Handle[C], fn func(c C) error) error {
	e := h.reg.entries[h.id]

	gid := assert.GetGoRoutineID()
	if e.owner.Load() == gid {
		panic(fmt.Sprintf("registry: reentrant InteractMutErr on %q from the same goroutine", h.Path().String()))
	}

	e.mu.Lock()
	e.owner.Store(gid)
	defer func() {
		e.owner.Store(0)
		e.mu.Unlock()
	}()
	c := e.component.(C)
	return fn(c)
}

// Iter visits every component in insertion order, under a shared lock each,
// calling fn. Used by the persistence package to write components out in a
// deterministic order.
func (r *Registry) Iter(fn func(path paths.ComponentPath, c component.Component)) {
	r.mu.RLock()
	entries := append([]*entry(nil), r.entries...)
	r.mu.RUnlock()

	for _, e := range entries {
		e.mu.RLock()
		fn(e.path, e.component)
		e.mu.RUnlock()
	}
}

// IterMut is Iter, taking an exclusive lock per component instead.
func (r *Registry) IterMut(fn func(path paths.ComponentPath, c component.Component)) {
	r.mu.RLock()
	entries := append([]*entry(nil), r.entries...)
	r.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		fn(e.path, e.component)
		e.mu.Unlock()
	}
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Teardown marks the registry dead, so that any WeakHandle upgrade from this
// point on panics rather than silently operating on a defunct machine.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alive = false
}
