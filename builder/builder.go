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

// Package builder assembles a Machine from a declarative sequence of staged
// configuration calls (§4.E). It plays the role the teacher's debugger.New
// plays for the whole emulator -- one place that, in order, wires up every
// subsystem (memory, disassembly, rewind, coprocessor developer tooling,
// GUI) and fails fast the moment any of them can't be constructed -- but
// generalised so the set of subsystems is whatever the machine definition
// asks for, not a fixed Atari 2600 parts list.
package builder

import (
	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/errors"
	"github.com/multiconsole/corefab/logger"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/registry"
	"github.com/multiconsole/corefab/scheduler"
)

// Context is handed to a ComponentConfig's BuildComponent call. It exposes
// exactly what a component needs while it is being assembled: memory
// mapping, scheduler registration, and nothing about sibling components'
// internals (those come later, post-Build, via typed handles resolved
// through the Machine's Registry).
type Context struct {
	b    *Builder
	path paths.ComponentPath
}

// Path returns the component path being built.
func (c *Context) Path() paths.ComponentPath { return c.path }

// Fabric returns the address-space fabric, for components that map memory
// during construction.
func (c *Context) Fabric() *addressspace.Fabric { return c.b.fabric }

// Scheduler returns the scheduler, for components that register scheduled
// work during construction.
func (c *Context) Scheduler() *scheduler.Scheduler { return c.b.scheduler }

// ComponentConfig is supplied by callers of InsertComponent; it is the
// "config's build_component(builder_ctx) -> Component" factory from §4.E.
type ComponentConfig interface {
	BuildComponent(ctx *Context) (component.Component, error)
}

// SelfBinder is implemented by a component that needs a registry.WeakHandle
// to itself once it has been registered (§9 "re-entrant mapper-control
// pattern" -- a component that writes back through a weak self-reference to
// re-trigger its own remap, without the strong-reference cycle a plain
// Handle would create). BindSelf fires immediately after the component is
// inserted into the registry, so reg already resolves path to this very
// component.
type SelfBinder interface {
	BindSelf(reg *registry.Registry, path paths.ComponentPath)
}

// Builder is a linear, consuming staged configuration: each method mutates
// and returns the same *Builder so call sites can chain, but a Builder that
// has already failed (see Err) rejects further work, consistent with §4.E's
// "linear, consuming" framing translated into Go's no-move-semantics error
// style.
type Builder struct {
	fabric    *addressspace.Fabric
	scheduler *scheduler.Scheduler
	registry  *registry.Registry

	graphicsInitializers []component.GraphicsInitializer
	err                  error
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{
		fabric:    addressspace.New(),
		scheduler: scheduler.New(),
		registry:  registry.New(),
	}
}

// Err returns the first fatal build error encountered, if any. Once set, it
// is never cleared; every further staged call is a no-op that returns b.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// InsertAddressSpace registers a new width-bit address space.
func (b *Builder) InsertAddressSpace(widthBits uint) (*Builder, addressspace.AddressSpaceId) {
	if b.err != nil {
		return b, 0
	}
	id, err := b.fabric.InsertAddressSpace(widthBits)
	if err != nil {
		return b.fail(err), 0
	}
	return b, id
}

// MemoryMapMirror registers a top-level mirror on an already-inserted
// address space.
func (b *Builder) MemoryMapMirror(space addressspace.AddressSpaceId, src, dst addressspace.Range, perm addressspace.Permission) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.fabric.MapMirror(space, src, dst, perm); err != nil {
		return b.fail(err)
	}
	return b
}

// InsertComponent builds and registers a top-level component at path.
func (b *Builder) InsertComponent(path paths.ComponentPath, mode scheduler.Mode, period *scheduler.Period, cfg ComponentConfig) (*Builder, paths.ComponentPath) {
	return b.insert(path, mode, period, cfg)
}

// InsertChildComponent is InsertComponent scoped beneath an existing parent
// path.
func (b *Builder) InsertChildComponent(parent paths.ComponentPath, name string, mode scheduler.Mode, period *scheduler.Period, cfg ComponentConfig) (*Builder, paths.ComponentPath) {
	if b.err != nil {
		return b, parent
	}
	child, err := parent.Push(name)
	if err != nil {
		return b.fail(errors.NewBuildError(errors.CauseMalformedConfig, "%s", err)), parent
	}
	return b.insert(child, mode, period, cfg)
}

func (b *Builder) insert(path paths.ComponentPath, mode scheduler.Mode, period *scheduler.Period, cfg ComponentConfig) (*Builder, paths.ComponentPath) {
	if b.err != nil {
		return b, path
	}

	ctx := &Context{b: b, path: path}
	c, err := cfg.BuildComponent(ctx)
	if err != nil {
		return b.fail(errors.NewBuildError(errors.CauseMalformedConfig, "building %s: %s", path.String(), err)), path
	}

	if _, err := b.registry.Insert(path, c); err != nil {
		return b.fail(errors.NewBuildError(errors.CauseDuplicatePath, "%s", err)), path
	}

	if err := b.scheduler.RegisterComponent(path, c, mode, period); err != nil {
		return b.fail(errors.NewBuildError(errors.CauseMalformedConfig, "%s", err)), path
	}

	if gi, ok := c.(component.GraphicsInitializer); ok {
		b.graphicsInitializers = append(b.graphicsInitializers, gi)
	}

	if sb, ok := c.(SelfBinder); ok {
		sb.BindSelf(b.registry, path)
	}

	logger.Logf(path.String(), "registered (%d)", mode)

	return b, path
}
