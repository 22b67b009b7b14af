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

// Package component defines the capability interfaces a piece of emulated
// hardware may implement (§4.A/§9 "component polymorphism"). This
// generalises the teacher's hardware/memory/bus package, which defines
// CPUBus/ChipBus/DebuggerBus as the fixed set of ways the Atari 2600's
// chips are addressed from the CPU, into an open-ended, capability-based
// component model: any component implements as many of these interfaces as
// it needs, and the registry/address space only ever call through the
// interface, never downcast to a concrete type (other than at the typed
// handle boundary in the registry package).
package component

import (
	"io"
	"math/big"

	"github.com/multiconsole/corefab/paths"
)

// Component is the minimal contract every registered component satisfies: an
// identity hook used for logging and diagnostics. Every other capability
// below is optional; a component that implements none of them is a valid,
// if inert, occupant of the registry (for example, a placeholder while a
// mapper resolves its real target).
type Component interface {
	// Path returns the component's own path, as it was registered with the
	// registry. Implementations typically store this at construction time.
	Path() paths.ComponentPath
}

// Reader is implemented by components that can be read from the bus.
type Reader interface {
	// ReadMemory returns the byte at the component-local address. avoidSideEffects
	// requests that any side effect the read would normally cause (e.g. a
	// latch auto-increment) be suppressed; if the component cannot honour
	// that, it returns an error. There is no dedicated error value for this
	// case: the address space reports any error from ReadMemory as Denied,
	// not Impossible.
	ReadMemory(address uint32, avoidSideEffects bool) (uint8, error)
}

// Writer is implemented by components that can be written to over the bus.
type Writer interface {
	WriteMemory(address uint32, value uint8) error
}

// Previewer is implemented by components whose reads may be expensive or
// side-effectful enough that a distinct, always-side-effect-free preview
// path is worth offering. Components without side-effectful reads can
// simply have ReadMemory serve both roles. The address space does not call
// PreviewMemory: its side-effect-free reads go through ReadMemory with
// avoidSideEffects set.
type Previewer interface {
	PreviewMemory(address uint32) (uint8, error)
}

// Period is a rational, fixed-point virtual-time value: the reciprocal of a
// frequency, or a sum of such reciprocals. It is defined here (rather than
// in the scheduler package, which is its natural home) because both
// scheduler and component need it and component sits lower in the import
// graph. scheduler re-exports it as scheduler.Period. Arbitrary-precision
// rational arithmetic (math/big.Rat) is used instead of a fixed-width
// numerator/denominator pair so that accumulating many small periods (e.g.
// 1/1000 s, ten thousand times) never drifts or overflows — exactness here
// is what the testable property "accumulated synchronized time equals whole
// ticks" (§8) depends on. As with big.Rat generally, a Period should be
// passed by pointer and never copied by value once it has outstanding
// references.
type Period = big.Rat

// SynchronizationContext is handed to a scheduler-driven component's
// Synchronize call. Allocate is the only way the component advances: it
// returns a finite, bounded iterator of ticks to perform, sized by period
// and the time budget owed to the component. Implementers must never treat
// it as an infinite pump (§9 "suspended work").
type SynchronizationContext interface {
	// Allocate returns the number of whole ticks the component owes for the
	// given period, bounded by budget (a virtual-time ceiling). The caller
	// performs exactly that many units of work, then returns.
	Allocate(period *Period, budget *Period) int
}

// Synchronizer is implemented by scheduler-driven components.
type Synchronizer interface {
	// Synchronize advances the component's internal state using ctx.Allocate
	// to size the work. delta is the virtual time elapsed since the
	// component's last synchronize call.
	Synchronize(ctx SynchronizationContext, delta *Period) error
}

// NeedsWork is implemented by on-demand components: rather than being
// ticked by the scheduler every step, they are only synchronized when
// something (typically a bus access from another component) forces them to
// catch up. NeedsWork(delta) reports whether that catch-up is due.
type NeedsWork interface {
	NeedsWork(delta *Period) bool
}

// FramebufferAccessor is implemented by components that produce video
// output. The machine core only specifies this boundary — actual pixel
// formats and presentation are a GUI-layer concern, out of scope here.
type FramebufferAccessor interface {
	Framebuffer() (pixels []byte, width, height int)
}

// AudioDrain is implemented by components that produce audio samples. As
// with FramebufferAccessor, only the boundary is specified; mixing and
// output are a GUI/audio-backend concern, out of scope here.
type AudioDrain interface {
	DrainAudio() []float32
}

// SaveVersion is implemented by components with long-term, battery-backed
// style persistent state (§4.F "Save"). A component that returns a nil
// *uint64 from SaveVersion is skipped by the persistence store/load pass
// entirely.
type SaveVersion interface {
	SaveVersion() *uint64
	StoreSave(w io.Writer) error
	LoadSave(version uint64, r io.Reader) error
}

// SnapshotVersion is implemented by components with full runtime-state
// persistence (§4.F "Snapshot" / save-states). Same None-means-skip
// convention as SaveVersion.
type SnapshotVersion interface {
	SnapshotVersion() *uint64
	StoreSnapshot(w io.Writer) error
	LoadSnapshot(version uint64, r io.Reader) error
}

// GraphicsInitializer is implemented by components that need the platform's
// graphics backend handle before they can finish initializing (§9 "late
// initialization"). The builder invokes every registered initializer with
// platform data once the windowing layer has been chosen, during Build.
type GraphicsInitializer interface {
	InitializeGraphics(platformData interface{}) error
}
