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

// Package errors defines the error kinds used across the machine core (§7):
// byte-ranged bus errors, fatal build errors, non-fatal persistence errors,
// and identification errors. Each is built on top of the curated package so
// that the familiar Errorf/Is/Has pattern-matching still works for callers
// that only care whether an error came from a particular call site.
package errors

import (
	"fmt"

	"github.com/multiconsole/corefab/curated"
)

// Denial is the per-byte-range verdict produced by an address space access.
type Denial int

const (
	// Denied means the range is covered by a region but the component
	// refused the access.
	Denied Denial = iota

	// OutOfBus means no region covers the range at all.
	OutOfBus

	// Impossible means the access could only be satisfied by a side effect,
	// and the caller explicitly asked to avoid side effects.
	Impossible
)

func (d Denial) String() string {
	switch d {
	case Denied:
		return "denied"
	case OutOfBus:
		return "out-of-bus"
	case Impossible:
		return "impossible"
	default:
		return "unknown"
	}
}

// ByteRange is an inclusive address range, [Start, End].
type ByteRange struct {
	Start, End int
}

// BusError carries a mapping from address ranges to the reason that range
// could not be serviced. It is always local to the caller that issued the
// access; the machine core never escalates a BusError on its own (§7 point 1).
type BusError struct {
	AddressSpace int
	Ranges       map[ByteRange]Denial
}

func (e *BusError) Error() string {
	return curated.Errorf("bus error: address space %d has %d unsatisfied range(s)", e.AddressSpace, len(e.Ranges)).Error()
}

// NewBusError builds a BusError for a single denied range, the common case.
func NewBusError(space int, start, end int, denial Denial) *BusError {
	return &BusError{
		AddressSpace: space,
		Ranges:       map[ByteRange]Denial{{Start: start, End: end}: denial},
	}
}

// Merge folds other's ranges into e, keeping e's address space.
func (e *BusError) Merge(other *BusError) {
	if other == nil {
		return
	}
	for r, d := range other.Ranges {
		e.Ranges[r] = d
	}
}

// BuildError is fatal: it aborts machine assembly. Cause identifies what
// went wrong (missing ROM, bad config, duplicate path, unknown component
// type); Detail carries a human-readable explanation.
type BuildError struct {
	Cause  string
	Detail string
}

func (e *BuildError) Error() string {
	return curated.Errorf("build error: %s: %s", e.Cause, e.Detail).Error()
}

// NewBuildError constructs a BuildError.
func NewBuildError(cause, format string, args ...interface{}) *BuildError {
	return &BuildError{Cause: cause, Detail: fmt.Sprintf(format, args...)}
}

// Common build error causes.
const (
	CauseMissingROM        = "missing required ROM"
	CauseMalformedConfig   = "malformed configuration"
	CauseDuplicatePath     = "duplicate component path"
	CauseUnknownComponent  = "unknown component type"
	CauseAddressSpaceLimit = "address space limit exceeded"
)

// PersistenceError reports a corrupt or version-mismatched save/snapshot. It
// is non-fatal: the affected component is left in its default state and the
// machine proceeds (§7 point 3).
type PersistenceError struct {
	Component string
	Reason    string
}

func (e *PersistenceError) Error() string {
	return curated.Errorf("persistence error: component %q: %s", e.Component, e.Reason).Error()
}

// NewPersistenceError constructs a PersistenceError.
func NewPersistenceError(component, format string, args ...interface{}) *PersistenceError {
	return &PersistenceError{Component: component, Reason: fmt.Sprintf(format, args...)}
}

// IdentificationError reports a ROM-id mismatch or unknown program; no
// machine is built when this occurs (§7 point 4).
type IdentificationError struct {
	Reason string
}

func (e *IdentificationError) Error() string {
	return curated.Errorf("identification error: %s", e.Reason).Error()
}

// NewIdentificationError constructs an IdentificationError.
func NewIdentificationError(format string, args ...interface{}) *IdentificationError {
	return &IdentificationError{Reason: fmt.Sprintf(format, args...)}
}
