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

// Package errors defines the four error kinds the machine core produces
// (see §7 of the design): BusError (local, byte-ranged, never escalated by
// the core itself), BuildError (fatal, aborts assembly), PersistenceError
// (non-fatal, the affected component keeps its default state) and
// IdentificationError (surfaced, no machine is built). Each kind wraps the
// curated package's Errorf/Is/Has pattern-matching so callers can still
// recognise an error by its message shape without a type switch, while also
// exposing typed fields (address ranges, cause, component name) for callers
// that want structured detail.
package errors
