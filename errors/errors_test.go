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

package errors_test

import (
	"testing"

	"github.com/multiconsole/corefab/errors"
	"github.com/multiconsole/corefab/test"
)

func TestBusError(t *testing.T) {
	e := errors.NewBusError(0, 0x10, 0x1f, errors.OutOfBus)
	test.Equate(t, len(e.Ranges), 1)
	test.Equate(t, e.Ranges[errors.ByteRange{Start: 0x10, End: 0x1f}], errors.OutOfBus)

	other := errors.NewBusError(0, 0x20, 0x2f, errors.Denied)
	e.Merge(other)
	test.Equate(t, len(e.Ranges), 2)
}

func TestBuildError(t *testing.T) {
	e := errors.NewBuildError(errors.CauseMissingROM, "rom %q not found", "pitfall.bin")
	test.Equate(t, e.Cause, errors.CauseMissingROM)
	test.ExpectEquality(t, e.Error(), `build error: missing required ROM: rom "pitfall.bin" not found`)
}

func TestPersistenceError(t *testing.T) {
	e := errors.NewPersistenceError("/component/cartridge", "version mismatch: have 1, want 2")
	test.ExpectEquality(t, e.Error(), `persistence error: component "/component/cartridge": version mismatch: have 1, want 2`)
}

func TestIdentificationError(t *testing.T) {
	e := errors.NewIdentificationError("unknown program for rom id %x", []byte{0xde, 0xad})
	test.ExpectEquality(t, e.Error(), "identification error: unknown program for rom id dead")
}

func TestDenialString(t *testing.T) {
	test.Equate(t, errors.Denied.String(), "denied")
	test.Equate(t, errors.OutOfBus.String(), "out-of-bus")
	test.Equate(t, errors.Impossible.String(), "impossible")
}
