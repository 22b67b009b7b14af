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

package component_test

import (
	"math/big"
	"testing"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/test"
)

// ram is a minimal component implementing Component, Reader and Writer, used
// to check the capability interfaces compose the way callers expect: a
// caller holding only a component.Reader can't call WriteMemory, but a type
// assertion to component.Writer succeeds when the concrete type supports it.
type ram struct {
	path paths.ComponentPath
	data [16]byte
}

func (r *ram) Path() paths.ComponentPath { return r.path }

func (r *ram) ReadMemory(address uint32, _ bool) (uint8, error) {
	return r.data[address], nil
}

func (r *ram) WriteMemory(address uint32, value uint8) error {
	r.data[address] = value
	return nil
}

func TestCapabilityComposition(t *testing.T) {
	p, err := paths.NewComponentPath(":component/ram")
	test.Equate(t, err, nil)

	r := &ram{path: p}

	var c component.Component = r
	test.Equate(t, c.Path().String(), "/component/ram")

	var rd component.Reader = r
	v, err := rd.ReadMemory(3, false)
	test.Equate(t, err, nil)
	test.Equate(t, v, uint8(0))

	var wr component.Writer
	var ok bool
	wr, ok = interface{}(r).(component.Writer)
	test.Equate(t, ok, true)
	test.Equate(t, wr.WriteMemory(3, 0xaa), nil)

	v, err = rd.ReadMemory(3, false)
	test.Equate(t, err, nil)
	test.Equate(t, v, uint8(0xaa))

	_, ok = interface{}(r).(component.Synchronizer)
	test.Equate(t, ok, false)
}

func TestPeriodArithmetic(t *testing.T) {
	// a 1000Hz component's period is 1/1000; one second of virtual time is
	// exactly 1000 such periods, with no drift.
	period := big.NewRat(1, 1000)
	total := new(big.Rat)
	for i := 0; i < 1000; i++ {
		total.Add(total, period)
	}
	test.Equate(t, total.Cmp(big.NewRat(1, 1)), 0)
}
