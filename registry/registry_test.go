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

package registry_test

import (
	"sync"
	"testing"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/registry"
	"github.com/multiconsole/corefab/test"
)

type counter struct {
	path paths.ComponentPath
	n    int
}

func (c *counter) Path() paths.ComponentPath { return c.path }

func (c *counter) ReadMemory(address uint32, _ bool) (uint8, error) {
	return uint8(c.n), nil
}

func (c *counter) WriteMemory(address uint32, value uint8) error {
	c.n += int(value)
	return nil
}

func mustPath(t *testing.T, s string) paths.ComponentPath {
	t.Helper()
	p, err := paths.NewComponentPath(s)
	test.Equate(t, err, nil)
	return p
}

func TestInsertDuplicatePath(t *testing.T) {
	r := registry.New()
	p := mustPath(t, ":component/ram")

	_, err := r.Insert(p, &counter{path: p})
	test.Equate(t, err, nil)

	_, err = r.Insert(p, &counter{path: p})
	test.ExpectFailure(t, err)
}

func TestHandleForWrongType(t *testing.T) {
	r := registry.New()
	p := mustPath(t, ":component/ram")
	_, err := r.Insert(p, &counter{path: p})
	test.Equate(t, err, nil)

	_, err = registry.HandleFor[component.Synchronizer](r, p)
	test.ExpectFailure(t, err)

	_, err = registry.HandleFor[component.Writer](r, p)
	test.Equate(t, err, nil)
}

func TestInteractRoundTrip(t *testing.T) {
	r := registry.New()
	p := mustPath(t, ":component/ram")
	_, err := r.Insert(p, &counter{path: p})
	test.Equate(t, err, nil)

	wh, err := registry.HandleFor[component.Writer](r, p)
	test.Equate(t, err, nil)
	err = registry.InteractMutErr(wh, func(w component.Writer) error {
		return w.WriteMemory(0, 5)
	})
	test.Equate(t, err, nil)

	rh, err := registry.HandleFor[component.Reader](r, p)
	test.Equate(t, err, nil)
	var v uint8
	err = registry.InteractErr(rh, func(rd component.Reader) error {
		var rerr error
		v, rerr = rd.ReadMemory(0, false)
		return rerr
	})
	test.Equate(t, err, nil)
	test.Equate(t, v, uint8(5))
}

func TestIterInsertionOrder(t *testing.T) {
	r := registry.New()

	var names []string
	for _, n := range []string{"a", "b", "c"} {
		p := mustPath(t, ":component/"+n)
		_, err := r.Insert(p, &counter{path: p})
		test.Equate(t, err, nil)
		names = append(names, n)
	}

	var got []string
	r.Iter(func(path paths.ComponentPath, c component.Component) {
		got = append(got, path.Leaf())
	})
	test.Equate(t, got, names)
}

func TestWeakHandleUpgradeAfterTeardown(t *testing.T) {
	r := registry.New()
	p := mustPath(t, ":component/ram")
	_, err := r.Insert(p, &counter{path: p})
	test.Equate(t, err, nil)

	h, err := registry.HandleFor[component.Writer](r, p)
	test.Equate(t, err, nil)
	w := registry.Weaken(h)

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected panic upgrading weak handle after teardown")
			}
		}()
		r.Teardown()
		w.Upgrade()
	}()
}

func TestConcurrentInteractDisjointComponents(t *testing.T) {
	r := registry.New()
	pa := mustPath(t, ":component/a")
	pb := mustPath(t, ":component/b")
	_, err := r.Insert(pa, &counter{path: pa})
	test.Equate(t, err, nil)
	_, err = r.Insert(pb, &counter{path: pb})
	test.Equate(t, err, nil)

	ha, err := registry.HandleFor[component.Writer](r, pa)
	test.Equate(t, err, nil)
	hb, err := registry.HandleFor[component.Writer](r, pb)
	test.Equate(t, err, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		registry.InteractMut(ha, func(w component.Writer) struct{} {
			_ = w.WriteMemory(0, 1)
			return struct{}{}
		})
	}()
	go func() {
		defer wg.Done()
		registry.InteractMut(hb, func(w component.Writer) struct{} {
			_ = w.WriteMemory(0, 2)
			return struct{}{}
		})
	}()
	wg.Wait()
}

func TestInteractMutReentrantSameGoroutinePanics(t *testing.T) {
	r := registry.New()
	p := mustPath(t, ":component/ram")
	_, err := r.Insert(p, &counter{path: p})
	test.Equate(t, err, nil)

	h, err := registry.HandleFor[component.Writer](r, p)
	test.Equate(t, err, nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected panic on reentrant InteractMut from the same goroutine")
			}
		}()
		registry.InteractMut(h, func(w component.Writer) struct{} {
			registry.InteractMut(h, func(w component.Writer) struct{} {
				return struct{}{}
			})
			return struct{}{}
		})
	}()
}
