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

package persistence_test

import (
	"io"
	"testing"

	"github.com/spf13/afero"

	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/persistence"
	"github.com/multiconsole/corefab/registry"
	"github.com/multiconsole/corefab/test"
)

// batteryBacked is a component with a single persistable byte, standing in
// for e.g. a cartridge's battery-backed RAM.
type batteryBacked struct {
	path    paths.ComponentPath
	version uint64
	value   byte
}

func (b *batteryBacked) Path() paths.ComponentPath { return b.path }

func (b *batteryBacked) SaveVersion() *uint64 { return &b.version }

func (b *batteryBacked) StoreSave(w io.Writer) error {
	_, err := w.Write([]byte{b.value})
	return err
}

func (b *batteryBacked) LoadSave(version uint64, r io.Reader) error {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	b.value = buf[0]
	b.version = version
	return nil
}

// stateless has no save state at all (SaveVersion returns nil), and must be
// skipped entirely by Store/Load.
type stateless struct {
	path paths.ComponentPath
}

func (s *stateless) Path() paths.ComponentPath { return s.path }
func (s *stateless) SaveVersion() *uint64       { return nil }
func (s *stateless) StoreSave(w io.Writer) error {
	panic("must not be called: SaveVersion reported nil")
}
func (s *stateless) LoadSave(version uint64, r io.Reader) error {
	panic("must not be called: SaveVersion reported nil")
}

func mustPath(t *testing.T, s string) paths.ComponentPath {
	t.Helper()
	p, err := paths.NewComponentPath(s)
	test.Equate(t, err, nil)
	return p
}

// TestSaveRoundTrip is §8 scenario 6: store a save archive, reload it into a
// fresh registry populated with fresh (default-valued) components of the
// same paths, and confirm persisted state comes back exactly.
func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := persistence.New(fs)

	reg := registry.New()
	ram := &batteryBacked{path: mustPath(t, ":component/cartridge/ram"), version: 3, value: 0x7b}
	_, err := reg.Insert(ram.path, ram)
	test.Equate(t, err, nil)

	inert := &stateless{path: mustPath(t, ":component/tia")}
	_, err = reg.Insert(inert.path, inert)
	test.Equate(t, err, nil)

	const dir = "save/abc123/pitfall"
	err = store.StoreSave(reg, dir)
	test.Equate(t, err, nil)

	exists, err := afero.Exists(fs, dir+"/metadata.json")
	test.Equate(t, err, nil)
	test.Equate(t, exists, true)

	exists, err = afero.Exists(fs, dir+"/tia.bin")
	test.Equate(t, err, nil)
	test.Equate(t, exists, false)

	reg2 := registry.New()
	fresh := &batteryBacked{path: mustPath(t, ":component/cartridge/ram")}
	_, err = reg2.Insert(fresh.path, fresh)
	test.Equate(t, err, nil)

	err = store.LoadSave(reg2, dir)
	test.Equate(t, err, nil)
	test.Equate(t, fresh.value, byte(0x7b))
	test.Equate(t, fresh.version, uint64(3))
}

func TestLoadSaveSkipsComponentsNotInRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := persistence.New(fs)

	reg := registry.New()
	ram := &batteryBacked{path: mustPath(t, ":component/cartridge/ram"), version: 1, value: 0x01}
	_, err := reg.Insert(ram.path, ram)
	test.Equate(t, err, nil)

	err = store.StoreSave(reg, "save/x/y")
	test.Equate(t, err, nil)

	// a registry that never registered the component at all: loading must
	// not error, simply skip it.
	reg2 := registry.New()
	err = store.LoadSave(reg2, "save/x/y")
	test.Equate(t, err, nil)
}

func TestArchiveLoaderAdaptsStoreToSaveLoader(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := persistence.New(fs)

	reg := registry.New()
	ram := &batteryBacked{path: mustPath(t, ":component/cartridge/ram"), version: 1, value: 0x9}
	_, err := reg.Insert(ram.path, ram)
	test.Equate(t, err, nil)
	err = store.StoreSave(reg, "save/a/b")
	test.Equate(t, err, nil)

	reg2 := registry.New()
	fresh := &batteryBacked{path: mustPath(t, ":component/cartridge/ram")}
	_, err = reg2.Insert(fresh.path, fresh)
	test.Equate(t, err, nil)

	loader := &persistence.ArchiveLoader{Store: store, Dir: "save/a/b"}
	err = loader.LoadInto(reg2)
	test.Equate(t, err, nil)
	test.Equate(t, fresh.value, byte(0x9))
}
