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

package atarilynx_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/definition/atarilynx"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/test"
)

func openStore(t *testing.T) *program.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := program.Open(filepath.Join(dir, "roms"), filepath.Join(dir, "programs.db"))
	test.Equate(t, err, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestManifestFillsRAMAndSwapsSuzyWindowOnMapctlWrite(t *testing.T) {
	store := openStore(t)

	bios := bytes.Repeat([]byte{0x00}, 512)
	path := filepath.Join(t.TempDir(), "boot.lyx")
	test.Equate(t, os.WriteFile(path, bios, 0o644), nil)
	id, err := store.ImportPath(path)
	test.Equate(t, err, nil)

	b := builder.New()
	b, space := atarilynx.Manifest(b, id, store)
	test.Equate(t, b.Err(), nil)

	m, err := b.Build(context.Background(), nil, nil)
	test.Equate(t, err, nil)

	var got [1]byte
	test.Equate(t, m.Fabric.Read(space, 0x0010, false, got[:]), nil)
	test.Equate(t, got[0], byte(0xff))

	// before any mapctl write, the Suzy window still falls through to RAM.
	test.Equate(t, m.Fabric.Write(space, 0xfc00, []byte{0x11}), nil)
	test.Equate(t, m.Fabric.Read(space, 0xfc00, false, got[:]), nil)
	test.Equate(t, got[0], byte(0x11))

	status := atarilynx.MapctlStatus{Suzy: true}
	test.Equate(t, m.Fabric.Write(space, 0xfff9, []byte{status.ToByte()}), nil)

	// now the same address routes to Suzy's own register block, a fresh
	// zeroed buffer, not the RAM byte just written.
	test.Equate(t, m.Fabric.Read(space, 0xfc00, false, got[:]), nil)
	test.Equate(t, got[0], byte(0x00))

	test.Equate(t, m.Fabric.Write(space, 0xfc00, []byte{0x22}), nil)
	test.Equate(t, m.Fabric.Read(space, 0xfc00, false, got[:]), nil)
	test.Equate(t, got[0], byte(0x22))

	// disabling suzy again falls back through to RAM's original byte.
	status.Suzy = false
	test.Equate(t, m.Fabric.Write(space, 0xfff9, []byte{status.ToByte()}), nil)
	test.Equate(t, m.Fabric.Read(space, 0xfc00, false, got[:]), nil)
	test.Equate(t, got[0], byte(0x11))
}

func TestMapctlStatusByteRoundTrips(t *testing.T) {
	s := atarilynx.MapctlStatus{Suzy: true, Vector: true, Reserved: 0x5}
	got := atarilynx.StatusFromByte(s.ToByte())
	test.Equate(t, got, s)
}
