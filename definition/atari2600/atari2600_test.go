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

package atari2600_test

import (
	"bytes"
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/definition/atari2600"
	"github.com/multiconsole/corefab/definition/mos6502"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/registry"
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

func TestManifestMapsCartridgeAndDrivesProcessor(t *testing.T) {
	store := openStore(t)

	rom := bytes.Repeat([]byte{0xea}, 4096) // power-of-two image, 6502 NOP fill
	path := filepath.Join(t.TempDir(), "game.bin")
	test.Equate(t, writeFile(path, rom), nil)

	id, err := store.ImportPath(path)
	test.Equate(t, err, nil)

	b := builder.New()
	b, space := atari2600.Manifest(b, id, store)
	test.Equate(t, b.Err(), nil)

	m, err := b.Build(context.Background(), nil, nil)
	test.Equate(t, err, nil)

	var got [4]byte
	err = m.Fabric.Read(space, 0x1000, false, got[:])
	test.Equate(t, err, nil)
	test.Equate(t, got, [4]byte{0xea, 0xea, 0xea, 0xea})

	// cartridgeRange mirrors the underlying image modulo its length, so the
	// top of the window reads the same fill byte.
	var tail [1]byte
	err = m.Fabric.Read(space, 0x1fff, false, tail[:])
	test.Equate(t, err, nil)
	test.Equate(t, tail[0], byte(0xea))

	h, err := registry.HandleFor[*mos6502.CPU](m.Registry, atari2600.ProcessorPath)
	test.Equate(t, err, nil)
	cpu := registry.Interact(h, func(c *mos6502.CPU) *mos6502.CPU { return c })
	test.Equate(t, cpu.Cycles(), uint64(0))

	period := new(big.Rat).Inv(big.NewRat(1190000, 1))
	err = m.Scheduler.Run(period)
	test.Equate(t, err, nil)
	test.Equate(t, cpu.Cycles(), uint64(1))
}

func TestManifestRejectsNonPowerOfTwoImage(t *testing.T) {
	store := openStore(t)

	rom := bytes.Repeat([]byte{0xea}, 4097)
	path := filepath.Join(t.TempDir(), "bad.bin")
	test.Equate(t, writeFile(path, rom), nil)

	id, err := store.ImportPath(path)
	test.Equate(t, err, nil)

	b := builder.New()
	b, _ = atari2600.Manifest(b, id, store)
	test.Equate(t, b.Err(), nil)

	_, err = b.Build(context.Background(), nil, nil)
	test.ExpectFailure(t, err)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
