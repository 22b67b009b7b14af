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

package program_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
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

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "rom-*.bin")
	test.Equate(t, err, nil)
	_, err = f.WriteString(content)
	test.Equate(t, err, nil)
	test.Equate(t, f.Close(), nil)
	return f.Name()
}

func TestImportPathIsContentAddressedAndIdempotent(t *testing.T) {
	s := openStore(t)
	path := writeTempFile(t, "pitfall rom bytes")

	id, err := s.ImportPath(path)
	test.Equate(t, err, nil)
	test.Equate(t, id, romid.CalculateBytes([]byte("pitfall rom bytes")))

	// importing the same content again must not error and must return the
	// same id (content-addressed, so it's a no-op re-copy).
	id2, err := s.ImportPath(path)
	test.Equate(t, err, nil)
	test.Equate(t, id2.Equal(id), true)

	r, err := s.OpenRom(id, program.Required)
	test.Equate(t, err, nil)
	defer r.Close()
	data, err := io.ReadAll(r)
	test.Equate(t, err, nil)
	test.Equate(t, string(data), "pitfall rom bytes")
}

func TestOpenRomMissingRequiredIsError(t *testing.T) {
	s := openStore(t)
	_, err := s.OpenRom(romid.CalculateBytes([]byte("never imported")), program.Required)
	test.ExpectFailure(t, err)
}

// TestImportPathFromZipArchive confirms ImportPath resolves an archivefs
// path naming a member of a zip file, not just a loose file on disk.
func TestImportPathFromZipArchive(t *testing.T) {
	s := openStore(t)
	path := filepath.Join("..", "archivefs", "testdir", "testarchive.zip", "archivefile1")

	id, err := s.ImportPath(path)
	test.Equate(t, err, nil)
	test.Equate(t, id, romid.CalculateBytes([]byte("archivefile1 contents\n")))

	r, err := s.OpenRom(id, program.Required)
	test.Equate(t, err, nil)
	defer r.Close()
	data, err := io.ReadAll(r)
	test.Equate(t, err, nil)
	test.Equate(t, string(data), "archivefile1 contents\n")
}

func TestOpenRomMissingOptionalIsNotError(t *testing.T) {
	s := openStore(t)
	r, err := s.OpenRom(romid.CalculateBytes([]byte("never imported")), program.Optional)
	test.Equate(t, err, nil)
	var nilReader io.ReadCloser
	test.Equate(t, r, nilReader)
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openStore(t)

	id := program.ProgramId{MachineId: "atari2600", Name: "pitfall"}
	info := program.ProgramInfo{
		Names:     []string{"Pitfall!"},
		Languages: []string{"en"},
		Kind:      program.Single,
		Single:    &program.SingleLayout{RomId: "abc123", FileName: "pitfall.bin"},
	}

	err := s.Put(id, info)
	test.Equate(t, err, nil)

	got, found, err := s.Get(id)
	test.Equate(t, err, nil)
	test.Equate(t, found, true)
	test.Equate(t, got.Names[0], "Pitfall!")
	test.Equate(t, got.Single.RomId, "abc123")
}

func TestIdentifyRomIdsMatchesExactSet(t *testing.T) {
	s := openStore(t)

	id := program.ProgramId{MachineId: "atari2600", Name: "pitfall"}
	err := s.Put(id, program.ProgramInfo{
		Kind:   program.Single,
		Single: &program.SingleLayout{RomId: "abc123", FileName: "pitfall.bin"},
	})
	test.Equate(t, err, nil)

	rid := romid.CalculateBytes([]byte("abc123"))
	err = s.Put(program.ProgramId{MachineId: "atari2600", Name: "exact-match"}, program.ProgramInfo{
		Kind:   program.Single,
		Single: &program.SingleLayout{RomId: rid.String(), FileName: "x.bin"},
	})
	test.Equate(t, err, nil)

	foundId, _, found, err := s.IdentifyRomIds([]romid.RomId{rid})
	test.Equate(t, err, nil)
	test.Equate(t, found, true)
	test.Equate(t, foundId.Name, "exact-match")
}

func TestExportNameStyles(t *testing.T) {
	info := program.ProgramInfo{
		Names:   []string{"Pitfall!"},
		Version: "USA",
		Kind:    program.Single,
		Single:  &program.SingleLayout{RomId: "abc", FileName: "pitfall.a26"},
	}

	test.Equate(t, program.ExportName(info, program.StyleNointro), "Pitfall! (USA)")
	test.Equate(t, program.ExportName(info, program.StyleEmulationStation), "Pitfall!")
	test.Equate(t, program.ExportName(info, program.StyleNative), "pitfall.a26")
}
