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

// Package program implements the content-addressed ROM store and the
// ProgramId -> ProgramInfo metadata index (§4.G). It replaces the teacher's
// cartridgeloader (a one-shot filename+hash loader feeding a single VCS) and
// database (a flat, hand-rolled CSV-ish entry store keyed by cartridge hash)
// with a directory of hash-named blobs plus a transactional bbolt bucket,
// so the same store can serve any number of machine definitions rather than
// just the Atari 2600.
package program

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/multiconsole/corefab/archivefs"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/errors"
	"github.com/multiconsole/corefab/romid"
)

// Requirement describes how strongly a machine definition depends on a ROM
// it asks to open (§4.G, §7 "locally recoverable conditions").
type Requirement int

const (
	// Optional ROMs are not an error when absent; the caller proceeds
	// without them (e.g. an optional BIOS overlay).
	Optional Requirement = iota
	// Sometimes ROMs are not an error when absent either; OpenRom treats
	// them exactly like Optional.
	Sometimes
	// Required ROMs are an error when absent.
	Required
)

// FilesystemKind distinguishes a ProgramInfo's storage shape.
type FilesystemKind int

const (
	// Single is a program backed by exactly one ROM blob.
	Single FilesystemKind = iota
	// Complex is a program backed by more than one ROM blob, addressed by
	// path within the original archive/disk image.
	Complex
)

// ProgramId identifies one entry in the metadata index: a machine
// definition id plus a program name, matching §6 "keyed by ProgramId
// (machine id + name)".
type ProgramId struct {
	MachineId string `json:"machine_id"`
	Name      string `json:"name"`
}

func (id ProgramId) key() []byte {
	return []byte(id.MachineId + "\x00" + id.Name)
}

// ProgramInfo is the versioned record stored for one ProgramId (§4.G).
type ProgramInfo struct {
	FormatVersion int              `json:"format_version"`
	Names         []string         `json:"names"`
	Languages     []string         `json:"languages"`
	Version       string           `json:"version,omitempty"`
	Kind          FilesystemKind   `json:"kind"`
	Single        *SingleLayout    `json:"single,omitempty"`
	Complex       map[string][]string `json:"complex,omitempty"` // rom id hex -> paths within it
}

// SingleLayout is ProgramInfo's filesystem description when Kind == Single.
type SingleLayout struct {
	RomId    string `json:"rom_id"`
	FileName string `json:"file_name"`
}

// currentFormatVersion is embedded in every stored ProgramInfo (§6 "the
// on-disk format version is embedded... so future formats can be migrated").
const currentFormatVersion = 0

var bucketName = []byte("programs")

// Store is a content-addressed ROM blob directory plus a bbolt-backed
// ProgramId -> ProgramInfo index.
type Store struct {
	romDir string
	db     *bbolt.DB
}

// Open opens (creating if necessary) a Store rooted at romDir for blobs and
// dbPath for the metadata index.
func Open(romDir, dbPath string) (*Store, error) {
	if err := os.MkdirAll(romDir, 0o755); err != nil {
		return nil, curated.Errorf("program: %s", err)
	}

	db, err := bbolt.Open(dbPath, 0o644, nil)
	if err != nil {
		return nil, curated.Errorf("program: %s", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, curated.Errorf("program: %s", err)
	}

	return &Store{romDir: romDir, db: db}, nil
}

// Close releases the metadata database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) blobPath(id romid.RomId) string {
	return filepath.Join(s.romDir, id.String())
}

// OpenRom returns a streaming reader over the blob stored under id. For a
// missing ROM, Required returns a non-nil error; Optional and Sometimes both
// return (nil, nil). OpenRom does not log the absence, and nothing here
// distinguishes Optional from Sometimes.
func (s *Store) OpenRom(id romid.RomId, requirement Requirement) (io.ReadCloser, error) {
	f, err := os.Open(s.blobPath(id))
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, curated.Errorf("program: %s", err)
	}

	switch requirement {
	case Required:
		return nil, errors.NewIdentificationError("required ROM %s is not in the store", id)
	default:
		// Optional/Sometimes: absence is not fatal. The distinction between
		// info and warning severity is a frontend logging concern (§7); this
		// package only reports presence or absence.
		return nil, nil
	}
}

// ImportPath computes the streaming SHA-1 of the file at path and copies it
// into the content-addressed store if it is not already present, returning
// the resulting RomId (§4.G import_path).
// ImportPath imports the ROM content at path into the store. path may name a
// plain file or, via archivefs, a member of a zip archive (e.g.
// "collection.zip/game.bin"); a bare archive path resolves to its own root
// and is rejected as a directory.
func (s *Store) ImportPath(path string) (romid.RomId, error) {
	r, _, err := archivefs.Open(path)
	if err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	tmp, err := os.CreateTemp(s.romDir, "import-*")
	if err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	id, err := romid.Calculate(io.TeeReader(r, tmp))
	tmp.Close()
	if err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}

	dest := s.blobPath(id)
	if _, err := os.Stat(dest); err == nil {
		// already present: content-addressed, so this is the same blob.
		return id, nil
	} else if !os.IsNotExist(err) {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}
	return id, nil
}

// ImportPathSymlink is ImportPath, but it symlinks to path's absolute
// location instead of copying its bytes into the store (§6 utility CLI
// "rom import --symlink"), for callers that keep their own ROM archive
// authoritative and don't want a second on-disk copy of every blob.
func (s *Store) ImportPathSymlink(path string) (romid.RomId, error) {
	f, err := os.Open(path)
	if err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}
	id, err := romid.Calculate(f)
	f.Close()
	if err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}

	dest := s.blobPath(id)
	if _, err := os.Stat(dest); err == nil {
		return id, nil
	} else if !os.IsNotExist(err) {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}
	if err := os.Symlink(abs, dest); err != nil {
		return romid.RomId{}, curated.Errorf("program: %s", err)
	}
	return id, nil
}

// BlobPath returns the on-disk path of the blob stored under id, without
// checking that it exists. rom export --symlink (§6) needs the real path
// to link against; every other caller streams through OpenRom instead.
func (s *Store) BlobPath(id romid.RomId) string {
	return s.blobPath(id)
}

// Put stores (or overwrites) the ProgramInfo for id.
func (s *Store) Put(id ProgramId, info ProgramInfo) error {
	info.FormatVersion = currentFormatVersion
	enc, err := json.Marshal(info)
	if err != nil {
		return curated.Errorf("program: %s", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(id.key(), enc)
	})
}

// DatabaseEntry is one row of an external metadata database file: the
// input shape ImportDatabase reads.
type DatabaseEntry struct {
	Id   ProgramId   `json:"id"`
	Info ProgramInfo `json:"info"`
}

// ImportDatabase decodes r as a JSON array of DatabaseEntry and Puts each
// one into the metadata index (§6 utility CLI "database import <path>").
// It does not touch the blob directory: entries whose declared rom ids
// aren't present in the store simply won't resolve until the matching ROMs
// are imported separately.
func (s *Store) ImportDatabase(r io.Reader) (int, error) {
	var entries []DatabaseEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, curated.Errorf("program: %s", err)
	}
	for _, e := range entries {
		if err := s.Put(e.Id, e.Info); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// Get looks up the ProgramInfo stored for id.
func (s *Store) Get(id ProgramId) (ProgramInfo, bool, error) {
	var info ProgramInfo
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(id.key())
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &info)
	})
	if err != nil {
		return ProgramInfo{}, false, curated.Errorf("program: %s", err)
	}
	return info, found, nil
}

// IdentifyRomIds looks up the ProgramInfo whose filesystem description
// exactly matches the given set of RomIds (§4.G identify_program). Order is
// irrelevant; a Complex program must match on the full set, not a subset.
func (s *Store) IdentifyRomIds(ids []romid.RomId) (ProgramId, ProgramInfo, bool, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id.String()] = true
	}

	var (
		foundId   ProgramId
		foundInfo ProgramInfo
		found     bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var info ProgramInfo
			if err := json.Unmarshal(v, &info); err != nil {
				continue
			}
			if !romSetMatches(info, want) {
				continue
			}
			foundId = parseKey(k)
			foundInfo = info
			found = true
			return nil
		}
		return nil
	})
	if err != nil {
		return ProgramId{}, ProgramInfo{}, false, curated.Errorf("program: %s", err)
	}
	return foundId, foundInfo, found, nil
}

// ForEach calls fn for every ProgramId/ProgramInfo pair in the index, in
// bbolt's key order, stopping at the first error fn returns. Grounded on
// IdentifyRomIds's own cursor walk; cmd/corefabtool's search/rom subcommands
// (§6) are the first callers that need every entry rather than one lookup.
func (s *Store) ForEach(fn func(ProgramId, ProgramInfo) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var info ProgramInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return curated.Errorf("program: %s", err)
			}
			if err := fn(parseKey(k), info); err != nil {
				return err
			}
		}
		return nil
	})
}

func romSetMatches(info ProgramInfo, want map[string]bool) bool {
	have := make(map[string]bool)
	switch info.Kind {
	case Single:
		if info.Single == nil {
			return false
		}
		have[info.Single.RomId] = true
	case Complex:
		for romId := range info.Complex {
			have[romId] = true
		}
	}
	if len(have) != len(want) {
		return false
	}
	for id := range want {
		if !have[id] {
			return false
		}
	}
	return true
}

func parseKey(k []byte) ProgramId {
	for i, b := range k {
		if b == 0 {
			return ProgramId{MachineId: string(k[:i]), Name: string(k[i+1:])}
		}
	}
	return ProgramId{}
}

// ExportStyle is a ROM-naming convention used by `rom export --style`.
type ExportStyle int

const (
	StyleNointro ExportStyle = iota
	StyleNative
	StyleEmulationStation
)

// ExportName formats name under style (§6 utility CLI, §13 ROM export
// styles) — a pure formatting function over the same content-addressed
// blob, not a different storage representation.
func ExportName(info ProgramInfo, style ExportStyle) string {
	name := "unknown"
	if len(info.Names) > 0 {
		name = info.Names[0]
	}

	switch style {
	case StyleNointro:
		// No-Intro style, reduced to "Title (Version)": no region
		// parenthetical is emitted.
		if info.Version != "" {
			return fmt.Sprintf("%s (%s)", name, info.Version)
		}
		return name
	case StyleEmulationStation:
		// EmulationStation gamelist naming favours a flat, space-preserving
		// title with no parenthetical metadata.
		return name
	default: // StyleNative
		if info.Single != nil {
			return info.Single.FileName
		}
		names := sortedKeys(info.Complex)
		if len(names) > 0 {
			return names[0]
		}
		return name
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
