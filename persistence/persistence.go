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

// Package persistence implements save and snapshot archives (§4.F): one
// zlib-compressed binary file per persistable component under a path that
// mirrors the component's own ComponentPath, plus a metadata file written
// last as an atomicity sentinel. It plays the role the teacher's
// rewind/snapshot-slot machinery plays for a single Atari 2600 VCS, widened
// to an arbitrary component tree addressed by path instead of a fixed set of
// VCS sub-state structs.
package persistence

import (
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/spf13/afero"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/errors"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/registry"
)

const metadataFile = "metadata.json"

// componentMeta is one entry of metadata.json's components table.
type componentMeta struct {
	Version uint64 `json:"version"`
}

// metadata is the archive-level sidecar written after every component blob,
// so its presence on disk signals a complete, uncorrupted archive (§4.F
// "write metadata last as an atomicity sentinel").
type metadata struct {
	Compressed bool                     `json:"compressed"`
	Components map[string]componentMeta `json:"components"`
}

// Store reads and writes save/snapshot archives on fs, rooted whereever the
// caller's dir argument points (typically under the resources package's
// ".corefab" directory, one level per ROM id and program name).
type Store struct {
	fs afero.Fs
}

// New creates a Store backed by fs. Passing afero.NewMemMapFs() is the usual
// choice in tests; production callers pass afero.NewOsFs().
func New(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

func blobPath(dir string, p paths.ComponentPath) string {
	segs := append(append([]string(nil), p.Dirs()...), p.Leaf()+".bin")
	return path.Join(append([]string{dir}, segs...)...)
}

// StoreSave writes every component's long-term save state (§4.F "Save") to
// dir, iterating the registry in insertion order and skipping any component
// whose SaveVersion reports nil. metadata.json is written last.
func (s *Store) StoreSave(reg *registry.Registry, dir string) error {
	return s.store(reg, dir, func(c component.Component) (uint64, storeFunc, bool) {
		sv, ok := c.(component.SaveVersion)
		if !ok {
			return 0, nil, false
		}
		v := sv.SaveVersion()
		if v == nil {
			return 0, nil, false
		}
		return *v, sv.StoreSave, true
	})
}

// StoreSnapshot is StoreSave for full runtime-state snapshots (§4.F
// "Snapshot"), written under dir/<slot>/.
func (s *Store) StoreSnapshot(reg *registry.Registry, dir, slot string) error {
	return s.store(reg, path.Join(dir, slot), func(c component.Component) (uint64, storeFunc, bool) {
		sv, ok := c.(component.SnapshotVersion)
		if !ok {
			return 0, nil, false
		}
		v := sv.SnapshotVersion()
		if v == nil {
			return 0, nil, false
		}
		return *v, sv.StoreSnapshot, true
	})
}

type storeFunc func(w io.Writer) error

func (s *Store) store(reg *registry.Registry, dir string, pick func(c component.Component) (version uint64, fn storeFunc, ok bool)) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return curated.Errorf("persistence: %s", err)
	}

	m := metadata{Compressed: true, Components: make(map[string]componentMeta)}

	var storeErr error
	reg.Iter(func(p paths.ComponentPath, c component.Component) {
		if storeErr != nil {
			return
		}
		version, fn, ok := pick(c)
		if !ok {
			return
		}

		bp := blobPath(dir, p)
		if err := s.fs.MkdirAll(path.Dir(bp), 0o755); err != nil {
			storeErr = curated.Errorf("persistence: %s", err)
			return
		}

		f, err := s.fs.Create(bp)
		if err != nil {
			storeErr = curated.Errorf("persistence: %s", err)
			return
		}
		defer f.Close()

		zw, err := zlib.NewWriterLevel(f, zlib.BestCompression)
		if err != nil {
			storeErr = curated.Errorf("persistence: %s", err)
			return
		}
		if err := fn(zw); err != nil {
			storeErr = errors.NewPersistenceError(p.String(), "store: %s", err)
			return
		}
		if err := zw.Close(); err != nil {
			storeErr = errors.NewPersistenceError(p.String(), "compress: %s", err)
			return
		}

		m.Components[p.String()] = componentMeta{Version: version}
	})
	if storeErr != nil {
		return storeErr
	}

	enc, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return curated.Errorf("persistence: %s", err)
	}
	return afero.WriteFile(s.fs, path.Join(dir, metadataFile), enc, 0o644)
}

type loadFunc func(version uint64, r io.Reader) error

// LoadSave loads every listed component's save state from dir back into reg
// (§4.F "Load"). A component missing from the registry, or no longer
// implementing SaveVersion, is skipped silently (it may belong to a
// different machine definition). A version mismatch or decode failure for a
// component that IS present is reported but does not abort the rest of the
// archive: each failure becomes one *errors.PersistenceError, collected and
// returned together once every listed component has been attempted.
func (s *Store) LoadSave(reg *registry.Registry, dir string) error {
	return s.load(reg, dir, func(c component.Component) (loadFunc, bool) {
		sv, ok := c.(component.SaveVersion)
		if !ok {
			return nil, false
		}
		return sv.LoadSave, true
	})
}

// LoadSnapshot is LoadSave for a snapshot archive under dir/<slot>/.
func (s *Store) LoadSnapshot(reg *registry.Registry, dir, slot string) error {
	return s.load(reg, path.Join(dir, slot), func(c component.Component) (loadFunc, bool) {
		sv, ok := c.(component.SnapshotVersion)
		if !ok {
			return nil, false
		}
		return sv.LoadSnapshot, true
	})
}

func (s *Store) load(reg *registry.Registry, dir string, pick func(c component.Component) (loadFunc, bool)) error {
	raw, err := afero.ReadFile(s.fs, path.Join(dir, metadataFile))
	if err != nil {
		return curated.Errorf("persistence: %s", err)
	}

	var m metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return curated.Errorf("persistence: malformed %s: %s", metadataFile, err)
	}

	type present struct {
		path paths.ComponentPath
		c    component.Component
	}
	byKey := make(map[string]present)
	reg.Iter(func(p paths.ComponentPath, c component.Component) {
		byKey[p.String()] = present{path: p, c: c}
	})

	var failures []string
	for key, cm := range m.Components {
		pr, ok := byKey[key]
		if !ok {
			continue
		}

		fn, fnOK := pick(pr.c)
		if !fnOK || fn == nil {
			continue
		}

		bp := blobPath(dir, pr.path)
		f, err := s.fs.Open(bp)
		if err != nil {
			failures = append(failures, errors.NewPersistenceError(key, "open: %s", err).Error())
			continue
		}

		zr, err := zlib.NewReader(f)
		if err != nil {
			f.Close()
			failures = append(failures, errors.NewPersistenceError(key, "decompress: %s", err).Error())
			continue
		}

		if err := fn(cm.Version, zr); err != nil {
			failures = append(failures, errors.NewPersistenceError(key, "load: %s", err).Error())
		}
		zr.Close()
		f.Close()
	}

	if len(failures) > 0 {
		return errors.NewPersistenceError("archive", "%s", strings.Join(failures, "; "))
	}
	return nil
}

// ArchiveLoader adapts a Store and a fixed directory to the builder
// package's SaveLoader interface, so Builder.Build can load a save archive
// without importing persistence's on-disk format directly.
type ArchiveLoader struct {
	Store *Store
	Dir   string
}

// LoadInto implements builder.SaveLoader.
func (a *ArchiveLoader) LoadInto(reg *registry.Registry) error {
	return a.Store.LoadSave(reg, a.Dir)
}
