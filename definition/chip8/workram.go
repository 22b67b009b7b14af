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

package chip8

import (
	"io"
	"sync"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
)

const (
	workramSize = 0x1000
	fontBase    = 0x000
	programBase = 0x200
)

// WorkramConfig builds CHIP-8's single flat work-RAM region, preloaded with
// the font at fontBase and the cartridge program at programBase, matching
// original_source/definition/chip8/src/lib.rs's RangeInclusiveMap of
// StandardMemoryInitialContents -- unlike definition/misc's plain RAMConfig,
// this region's initial contents are not uniform, so it is its own small
// component rather than a reuse of misc.RAMConfig.
type WorkramConfig struct {
	AddressSpace addressspace.AddressSpaceId
	Rom          romid.RomId
	RomStore     *program.Store
}

// Workram is the component WorkramConfig builds.
type Workram struct {
	path paths.ComponentPath
	mu   sync.RWMutex
	data []byte
}

func (w *Workram) Path() paths.ComponentPath { return w.path }

func (w *Workram) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if int(address) >= len(w.data) {
		return 0, curated.Errorf("chip8: workram read out of range at %#x", address)
	}
	return w.data[address], nil
}

func (w *Workram) WriteMemory(address uint32, value uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if int(address) >= len(w.data) {
		return curated.Errorf("chip8: workram write out of range at %#x", address)
	}
	w.data[address] = value
	return nil
}

func (w *Workram) NeedsWork(delta *component.Period) bool { return false }

func (w *Workram) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

// BuildComponent implements builder.ComponentConfig.
func (cfg WorkramConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	f, err := cfg.RomStore.OpenRom(cfg.Rom, program.Required)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, curated.Errorf("chip8: %s", err)
	}

	data := make([]byte, workramSize)
	copy(data[fontBase:], font[:])
	n := copy(data[programBase:], raw)
	if n < len(raw) {
		return nil, curated.Errorf("chip8: program %d bytes too large for workram from %#x", len(raw), programBase)
	}

	w := &Workram{path: ctx.Path(), data: data}
	rng := addressspace.Range{Start: 0x000, End: workramSize - 1}
	if err := ctx.Fabric().Map(cfg.AddressSpace, w, rng, addressspace.RW); err != nil {
		return nil, err
	}
	return w, nil
}
