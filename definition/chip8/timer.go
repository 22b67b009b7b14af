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
	"encoding/binary"
	"io"
	"sync"

	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
)

// TimerConfig builds the delay/sound timer register (§13, grounded on
// original_source/definition/chip8/src/timer.rs's Chip8Timer): a single byte
// the CPU sets and reads. It is not memory-mapped -- the original exposes it
// through a direct component reference, not the address bus -- and it does
// not decrement itself; the 60Hz countdown is driven by the CPU's
// instruction loop, which is an explicit Non-goal (§14 CPU instruction
// decoders), so this boundary only carries the register.
type TimerConfig struct{}

// Timer is the component TimerConfig builds.
type Timer struct {
	path  paths.ComponentPath
	mu    sync.RWMutex
	value uint8
}

func (t *Timer) Path() paths.ComponentPath { return t.path }

// Get returns the current timer value.
func (t *Timer) Get() uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set stores a new timer value, as the CPU does when it executes an "LD DT,
// Vx" or "LD ST, Vx" style instruction.
func (t *Timer) Set(value uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
}

func (t *Timer) NeedsWork(delta *component.Period) bool { return false }

func (t *Timer) Synchronize(ctx component.SynchronizationContext, delta *component.Period) error {
	return nil
}

const timerSnapshotVersion = 1

func (t *Timer) SnapshotVersion() *uint64 {
	v := uint64(timerSnapshotVersion)
	return &v
}

func (t *Timer) StoreSnapshot(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return binary.Write(w, binary.LittleEndian, t.value)
}

func (t *Timer) LoadSnapshot(version uint64, r io.Reader) error {
	if version != timerSnapshotVersion {
		return curated.Errorf("chip8: unsupported timer snapshot version %d", version)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return binary.Read(r, binary.LittleEndian, &t.value)
}

// BuildComponent implements builder.ComponentConfig.
func (cfg TimerConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	return &Timer{path: ctx.Path()}, nil
}
