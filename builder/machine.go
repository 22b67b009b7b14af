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

package builder

import (
	"context"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/errors"
	"github.com/multiconsole/corefab/logger"
	"github.com/multiconsole/corefab/registry"
	"github.com/multiconsole/corefab/scheduler"
)

// Machine is the product of a successful Build: a fully wired registry,
// address-space fabric and scheduler, ready to Run.
type Machine struct {
	Registry  *registry.Registry
	Fabric    *addressspace.Fabric
	Scheduler *scheduler.Scheduler
}

// SaveLoader is satisfied by the persistence package's archive loader. It is
// expressed as an interface here, rather than importing persistence
// directly, so that builder has no dependency on persistence's on-disk
// format -- only on the one operation Build needs from it. A nil SaveLoader
// skips save-archive loading entirely (§4.F "absent archive leaves every
// component in its default state").
type SaveLoader interface {
	LoadInto(reg *registry.Registry) error
}

// Build finishes machine assembly (§4.E step (b)/(c)): it invokes every
// registered GraphicsInitializer with platformData, loads a save archive if
// one is supplied, forces a first page-table commit on every address space,
// and hands back the assembled Machine. A Builder that already failed
// during staging returns that error immediately without doing any of this
// work.
func (b *Builder) Build(ctx context.Context, platformData interface{}, save SaveLoader) (*Machine, error) {
	if b.err != nil {
		return nil, b.err
	}

	for _, gi := range b.graphicsInitializers {
		if err := gi.InitializeGraphics(platformData); err != nil {
			return nil, errors.NewBuildError(errors.CauseMalformedConfig, "graphics initialization: %s", err)
		}
	}

	if save != nil {
		if err := save.LoadInto(b.registry); err != nil {
			// a corrupt or mismatched save archive is non-fatal (§4.F):
			// the affected components are left in their default state and
			// the condition is logged, not returned.
			logger.Logf("builder", "save archive not applied: %s", err)
		}
	}

	if err := b.fabric.Commit(ctx); err != nil {
		return nil, errors.NewBuildError(errors.CauseMalformedConfig, "page table commit: %s", err)
	}

	return &Machine{
		Registry:  b.registry,
		Fabric:    b.fabric,
		Scheduler: b.scheduler,
	}, nil
}
