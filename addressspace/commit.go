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

package addressspace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Commit forces every page touched by the space's current regions to be
// built now, in parallel, rather than lazily on first access (§4.E Build
// step (c): "forces a first page-table commit on every address space").
// Page construction is a pure function of the region lists and a page
// index, so pages build independently and fan out across an errgroup the
// way the teacher's own build pipeline parallelizes independent units of
// work.
func (as *AddressSpace) Commit(ctx context.Context) error {
	as.mu.RLock()
	read := as.read
	write := as.write
	as.mu.RUnlock()

	as.pagesMu.Lock()
	gen := as.generation
	as.pagesMu.Unlock()

	g, _ := errgroup.WithContext(ctx)

	commitSide := func(regions []region, cache map[uint64]*builtPage) {
		for _, idx := range touchedPages(regions, as.mask) {
			idx := idx
			g.Go(func() error {
				addr := idx * pageSize
				if addr > as.mask {
					return nil
				}
				built := buildPage(regions, as.mask, addr)
				as.pagesMu.Lock()
				cache[idx] = &builtPage{generation: gen, p: built}
				as.pagesMu.Unlock()
				return nil
			})
		}
	}

	commitSide(read, as.readPages)
	commitSide(write, as.writePages)

	return g.Wait()
}

// touchedPages returns the distinct page indices any region in regions
// spans, including mirror sources (mirror destinations are resolved as
// part of building the page that contains the mirror source address, so
// they need no separate entry here).
func touchedPages(regions []region, mask uint64) []uint64 {
	seen := make(map[uint64]bool)
	var pages []uint64
	for _, r := range regions {
		end := r.rng.End
		if end > mask {
			end = mask
		}
		for idx := r.rng.Start / pageSize; idx*pageSize <= end; idx++ {
			if !seen[idx] {
				seen[idx] = true
				pages = append(pages, idx)
			}
		}
	}
	return pages
}

// Commit is Fabric-level sugar, committing every registered address space.
func (f *Fabric) Commit(ctx context.Context) error {
	f.mu.RLock()
	spaces := append([]*AddressSpace(nil), f.spaces...)
	f.mu.RUnlock()

	g, _ := errgroup.WithContext(ctx)
	for _, as := range spaces {
		as := as
		g.Go(func() error { return as.Commit(ctx) })
	}
	return g.Wait()
}
