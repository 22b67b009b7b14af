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

import "sort"

// ownersAt returns every region of regions covering addr, most recently
// inserted first.
func ownersAt(regions []region, addr uint64) []region {
	var hits []region
	for _, r := range regions {
		if r.rng.contains(addr) {
			hits = append(hits, r)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].order > hits[j].order })
	return hits
}

// materialize turns the component-kind hits covering addr into the members
// that actually service an access at addr: the single most recent one under
// LastWins, or every ANDMerge-tagged hit under bus contention.
func materialize(hits []region, addr uint64) []member {
	var top region
	found := false
	for _, h := range hits {
		if h.kind == kindComponent {
			top = h
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	if top.policy != ANDMerge {
		return []member{{target: top.target, localBase: addr - top.rng.Start}}
	}

	var members []member
	for _, h := range hits {
		if h.kind == kindComponent && h.policy == ANDMerge {
			members = append(members, member{target: h.target, localBase: addr - h.rng.Start})
		}
	}
	if len(members) == 0 {
		return []member{{target: top.target, localBase: addr - top.rng.Start}}
	}
	return members
}

// resolveMembers resolves the component(s) that service addr, following at
// most one mirror hop (mirror targets must themselves be non-mirror, §3
// AddressSpace invariant: mirror regions covering the destination are
// skipped rather than followed, and only component regions there are used;
// a destination covered by no component region is unmapped).
func resolveMembers(regions []region, addr uint64) []member {
	hits := ownersAt(regions, addr)
	if len(hits) == 0 {
		return nil
	}

	if hits[0].kind == kindMirror {
		m := hits[0]
		destSpan := m.dest.End - m.dest.Start + 1
		offset := (addr - m.rng.Start) % destSpan
		destAddr := m.dest.Start + offset

		destHits := ownersAt(regions, destAddr)
		var compHits []region
		for _, h := range destHits {
			if h.kind == kindComponent {
				compHits = append(compHits, h)
			}
		}
		return materialize(compHits, destAddr)
	}

	return materialize(hits, addr)
}

// sameMembers reports whether a and b name the same targets at localBase
// offsets consistent with b being exactly one address past a (used while
// compressing consecutive addresses into a single resolved span).
func sameMembers(a, b []member) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].target != b[i].target || b[i].localBase != a[i].localBase+1 {
			return false
		}
	}
	return true
}

// buildPage resolves every address in the page containing addr against
// regions, compressing consecutive addresses that resolve to the same
// component(s) into a single span.
func buildPage(regions []region, mask uint64, addr uint64) page {
	pageIndex := addr / pageSize
	start := pageIndex * pageSize
	end := start + pageSize - 1
	if end > mask {
		end = mask
	}

	var p page
	var spanStart uint64
	var spanMembers []member
	haveSpan := false

	flush := func(lastAddr uint64) {
		if haveSpan {
			p.entries = append(p.entries, resolved{rng: Range{Start: spanStart, End: lastAddr}, members: spanMembers})
		}
		haveSpan = false
		spanMembers = nil
	}

	for a := start; a <= end; a++ {
		m := resolveMembers(regions, a)
		if m == nil {
			flush(a - 1)
			continue
		}
		if haveSpan && sameMembers(spanMembers, m) {
			spanMembers = m
			continue
		}
		flush(a - 1)
		spanStart = a
		spanMembers = m
		haveSpan = true
	}
	if haveSpan {
		flush(end)
	}

	return p
}

// lookup binary-searches p's entries for the one covering addr, if any.
func (p *page) lookup(addr uint64) ([]member, bool) {
	i := sort.Search(len(p.entries), func(i int) bool { return p.entries[i].rng.End >= addr })
	if i < len(p.entries) && p.entries[i].rng.contains(addr) {
		return p.entries[i].members, true
	}
	return nil, false
}
