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

package scheduler

import (
	"container/heap"
	"math/big"
)

// Run advances now by at most duration (§4.D). Due events fire in strict
// non-decreasing timestamp order, ties broken FIFO (§9 OQ1); every
// scheduler-driven component is synchronized up to each boundary the run
// loop stops at (an event timestamp, or the final target), and every
// on-demand component is offered the same boundary via NeedsWork. The
// scheduler's own mutex is only ever held for queue/clock bookkeeping, never
// while a component's Synchronize or event callback is executing, so a
// callback is free to re-enter the scheduler (§5 "re-entrant... permitted").
func (s *Scheduler) Run(duration *Period) error {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return nil
	}
	target := new(big.Rat).Add(&s.now, duration)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.paused {
			s.mu.Unlock()
			return nil
		}

		var nextAt *big.Rat
		if len(s.queue) > 0 {
			nextAt = s.queue[0].at
		}

		if nextAt == nil || nextAt.Cmp(target) > 0 {
			s.mu.Unlock()
			s.advanceTo(target)
			s.mu.Lock()
			s.now.Set(target)
			s.mu.Unlock()
			return nil
		}

		at := new(big.Rat).Set(nextAt)
		s.mu.Unlock()

		s.advanceTo(at)

		s.mu.Lock()
		s.now.Set(at)
		e := heap.Pop(&s.queue).(*event)
		var repeat *event
		if e.period != nil {
			repeat = &event{
				at:       new(big.Rat).Add(e.at, e.period),
				seq:      s.nextSeq(),
				period:   e.period,
				callback: e.callback,
			}
		}
		s.mu.Unlock()

		e.callback(new(big.Rat).Set(at))

		if repeat != nil {
			s.mu.Lock()
			heap.Push(&s.queue, repeat)
			s.mu.Unlock()
		}
	}
}

// advanceTo synchronizes every participant up to absolute time at. It must
// not be called with s.mu held.
func (s *Scheduler) advanceTo(at *big.Rat) {
	s.mu.Lock()
	participants := append([]*participant(nil), s.participants...)
	s.mu.Unlock()

	for _, p := range participants {
		delta := new(big.Rat).Sub(at, p.lastSync)
		if delta.Sign() <= 0 {
			continue
		}

		switch p.mode {
		case SchedulerDriven:
			_ = p.sync.Synchronize(allocator{}, delta)
			p.lastSync.Set(at)
		case OnDemand:
			if p.needsWork.NeedsWork(delta) {
				_ = p.sync.Synchronize(allocator{}, delta)
				p.lastSync.Set(at)
			}
		}
	}
}
