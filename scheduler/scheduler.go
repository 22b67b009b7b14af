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

// Package scheduler drives every component by a single logical clock (§4.D,
// §5). There is no per-component goroutine: run() advances virtual time on
// the calling goroutine, invoking Synchronize on scheduler-driven
// components and NeedsWork-gated catch-up on on-demand ones, the same
// single-threaded-core-with-selective-parallelism model the teacher's VCS
// type uses to step the 6507/TIA/RIOT trio in lock-step from one Step call,
// rather than three free-running goroutines.
package scheduler

import (
	"container/heap"
	"math/big"
	"sync"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/paths"
)

// Period re-exports component.Period: both packages need rational virtual
// time and component sits lower in the import graph.
type Period = component.Period

// Mode is the driving discipline a component registered under.
type Mode int

const (
	// SchedulerDriven components are synchronized every run() tick.
	SchedulerDriven Mode = iota
	// OnDemand components are only synchronized when NeedsWork reports true.
	OnDemand
)

type participant struct {
	path      paths.ComponentPath
	mode      Mode
	period    *Period // declared reciprocal-of-frequency, nil means "driven only by events"
	sync      component.Synchronizer
	needsWork component.NeedsWork
	lastSync  *big.Rat // absolute scheduler time this participant was last synchronized to
}

// allocator implements component.SynchronizationContext. It hands out whole
// ticks bounded by the time budget owed to the component, never more than
// budget/period ticks, so a component can never be driven past the
// scheduler's own current tick (§9 "suspended work").
type allocator struct{}

func (allocator) Allocate(period, budget *Period) int {
	if period.Sign() <= 0 {
		return 0
	}
	q := new(big.Rat).Quo(budget, period)
	n := new(big.Int).Quo(q.Num(), q.Denom())
	return int(n.Int64())
}

// Scheduler is the single logical clock driving one machine's components.
// The zero value is not usable; construct with New.
type Scheduler struct {
	mu           sync.Mutex
	now          Period
	participants []*participant
	queue        eventQueue
	seq          int64
	paused       bool
}

// New creates a Scheduler with now() == 0.
func New() *Scheduler {
	return &Scheduler{}
}

// RegisterComponent transitions a component from unregistered to
// registered(mode) (§4.D state machine). period is the component's declared
// tick reciprocal for SchedulerDriven components; pass nil for components
// that are purely event/on-demand driven.
func (s *Scheduler) RegisterComponent(path paths.ComponentPath, c interface{}, mode Mode, period *Period) error {
	sync, okSync := c.(component.Synchronizer)
	needsWork, okNeeds := c.(component.NeedsWork)

	switch mode {
	case SchedulerDriven:
		if !okSync {
			return curated.Errorf("scheduler: component %q registered SchedulerDriven but does not implement Synchronizer", path.String())
		}
	case OnDemand:
		if !okNeeds || !okSync {
			return curated.Errorf("scheduler: component %q registered OnDemand but does not implement NeedsWork and Synchronizer", path.String())
		}
	default:
		return curated.Errorf("scheduler: unknown mode %d for component %q", mode, path.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = append(s.participants, &participant{
		path:      path,
		mode:      mode,
		period:    period,
		sync:      sync,
		needsWork: needsWork,
		lastSync:  new(big.Rat).Set(&s.now),
	})
	return nil
}

// Now returns the scheduler's current virtual time.
func (s *Scheduler) Now() *Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := new(big.Rat).Set(&s.now)
	return out
}

// Pause sets the scheduler's pause flag, observed between ticks inside
// Run (§4.D "cancellation").
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume clears the pause flag.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// ScheduleOnce inserts a one-shot event at virtual time at.
func (s *Scheduler) ScheduleOnce(at *Period, callback func(now *Period)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.queue, &event{at: new(big.Rat).Set(at), seq: s.nextSeq(), callback: callback})
}

// ScheduleRepeating inserts a periodic event: first fire at `first`,
// re-enqueued every `period` thereafter. No call removes it from the queue;
// Pause only stops Run from firing it.
func (s *Scheduler) ScheduleRepeating(first, period *Period, callback func(now *Period)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.queue, &event{
		at:       new(big.Rat).Set(first),
		seq:      s.nextSeq(),
		period:   new(big.Rat).Set(period),
		callback: callback,
	})
}

func (s *Scheduler) nextSeq() int64 {
	s.seq++
	return s.seq
}
