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

package scheduler_test

import (
	"math/big"
	"testing"

	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/scheduler"
	"github.com/multiconsole/corefab/test"
)

// tickCounter is a scheduler-driven component whose Synchronize uses
// SynchronizationContext.Allocate to count exactly how many whole ticks at
// its declared period elapsed.
type tickCounter struct {
	path   paths.ComponentPath
	period *scheduler.Period
	ticks  int
}

func (c *tickCounter) Path() paths.ComponentPath { return c.path }

func (c *tickCounter) Synchronize(ctx component.SynchronizationContext, delta *scheduler.Period) error {
	n := ctx.Allocate(c.period, delta)
	c.ticks += n
	return nil
}

func mustPath(t *testing.T, s string) paths.ComponentPath {
	t.Helper()
	p, err := paths.NewComponentPath(s)
	test.Equate(t, err, nil)
	return p
}

// scenario 3: a component running at 1000Hz; run(1s) lets it perform
// exactly 1000 whole ticks.
func TestSchedulerTickCount(t *testing.T) {
	s := scheduler.New()
	c := &tickCounter{path: mustPath(t, ":component/chip"), period: big.NewRat(1, 1000)}

	err := s.RegisterComponent(c.path, c, scheduler.SchedulerDriven, c.period)
	test.Equate(t, err, nil)

	err = s.Run(big.NewRat(1, 1))
	test.Equate(t, err, nil)
	test.Equate(t, c.ticks, 1000)
}

// scenario 4: a repeating 1000Hz event increments event_counter; a
// component's synchronize asserts counter == event_counter and increments
// counter. After run(1s) both equal 1000 and no assertion fires.
func TestEventDrivenCounter(t *testing.T) {
	s := scheduler.New()

	eventCounter := 0
	s.ScheduleRepeating(big.NewRat(1, 1000), big.NewRat(1, 1000), func(now *scheduler.Period) {
		eventCounter++
	})

	counter := 0
	assertOK := true
	c := &assertingComponent{
		path: mustPath(t, ":component/watcher"),
		synchronize: func() {
			if counter != eventCounter {
				assertOK = false
			}
			counter++
		},
	}
	err := s.RegisterComponent(c.path, c, scheduler.SchedulerDriven, big.NewRat(1, 1000))
	test.Equate(t, err, nil)

	err = s.Run(big.NewRat(1, 1))
	test.Equate(t, err, nil)

	test.Equate(t, assertOK, true)
	test.Equate(t, eventCounter, 1000)
	test.Equate(t, counter, 1000)
}

type assertingComponent struct {
	path        paths.ComponentPath
	synchronize func()
}

func (c *assertingComponent) Path() paths.ComponentPath { return c.path }

func (c *assertingComponent) Synchronize(ctx component.SynchronizationContext, delta *scheduler.Period) error {
	n := ctx.Allocate(big.NewRat(1, 1000), delta)
	for i := 0; i < n; i++ {
		c.synchronize()
	}
	return nil
}

func TestFIFOTieBreak(t *testing.T) {
	s := scheduler.New()

	var order []int
	at := big.NewRat(1, 2)
	for i := 0; i < 5; i++ {
		i := i
		s.ScheduleOnce(at, func(now *scheduler.Period) {
			order = append(order, i)
		})
	}

	err := s.Run(big.NewRat(1, 1))
	test.Equate(t, err, nil)
	test.Equate(t, order, []int{0, 1, 2, 3, 4})
}

func TestPauseFreezesNow(t *testing.T) {
	s := scheduler.New()
	s.Pause()

	err := s.Run(big.NewRat(1, 1))
	test.Equate(t, err, nil)
	test.Equate(t, s.Now().Cmp(big.NewRat(0, 1)), 0)
}

type onDemandComponent struct {
	path  paths.ComponentPath
	due   bool
	ticks int
}

func (c *onDemandComponent) Path() paths.ComponentPath { return c.path }

func (c *onDemandComponent) NeedsWork(delta *scheduler.Period) bool { return c.due }

func (c *onDemandComponent) Synchronize(ctx component.SynchronizationContext, delta *scheduler.Period) error {
	c.ticks++
	return nil
}

func TestOnDemandGatedByNeedsWork(t *testing.T) {
	s := scheduler.New()
	c := &onDemandComponent{path: mustPath(t, ":component/lazy")}

	err := s.RegisterComponent(c.path, c, scheduler.OnDemand, nil)
	test.Equate(t, err, nil)

	err = s.Run(big.NewRat(1, 1))
	test.Equate(t, err, nil)
	test.Equate(t, c.ticks, 0)

	c.due = true
	err = s.Run(big.NewRat(1, 1))
	test.Equate(t, err, nil)
	test.Equate(t, c.ticks, 1)
}
