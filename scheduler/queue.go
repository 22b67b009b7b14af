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

import "math/big"

// event is one (timestamp, callback, one-shot-or-periodic) entry (§3
// "Scheduler timeline"). seq breaks ties between events scheduled for the
// same timestamp: earlier registration fires first (§9 OQ1, FIFO).
type event struct {
	at       *big.Rat
	seq      int64
	period   *big.Rat // nil for one-shot events
	callback func(now *Period)
}

// eventQueue is a container/heap min-heap ordered by (at, seq).
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	c := q[i].at.Cmp(q[j].at)
	if c != 0 {
		return c < 0
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x interface{}) {
	*q = append(*q, x.(*event))
}

func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}
