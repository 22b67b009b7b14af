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
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// ServeStats starts a live HTTP dashboard at addr (e.g. ":18066") plotting
// goroutine count, heap size and GC pause time for the process driving this
// scheduler, reusing the teacher's own statsview dependency. It is a
// development aid for watching the run loop under load, not part of the
// machine core's public contract, and is safe to leave unused (ServeStats
// is never called by Builder.Build).
func (s *Scheduler) ServeStats(addr string) {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
}
