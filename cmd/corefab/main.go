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

// Command corefab is the frontend binary (§6 CLI #1): `run <rom-paths...>
// [--forced-machine-id <id>]` builds and runs a machine headlessly; bare
// invocation is the GUI path, and a windowed frontend is an explicit
// Non-goal, so this build reports that plainly instead of pretending to
// launch one.
package main

import "os"

func main() {
	os.Exit(Execute())
}
