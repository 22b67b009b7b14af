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

package hotkeys_test

import (
	"testing"

	"github.com/multiconsole/corefab/hotkeys"
	"github.com/multiconsole/corefab/test"
)

func TestDefaultsCoverEveryActionWithKeyAndGamepadBinding(t *testing.T) {
	def := hotkeys.Defaults()
	test.Equate(t, len(def), len(hotkeys.Actions))

	for _, action := range hotkeys.Actions {
		bound, ok := def[action]
		test.Equate(t, ok, true)
		test.Equate(t, len(bound), 2)
		test.Equate(t, hotkeys.IsGamepadCombo(bound[0]), false)
		test.Equate(t, hotkeys.IsGamepadCombo(bound[1]), true)
	}
}

func TestNewResolvesDefaultBindingsBothWays(t *testing.T) {
	table := hotkeys.New()

	action, ok := table.Resolve("F1")
	test.Equate(t, ok, true)
	test.Equate(t, action, hotkeys.ToggleMenu)

	action, ok = table.Resolve("Mode+A")
	test.Equate(t, ok, true)
	test.Equate(t, action, hotkeys.FastForward)

	_, ok = table.Resolve("F9")
	test.Equate(t, ok, false)
}

func TestFromConfigFallsBackPerActionToDefaults(t *testing.T) {
	stored := map[string][]string{
		string(hotkeys.ToggleMenu): {"Home", "Mode+Start"},
		// FastForward deliberately absent -> falls back to default.
		string(hotkeys.StoreSnapshot): {}, // present but empty -> falls back to default.
	}

	table := hotkeys.FromConfig(stored)

	test.Equate(t, table.Bindings(hotkeys.ToggleMenu), []string{"Home", "Mode+Start"})
	test.Equate(t, table.Bindings(hotkeys.FastForward), hotkeys.Defaults()[hotkeys.FastForward])
	test.Equate(t, table.Bindings(hotkeys.StoreSnapshot), hotkeys.Defaults()[hotkeys.StoreSnapshot])

	action, ok := table.Resolve("Home")
	test.Equate(t, ok, true)
	test.Equate(t, action, hotkeys.ToggleMenu)
}

func TestBindRejectsEmptyBindingList(t *testing.T) {
	table := hotkeys.New()
	err := table.Bind(hotkeys.ToggleMenu)
	test.ExpectFailure(t, err)
	// rejected bind must not have touched the existing binding.
	test.Equate(t, table.Bindings(hotkeys.ToggleMenu), hotkeys.Defaults()[hotkeys.ToggleMenu])
}

func TestBindReplacesAndReindexes(t *testing.T) {
	table := hotkeys.New()

	err := table.Bind(hotkeys.ToggleMenu, "Escape")
	test.Equate(t, err, nil)

	_, ok := table.Resolve("F1")
	test.Equate(t, ok, false)

	action, ok := table.Resolve("Escape")
	test.Equate(t, ok, true)
	test.Equate(t, action, hotkeys.ToggleMenu)
}

func TestToConfigRoundTripsThroughFromConfig(t *testing.T) {
	table := hotkeys.New()
	test.Equate(t, table.Bind(hotkeys.LoadSnapshot, "Backspace", "Mode+Y"), nil)

	cfg := table.ToConfig()
	rebuilt := hotkeys.FromConfig(cfg)

	test.Equate(t, rebuilt.Bindings(hotkeys.LoadSnapshot), []string{"Backspace", "Mode+Y"})
	for _, action := range hotkeys.Actions {
		test.Equate(t, rebuilt.Bindings(action), table.Bindings(action))
	}
}
