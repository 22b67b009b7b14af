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

// Package hotkeys implements the default hotkey table (§6): a fixed set of
// frontend actions, each bound by default to both a keyboard key and a
// gamepad "Mode + <button>" combination. It plays the role the teacher's
// gui/sdlimgui manager_hotkeys.go plays for debugger window focus keys,
// generalized from a single rune-keyed, GUI-local map to a table of named
// actions whose bindings persist through the envconfig environment file
// rather than a bespoke "key :: window-id" text file of its own.
package hotkeys

import (
	"strings"

	"github.com/multiconsole/corefab/curated"
)

// Action is one of the fixed set of hotkey-bindable frontend actions (§6).
type Action string

const (
	ToggleMenu    Action = "toggle-menu"
	FastForward   Action = "fast-forward"
	StoreSnapshot Action = "store-snapshot"
	LoadSnapshot  Action = "load-snapshot"
	IncrementSlot Action = "increment-snapshot-slot"
	DecrementSlot Action = "decrement-snapshot-slot"
)

// Actions lists every bindable action, in the order the default table
// presents them (§6: F1..F6).
var Actions = []Action{
	ToggleMenu,
	FastForward,
	StoreSnapshot,
	LoadSnapshot,
	IncrementSlot,
	DecrementSlot,
}

// gamepadModifier is the combo prefix a gamepad binding is expressed with,
// e.g. "Mode+A" (§6 "Mode + <button>").
const gamepadModifier = "Mode+"

// Defaults returns the built-in binding set: one keyboard key and one
// gamepad Mode+<button> combination per action (§6).
func Defaults() map[Action][]string {
	return map[Action][]string{
		ToggleMenu:    {"F1", gamepadModifier + "Start"},
		FastForward:   {"F2", gamepadModifier + "A"},
		StoreSnapshot: {"F3", gamepadModifier + "X"},
		LoadSnapshot:  {"F4", gamepadModifier + "Y"},
		IncrementSlot: {"F5", gamepadModifier + "R"},
		DecrementSlot: {"F6", gamepadModifier + "L"},
	}
}

// IsGamepadCombo reports whether binding is a "Mode + <button>" combination
// rather than a plain keyboard key.
func IsGamepadCombo(binding string) bool {
	return strings.HasPrefix(binding, gamepadModifier)
}

// Table is a live, bindable hotkey table: a forward action -> bindings map
// plus the reverse binding -> action index used to dispatch input events.
type Table struct {
	bindings map[Action][]string
	reverse  map[string]Action
}

// New returns a Table populated with the built-in defaults.
func New() *Table {
	return build(Defaults())
}

// FromConfig builds a Table from a persisted envconfig.Config.Hotkeys map,
// falling back to the built-in default bindings for any action the stored
// map is missing or leaves empty (§6 "Absent or malformed fields fall back
// to built-in defaults").
func FromConfig(stored map[string][]string) *Table {
	merged := make(map[Action][]string, len(Actions))
	for action, defaultBindings := range Defaults() {
		if bound, ok := stored[string(action)]; ok && len(bound) > 0 {
			merged[action] = append([]string(nil), bound...)
			continue
		}
		merged[action] = defaultBindings
	}
	return build(merged)
}

func build(bindings map[Action][]string) *Table {
	t := &Table{
		bindings: bindings,
		reverse:  make(map[string]Action),
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.reverse = make(map[string]Action, len(t.bindings)*2)
	for action, bound := range t.bindings {
		for _, b := range bound {
			t.reverse[b] = action
		}
	}
}

// Bind replaces action's bindings. At least one binding must be given;
// rebinding to an empty list is rejected rather than silently leaving the
// action unreachable.
func (t *Table) Bind(action Action, bindings ...string) error {
	if len(bindings) == 0 {
		return curated.Errorf("hotkeys: %s must be bound to at least one input", action)
	}
	t.bindings[action] = append([]string(nil), bindings...)
	t.reindex()
	return nil
}

// Bindings returns the current bindings for action.
func (t *Table) Bindings(action Action) []string {
	return append([]string(nil), t.bindings[action]...)
}

// Resolve looks up which action, if any, input is currently bound to.
func (t *Table) Resolve(input string) (Action, bool) {
	action, ok := t.reverse[input]
	return action, ok
}

// ToConfig exports the current bindings in the shape envconfig.Config.Hotkeys
// expects, for persistence back to the environment file.
func (t *Table) ToConfig() map[string][]string {
	out := make(map[string][]string, len(t.bindings))
	for action, bound := range t.bindings {
		out[string(action)] = append([]string(nil), bound...)
	}
	return out
}
